package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/lumberjack"
)

// FileOptions controls the rotating log file written next to stdout.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SetupFile tees log output to stdout and a rotating file. An empty path keeps
// stdout only and returns a nil closer. Closing the returned closer points
// output back at stdout before the file is closed, so later records cannot
// reopen it.
func SetupFile(opts FileOptions) (io.Closer, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		LocalTime:  true,
	}
	tee := io.MultiWriter(os.Stdout, rotator)
	SetOutput(tee)
	return &fileCloser{rotator: rotator, tee: tee}, nil
}

type fileCloser struct {
	rotator *lumberjack.Logger
	tee     io.Writer
}

func (c *fileCloser) Close() error {
	outputMu.Lock()
	if output == c.tee {
		output = os.Stdout
		rebuild(output)
	}
	outputMu.Unlock()
	return c.rotator.Close()
}
