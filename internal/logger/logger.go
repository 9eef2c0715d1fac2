// Package logger wraps log/slog with printf-style helpers shared by every package.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	levelVar   slog.LevelVar
	location   atomic.Pointer[time.Location]
	baseLogger atomic.Pointer[slog.Logger]

	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

func init() {
	levelVar.Set(slog.LevelInfo)
	location.Store(time.Local)
	rebuild(output)
}

func rebuild(w io.Writer) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: &levelVar,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.TimeValue(a.Value.Time().In(location.Load()))
			}
			return a
		},
	})
	baseLogger.Store(slog.New(handler))
}

// SetOutput redirects every later record to w; nil restores stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
	rebuild(w)
}

// Output returns the current destination.
func Output() io.Writer {
	outputMu.Lock()
	defer outputMu.Unlock()
	return output
}

// SetLocation renders record timestamps in loc; nil means local time.
func SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	location.Store(loc)
}

// ParseLevel maps debug/info/warn(ing)/error to a slog level.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// SetLevel falls back to info on unknown names.
func SetLevel(level string) {
	lv, _ := ParseLevel(level)
	levelVar.Set(lv)
}

func Level() slog.Level {
	return levelVar.Level()
}

func Debugf(format string, v ...any) {
	baseLogger.Load().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	baseLogger.Load().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	baseLogger.Load().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	baseLogger.Load().Error(fmt.Sprintf(format, v...))
}
