package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Env names carrying exchange credentials; they override the file.
const (
	EnvAPIKey    = "KEY_BINANCE"
	EnvSecretKey = "SECRET_BINANCE"
)

// Load reads path plus its include chain, applies defaults and validates.
// Included files are merged first, so the including file wins on conflicts.
func Load(path string) (*Config, error) {
	files, err := resolveIncludes(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	for _, f := range files {
		if err := v.MergeConfigMap(f.settings); err != nil {
			return nil, fmt.Errorf("merging config file failed (%s): %w", f.path, err)
		}
	}
	if err := v.BindEnv("exchange.api_key", EnvAPIKey); err != nil {
		return nil, err
	}
	if err := v.BindEnv("exchange.secret_key", EnvSecretKey); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	flattenConfigKeys("", v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flattenConfigKeys marks every leaf as "section.key" so defaults can tell an
// explicit zero value from an absent one.
func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, child := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, child, dest)
		}
	default:
		dest.mark(prefix)
	}
}
