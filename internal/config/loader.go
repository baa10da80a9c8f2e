package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "PRDGATE_"
	envConfigPath = "PRDGATE_CONFIG"
)

// Load builds a Config by layering defaults, an optional file and env vars.
// Order of precedence (low -> high):
//  1. defaults (DefaultConfig)
//  2. YAML file: explicitPath, else PRDGATE_CONFIG, else .prdgate.yaml in
//     the working directory or the home directory
//  3. env (prefix PRDGATE_)
func Load(ctx context.Context, explicitPath string) (*Config, error) {
	return LoadFrom(ctx, explicitPath, defaultSearchDirs())
}

// LoadFrom is Load with an explicit list of directories to search for a
// config file when none is named.
func LoadFrom(ctx context.Context, explicitPath string, searchDirs []string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	k := koanf.New(".")

	path := explicitPath
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	} else {
		path = findConfigFile(searchDirs)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// PRDGATE_SCORE_THRESHOLD -> score_threshold
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	cfg.Path = path
	cfg.Output = strings.ToLower(cfg.Output)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
