package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// maxUpwardSearchLevels limits how far up the directory tree to search
// for config files.
const maxUpwardSearchLevels = 10

// Defaults applied before any config source is consulted.
const (
	DefaultDriver       = "sqlite"
	DefaultSQLitePath   = "hubgrid.db"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultHistoryLimit = 50
)

func configExistsIn(dir string) bool {
	for _, name := range []string{"hubgrid.yaml", "hubgrid.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot searches upward from startDir for a hubgrid config
// file. Returns empty string if not found within maxUpwardSearchLevels.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// findConfigFile finds the config file to use.
// Priority: explicit path > hubgrid.yaml > hubgrid.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	start, err := os.Getwd()
	if err != nil {
		return ""
	}
	root := FindProjectRoot(start)
	if root == "" {
		return ""
	}
	for _, name := range []string{"hubgrid.yaml", "hubgrid.yml"} {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load reads configuration with the standard precedence:
// defaults < config file < HUBGRID_ env vars < explicitly set flags.
// It returns the loaded config and the path of the config file used
// (empty when running on defaults alone).
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, string, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"store.driver":   DefaultDriver,
		"store.path":     DefaultSQLitePath,
		"logging.level":  DefaultLogLevel,
		"logging.format": DefaultLogFormat,
		"history.limit":  DefaultHistoryLimit,
		"verbose":        false,
	}, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	configFileUsed := findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, "", fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (HUBGRID_ prefix)
	// Transform: HUBGRID_STORE_DRIVER -> store.driver
	if err := k.Load(env.Provider("HUBGRID_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "HUBGRID_")), "_", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case flag names to dotted config keys
			// (--store-driver -> store.driver).
			key := strings.ReplaceAll(f.Name, "-", ".")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, "", fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, "", fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, configFileUsed, nil
}
