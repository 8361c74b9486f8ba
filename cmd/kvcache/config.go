package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/goliatone/go-kvcache/cache"
	"github.com/goliatone/go-kvcache/pkg/di"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "kvcache"

// envConfig holds settings that only come from the environment.
type envConfig struct {
	LogLevel   string `env:"KVCACHE_LOG_LEVEL" envDefault:"warn"`
	ConfigHome string `env:"KVCACHE_CONFIG_HOME"`
}

func setupLog(cfg envConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid KVCACHE_LOG_LEVEL: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{Prefix: appName, Level: level}), nil
}

func bindConfig(v *viper.Viper, flags *pflag.FlagSet) {
	defaults := cache.DefaultConfig()
	v.SetDefault("backend", di.BackendSQLite)
	v.SetDefault("path", "")
	v.SetDefault("prefix", defaults.Prefix)
	v.SetDefault("default_ttl", defaults.DefaultTTL.String())
	v.SetDefault("codec", defaults.Codec)
	v.SetDefault("compression", 0)

	_ = v.BindPFlag("backend", flags.Lookup("backend"))
	_ = v.BindPFlag("path", flags.Lookup("path"))
	_ = v.BindPFlag("prefix", flags.Lookup("prefix"))
	_ = v.BindPFlag("default_ttl", flags.Lookup("default-ttl"))
	_ = v.BindPFlag("codec", flags.Lookup("codec"))
	_ = v.BindPFlag("compression", flags.Lookup("compression"))

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// readConfigFile loads kvcache.yml from configFile when given, otherwise from
// KVCACHE_CONFIG_HOME or the user config directories. A missing file is not
// an error.
func readConfigFile(v *viper.Viper, configFile string, cfg envConfig, logger *log.Logger) error {
	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("could not read config file %s: %w", path, err)
		}
		logger.Debug("using configuration file", "path", path)
		return nil
	}

	var dirs []string
	if cfg.ConfigHome != "" {
		dirs = append(dirs, cfg.ConfigHome)
	}
	if scoped, err := gap.NewScope(gap.User, appName).ConfigDirs(); err == nil {
		dirs = append(dirs, scoped...)
	}
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("could not parse configuration file: %w", err)
	}
	logger.Debug("using configuration file", "path", v.ConfigFileUsed())
	return nil
}

// containerConfig turns the merged flag, env and file settings into a
// container configuration.
func containerConfig(v *viper.Viper) (di.Config, error) {
	cfg := di.DefaultConfig()
	cfg.Backend = v.GetString("backend")
	cfg.Engine.Prefix = v.GetString("prefix")
	cfg.Engine.Codec = v.GetString("codec")
	cfg.Engine.CompressionLevel = v.GetInt("compression")

	ttl, err := time.ParseDuration(v.GetString("default_ttl"))
	if err != nil {
		return cfg, fmt.Errorf("invalid default_ttl: %w", err)
	}
	cfg.Engine.DefaultTTL = ttl

	if cfg.Backend == di.BackendMemory {
		return cfg, nil
	}

	path, err := dataPath(v.GetString("path"), cfg.Backend)
	if err != nil {
		return cfg, err
	}

	switch cfg.Backend {
	case di.BackendSQLite:
		cfg.SQLite.DSN = "file:" + path
	case di.BackendBadger:
		cfg.Badger.Dir = path
	}
	return cfg, nil
}

// dataPath expands path, or picks a location in the user data directory when
// it is empty.
func dataPath(path, backend string) (string, error) {
	if path == "" {
		name := appName + ".db"
		if backend == di.BackendBadger {
			name = appName + ".badger"
		}

		p, err := gap.NewScope(gap.User, appName).DataPath(name)
		if err != nil {
			return "", fmt.Errorf("could not resolve data directory: %w", err)
		}
		path = p
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o700); err != nil {
		return "", fmt.Errorf("unable to create data directory: %w", err)
	}
	return expanded, nil
}

func parseEnv() (envConfig, error) {
	return env.ParseAs[envConfig]()
}
