package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load builds the configuration from, in increasing priority:
// 1. Defaults
// 2. User config file ($XDG_CONFIG_HOME/tada/config.toml)
// 3. Project config file (.tada.toml in the current directory)
// 4. Environment variables (TADA_*)
// 5. Flags registered on fs and parsed from args
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	return load(findUserConfigFile(), ProjectFileName, fs, args)
}

func load(userFile, projectFile string, fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	for _, path := range []string{userFile, projectFile} {
		if path == "" {
			continue
		}
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if fs != nil {
		bindFlags(fs, cfg)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

// loadConfigFile decodes TOML over cfg; a missing file is skipped.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func findUserConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tada", UserFileName)
}

func loadFromEnv(cfg *Config) {
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	set(&cfg.DataDir, "TADA_DATA_DIR")
	set(&cfg.SchemaFile, "TADA_SCHEMA")
	set(&cfg.Store, "TADA_STORE")
	set(&cfg.DSN, "TADA_DSN")
	set(&cfg.LogLevel, "TADA_LOG_LEVEL")
	set(&cfg.LogFormat, "TADA_LOG_FORMAT")
	set(&cfg.LogFile, "TADA_LOG_FILE")
	set(&cfg.Theme, "TADA_THEME")
	set(&cfg.Role, "TADA_ROLE")
	set(&cfg.Color, "TADA_COLOR")
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.Color = "never"
	}
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding records and settings")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "HCL schema file (default <data-dir>/schema.hcl)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: json, sqlite or mysql")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "backend location (file path or mysql DSN)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text, json or logfmt")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file used while the interactive view runs")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "classic, neon or mono")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "permission role when not logged in: read, comment, edit or create")
	fs.StringVar(&cfg.Color, "color", cfg.Color, "auto, always or never")
}

// finalizeConfig validates enums and makes paths absolute.
func finalizeConfig(cfg *Config) error {
	if err := oneOf("store", cfg.Store, "json", "sqlite", "mysql"); err != nil {
		return err
	}
	if err := oneOf("log_level", cfg.LogLevel, "debug", "info", "warn", "warning", "error"); err != nil {
		return err
	}
	if err := oneOf("log_format", cfg.LogFormat, "text", "json", "logfmt"); err != nil {
		return err
	}
	if err := oneOf("theme", cfg.Theme, "classic", "neon", "mono"); err != nil {
		return err
	}
	if err := oneOf("color", cfg.Color, "auto", "always", "never"); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg.DataDir = absPath(wd, expandPath(cfg.DataDir))
	if cfg.SchemaFile == "" {
		cfg.SchemaFile = filepath.Join(cfg.DataDir, "schema.hcl")
	} else {
		cfg.SchemaFile = absPath(wd, expandPath(cfg.SchemaFile))
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "tada.log")
	} else {
		cfg.LogFile = absPath(wd, expandPath(cfg.LogFile))
	}
	if cfg.Store != "mysql" && cfg.DSN != "" {
		cfg.DSN = absPath(wd, expandPath(cfg.DSN))
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%s: invalid value %q (want %s)", key, value, strings.Join(allowed, ", "))
}

func absPath(wd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(wd, p)
}

// expandPath expands ~/ and environment variables.
func expandPath(p string) string {
	if p == "" {
		return p
	}
	expanded := os.ExpandEnv(p)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return expanded
		}
		return filepath.Join(home, strings.TrimPrefix(expanded[1:], "/"))
	}
	return expanded
}
