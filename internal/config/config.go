// Package config loads tada's own settings: where data lives, which
// storage backend to use, logging and look. Settings of the to-do view
// itself (table, view, fields) are in package globalconfig.
package config

import (
	"path/filepath"
)

const (
	DefaultDataDir   = ".tada"
	DefaultStore     = "json"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"
	DefaultColor     = "auto"

	ProjectFileName = ".tada.toml"
	UserFileName    = "config.toml"
)

type Config struct {
	DataDir    string `toml:"data_dir"`
	SchemaFile string `toml:"schema_file"`
	Store      string `toml:"store"`
	DSN        string `toml:"dsn"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
	LogFile    string `toml:"log_file"`
	Theme      string `toml:"theme"`
	Role       string `toml:"role"`
	Color      string `toml:"color"` // auto | always | never
}

func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.Store = DefaultStore
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
	cfg.Color = DefaultColor
}

// GlobalConfigPath is where the to-do view's settings are kept.
func (c *Config) GlobalConfigPath() string {
	return filepath.Join(c.DataDir, "globalconfig.toml")
}
