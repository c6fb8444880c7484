// Package config loads service configuration from yaml files, a .env file
// and APPLYFORM_* environment variables.
package config

import "time"

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Render  RenderConfig  `mapstructure:"render"`
	Logging LoggingConfig `mapstructure:"logging"`
	Uploads UploadsConfig `mapstructure:"uploads"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// APIConfig points at the grants API. UseMockData serves forms from
// MockFixturesDir and skips the network.
type APIConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	UseMockData     bool          `mapstructure:"use_mock_data"`
	MockFixturesDir string        `mapstructure:"mock_fixtures_dir"`
}

type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	SchemaTTL time.Duration `mapstructure:"schema_ttl"`
}

// RenderConfig selects the theme. ThemesDir holds extra manifest files
// loaded next to the built-in USWDS theme.
type RenderConfig struct {
	Theme         string `mapstructure:"theme"`
	Variant       string `mapstructure:"variant"`
	ThemesDir     string `mapstructure:"themes_dir"`
	UpdateOnInput bool   `mapstructure:"update_on_input"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type UploadsConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}
