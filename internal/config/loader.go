package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: `server.address` is read from
// APPLYFORM_SERVER_ADDRESS.
const EnvPrefix = "APPLYFORM"

var (
	ErrMissingBaseURL = errors.New("config: api.base_url is required unless api.use_mock_data is set")
	ErrMissingAddress = errors.New("config: server.address is required")
	ErrInvalidLevel   = errors.New("config: logging.level must be debug, info, warn or error")
)

// Load reads `config.yaml` from paths (defaults: ./configs and .), merges
// `config.<APP_ENVIRONMENT>.yaml` over it, applies environment overrides
// and defaults, then validates. A `.env` file in the working directory is
// loaded first when present.
func Load(paths ...string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = v.GetString("app.environment")
	}
	v.SetConfigName("config." + env)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: merge %s config: %w", env, err)
		}
	}
	v.Set("app.environment", env)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "applyform")
	v.SetDefault("app.environment", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.use_mock_data", false)
	v.SetDefault("api.mock_fixtures_dir", "fixtures/forms")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.schema_ttl", 10*time.Minute)
	v.SetDefault("render.theme", "")
	v.SetDefault("render.variant", "")
	v.SetDefault("render.themes_dir", "")
	v.SetDefault("render.update_on_input", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("uploads.max_bytes", int64(2<<30))
}

// Validate rejects configurations the service cannot start with.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Server.Address) == "" {
		return ErrMissingAddress
	}
	if !cfg.API.UseMockData && strings.TrimSpace(cfg.API.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLevel, cfg.Logging.Level)
	}
	return nil
}
