package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix             = "CODENOTES"
	defaultHTTPAddress    = "0.0.0.0:3000"
	defaultMaxBodyBytes   = 16 << 20
	defaultLogLevel       = "info"
	defaultCORSOrigins    = "*"
	defaultInsecureTLS    = true
	legacyDatabaseURLEnv  = "DATABASE_URL"
	legacyPortEnv         = "PORT"
	defaultDotEnvFilename = ".env"
)

// ErrMissingDatabaseURL is returned when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("config: database.url is required (set CODENOTES_DATABASE_URL or DATABASE_URL)")

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress         string
	BasePath            string
	MaxBodyBytes        int64
	CORSOrigins         []string
	DatabaseURL         string
	DatabaseInsecureTLS bool
	LogLevel            string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("http.base_path", "")
	configViper.SetDefault("http.max_body_bytes", defaultMaxBodyBytes)
	configViper.SetDefault("http.cors_origins", defaultCORSOrigins)
	configViper.SetDefault("database.url", "")
	configViper.SetDefault("database.insecure_tls", defaultInsecureTLS)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// LoadDotEnv populates the process environment from a .env file when one
// exists. Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = defaultDotEnvFilename
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:         configViper.GetString("http.address"),
		BasePath:            normalizeBasePath(configViper.GetString("http.base_path")),
		MaxBodyBytes:        configViper.GetInt64("http.max_body_bytes"),
		CORSOrigins:         splitList(configViper.GetString("http.cors_origins")),
		DatabaseURL:         strings.TrimSpace(configViper.GetString("database.url")),
		DatabaseInsecureTLS: configViper.GetBool("database.insecure_tls"),
		LogLevel:            configViper.GetString("log.level"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = strings.TrimSpace(os.Getenv(legacyDatabaseURLEnv))
	}
	if port := strings.TrimSpace(os.Getenv(legacyPortEnv)); port != "" && !addressExplicit(configViper, cfg.HTTPAddress) {
		cfg.HTTPAddress = net.JoinHostPort("", port)
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("config: http.address is required")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: http.max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// addressExplicit reports whether http.address came from the prefixed env
// var, a config file or a changed flag. viper's IsSet also counts defaults,
// so it cannot tell these apart from the built-in address.
func addressExplicit(configViper *viper.Viper, address string) bool {
	if value, ok := os.LookupEnv(envPrefix + "_HTTP_ADDRESS"); ok && strings.TrimSpace(value) != "" {
		return true
	}
	if configViper.InConfig("http.address") {
		return true
	}
	return address != defaultHTTPAddress
}

func normalizeBasePath(value string) string {
	trimmed := strings.Trim(strings.TrimSpace(value), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
