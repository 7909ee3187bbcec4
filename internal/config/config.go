// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	APIName                string `env:"STOCKAPP_API_NAME"`
	APIVersion             string `env:"STOCKAPP_API_VERSION"`
	ServerPort             string `env:"STOCKAPP_SERVER_PORT"`
	ServerLogLevel         string `env:"STOCKAPP_SERVER_LOG_LEVEL"`
	PostgresDsn            string `env:"STOCKAPP_PG_DSN"`
	PostgresLogLevel       string `env:"STOCKAPP_PG_LOG_LEVEL"`
	RedisURL               string `env:"STOCKAPP_REDIS_URL" optional:"true"`
	UpdaterRefreshInterval string `env:"STOCKAPP_UPDATER_REFRESH_INTERVAL" optional:"true"`
	UpdaterRunDeadline     string `env:"STOCKAPP_UPDATER_RUN_DEADLINE" optional:"true"`
	NSEBaseURL             string `env:"STOCKAPP_NSE_BASE_URL" optional:"true"`
}

var (
	SingleLine string = "--------------------------------------------------"
)

var (
	instance *Config
	once     sync.Once
	err      error
)

// Get returns the application configuration
func Get() (*Config, error) {
	once.Do(func() {
		instance, err = loadConfig()
	})
	return instance, err
}

// loadConfig loads configuration from a .env file, if present, and the environment
func loadConfig() (*Config, error) {
	// A missing .env file is fine, the environment may be set directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := os.Getenv(envTag)
		if value == "" && field.Tag.Get("optional") != "true" {
			return fmt.Errorf("env variable %s is required but not set", envTag)
		}

		v.Field(i).SetString(value)
	}

	return nil
}

// String returns the configuration as a string
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n" + SingleLine + "\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString(SingleLine + "\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := maskSensitiveField(field.Name, v.Field(i).String())
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString(SingleLine + "\n")

	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"dsn", "password", "url", "secret"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}

	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
