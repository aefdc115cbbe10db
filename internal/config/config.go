package config

import (
	"time"

	"github.com/spf13/viper"
)

// Load wires up viper for a service binary: values come from a local .env file
// when present, with environment variables taking precedence.
func Load() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	viper.BindEnv("server.port", "PORT")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("accounts_service.base_url", "ACCOUNTS_SERVICE_URL")
	viper.BindEnv("accounts_service.timeout", "ACCOUNTS_SERVICE_TIMEOUT")

	viper.BindEnv("log.level", "LOG_LEVEL")
}

// ServerPort returns the listen port for the current binary
func ServerPort(fallback string) string {
	viper.SetDefault("server.port", fallback)
	return viper.GetString("server.port")
}

// AccountsClientConfig holds settings for the accounts service lookup client
type AccountsClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AccountsClient returns lookup client configuration with cluster-local defaults
func AccountsClient() AccountsClientConfig {
	viper.SetDefault("accounts_service.base_url", "http://accounts-service.default.svc.cluster.local:8000")
	viper.SetDefault("accounts_service.timeout", 5*time.Second)

	return AccountsClientConfig{
		BaseURL: viper.GetString("accounts_service.base_url"),
		Timeout: viper.GetDuration("accounts_service.timeout"),
	}
}

// LogLevel returns the configured logrus level name
func LogLevel() string {
	viper.SetDefault("log.level", "info")
	return viper.GetString("log.level")
}
