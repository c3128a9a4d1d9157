// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the inventory service.
type Config struct {
	ServiceName             string
	AppPort                 string
	AppEnv                  string
	LogLevel                string
	DatabaseDriver          string
	DatabaseDSN             string
	DatabaseMaxIdleConns    int
	DatabaseMaxOpenConns    int
	DatabaseConnMaxLifetime time.Duration
	DatabaseLogLevel        string
	RedisAddr               string
	RedisCacheTTL           time.Duration
	RabbitMQURL             string
	SeedProducts            bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "inventory")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:inventory.db?cache=shared")
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 100)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DATABASE_LOG_LEVEL", "silent")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEED_PRODUCTS", false)
}

// Load reads configuration from environment variables. Values from a .env
// file in the working directory are used when the variable is not already set.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		ServiceName:             v.GetString("SERVICE_NAME"),
		AppPort:                 v.GetString("APP_PORT"),
		AppEnv:                  v.GetString("APP_ENV"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		DatabaseDriver:          v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:             v.GetString("DATABASE_DSN"),
		DatabaseMaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		DatabaseMaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
		DatabaseConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		DatabaseLogLevel:        v.GetString("DATABASE_LOG_LEVEL"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisCacheTTL:           v.GetDuration("REDIS_CACHE_TTL"),
		RabbitMQURL:             v.GetString("RABBITMQ_URL"),
		SeedProducts:            v.GetBool("SEED_PRODUCTS"),
	}
}
