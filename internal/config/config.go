// Package config reads the service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Env  string
	Port string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	SQLitePath string

	StoreKeyPrefix string
	SaveRetries    int

	JWTSecret       string
	OperatorPINHash string
	TokenTTL        time.Duration

	DigitalLabel string
	ViewsDir     string
}

// Development reports whether verbose logging should be used.
func (c Config) Development() bool {
	return c.Env == "development"
}

// AuthEnabled reports whether the operator PIN login protects the API.
func (c Config) AuthEnabled() bool {
	return c.OperatorPINHash != ""
}

// LoadDotEnv loads .env into the process environment. A missing file is not
// an error; the returned value tells the caller whether one was found.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// Load builds a Config from the environment, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Env:             getenv("APP_ENV", "production"),
		Port:            getenv("PORT", "8080"),
		DBDriver:        strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		DBHost:          getenv("DB_HOST", "localhost"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          getenv("DB_PORT", "5432"),
		DBSSLMode:       getenv("DB_SSLMODE", "disable"),
		SQLitePath:      getenv("SQLITE_PATH", "redbull.db"),
		StoreKeyPrefix:  getenv("STORE_KEY_PREFIX", "redbull"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		OperatorPINHash: os.Getenv("OPERATOR_PIN_HASH"),
		DigitalLabel:    getenv("DIGITAL_LABEL", "GPay"),
		ViewsDir:        getenv("VIEWS_DIR", "./views"),
	}

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER: unsupported value %q", cfg.DBDriver)
	}

	retries, err := strconv.Atoi(getenv("SAVE_RETRIES", "3"))
	if err != nil || retries < 0 {
		return Config{}, fmt.Errorf("SAVE_RETRIES: want a non-negative integer, got %q", os.Getenv("SAVE_RETRIES"))
	}
	cfg.SaveRetries = retries

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "12h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL: want a positive duration, got %q", os.Getenv("TOKEN_TTL"))
	}
	cfg.TokenTTL = ttl

	if cfg.AuthEnabled() && cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required when OPERATOR_PIN_HASH is set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}
