package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Wire     WireConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds admin API token configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds the admin HTTP listener configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// WireConfig holds the worker-station TCP endpoint configuration
type WireConfig struct {
	Port          int
	PairingSecret string
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	Email    string
	Password string
}

func Load() (*Config, error) {
	// A missing .env file is fine, the environment may carry everything.
	_ = godotenv.Load()

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	tcpPort, err := strconv.Atoi(getEnv("TCP_PORT", "4200"))
	if err != nil {
		return nil, fmt.Errorf("invalid TCP_PORT: %w", err)
	}

	config.Wire = WireConfig{
		Port:          tcpPort,
		PairingSecret: getEnv("PAIRING_SECRET", ""),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	config.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Wire.PairingSecret == "" {
		return fmt.Errorf("PAIRING_SECRET is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// StationConfig holds the worker-station CLI configuration
type StationConfig struct {
	ServerAddress string
	PairingSecret string
	DataDir       string
}

func LoadStation() (*StationConfig, error) {
	_ = godotenv.Load()

	config := &StationConfig{
		ServerAddress: getEnv("SERVER_ADDRESS", "localhost:4200"),
		PairingSecret: getEnv("PAIRING_SECRET", ""),
		DataDir:       getEnv("STATION_DATA_DIR", "./data"),
	}
	if config.PairingSecret == "" {
		return nil, fmt.Errorf("PAIRING_SECRET is required")
	}
	return config, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
