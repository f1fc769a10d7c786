package config

import (
	"os"
	"strconv"
	"strings"

	"bookingsdash/internal/errors"
)

// Store kinds for the normalized table artifact
const (
	StoreCSV      = "csv"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Database DatabaseConfig
	Server   ServerConfig
	LogLevel string
}

// DataConfig holds workbook and artifact locations
type DataConfig struct {
	WorkbookFile string
	ArtifactDir  string
	Store        string
}

// DatabaseConfig holds database connection settings for the SQL stores
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	APIPort string
	GinMode string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:     *loadDataConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server:   *loadServerConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		WorkbookFile: getEnvOrDefault("WORKBOOK_FILE", "TBH Case Study - Analyst.xlsx"),
		ArtifactDir:  getEnvOrDefault("ARTIFACT_DIR", "."),
		Store:        strings.ToLower(getEnvOrDefault("STORE", StoreCSV)),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		APIPort: getEnvOrDefault("API_PORT", "8081"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Store {
	case StoreCSV:
		if config.Data.ArtifactDir == "" {
			return errors.ConfigInvalid("ARTIFACT_DIR is required for the csv store")
		}
	case StorePostgres, StoreSQLite:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the " + config.Data.Store + " store")
		}
	default:
		return errors.ConfigInvalid("STORE must be one of csv, postgres, sqlite; got " + strconv.Quote(config.Data.Store))
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
