package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	EventStore EventStoreConfig
	Auth       AuthConfig
	PVS        PVSConfig
	Documents  DocumentsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// EventStoreConfig holds configuration for EventStoreDB.
type EventStoreConfig struct {
	// Host is the EventStoreDB server hostname
	Host string
	// Port is the gRPC port (default 2113)
	Port int
	// Insecure disables TLS (for development)
	Insecure bool
	// Username for authentication (optional)
	Username string
	// Password for authentication (optional)
	Password string
	// Enabled controls whether intake events are published at all
	Enabled bool
}

type AuthConfig struct {
	JWTSecret string
}

// PVSConfig holds connection settings for the legacy practice-management
// system used to look up insured-party master data.
type PVSConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DocumentsConfig holds settings for the rendering and assembly pipeline.
type DocumentsConfig struct {
	// PrimaryLanguage is the language used for the print layout captions
	PrimaryLanguage string
	// ChromePath overrides the headless Chrome binary used for PDF conversion
	ChromePath string
	// ConvertTimeout bounds a single markup-to-PDF conversion
	ConvertTimeout time.Duration
}

func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "intake"),
			Password: getEnv("DB_PASSWORD", "intake"),
			Database: getEnv("DB_NAME", "intake"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		EventStore: EventStoreConfig{
			Host:     getEnv("EVENTSTORE_HOST", "localhost"),
			Port:     getEnvInt("EVENTSTORE_PORT", 2113),
			Insecure: getEnvBool("EVENTSTORE_INSECURE", true),
			Username: getEnv("EVENTSTORE_USERNAME", ""),
			Password: getEnv("EVENTSTORE_PASSWORD", ""),
			Enabled:  getEnvBool("EVENTSTORE_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-prod"),
		},
		PVS: PVSConfig{
			Enabled:  getEnvBool("PVS_ENABLED", false),
			Host:     getEnv("PVS_HOST", "localhost"),
			Port:     getEnvInt("PVS_PORT", 1433),
			User:     getEnv("PVS_USER", "intake_reader"),
			Password: getEnv("PVS_PASSWORD", ""),
			Database: getEnv("PVS_DATABASE", "praxis"),
			SSLMode:  getEnv("PVS_SSLMODE", "disable"),
		},
		Documents: DocumentsConfig{
			PrimaryLanguage: getEnv("DOC_PRIMARY_LANGUAGE", "de"),
			ChromePath:      getEnv("DOC_CHROME_PATH", ""),
			ConvertTimeout:  getEnvDuration("DOC_CONVERT_TIMEOUT", 30*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
