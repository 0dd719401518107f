package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application.
// Following 12-factor app principles, all config is loaded from environment
// variables.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Events   EventsConfig
	Collab   CollabConfig
	Dialogue DialogueConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	JWTSecret string
}

// StorageConfig selects between the in-memory stores and MySQL.
type StorageConfig struct {
	Driver     string // "memory" or "mysql"
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
}

// DSN builds the MySQL connection string.
func (s StorageConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		s.DBUser, s.DBPassword, s.DBHost, s.DBPort, s.DBName)
}

// EventsConfig names the broker topology. An empty URL disables events.
type EventsConfig struct {
	URL         string
	Exchange    string
	OrderQueue  string
	ReviewQueue string
}

// CollabConfig points at the external collaborator services.
type CollabConfig struct {
	InterpreterURL string // empty disables the natural-language search path
	SentimentURL   string // empty disables the sentiment worker
	TimeoutSeconds int
}

type DialogueConfig struct {
	DisplayWindowSeconds int // how long the booked screen shows before reset
	SessionTTLMinutes    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE", "memory"),
			DBUser:     getEnv("DB_USER", "root"),
			DBPassword: getEnv("DB_PASSWORD", ""),
			DBHost:     getEnv("DB_HOST", "localhost"),
			DBPort:     getEnv("DB_PORT", "3306"),
			DBName:     getEnv("DB_NAME", "cakeshop"),
		},
		Events: EventsConfig{
			URL:         getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("EVENTS_EXCHANGE", "cakeshop.events"),
			OrderQueue:  getEnv("EVENTS_ORDER_QUEUE", "cakeshop.orders"),
			ReviewQueue: getEnv("EVENTS_REVIEW_QUEUE", "cakeshop.reviews"),
		},
		Collab: CollabConfig{
			InterpreterURL: getEnv("INTERPRETER_URL", ""),
			SentimentURL:   getEnv("SENTIMENT_URL", ""),
			TimeoutSeconds: getEnvAsInt("COLLAB_TIMEOUT", 10),
		},
		Dialogue: DialogueConfig{
			DisplayWindowSeconds: getEnvAsInt("DIALOGUE_DISPLAY_WINDOW", 5),
			SessionTTLMinutes:    getEnvAsInt("DIALOGUE_SESSION_TTL", 30),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	switch c.Storage.Driver {
	case "memory", "mysql":
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory or mysql)", c.Storage.Driver)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
