package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backend identifiers, selected via STORE_BACKEND.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// User store backend: "postgres" or "memory".
	StoreBackend string `envconfig:"STORE_BACKEND" default:"postgres"`

	// Database (PostgreSQL, used when StoreBackend is "postgres")
	DBHost    string `envconfig:"DB_HOST" default:"localhost"`
	DBPort    string `envconfig:"DB_PORT" default:"5432"`
	DBUser    string `envconfig:"DB_USER" default:"auth"`
	DBName    string `envconfig:"DB_NAME" default:"auth"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`
	// Secret field WITHOUT an envconfig tag, loaded separately
	DBPassword string

	// JWT settings - the secret itself is loaded separately
	JWTSecret       string
	AccessTokenTTL  time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"30m"`
	RefreshTokenTTL time.Duration `envconfig:"JWT_REFRESH_TOKEN_TTL" default:"168h"` // 7 days
	Issuer          string        `envconfig:"JWT_ISSUER" default:"auth-server"`

	// Password hashing
	BcryptCost     int `envconfig:"BCRYPT_COST" default:"0"` // 0 means bcrypt.DefaultCost
	PasswordPepper string

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	if cfg.StoreBackend != StorePostgres && cfg.StoreBackend != StoreMemory {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (expected %q or %q)", cfg.StoreBackend, StorePostgres, StoreMemory)
	}

	var err error
	cfg.JWTSecret, err = readSecretOrEnv("jwt_secret", "JWT_SECRET")
	if err != nil {
		return nil, err
	}

	// The pepper is optional; an empty pepper means hashing plain bcrypt.
	if pepper, err := readSecretOrEnv("password_pepper", "PASSWORD_PEPPER"); err == nil {
		cfg.PasswordPepper = pepper
	} else {
		log.Printf("Optional secret 'password_pepper' not set: %v. Hashing without pepper.", err)
	}

	if cfg.StoreBackend == StorePostgres {
		cfg.DBPassword, err = readSecretOrEnv("db_password", "DB_PASSWORD")
		if err != nil {
			return nil, err
		}
	}

	log.Println("Configuration loaded successfully.")
	return &cfg, nil
}

// readSecretOrEnv reads a secret from the standard Docker Secrets path,
// falling back to the given environment variable.
func readSecretOrEnv(secretName, envName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	if secretBytes, err := os.ReadFile(filePath); err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %q not found in /run/secrets and %s is not set", secretName, envName)
}
