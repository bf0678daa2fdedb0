package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates runtime configuration for the Gatehouse server.
type Config struct {
	Environment        string
	HTTPPort           int
	MongoURI           string
	MongoDatabase      string
	DataStore          string
	LogLevel           string
	BaseURL            string
	GoogleClientID     string
	GoogleClientSecret string
	CookieKeys         []string
}

// googleCallbackPath is the provider redirect URI path registered with Google.
const googleCallbackPath = "/auth/google/redirect"

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	clientSecret, err := getEnvOrFile("GOOGLE_CLIENT_SECRET", "/run/secrets/gatehouse_google_client_secret")
	if err != nil {
		return Config{}, err
	}

	cookieKeys, err := getEnvOrFile("COOKIE_KEYS", "/run/secrets/gatehouse_cookie_keys")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:        getEnv("APP_ENV", "development"),
		MongoDatabase:      getEnv("MONGO_DATABASE", "gatehouse"),
		DataStore:          strings.ToLower(getEnv("DATA_STORE", "mongo")),
		LogLevel:           strings.ToLower(getEnv("LOG_LEVEL", "info")),
		BaseURL:            strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: strings.TrimSpace(clientSecret),
		CookieKeys:         parseCSV(cookieKeys),
	}

	// The connection string is selected by environment, mirroring the
	// production/local split of the deployment it talks to.
	if cfg.Environment == "production" {
		cfg.MongoURI = os.Getenv("MONGO_PROD")
	} else {
		cfg.MongoURI = os.Getenv("MONGO_LOCAL")
	}

	portValue := getEnv("PORT", "3000")
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	if cfg.DataStore == "mongo" && cfg.MongoURI == "" {
		if cfg.Environment == "production" {
			return Config{}, fmt.Errorf("no mongo connection string: set MONGO_PROD")
		}
		return Config{}, fmt.Errorf("no mongo connection string: set MONGO_LOCAL")
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return Config{}, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}

	if len(cfg.CookieKeys) == 0 {
		return Config{}, fmt.Errorf("COOKIE_KEYS must contain at least one signing key")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GoogleRedirectURL returns the absolute OAuth callback URL.
func (c Config) GoogleRedirectURL() string {
	return c.BaseURL + googleCallbackPath
}

// UseInMemoryStore returns true if the in-memory repository should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
