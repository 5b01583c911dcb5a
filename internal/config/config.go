package config

import (
	"encoding/json"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	ServerAddress string   `json:"serverAddress"`
	DatabasePath  string   `json:"databasePath"`
	DatabaseURL   string   `json:"databaseUrl"`
	ArtAPI        ArtAPI   `json:"artApi"`
	Security      Security `json:"security"`
}

// ArtAPI configuration for the remote artwork catalog
type ArtAPI struct {
	SearchBaseURL  string `json:"searchBaseUrl"`
	DetailBaseURL  string `json:"detailBaseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Timeout returns the gateway request timeout
func (a ArtAPI) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Security configuration
type Security struct {
	APIKeyHeader string `json:"apiKeyHeader"`
	// BootstrapAPIKey, when set, seeds a first user at startup so the
	// service is usable before an external registration flow exists.
	BootstrapAPIKey string `json:"bootstrapApiKey"`
	BootstrapEmail  string `json:"bootstrapEmail"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":5000",
		DatabasePath:  "artsearch.db",
		ArtAPI: ArtAPI{
			SearchBaseURL:  "https://api.artic.edu/api/v1/artworks/search",
			DetailBaseURL:  "https://api.artic.edu/api/v1/artworks",
			TimeoutSeconds: 15,
		},
		Security: Security{
			APIKeyHeader:   "X-API-Key",
			BootstrapEmail: "admin@localhost",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if searchURL := os.Getenv("ART_API_SEARCH_URL"); searchURL != "" {
		cfg.ArtAPI.SearchBaseURL = searchURL
	}
	if detailURL := os.Getenv("ART_API_DETAIL_URL"); detailURL != "" {
		cfg.ArtAPI.DetailBaseURL = detailURL
	}
	if timeout := os.Getenv("ART_API_TIMEOUT_SECONDS"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.ArtAPI.TimeoutSeconds = seconds
		}
	}
	if key := os.Getenv("BOOTSTRAP_API_KEY"); key != "" {
		cfg.Security.BootstrapAPIKey = key
	}
	if email := os.Getenv("BOOTSTRAP_EMAIL"); email != "" {
		cfg.Security.BootstrapEmail = email
	}

	return cfg, nil
}
