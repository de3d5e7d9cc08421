package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr      string
	Env             string
	DatabaseURL     string
	JWTSecret       string
	TokenTTL        time.Duration
	ProviderTimeout time.Duration

	// Optional bootstrap admin account, seeded at startup when both are set.
	AdminEmail    string
	AdminPassword string

	// Background job intervals; zero disables a job.
	CatalogSyncInterval   time.Duration
	StatusRefreshInterval time.Duration

	ChangeNow ChangeNowConfig
}

type ChangeNowConfig struct {
	BaseURL string
	// APIKey is sent as x-changenow-api-key on every call.
	APIKey string
	// SecondaryKey is sent as x-api-key on privileged endpoints.
	SecondaryKey string
}

// LoadFromEnv reads configuration from environment variables with fallback defaults.
// It also loads `.env` if present (for local development).
func LoadFromEnv() *Config {
	// Load .env if exists, ignore error if no file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, relying on environment variables")
	}

	listenAddr := getEnv("LISTEN_ADDR", ":8080")
	env := getEnv("ENV", "dev")
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is required")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is required")
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		log.Fatalf("[FATAL] Invalid TOKEN_TTL duration: %v", err)
	}

	providerTimeout, err := time.ParseDuration(getEnv("PROVIDER_TIMEOUT", "30s"))
	if err != nil {
		log.Fatalf("[FATAL] Invalid PROVIDER_TIMEOUT duration: %v", err)
	}

	catalogSyncInterval, err := time.ParseDuration(getEnv("CATALOG_SYNC_INTERVAL", "6h"))
	if err != nil {
		log.Fatalf("[FATAL] Invalid CATALOG_SYNC_INTERVAL duration: %v", err)
	}

	statusRefreshInterval, err := time.ParseDuration(getEnv("STATUS_REFRESH_INTERVAL", "2m"))
	if err != nil {
		log.Fatalf("[FATAL] Invalid STATUS_REFRESH_INTERVAL duration: %v", err)
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if (adminEmail == "") != (adminPassword == "") {
		log.Fatal("[FATAL] ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	// Missing provider keys are a warning, not a hard failure: catalog reads
	// work unauthenticated and everything else fails downstream with a
	// provider error.
	apiKey := os.Getenv("CHANGENOW_API_KEY")
	if apiKey == "" {
		log.Println("[WARN] CHANGENOW_API_KEY not set, provider calls will be rejected upstream")
	}
	secondaryKey := os.Getenv("CHANGENOW_X_API_KEY")
	if secondaryKey == "" {
		log.Println("[WARN] CHANGENOW_X_API_KEY not set, privileged provider endpoints unavailable")
	}

	return &Config{
		ListenAddr:      listenAddr,
		Env:             env,
		DatabaseURL:     databaseURL,
		JWTSecret:       jwtSecret,
		TokenTTL:        tokenTTL,
		ProviderTimeout: providerTimeout,

		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,

		CatalogSyncInterval:   catalogSyncInterval,
		StatusRefreshInterval: statusRefreshInterval,
		ChangeNow: ChangeNowConfig{
			BaseURL:      getEnv("CHANGENOW_BASE_URL", "https://api.changenow.io"),
			APIKey:       apiKey,
			SecondaryKey: secondaryKey,
		},
	}
}

// helper to get env with default fallback
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
