// Package config loads and validates application configuration from
// environment variables, optionally seeded from .env files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends selectable with CATALOG_BACKEND.
const (
	BackendPostgres      = "postgres"
	BackendElasticsearch = "elasticsearch"
)

// Config holds all configuration values for the API server and the seed
// command. Values are populated by Load from environment variables.
type Config struct {
	// Env names the deployment environment (APP_ENV). Defaults to "development".
	Env string

	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// CatalogBackend is BackendPostgres (default) or BackendElasticsearch.
	CatalogBackend string

	// DatabaseURL is the PostGIS connection string. Required for the
	// postgres backend.
	DatabaseURL string

	// ElasticsearchURL is the cluster address. Required for the
	// elasticsearch backend.
	ElasticsearchURL string
	// ElasticsearchIndex defaults to "stores".
	ElasticsearchIndex string

	GoogleAPIKey      string
	MelhorEnvioAPIKey string

	ViaCEPBaseURL      string
	GoogleMapsBaseURL  string
	MelhorEnvioBaseURL string

	// UpstreamTimeout bounds every call to ViaCEP, Google Maps and
	// Melhor Envio. Defaults to 10s.
	UpstreamTimeout time.Duration
}

// Load reads configuration from environment variables and returns a Config.
// Before reading, it loads .env.{APP_ENV}.local and .env when present;
// variables already set in the environment win.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	return load(true)
}

// LoadCatalog is Load for tools that only touch the store catalog: the
// upstream API keys are not required.
func LoadCatalog() (Config, error) {
	return load(false)
}

func load(requireUpstream bool) (Config, error) {
	env := getEnv("APP_ENV", "development")
	for _, f := range []string{".env." + env + ".local", ".env"} {
		// Missing files are expected outside local development.
		_ = godotenv.Load(f)
	}

	cfg := Config{
		Env:                env,
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		CatalogBackend:     strings.ToLower(getEnv("CATALOG_BACKEND", BackendPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		ElasticsearchURL:   os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "stores"),
		GoogleAPIKey:       os.Getenv("GOOGLE_API_KEY"),
		MelhorEnvioAPIKey:  os.Getenv("MELHORENVIO_API_KEY"),
		ViaCEPBaseURL:      getEnv("VIACEP_BASE_URL", "https://viacep.com.br"),
		GoogleMapsBaseURL:  getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com"),
		MelhorEnvioBaseURL: getEnv("MELHORENVIO_BASE_URL", "https://melhorenvio.com.br"),
	}

	timeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid UPSTREAM_TIMEOUT %q: must be a positive duration", os.Getenv("UPSTREAM_TIMEOUT"))
	}
	cfg.UpstreamTimeout = timeout

	var missing []string
	switch cfg.CatalogBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendElasticsearch:
		if cfg.ElasticsearchURL == "" {
			missing = append(missing, "ELASTICSEARCH_URL")
		}
	default:
		return Config{}, fmt.Errorf("invalid CATALOG_BACKEND %q: want %s or %s",
			cfg.CatalogBackend, BackendPostgres, BackendElasticsearch)
	}
	if requireUpstream && cfg.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if requireUpstream && cfg.MelhorEnvioAPIKey == "" {
		missing = append(missing, "MELHORENVIO_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
