// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Host-based tenant resolution
	BaseDomain  string // platform root domain, e.g. tenant.example.net
	LocalMarker string // development host suffix (default "localhost")

	// Internal directory lookup (empty -> in-process store lookups)
	DirectoryURL     string
	DirectoryTimeout time.Duration
	ResolveCacheTTL  time.Duration // 0 disables the host->tenant cache

	// Auth
	JWTSecret string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// Optional YAML tenant seed applied at startup
	TenantSeedFile string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:              env("CANOPY_ENV", "dev"),
		HTTPAddr:         env("CANOPY_HTTP_ADDR", ":8080"),
		BaseDomain:       env("BASE_DOMAIN", ""),
		LocalMarker:      env("LOCAL_MARKER", "localhost"),
		DirectoryURL:     env("DIRECTORY_URL", ""),
		DirectoryTimeout: envDur("DIRECTORY_TIMEOUT_MS", 1500) * time.Millisecond,
		ResolveCacheTTL:  envDur("RESOLVE_CACHE_TTL_SEC", 0) * time.Second,
		JWTSecret:        env("JWT_SECRET", ""),
		RedisURL:         env("REDIS_URL", ""),
		DatabaseURL:      env("DATABASE_URL", ""),
		TenantSeedFile:   env("TENANT_SEED_FILE", ""),
	}
	if cfg.BaseDomain == "" {
		log.Println("[WARN] BASE_DOMAIN not set — only localhost subdomains and custom domains will resolve")
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set — using in-memory tenant store for dev")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
		log.Println("[WARN] JWT_SECRET not set — using insecure dev secret")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
