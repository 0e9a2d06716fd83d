package platform

import (
	"go.uber.org/zap"

	"canopy/pkg/tenants"
)

// Config holds platform-service specific configuration.
type Config struct {
	Env         string
	BaseDomain  string
	LocalMarker string
	JWTSecret   []byte
}

// App is the platform application container: shared deps and config only.
// Request-scoped work goes through context.
type App struct {
	log   *zap.SugaredLogger
	store tenants.Store
	cfg   Config
}

// New constructs the App. The store is injected; there is no process-wide
// singleton client.
func New(log *zap.SugaredLogger, store tenants.Store, cfg Config) *App {
	if cfg.LocalMarker == "" {
		cfg.LocalMarker = "localhost"
	}
	return &App{log: log, store: store, cfg: cfg}
}
