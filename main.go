// ABOUTME: Entry point for the hived validator service
// ABOUTME: Provides HTTP API compiling job protocols into hived scheduling directives

package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/markalston/hived-validator/config"
	"github.com/markalston/hived-validator/handlers"
	"github.com/markalston/hived-validator/hived"
	"github.com/markalston/hived-validator/logger"
	"github.com/markalston/hived-validator/middleware"
	"github.com/markalston/hived-validator/models"
	"github.com/markalston/hived-validator/services"
)

func main() {
	// Initialize structured logging
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting hived validator")

	units, err := loadCatalog(cfg)
	if err != nil {
		slog.Error("Failed to load resource units", "error", err)
		os.Exit(1)
	}
	slog.Info("Resource units loaded", "leaf_cell_types", len(units))

	client := services.NewHivedClient(cfg.HivedSchedulerURL, services.HivedClientOptions{
		CACert:            cfg.HivedCACert,
		SkipSSLValidation: cfg.HivedSkipSSLValidation,
		AllProxy:          cfg.HivedAllProxy,
		Timeout:           cfg.HivedFetchTimeoutDuration(),
	})
	slog.Info("HiveD scheduler configured", "url", client.BaseURL())
	if cfg.HivedAllProxy != "" {
		slog.Info("HiveD scheduler reached through SOCKS5 proxy")
	}

	validator := hived.NewValidator(client, units, cfg.DefaultVirtualCluster)
	h := handlers.NewHandler(cfg, validator, units)

	limits := middleware.NewLimits(cfg.RateLimitEnabled, cfg.RateLimitWrite, cfg.RateLimitDefault)
	if !cfg.RateLimitEnabled {
		slog.Warn("Rate limiting disabled")
	}
	mux := handlers.NewServeMux(h, cfg.CORSAllowedOrigins, limits)

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg *config.Config) (models.ResourceUnits, error) {
	if cfg.ResourceUnitsFile != "" {
		return services.LoadResourceUnits(cfg.ResourceUnitsFile)
	}
	return services.ParseResourceUnits([]byte(cfg.ResourceUnits))
}
