package server

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shelfline/shelfline/internal/appid"
	"github.com/shelfline/shelfline/internal/observability"
	"github.com/shelfline/shelfline/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	s.registerAPIRoutes()

	// Admin signal endpoint (optional, requires SHELFLINE_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAPIRoutes mounts the versioned inventory API.
func (s *Server) registerAPIRoutes() {
	inv := handlers.NewInventoryHandler(s.deps.Inventory, s.deps.Suggester)

	// A nil *market.Client must stay a nil interface so the handler can
	// detect the unconfigured case.
	var marketAPI handlers.MarketAPI
	if s.deps.Market != nil {
		marketAPI = s.deps.Market
	}
	var syncAPI handlers.SyncAPI
	if s.deps.Syncer != nil {
		syncAPI = s.deps.Syncer
	}
	mkt := handlers.NewMarketHandler(marketAPI, syncAPI)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", inv.ListItems)
			r.Post("/", inv.CreateItem)
			r.Get("/{id}", inv.GetItem)
			r.Put("/{id}", inv.UpdateItem)
			r.Delete("/{id}", inv.DeleteItem)
			r.Get("/{id}/suggestions", inv.Suggestions)
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", inv.ListSales)
			r.Post("/", inv.CreateSale)
			r.Delete("/{id}", inv.DeleteSale)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", inv.ListExpenses)
			r.Post("/", inv.CreateExpense)
			r.Delete("/{id}", inv.DeleteExpense)
		})

		r.Get("/summary", inv.Summary)

		r.Route("/market", func(r chi.Router) {
			r.Get("/stats", mkt.Stats)
			r.Get("/offers", mkt.Offers)
			r.Post("/sync", mkt.SyncReady)
			r.Post("/sync/{id}", mkt.SyncItem)
		})
	})
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	// Get admin token from environment (identity-aware)
	ctx := context.Background()
	identity, _ := appid.Get(ctx)
	envPrefix := "SHELFLINE_"
	if identity != nil && identity.EnvPrefix != "" {
		envPrefix = identity.EnvPrefix
	}

	adminToken := os.Getenv(envPrefix + "ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envPrefix + "ADMIN_TOKEN set)")
		}
		return
	}

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	// Register admin endpoint
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
