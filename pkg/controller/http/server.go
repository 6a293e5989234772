package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/loom/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr           string
	webhookSecret  string
	apiTokenSecret string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithAPITokenSecret enables JWT bearer authentication on the query API
func WithAPITokenSecret(secret string) Option {
	return func(c *config) {
		c.apiTokenSecret = secret
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	triggerUC interfaces.TriggerUseCase,
	repo interfaces.Repository,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth(repo))

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, triggerUC)
	router.Post("/hooks/github/app", webhookHandler.Handle)

	// Run query API
	apiHandler := NewAPIHandler(repo)
	router.Route("/api/v1", func(r chi.Router) {
		if cfg.apiTokenSecret != "" {
			r.Use(AuthMiddleware(cfg.apiTokenSecret))
		}
		r.Get("/runs", apiHandler.ListRuns)
		r.Get("/runs/{runID}", apiHandler.GetRun)
		r.Get("/runs/{runID}/jobs", apiHandler.ListRunJobs)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
