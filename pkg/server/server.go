// Package server provides the public entry point for initializing the
// sentrascan server: configuration, telemetry, the scan store, and the
// per-request controller factory wired into the HTTP router.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sentrascan/sentrascan/internal/a2a"
	"github.com/sentrascan/sentrascan/internal/agents"
	"github.com/sentrascan/sentrascan/internal/api"
	"github.com/sentrascan/sentrascan/internal/api/handlers"
	"github.com/sentrascan/sentrascan/internal/config"
	"github.com/sentrascan/sentrascan/internal/controller"
	"github.com/sentrascan/sentrascan/internal/intel"
	"github.com/sentrascan/sentrascan/internal/notify"
	"github.com/sentrascan/sentrascan/internal/report"
	"github.com/sentrascan/sentrascan/internal/store"
	"github.com/sentrascan/sentrascan/internal/telemetry"
	"github.com/sentrascan/sentrascan/pkg/models"
)

// Server holds the initialized sentrascan service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Scans is the scan log store.
	Scans store.ScanStore

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from environment configuration and returns
// a ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the service with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	var scans store.ScanStore
	if cfg.Database.URL != "" {
		scans, err = store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("init scan store: %w", err)
		}
		log.Info().Msg("PostgreSQL scan store initialized")
	} else {
		scans = store.NewMemoryStore()
		log.Info().Msg("In-memory scan store initialized")
	}

	factory := func(creds handlers.Credentials) *controller.Controller {
		registry := BuildRegistry(cfg, creds)
		return controller.New(registry, scans)
	}

	h := handlers.New(scans, factory)
	router := api.NewRouter(cfg, h)

	return &Server{
		Handler:      router,
		Scans:        scans,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// BuildRegistry constructs a fresh agent registry for one scan run,
// applying any per-request credential overrides. Agents carry per-run
// credentials only, so concurrent runs stay isolated.
func BuildRegistry(cfg *config.Config, creds handlers.Credentials) agents.Registry {
	ic := cfg.Intel
	if creds.SerpAPIKey != "" {
		ic.SerpAPIKey = creds.SerpAPIKey
	}
	if creds.GeminiKey != "" {
		ic.GeminiKey = creds.GeminiKey
	}
	ac := cfg.Alert
	if creds.EmailPass != "" {
		ac.EmailPassword = creds.EmailPass
	}

	llm := intel.NewGeminiClient(ic.GeminiKey, ic.Timeout)

	registry := make(agents.Registry)
	registry.Register(agents.NewThreatIntelAgent(
		intel.NewVirusTotalClient(ic.VirusTotalKey, ic.Timeout),
		intel.NewAbuseIPDBClient(ic.AbuseIPDBKey, ic.Timeout),
		intel.NewIPInfoClient(ic.IPInfoToken, ic.Timeout),
	))
	registry.Register(agents.NewOSINTAgent(
		intel.NewHIBPClient(ic.HIBPKey, ic.Timeout),
		intel.NewHunterClient(ic.HunterKey, ic.Timeout),
	))
	registry.Register(agents.NewCorrelationAgent(llm))
	registry.Register(agents.NewRAGAgent(intel.NewSerpAPIClient(ic.SerpAPIKey, ic.Timeout), llm))
	registry.Register(agents.NewReportAgent(report.NewRenderer(cfg.ReportDir)))
	registry.Register(agents.NewSelfTestAgent())
	registry.Register(agents.NewAlertAgent(notify.NewService(ac)))
	return registry
}

// RouteMessage exposes the agent-to-agent routing layer over a registry.
// Kept public so embedding deployments can address individual agents.
func RouteMessage(ctx context.Context, msg models.Message, registry agents.Registry) models.Payload {
	return a2a.Route(ctx, msg, registry)
}
