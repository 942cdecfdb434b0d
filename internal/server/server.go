// Package server provides the HTTP server and routing for draftboard.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/draftboard/internal/di"
	settingshandlers "github.com/aristath/draftboard/internal/modules/settings/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Config holds server configuration
type Config struct {
	Port      int
	DevMode   bool
	DataDir   string
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	container *di.Container
	pipeline  *guardedPipeline
	cfg       Config
	log       zerolog.Logger
	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config, log zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		container: cfg.Container,
		pipeline:  newGuardedPipeline(cfg.Container.Pipeline),
		cfg:       cfg,
		log:       log.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // event streams stay open; API routes carry their own timeout
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", s.container.Metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Event feeds are long-lived and sit outside the request timeout
		eventsStream := NewEventsStreamHandler(s.container.EventManager, s.log)
		r.Get("/events/stream", eventsStream.ServeHTTP)
		eventsWS := NewEventsWSHandler(s.container.EventManager, s.cfg.DevMode, s.log)
		r.Get("/events/ws", eventsWS.ServeHTTP)

		r.Group(func(r chi.Router) {
			// Pipeline runs over a full source set can be slow
			r.Use(middleware.Timeout(5 * time.Minute))

			playerHandlers := NewPlayerHandlers(s.container.PlayerRepo, s.log)
			r.Route("/players/{population}", func(r chi.Router) {
				r.Get("/", playerHandlers.HandleListPlayers)
				r.Get("/columns", playerHandlers.HandleColumns)
				r.Get("/teams", playerHandlers.HandleTeams)
			})

			draftHandlers := NewDraftHandlers(s.container.DraftService, s.container.SettingsService, s.container.Metrics, s.log)
			r.Route("/draft", func(r chi.Router) {
				r.Post("/", draftHandlers.HandleDraft)
				r.Post("/undo", draftHandlers.HandleUndo)
				r.Get("/log", draftHandlers.HandleLog)
			})
			r.Get("/roster/{team}", draftHandlers.HandleRoster)

			configHandler := settingshandlers.NewHandler(s.container.SettingsService, s.log)
			configHandler.SetRecalculator(s.pipeline)
			r.Route("/config", func(r chi.Router) {
				r.Get("/", configHandler.HandleGetConfig)
				r.Put("/", configHandler.HandleUpdateConfig)
				r.Get("/keys", configHandler.HandleListSettings)
			})

			pipelineHandlers := NewPipelineHandlers(s.pipeline, s.log)
			r.Post("/pipeline/run", pipelineHandlers.HandleRun)
			r.Post("/pipeline/train", pipelineHandlers.HandleTrain)
			r.Post("/history/import", pipelineHandlers.HandleImportHistory)

			systemHandlers := NewSystemHandlers(s.container.DB, s.cfg.DataDir, s.startedAt, s.log)
			r.Route("/system", func(r chi.Router) {
				r.Get("/status", systemHandlers.HandleSystemStatus)
				r.Get("/database", systemHandlers.HandleDatabaseStats)
				r.Get("/disk", systemHandlers.HandleDiskUsage)
			})

			backupHandlers := NewBackupHandlers(s.container.BackupService, s.log)
			r.Route("/backups", func(r chi.Router) {
				r.Get("/", backupHandlers.HandleListBackups)
				r.Post("/", backupHandlers.HandleTriggerBackup)
			})
		})
	})
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests and records them by route pattern
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.container.Metrics.RecordHTTPRequest(route, r.Method, status, time.Since(start))

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
