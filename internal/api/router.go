package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/informed/internal/api/handlers"
	mw "github.com/Harshitk-cp/informed/internal/api/middleware"
	"github.com/Harshitk-cp/informed/internal/buildconfig"
	"github.com/Harshitk-cp/informed/internal/config"
	"github.com/Harshitk-cp/informed/internal/domain"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/metrics"
	"github.com/Harshitk-cp/informed/internal/service"
	"github.com/Harshitk-cp/informed/internal/store"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Sessions     *service.SessionService
	Expirer      *service.ExpirerService
	Metrics      *metrics.Metrics
	db           *pgxpool.Pool
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the engine, the session layer and the HTTP surface around kb.
// db is optional and only used for health checks when the knowledge base was
// loaded from Postgres.
func NewApp(kb *knowledge.Base, db *pgxpool.Pool, logger *zap.Logger) *App {
	m := metrics.New()

	// Engine
	engine := inference.New(kb,
		inference.WithLogger(logger),
		inference.WithObserver(m),
		inference.WithParallelism(config.SelectionWorkers()),
	)

	// Sessions
	sessionStore := store.NewSessionStore()
	sessionSvc := service.NewSessionService(sessionStore, engine, service.Policy{Threshold: config.ConfidenceThreshold()}, logger)
	sessionSvc.SetRecorder(m)

	expirerSvc := service.NewExpirerService(sessionStore, logger)
	expirerSvc.SetInterval(config.SessionSweepInterval())
	expirerSvc.SetIdleTTL(config.SessionIdleTTL())

	// Handlers
	knowledgeHandler := handlers.NewKnowledgeHandler(kb)
	inferenceHandler := handlers.NewInferenceHandler(engine)
	sessionHandler := handlers.NewSessionHandler(sessionSvc, kb)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sessions:  sessionSvc,
		Expirer:   expirerSvc,
		Metrics:   m,
		db:        db,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, m)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Operational endpoints (no auth)
	r.Get("/health", app.healthHandler())
	r.Get("/version", versionHandler)
	r.Get("/stats", app.statsHandler())
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/diagnoses", knowledgeHandler.Diagnoses)
			r.Get("/symptoms", knowledgeHandler.Symptoms)
			r.Get("/cpt", knowledgeHandler.CPT)
		})

		r.Route("/inference", func(r chi.Router) {
			r.Post("/entropy", inferenceHandler.Entropy)
			r.Post("/update", inferenceHandler.Update)
			r.Post("/information-gain", inferenceHandler.InformationGain)
			r.Post("/next-question", inferenceHandler.NextQuestion)
		})

		r.Get("/analysis/mutual-information", inferenceHandler.MutualInformation)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Start)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.End)
				r.Get("/next", sessionHandler.Next)
				r.Post("/answers", sessionHandler.Answer)
				r.Post("/reset", sessionHandler.Reset)
			})
		})
	})

	return app
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if app.db != nil {
			if err := app.db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildconfig.Get())
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure implementations satisfy interfaces at compile time.
var (
	_ domain.SessionStore = (*store.SessionStore)(nil)
	_ inference.Observer  = (*metrics.Metrics)(nil)
	_ service.Recorder    = (*metrics.Metrics)(nil)
	_ mw.RequestObserver  = (*metrics.Metrics)(nil)
)
