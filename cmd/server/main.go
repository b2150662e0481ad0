package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Harshitk-cp/informed/internal/api"
	"github.com/Harshitk-cp/informed/internal/buildconfig"
	"github.com/Harshitk-cp/informed/internal/config"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/store"
)

func main() {
	_ = config.Load()

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	kb, pool, err := loadKnowledge(ctx, logger)
	if err != nil {
		logger.Fatal("failed to load knowledge base", zap.String("source", config.KnowledgeSource()), zap.Error(err))
	}
	if pool != nil {
		defer pool.Close()
	}
	logger.Info("knowledge base loaded",
		zap.String("source", config.KnowledgeSource()),
		zap.Int("diagnoses", kb.NumDiagnoses()),
		zap.Int("symptoms", kb.NumSymptoms()),
		zap.String("version", buildconfig.Version()))

	app := api.NewApp(kb, pool, logger)

	// Start background services
	app.Expirer.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.Float64("confidence_threshold", app.Sessions.Policy().Threshold))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	app.Expirer.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// loadKnowledge builds the knowledge base from the configured source. The
// pool is returned only for the postgres source and must be closed by the
// caller.
func loadKnowledge(ctx context.Context, logger *zap.Logger) (*knowledge.Base, *pgxpool.Pool, error) {
	switch src := config.KnowledgeSource(); src {
	case config.KnowledgeBuiltin:
		return knowledge.Reference(), nil, nil

	case config.KnowledgeYAML:
		path := config.KnowledgeBasePath()
		if path == "" {
			return nil, nil, fmt.Errorf("KNOWLEDGE_BASE_PATH is required for the yaml source")
		}
		kb, err := knowledge.LoadFile(path)
		return kb, nil, err

	case config.KnowledgePostgres:
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres source")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		logger.Info("connected to database")

		kb, err := store.NewKnowledgeStore(pool).Load(ctx)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return kb, pool, nil

	default:
		return nil, nil, fmt.Errorf("unknown knowledge source %q", src)
	}
}
