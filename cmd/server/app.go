package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/lexio-api/internal/config"
	"github.com/phrazzld/lexio-api/internal/domain/achievement"
	"github.com/phrazzld/lexio-api/internal/domain/srs"
	"github.com/phrazzld/lexio-api/internal/events"
	"github.com/phrazzld/lexio-api/internal/platform/postgres"
	"github.com/phrazzld/lexio-api/internal/service/progress"
)

// application holds the assembled dependencies of the running server.
type application struct {
	config          *config.Config
	logger          *slog.Logger
	db              *sql.DB
	progressService progress.ProgressService
	emitter         *events.InMemoryEventEmitter
}

// newApplication wires the full dependency graph: database, stores, the
// progress service and the notification emitter.
func newApplication(cfg *config.Config, appLogger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	progressStore := postgres.NewPostgresWordProgressStore(db, appLogger)
	streakStore := postgres.NewPostgresStreakStore(db, appLogger)
	activityStore := postgres.NewPostgresActivityStore(db, appLogger)
	achievementStore := postgres.NewPostgresAchievementStore(db, appLogger)

	emitter := events.NewInMemoryEventEmitter(appLogger)
	emitter.RegisterHandler(events.NewLoggingHandler(appLogger))

	progressService := progress.NewProgressService(
		db,
		progressStore,
		streakStore,
		activityStore,
		achievementStore,
		srs.NewDefaultService(),
		achievement.DefaultCatalog(),
		emitter,
		appLogger,
	)

	return &application{
		config:          cfg,
		logger:          appLogger,
		db:              db,
		progressService: progressService,
		emitter:         emitter,
	}, nil
}

// setupDatabase establishes a connection to the database and configures the
// connection pool. Returns the database connection if successful, or an error
// if the connection fails.
func setupDatabase(cfg *config.Config, appLogger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool with reasonable defaults
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLogger.Info("Database connection established")
	return db, nil
}

// run starts the HTTP server with graceful shutdown support. It blocks until
// the server stops, either on SIGINT/SIGTERM or on context cancellation.
func (app *application) run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine to allow for graceful shutdown
	go func() {
		app.logger.Info("Starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("Server failed", slog.String("error", err.Error()))
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("Shutting down server...")
	case <-serverCtx.Done():
		app.logger.Info("Server context canceled, shutting down...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", slog.String("error", err.Error()))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("Server shutdown completed")
	return nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection",
				slog.String("error", err.Error()))
		}
	}
}
