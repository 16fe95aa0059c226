// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-digest-reporter/internal/api"
	"github-digest-reporter/internal/config"
	"github-digest-reporter/internal/github"
	"github-digest-reporter/internal/members"
	"github-digest-reporter/internal/model"
	"github-digest-reporter/internal/registry"
	"github-digest-reporter/internal/triage"
	"github-digest-reporter/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully", "registry_source", cfg.RegistrySource)

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize the registration source
	source, cleanup, err := newRegistrySource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// 5. Initialize application components
	ghClient := github.NewClient(cfg.GithubToken, cfg.GithubOrg, logger)
	sender := webhook.NewClient(cfg.HTTPTimeout, logger)
	reporter := triage.NewReporter(ghClient, source, sender, logger, triage.Options{
		LookbackWeeks:   cfg.LookbackWeeks,
		ExcludedLabels:  cfg.ExcludedLabels,
		SearchResultCap: cfg.SearchResultCap,
		IncludeIssues:   cfg.ReportSections == config.SectionsAll,
		Interval:        cfg.ReportInterval,
	})
	refresher := members.NewRefresher(ghClient, source, logger, cfg.RefreshInterval)

	// 6. Start the background loops and the ops server
	go reporter.Start(ctx)
	go refresher.Start(ctx)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewRouter(source, reporter, refresher, logger),
	}
	go func() {
		logger.Info("Ops server listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ops server error", "error", err)
		}
	}()

	// 7. Wait for shutdown signal
	logger.Info("Application started. Waiting for shutdown signal...")
	<-ctx.Done()
	logger.Info("Shutdown signal received. Exiting.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops server shutdown error", "error", err)
	}

	return nil
}

// newRegistrySource builds the configured registration source: the postgres
// registry (with migrations applied) or the static local fixture.
func newRegistrySource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (registry.Source, func(), error) {
	switch cfg.RegistrySource {
	case config.SourcePostgres:
		dbpool, err := pgxpool.New(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Database connection established")

		if err := runMigrations(cfg.DBURL); err != nil {
			dbpool.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations applied successfully")

		return registry.NewPostgresSource(dbpool), dbpool.Close, nil

	case config.SourceStatic:
		fixture := model.Registration{
			ID:      cfg.StaticRepo,
			Repo:    cfg.StaticRepo,
			Team:    cfg.StaticRepo,
			Name:    cfg.StaticName,
			Webhook: cfg.StaticWebhook,
			Members: cfg.StaticMembers,
		}
		if fixture.Name == "" {
			fixture.Name = cfg.StaticRepo
		}
		return registry.NewStaticSource([]model.Registration{fixture}), func() {}, nil
	}

	// LoadConfig validates the source selector; this is unreachable.
	return nil, nil, fmt.Errorf("unsupported registry source %q", cfg.RegistrySource)
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
