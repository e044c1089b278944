package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/woundcare/woundcare/internal/autosave"
	"github.com/woundcare/woundcare/internal/config"
	"github.com/woundcare/woundcare/internal/domain/assessment"
	"github.com/woundcare/woundcare/internal/domain/billing"
	"github.com/woundcare/woundcare/internal/domain/patient"
	"github.com/woundcare/woundcare/internal/domain/visit"
	"github.com/woundcare/woundcare/internal/domain/wound"
	"github.com/woundcare/woundcare/internal/platform/auth"
	"github.com/woundcare/woundcare/internal/platform/db"
	"github.com/woundcare/woundcare/internal/platform/middleware"
	"github.com/woundcare/woundcare/internal/platform/notification"
	"github.com/woundcare/woundcare/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "woundcare-server",
		Short: "Wound care documentation API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Snapshot store: Redis when configured, in-memory otherwise. The
	// in-memory store is per-instance, fine for a single node or development.
	var snapshots autosave.Store = autosave.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := autosave.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		snapshots = autosave.NewRedisStore(client, 24*time.Hour)
		logger.Info().Msg("connected to redis snapshot store")
	} else {
		logger.Warn().Msg("REDIS_URL not set; draft snapshots are held in memory")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(cfg.JWTSecret))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")

	// -- Register Domain Handlers --

	assessRepo := assessment.NewRepoPG(pool)
	assessSvc := assessment.NewService(assessRepo, cfg.DepthWarningRatio)
	if len(cfg.WebhookURLs) > 0 {
		assessSvc.SetNotifier(notification.NewWebhookNotifier(cfg.WebhookURLs, logger))
		logger.Info().Int("endpoints", len(cfg.WebhookURLs)).Msg("webhook notifications enabled")
	}
	assessHandler := assessment.NewHandler(assessSvc, snapshots, assessment.Policy{
		AutosaveInterval:    cfg.AutosaveInterval(),
		RemoteDraftInterval: cfg.RemoteDraftInterval(),
		SnapshotFreshness:   cfg.SnapshotFreshness(),
	})
	assessHandler.RegisterRoutes(apiV1)

	patientRepo := patient.NewRepoPG(pool)
	patientHandler := patient.NewHandler(patient.NewService(patientRepo))
	patientHandler.RegisterRoutes(apiV1)

	woundRepo := wound.NewRepoPG(pool)
	woundHandler := wound.NewHandler(wound.NewService(woundRepo, assessRepo))
	woundHandler.RegisterRoutes(apiV1)

	visitRepo := visit.NewRepoPG(pool)
	visitHandler := visit.NewHandler(visit.NewService(visitRepo, assessRepo))
	visitHandler.RegisterRoutes(apiV1)

	billingRepo := billing.NewRepoPG(pool)
	billingHandler := billing.NewHandler(billing.NewService(billingRepo))
	billingHandler.RegisterRoutes(apiV1)

	reportHandler := reporting.NewHandler(pool)
	reportHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
