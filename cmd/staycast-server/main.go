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
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/staycast/staycast/internal/config"
	"github.com/staycast/staycast/internal/domain/facility"
	"github.com/staycast/staycast/internal/domain/prediction"
	"github.com/staycast/staycast/internal/platform/artifacts"
	"github.com/staycast/staycast/internal/platform/auth"
	"github.com/staycast/staycast/internal/platform/db"
	"github.com/staycast/staycast/internal/platform/metrics"
	"github.com/staycast/staycast/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "staycast-server",
		Short: "Hospital length-of-stay prediction API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(modelCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction API server",
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
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
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
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required for migrations")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect the model artifact bundle",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Load and validate the artifact bundle without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dir = cfg.ArtifactsDir
			}

			bundle, err := artifacts.Load(dir)
			if err != nil {
				return fmt.Errorf("artifact bundle invalid: %w", err)
			}

			fmt.Printf("Artifact bundle OK.\n")
			fmt.Printf("  model version:  %s\n", bundle.Manifest.ModelVersion)
			fmt.Printf("  trained at:     %s\n", bundle.Manifest.TrainedAt.Format(time.RFC3339))
			fmt.Printf("  features:       %d\n", len(bundle.FeatureNames))
			fmt.Printf("  residual RMSE:  %.4f\n", bundle.Manifest.ResidualRMSE)
			fmt.Printf("  diagnosis sets: %d MDC codes, %d severity levels\n",
				len(bundle.MDCCodes), len(bundle.SeverityLos))
			return nil
		},
	}
	verifyCmd.Flags().String("dir", "", "Artifact bundle directory (defaults to ARTIFACTS_DIR)")
	cmd.AddCommand(verifyCmd)

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

	// Artifact bundle. A broken bundle is fatal: serving without the model
	// or with mismatched encodings would silently produce garbage.
	bundle, err := artifacts.Load(cfg.ArtifactsDir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.ArtifactsDir).Msg("failed to load artifact bundle")
	}
	logger.Info().
		Str("model_version", bundle.Manifest.ModelVersion).
		Int("features", len(bundle.FeatureNames)).
		Msg("artifact bundle loaded")

	// Database is optional: without it predictions are served but not
	// persisted, and the facility catalog is unavailable.
	ctx := context.Background()
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set; prediction log and facility catalog disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	if cfg.MetricsEnabled {
		e.Use(metrics.HTTPMiddleware())
	}

	// Auth guards only the admin endpoints. Health probes, /metrics,
	// predictions and the catalog reads stay public.
	var authn echo.MiddlewareFunc
	if cfg.ResolvedAuthMode() == "development" {
		authn = auth.DevAuthMiddleware()
	} else {
		authn = auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.AuthSecret),
		})
	}
	adminOnly := []echo.MiddlewareFunc{authn, auth.RequireRole("admin")}

	// Prediction service
	var logRepo prediction.LogRepository
	if pool != nil {
		logRepo = prediction.NewLogRepoPG(pool)
	}
	predSvc, err := prediction.NewService(bundle, logRepo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build prediction service")
	}
	validator := prediction.NewValidator(bundle.MDCDescriptions())
	predHandler := prediction.NewHandler(predSvc, validator, bundle.FeatureNames, logger)

	api := e.Group("/api/v1")
	predHandler.RegisterRoutes(api, adminOnly...)

	// Facility catalog
	if pool != nil {
		facSvc := facility.NewService(facility.NewRepoPG(pool))
		facility.NewHandler(facSvc).RegisterRoutes(api, adminOnly...)
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":        "ok",
			"version":       version,
			"model_version": bundle.Manifest.ModelVersion,
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	if cfg.MetricsEnabled {
		e.GET("/metrics", metrics.Handler())
	}

	// Graceful shutdown
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

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
