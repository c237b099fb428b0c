package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/campuscare/campuscare/internal/config"
	"github.com/campuscare/campuscare/internal/domain/identity"
	"github.com/campuscare/campuscare/internal/domain/notes"
	"github.com/campuscare/campuscare/internal/domain/scheduling"
	"github.com/campuscare/campuscare/internal/domain/screening"
	"github.com/campuscare/campuscare/internal/platform/auth"
	"github.com/campuscare/campuscare/internal/platform/db"
	"github.com/campuscare/campuscare/internal/platform/lock"
	"github.com/campuscare/campuscare/internal/platform/middleware"
)

// studentUpserterAdapter adapts the identity service to the
// screening.StudentUpserter interface, avoiding circular imports between
// the screening and identity packages.
type studentUpserterAdapter struct {
	svc *identity.Service
}

func (a *studentUpserterAdapter) UpsertByRegistration(ctx context.Context, reg screening.StudentRegistration) (uuid.UUID, error) {
	st, err := a.svc.Upsert(ctx, identity.UpsertInput{
		FullName:           reg.FullName,
		Age:                reg.Age,
		Phone:              reg.Phone,
		RegistrationNumber: reg.RegistrationNumber,
		Program:            reg.Program,
		Term:               reg.Term,
		TelegramID:         reg.TelegramID,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return st.ID, nil
}

// screeningDirectoryAdapter adapts the screening service to the
// scheduling.ScreeningDirectory interface.
type screeningDirectoryAdapter struct {
	svc *screening.Service
}

func (a *screeningDirectoryAdapter) StudentForScreening(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	sc, err := a.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, screening.ErrNotFound) {
			return uuid.Nil, scheduling.ErrScreeningNotFound
		}
		return uuid.Nil, err
	}
	return sc.StudentID, nil
}

func (a *screeningDirectoryAdapter) MarkConverted(ctx context.Context, id uuid.UUID) error {
	return a.svc.UpdateStatus(ctx, id, screening.StatusConverted)
}

// appointmentDirectoryAdapter adapts the scheduling service to the
// notes.AppointmentDirectory interface.
type appointmentDirectoryAdapter struct {
	svc *scheduling.Service
}

func (a *appointmentDirectoryAdapter) StudentForAppointment(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error) {
	appt, err := a.svc.Get(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, scheduling.ErrNotFound) {
			return uuid.Nil, notes.ErrAppointmentNotFound
		}
		return uuid.Nil, err
	}
	return appt.StudentID, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "campuscare-server",
		Short: "Campus mental health operations API server",
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

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	clinicTZ, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load clinic time zone")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Booking locker. Without Redis the serializable transaction check
	// still guarantees conflict-free bookings; the lock only serializes
	// concurrent attempts on the same professional earlier.
	var locker lock.Locker = lock.Noop{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, time.Duration(cfg.LockTTLSeconds)*time.Second)
		logger.Info().Msg("redis booking locks enabled")
	} else {
		logger.Warn().Msg("REDIS_URL not set; per-professional booking locks disabled")
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
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	// API group
	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// -- Register Domain Handlers --

	// Identity domain
	studentRepo := identity.NewRepoPG(pool)
	identitySvc := identity.NewService(studentRepo)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(api)

	// Screening domain
	screeningRepo := screening.NewRepoPG(pool)
	screeningSvc := screening.NewService(screeningRepo, &studentUpserterAdapter{svc: identitySvc})
	screeningHandler := screening.NewHandler(screeningSvc)
	screeningHandler.RegisterRoutes(api)

	// Scheduling domain
	policy, err := scheduling.ParseWindowPolicy(cfg.WindowPolicy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid window policy")
	}
	window := scheduling.ServiceWindow{
		Location:    clinicTZ,
		OpenHour:    cfg.WindowOpenHour,
		CloseHour:   cfg.WindowCloseHour,
		StepMinutes: cfg.BookingStepMin,
		Policy:      policy,
	}
	schedRepo := scheduling.NewRepoPG(pool)
	schedSvc := scheduling.NewService(schedRepo, &screeningDirectoryAdapter{svc: screeningSvc},
		window, locker, cfg.AutoConfirm, logger)
	schedHandler := scheduling.NewHandler(schedSvc)
	schedHandler.RegisterRoutes(api)

	// Session notes domain
	noteRepo := notes.NewRepoPG(pool)
	noteSvc := notes.NewService(noteRepo, &appointmentDirectoryAdapter{svc: schedSvc})
	noteHandler := notes.NewHandler(noteSvc)
	noteHandler.RegisterRoutes(api)

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
