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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"subaacare-server/internal/config"
	"subaacare-server/internal/jobs"
	"subaacare-server/internal/middleware"
	"subaacare-server/internal/models"
	"subaacare-server/internal/routes"
	"subaacare-server/internal/services"
	"subaacare-server/internal/sessions"
	"subaacare-server/internal/store"
	"subaacare-server/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "subaacare",
		Short:        "Care booking API for patients and home-care professionals",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is what every command needs: configuration, a logger and the database.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *store.Store
}

func setup() (*app, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := models.Open(cfg.Database.Models())
	if err != nil {
		return nil, err
	}
	log.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	return &app{cfg: cfg, log: log, db: db, store: store.New(db)}, nil
}

func (a *app) close() {
	if err := models.Close(a.db); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// services builds the service layer. A nil denylist disables logout
// revocation.
func (a *app) services(denylist sessions.Denylist) routes.Services {
	tokens := utils.NewTokenManager(a.cfg.JWTSecret, a.cfg.SessionTTL())
	return routes.Services{
		Auth:         services.NewAuthService(a.store, tokens, denylist, a.log),
		Approval:     services.NewApprovalService(a.store, a.log),
		Availability: services.NewAvailabilityService(a.store, a.log),
		Bookings:     services.NewBookingService(a.store, a.log, a.cfg.BookingRequireSlot),
		Ratings:      services.NewRatingService(a.store, a.log),
		Documents:    services.NewDocumentService(a.store, a.log, a.cfg.MaxDocumentBytes),
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()
			return runServer(a)
		},
	}
}

func runServer(a *app) error {
	cfg, log := a.cfg, a.log

	if err := models.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var denylist sessions.Denylist
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := sessions.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			return err
		}
		defer client.Close()
		denylist = sessions.NewRedisDenylist(client)
		log.Info("session denylist enabled", zap.String("redis", cfg.RedisAddr))
	}
	svc := a.services(denylist)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimitPerMin, cfg.AuthRateLimitBurst)
	routes.SetupRoutes(router, svc, a.store, limiter, log)

	var scheduler *jobs.Scheduler
	if cfg.HousekeepingSchedule != "" {
		s, err := jobs.NewScheduler(cfg.HousekeepingSchedule, svc.Bookings, log)
		if err != nil {
			return err
		}
		scheduler = s
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
