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

	"logistics_manager/internal/app"
	"logistics_manager/internal/appstate"
	"logistics_manager/internal/config"
	"logistics_manager/internal/database"
	"logistics_manager/internal/events"
	"logistics_manager/internal/handlers"
	"logistics_manager/internal/logger"
	"logistics_manager/internal/metrics"
	"logistics_manager/internal/migrations"
	"logistics_manager/internal/redis"
	"logistics_manager/internal/repository"
	"logistics_manager/internal/services"
	"logistics_manager/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "logistics-manager",
		Short:        "Logistics manager API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	var opts migrations.Options
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database and create the default data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Initialize(cfg.DatabaseURL, logger.GormLevel(cfg.LogLevel), log)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			return migrations.Run(ctx, db, opts, log)
		},
	}
	cmd.Flags().StringVar(&opts.AdminPassword, "admin-password", os.Getenv("ADMIN_PASSWORD"), "password for a newly created admin user")
	cmd.Flags().StringVar(&opts.AdminEmail, "admin-email", "", "email for a newly created admin user")
	cmd.Flags().StringVar(&opts.CompanyName, "company", "", "company name stored in the settings")
	return cmd
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.DatabaseURL, logger.GormLevel(cfg.LogLevel), log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	store := appstate.New(rdb, repository.NewSettingsRepository(db), cfg.SessionTTL(), log)
	if err := store.Load(ctx); err != nil {
		return fmt.Errorf("failed to load application state: %w", err)
	}
	go func() {
		if err := store.Watch(ctx, rdb, nil); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("settings watch stopped", zap.Error(err))
		}
	}()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic, log)
		log.Info("publishing shipment events", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	var sender services.MessageSender
	if cfg.WhatsAppEnabled {
		sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		log.Info("whatsapp gateway not configured, notifications disabled")
	}

	m := metrics.New()
	svc := app.Build(app.Deps{
		DB:            db,
		Redis:         rdb,
		Store:         store,
		Publisher:     publisher,
		Sender:        sender,
		Observer:      m,
		Recorder:      m,
		PriceTableTTL: cfg.PriceTableTTL(),
		Log:           log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), m.Middleware())
	router.GET("/metrics", gin.WrapH(m.Handler()))

	checks := map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
		"redis":    rdb.Ping,
	}
	handlers.NewAPIHandler(svc, checks, log).Register(router)
	handlers.NewWhatsAppHandler(svc.Shipments, sender, log).Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.ServerPort))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
