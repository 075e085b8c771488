package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/cafe-tables/config"
	"github.com/yeremiapane/cafe-tables/database"
	"github.com/yeremiapane/cafe-tables/hub"
	"github.com/yeremiapane/cafe-tables/middlewares"
	"github.com/yeremiapane/cafe-tables/router"
	"github.com/yeremiapane/cafe-tables/services"
	"github.com/yeremiapane/cafe-tables/store"
	"github.com/yeremiapane/cafe-tables/telemetry"
	"github.com/yeremiapane/cafe-tables/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "cafe-tables"

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTelemetry := telemetry.Setup(serviceName, cfg.OTLPEndpoint, cfg.OTLPInsecure)

	st, err := openStore(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to open table store: %v", err)
	}

	h := hub.New()
	notifier := services.NewNotifier(cfg.NotifyProvider, cfg.NotifyWebhookURL, cfg.NotifyWebhookToken)

	deps := router.NewDeps(st, h, notifier)
	deps.Coordinator.Location = cfg.Location
	deps.RateLimiter = middlewares.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	deps.CORSOrigin = cfg.CORSOrigin

	monitor := services.NewProgressMonitor(st, h)
	monitor.Interval = cfg.ProgressInterval
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(deps)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("shutdown error: %v", err)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		utils.ErrorLogger.Errorf("telemetry shutdown error: %v", err)
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		return store.NewMemoryStore(), nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}
