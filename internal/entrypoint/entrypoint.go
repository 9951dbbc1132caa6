package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almasmith/mercer-library/internal/audit"
	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/config"
	"github.com/almasmith/mercer-library/internal/database"
	auditrepo "github.com/almasmith/mercer-library/internal/database/audit"
	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/database/favourites"
	"github.com/almasmith/mercer-library/internal/database/reads"
	"github.com/almasmith/mercer-library/internal/database/statsversion"
	"github.com/almasmith/mercer-library/internal/database/users"
	http_controllers "github.com/almasmith/mercer-library/internal/http"
	"github.com/almasmith/mercer-library/internal/library"
	"github.com/almasmith/mercer-library/internal/logging"
	"github.com/almasmith/mercer-library/internal/realtime"
	"github.com/almasmith/mercer-library/internal/scheduler"
	"github.com/almasmith/mercer-library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs handler until SIGINT or SIGTERM, then shuts down within the
// configured timeout. onShutdown runs before the server stops accepting
// requests so open event streams can end first.
func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.WithError(err).Fatal("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.WithError(err).Error("Server Shutdown")
	}

	logging.Logger.Info("Server exiting")
}

// Run wires the application from cfg and serves it until a shutdown signal.
func Run(cfg *config.Config, version string) {
	logging.Logger.WithField("version", version).Info("Starting Mercer Library API")

	db, err := database.Open(cfg.Database)
	if err != nil {
		logging.Logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Logger.WithError(err).Error("Error closing database")
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	statsRepo := statsversion.NewRepository(db.DB)

	hub := realtime.NewHub(cfg.Realtime.BufferSize)

	var taskClient *tasks.Client
	var housekeeping *scheduler.HousekeepingScheduler
	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks))
		if err != nil {
			logging.Logger.WithError(err).Fatal("Failed to initialize task queue")
		}
		defer taskClient.Close()

		taskClient.Register(
			tasks.NewStatsBumpQueue(statsRepo, hub),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)
		go taskClient.Start(taskCtx)

		housekeeping = scheduler.NewHousekeepingScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := housekeeping.Start(taskCtx); err != nil {
			logging.Logger.WithError(err).Error("Housekeeping scheduler not started")
		}
	} else {
		logging.Logger.Warn("Task queue disabled: failed stats bumps will not be retried")
	}

	deps := library.Deps{
		Books:     books.NewRepository(db.DB),
		Favorites: favourites.NewRepository(db.DB),
		Reads:     reads.NewRepository(db.DB),
		Stats:     statsRepo,
		Notifier:  hub,
		Audit:     auditService,
	}
	if taskClient != nil {
		deps.Retrier = taskClient
	}
	libraryService := library.NewService(deps)

	tokens := auth.NewTokenIssuer(cfg.JWT)
	authService := auth.NewService(users.NewRepository(db.DB), tokens, auditService, cfg.Auth)

	authLimiter := auth.NewRateLimiter(cfg.RateLimit.AuthPerMinute)
	apiLimiter := auth.NewRateLimiter(cfg.RateLimit.APIPerMinute)

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:           libraryService,
		Auth:              authService,
		Tokens:            tokens,
		Hub:               hub,
		HeartbeatInterval: cfg.Realtime.HeartbeatInterval,
		AuthRateLimiter:   authLimiter,
		APIRateLimiter:    apiLimiter,
		Database:          db,
		Version:           version,
	})

	onShutdown := func(ctx context.Context) {
		hub.Close()
		if housekeeping != nil {
			housekeeping.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCancel()
		authLimiter.Stop()
		apiLimiter.Stop()
		auditService.Wait()
	}

	Serve(http_controllers.WithCORS(router, cfg.CORS.AllowedOrigins), cfg, onShutdown)
}
