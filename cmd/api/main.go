package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/linkshelf/bookmark-service/internal/api/http"
	"github.com/linkshelf/bookmark-service/internal/api/http/handlers"
	"github.com/linkshelf/bookmark-service/internal/auth"
	"github.com/linkshelf/bookmark-service/internal/config"
	"github.com/linkshelf/bookmark-service/internal/events"
	"github.com/linkshelf/bookmark-service/internal/observability"
	"github.com/linkshelf/bookmark-service/internal/repository"
	"github.com/linkshelf/bookmark-service/internal/service"
	"github.com/linkshelf/bookmark-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.App.Name)
	}
	dispatcher := events.NewInMemoryDispatcher()

	signer, err := auth.NewSigner(auth.SignerConfig{
		Secret: cfg.Auth.SigningSecret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.SessionTTL(),
	})
	if err != nil {
		logger.Fatal("failed to init token signer", zap.Error(err))
	}
	if cfg.Auth.SigningSecret == "" {
		logger.Info("no signing secret configured, generated a process-local key")
	}

	sessionDeps := auth.SessionManagerDeps{
		Signer:     signer,
		Registry:   auth.NewShardedRegistry(cfg.Auth.RegistryShards),
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	if metrics != nil {
		sessionDeps.Metrics = metrics
	}
	sessions, err := auth.NewSessionManager(sessionDeps)
	if err != nil {
		logger.Fatal("failed to init session manager", zap.Error(err))
	}
	if metrics != nil {
		if err := metrics.RegisterActiveSessions(sessions.ActiveSessions); err != nil {
			logger.Fatal("failed to register session gauge", zap.Error(err))
		}
	}

	userService, err := service.NewUserService(service.UserDependencies{
		Users:      repository.NewUserRepository(),
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	if err != nil {
		logger.Fatal("failed to init user service", zap.Error(err))
	}
	bookmarkService, err := service.NewBookmarkService(service.BookmarkDependencies{
		Bookmarks:  repository.NewBookmarkRepository(),
		Authorizer: sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init bookmark service", zap.Error(err))
	}
	bookmarkService.RegisterHandlers()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		RootPath:       cfg.App.RootPath,
		MetricsPath:    cfg.Metrics.Path,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, sessions),
		Users:          handlers.NewUsersHandler(userService),
		Bookmarks:      handlers.NewBookmarksHandler(bookmarkService),
		AuthMiddleware: auth.NewAuthMiddleware(),
		Metrics:        metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("root_path", cfg.App.RootPath),
			zap.Duration("session_ttl", cfg.Auth.SessionTTL()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		return worker.RunSessionSweeper(gctx, sessions, cfg.Auth.SweepInterval(), logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service stopped with error", zap.Error(err))
	}
}
