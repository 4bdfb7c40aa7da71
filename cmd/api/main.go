package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/panel-dashboard/internal/api/dto"
	httptransport "github.com/spec-kit/panel-dashboard/internal/api/http"
	"github.com/spec-kit/panel-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/panel-dashboard/internal/auth"
	"github.com/spec-kit/panel-dashboard/internal/clock"
	"github.com/spec-kit/panel-dashboard/internal/config"
	"github.com/spec-kit/panel-dashboard/internal/events"
	"github.com/spec-kit/panel-dashboard/internal/observability"
	"github.com/spec-kit/panel-dashboard/internal/panel"
	"github.com/spec-kit/panel-dashboard/internal/persistence"
	"github.com/spec-kit/panel-dashboard/internal/repository"
	"github.com/spec-kit/panel-dashboard/internal/service"
	"github.com/spec-kit/panel-dashboard/internal/usercache"
	"github.com/spec-kit/panel-dashboard/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	websiteRepo := repository.NewWebsiteRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	// Panel settings are re-read per call so credentials can change without a restart.
	panelCredentials := func() panel.Credentials {
		p := config.LoadPanel()
		return panel.Credentials{BaseURL: p.BaseURL, Username: p.Username, Token: p.Token, Password: p.Password}
	}
	panelClient := panel.NewClient(panelCredentials,
		panel.WithTimeout(cfg.Panel.Timeout()),
		panel.WithLogger(logger),
		panel.WithMetrics(metrics),
	)
	panelOps := panel.NewOperations(panelClient)
	directory := usercache.New(panelOps, clock.Real{}, cfg.UserCache.TTL(), cfg.Panel.AdminEmail, logger, metrics)

	dispatcher := events.NewInMemoryDispatcher(logger, metrics)
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.ActivityTopic, logger)
		publisher.Register(dispatcher)
		defer publisher.Close() //nolint:errcheck
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	revocations := auth.NewRedisRevocations(redis.Client)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:    userRepo,
		Tokens:      tokens,
		Revocations: revocations,
		Directory:   directory,
		PanelConfig: config.LoadPanel,
		BcryptCost:  cfg.Auth.BcryptCost,
		Logger:      logger,
	})
	websiteService := service.NewWebsiteService(service.WebsiteDependencies{
		WebsiteRepo: websiteRepo,
		UserRepo:    userRepo,
		Panel:       panelOps,
		Directory:   directory,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	provisionService := service.NewProvisionService(service.ProvisionDependencies{
		Panel:      panelOps,
		Directory:  directory,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	dashboardService := service.NewDashboardService(service.DashboardDependencies{
		WebsiteRepo:  websiteRepo,
		UserRepo:     userRepo,
		ActivityRepo: activityRepo,
		Panel:        panelOps,
		Directory:    directory,
		MockFallback: func() bool { return config.LoadPanel().MockFallback },
		Logger:       logger,
	})
	usageService := service.NewUsageService(service.UsageDependencies{
		WebsiteRepo: websiteRepo,
		UserRepo:    userRepo,
		Panel:       panelOps,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	statusService := service.NewStatusService(panelOps, config.LoadPanel, cfg.App.Env)

	worker.StartActivityRecorder(service.NewActivityRecorder(dispatcher, activityRepo, logger))
	usageDone := worker.StartUsageSync(ctx, usageService, cfg.Worker.UsageSyncInterval(), logger)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo, revocations, logger)
	validator := dto.NewValidator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:      handlers.NewAuthHandler(authService, validator),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Panel:     handlers.NewPanelHandler(dashboardService, provisionService, statusService, validator),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Dashboard: dashboardService,
			Websites:  websiteService,
			Auth:      authService,
			Usage:     usageService,
			Directory: directory,
			Validator: validator,
		}),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-usageDone
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
