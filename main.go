package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kampusku_backend/internals/configs"
	database "kampusku_backend/internals/databases"
	alertRepo "kampusku_backend/internals/features/analytics/alerts/repository"
	alertService "kampusku_backend/internals/features/analytics/alerts/service"
	jobs "kampusku_backend/internals/features/analytics/jobs/service"
	riskRepo "kampusku_backend/internals/features/analytics/risk/repository"
	riskService "kampusku_backend/internals/features/analytics/risk/service"
	snapshotRepo "kampusku_backend/internals/features/analytics/snapshots/repository"
	snapshotService "kampusku_backend/internals/features/analytics/snapshots/service"
	notifService "kampusku_backend/internals/features/home/notifications/service"
	helper "kampusku_backend/internals/helpers"
	"kampusku_backend/internals/helpers/clock"
	"kampusku_backend/internals/helpers/logger"
	middlewares "kampusku_backend/internals/middlewares"
	routes "kampusku_backend/internals/route"
	"kampusku_backend/internals/scheduler"
)

func main() {
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// 🔌 DB connect + pool + schema
	db, err := database.ConnectDB(cfg.DB, zl)
	if err != nil {
		zl.Fatal("❌ DB connect failed", zap.Error(err))
	}
	if err := database.TunePool(db); err != nil {
		zl.Warn("pool tune failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("❌ migrate failed", zap.Error(err))
	}

	// 📣 redis is optional; notifications are stored either way
	var rdb *redis.Client
	var pub notifService.Publisher
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("⚠️ redis unreachable, realtime push may fail", zap.Error(err))
		}
		cancel()
		pub = rdb
	}

	clk := clock.System{}
	notifications := notifService.NewNotificationService(db, pub, zl)
	risk := riskService.NewRiskScoringService(riskRepo.NewRiskRepository(db), clk, zl)
	alerts := alertService.NewAlertService(alertRepo.NewAlertRepository(db), notifications, clk, zl)
	snapshots := snapshotService.NewSnapshotService(snapshotRepo.NewSnapshotRepository(db), clk, zl)

	// ⏱ scheduler after DB is ready
	runner := scheduler.NewRunner(clk, zl, scheduler.Options{
		Tick:         cfg.Scheduler.Tick,
		RunOnStart:   !cfg.IsProduction(),
		StartupDelay: cfg.Scheduler.StartupDelay,
	},
		jobs.NewDailySnapshotJob(snapshots, zl),
		jobs.NewRiskCalculationJob(risk, alerts, zl),
	)

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()
	if cfg.Scheduler.Enabled {
		if err := runner.Start(rootCtx); err != nil {
			zl.Fatal("❌ scheduler start failed", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return helper.JsonError(c, fe.Code, fe.Message)
			}
			zl.Error("unhandled error", zap.String("path", c.OriginalURL()), zap.Error(err))
			return helper.JsonError(c, fiber.StatusInternalServerError, "")
		},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, zl)

	routes.SetupRoutes(app, routes.Deps{
		Config:        cfg,
		DB:            db,
		Redis:         rdb,
		Log:           zl,
		Risk:          risk,
		Alerts:        alerts,
		Snapshots:     snapshots,
		Notifications: notifications,
		Runner:        runner,
	})

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		zl.Info("✅ Listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown: HTTP, then jobs, then pools
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	stopRoot()
	runner.Stop()

	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
