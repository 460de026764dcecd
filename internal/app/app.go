package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eduverse_backend/internal/config"
	"eduverse_backend/internal/controller"
	"eduverse_backend/internal/events"
	"eduverse_backend/internal/middleware"
	"eduverse_backend/internal/puzzle"
	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/service"
	"eduverse_backend/internal/util"
	"eduverse_backend/internal/validator"
	"eduverse_backend/pkg/configwatcher"
	"eduverse_backend/pkg/database"
	"eduverse_backend/pkg/lock"
	"eduverse_backend/pkg/logger"
	"eduverse_backend/pkg/monitoring"
	"eduverse_backend/pkg/security"
	"eduverse_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Bus    *events.Bus

	limiter *security.IPRateLimiter
	tracer  *sdktrace.TracerProvider
	cancel  context.CancelFunc
}

type services struct {
	validator *validator.Validator
	user      *service.UserService
	catalog   *service.CatalogService
	sequencer *service.ResourceSequencer
	badge     *service.BadgeService
	progress  *service.ProgressService
	tracker   *service.ResourceProgressService
	dashboard *service.DashboardService
	report    *service.ReportService
	storage   *service.StorageService
	content   *service.ContentService
	puzzle    *service.PuzzleService
}

type controllers struct {
	health    *controller.HealthController
	user      *controller.UserController
	dashboard *controller.DashboardController
	course    *controller.CourseController
	progress  *controller.ProgressController
	resource  *controller.ResourceController
	content   *controller.ContentController
	puzzle    *controller.PuzzleController
}

func (a *App) newLocker() lock.Locker {
	if a.Redis != nil {
		logger.Log.Info("Using redis locker", zap.Duration("ttl", a.Config.Lock.TTL))
		return lock.NewRedisLocker(a.Redis, a.Config.Lock.TTL, a.Config.Lock.Timeout)
	}
	return lock.NewKeyedMutex(a.Config.Lock.Timeout)
}

func (a *App) initServices(store repository.Store, locker lock.Locker, pub events.Publisher, puzzles *puzzle.Registry) *services {
	v := validator.New()
	s := &services{validator: v}

	s.user = service.NewUserService(store, v)
	s.catalog = service.NewCatalogService(store, locker, v)
	s.sequencer = service.NewResourceSequencer(store, locker, v, pub)
	s.badge = service.NewBadgeService(store, pub)
	s.progress = service.NewProgressService(store, locker, s.badge, pub)
	s.tracker = service.NewResourceProgressService(store, locker, v, pub)
	s.dashboard = service.NewDashboardService(store, s.progress)
	s.report = service.NewReportService(s.progress)
	s.storage = service.NewStorageService(&a.Config.Storage)
	s.content = service.NewContentService(s.storage, s.sequencer, a.Config.Storage.MaxUploadMB)
	s.puzzle = service.NewPuzzleService(store, puzzles, s.badge, v, pub)
	return s
}

func (a *App) initControllers(s *services, store repository.Store) *controllers {
	return &controllers{
		health:    controller.NewHealthController(store, a.Redis),
		user:      controller.NewUserController(s.user, s.badge, s.progress),
		dashboard: controller.NewDashboardController(s.dashboard),
		course:    controller.NewCourseController(s.catalog),
		progress:  controller.NewProgressController(s.progress, s.tracker, s.report, s.validator),
		resource:  controller.NewResourceController(s.sequencer, s.catalog, s.tracker),
		content:   controller.NewContentController(s.content, s.catalog),
		puzzle:    controller.NewPuzzleController(s.puzzle),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(middleware.ActingUser())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewIPRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// applyConfig 热加载时只调整日志级别和限流配额，其余配置需要重启
func (a *App) applyConfig(cfg *config.Config) {
	logger.SetLevel(cfg)
	if a.limiter != nil {
		a.limiter.Update(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	}
}

// WatchConfig 监听配置目录，变更后调用 applyConfig
func (a *App) WatchConfig(configDir string) {
	if !a.Config.Server.WatchConfig {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	prev := a.cancel
	a.cancel = func() {
		cancel()
		if prev != nil {
			prev()
		}
	}
	if err := configwatcher.Watch(ctx, configDir, a.applyConfig); err != nil {
		logger.Log.Error("Failed to watch config", zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app, err := newApp(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}
	app.tracer = tp
	return app
}

// newApp 基于已建立的连接组装服务与路由
func newApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	bus, err := events.NewBus(cfg.Events)
	if err != nil {
		return nil, err
	}

	puzzles, err := puzzle.LoadBuiltin()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Bus:    bus,
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	if bus.Subscriber != nil {
		if err := events.Listen(ctx, bus.Subscriber, bus.Topic, events.LogEvent); err != nil {
			cancel()
			return nil, err
		}
	}

	store := repository.NewStore(db)
	svc := app.initServices(store, app.newLocker(), bus.Publisher, puzzles)
	ctrl := app.initControllers(svc, store)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrl)

	if cfg.Storage.Type != util.StorageMinio {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return app, nil
}

// Close 释放后台协程和外部连接
func (a *App) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Bus != nil {
		if err := a.Bus.Publisher.Close(); err != nil {
			logger.Log.Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	a.Close()

	logger.Log.Info("Server exiting")
}
