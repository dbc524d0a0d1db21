package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studytest_backend/internal/config"
	"studytest_backend/internal/controller"
	"studytest_backend/internal/repository"
	"studytest_backend/internal/service"
	"studytest_backend/internal/util"
	"studytest_backend/pkg/configwatcher"
	"studytest_backend/pkg/database"
	"studytest_backend/pkg/logger"
	"studytest_backend/pkg/monitoring"
	"studytest_backend/pkg/security"
	"studytest_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	cancelWatch     context.CancelFunc
}

type repositories struct {
	test         *repository.TestRepository
	attempt      *repository.AttemptRepository
	sessionCache *repository.SessionCacheRepository
}

type services struct {
	storage *service.StorageService
	ai      *service.AIService
	test    *service.TestService
	imports *service.ImportService
	attempt *service.AttemptService
}

type controllers struct {
	test    *controller.TestController
	imports *controller.ImportController
	attempt *controller.AttemptController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		test:         repository.NewTestRepository(db),
		attempt:      repository.NewAttemptRepository(db),
		sessionCache: repository.NewSessionCacheRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.ai = service.NewAIService(cfg.AI)
	s.test = service.NewTestService(repos.test)

	s.imports = service.NewImportService(s.test, s.ai, s.storage, cfg.Parser)
	s.attempt = service.NewAttemptService(repos.test, repos.attempt, repos.sessionCache, cfg.Attempt)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		test:    controller.NewTestController(s.test),
		imports: controller.NewImportController(s.imports),
		attempt: controller.NewAttemptController(s.attempt),
		health:  controller.NewHealthController(a.DB, a.Redis, s.attempt),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startConfigWatcher 配置文件变更时依次执行已注册的回调
func (a *App) startConfigWatcher(configDir string) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelWatch = cancel

	go func() {
		err := configwatcher.WatchConfig(ctx, configDir, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 只保存答题会话快照，不可用时降级运行
	rdb, err := database.InitRedis(context.Background(), &cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, session checkpoints disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.imports.ApplyConfig(newCfg.Parser)
		logger.Log.Info("Parser config reloaded",
			zap.String("missing_answer_policy", newCfg.Parser.MissingAnswerPolicy),
			zap.Bool("ai_fallback", newCfg.Parser.AIFallback),
		)
	})

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("studytest-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	app.startConfigWatcher(configDir)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.cancelWatch != nil {
		a.cancelWatch()
	}

	// 停止所有答题计时器，未提交的会话直接丢弃
	if a.services != nil && a.services.attempt != nil {
		a.services.attempt.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
