package app

import (
	"context"
	"flashdeck_backend/internal/config"
	"flashdeck_backend/internal/controller"
	"flashdeck_backend/internal/repository"
	"flashdeck_backend/internal/service"
	"flashdeck_backend/pkg/configwatcher"
	"flashdeck_backend/pkg/database"
	"flashdeck_backend/pkg/logger"
	"flashdeck_backend/pkg/monitoring"
	"flashdeck_backend/pkg/security"
	"flashdeck_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user      *repository.UserRepository
	flashcard *repository.FlashcardRepository
	event     *repository.StudyEventRepository
	analytics *repository.AnalyticsRepository
}

type services struct {
	auth      *service.AuthService
	flashcard *service.FlashcardService
	study     *service.StudyService
	progress  *service.ProgressService
}

type controllers struct {
	auth      *controller.AuthController
	flashcard *controller.FlashcardController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		flashcard: repository.NewFlashcardRepository(db),
		event:     repository.NewStudyEventRepository(db),
		analytics: repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	return &services{
		auth:      service.NewAuthService(repos.user, cfg),
		flashcard: service.NewFlashcardService(repos.flashcard, rdb, cfg),
		study:     service.NewStudyService(repos.flashcard),
		progress:  service.NewProgressService(repos.event, repos.analytics, repos.flashcard),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		flashcard: controller.NewFlashcardController(s.flashcard, s.study),
		analytics: controller.NewAnalyticsController(s.progress),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("flashdeck", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	// 配置热加载：只有日志级别即时生效
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		logger.Log.Info("Config reloaded", zap.String("mode", newCfg.Server.Mode))
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
