package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"snaketests_backend/internal/config"
	"snaketests_backend/internal/controller"
	"snaketests_backend/internal/repository"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"
	"snaketests_backend/pkg/configwatcher"
	"snaketests_backend/pkg/database"
	"snaketests_backend/pkg/logger"
	"snaketests_backend/pkg/monitoring"
	"snaketests_backend/pkg/security"
	"snaketests_backend/pkg/tracing"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config     *config.Config
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client
	Pagination *util.Pagination

	services        *services
	tracer          *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	quiz    *repository.QuizRepository
	result  *repository.ResultRepository
	post    *repository.PostRepository
	session *repository.SessionRepository
}

type services struct {
	auth    *service.AuthService
	user    *service.UserService
	quiz    *service.QuizService
	result  *service.ResultService
	post    *service.PostService
	storage *service.StorageService
	mail    *service.MailQueue
}

type controllers struct {
	auth    *controller.AuthController
	home    *controller.HomeController
	post    *controller.PostController
	quiz    *controller.QuizController
	userAPI *controller.UserAPIController
	postAPI *controller.PostAPIController
	admin   *controller.AdminController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新后依次执行回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, callback := range callbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		quiz:    repository.NewQuizRepository(db),
		result:  repository.NewResultRepository(db),
		post:    repository.NewPostRepository(db),
		session: repository.NewSessionRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.mail = service.NewMailQueue(service.NewMailer(cfg.Mail), cfg.Mail.Workers, cfg.Mail.QueueSize)
	s.auth = service.NewAuthService(repos.user, repos.session, s.mail, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.quiz = service.NewQuizService(repos.quiz, repos.result)
	s.result = service.NewResultService(repos.result, repos.quiz)
	s.post = service.NewPostService(repos.post, repos.quiz)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth, s.user, a.Config),
		home:    controller.NewHomeController(s.post, s.quiz, s.user, a.Pagination),
		post:    controller.NewPostController(s.post, s.quiz, a.Pagination),
		quiz:    controller.NewQuizController(s.quiz, s.result, a.Pagination),
		userAPI: controller.NewUserAPIController(s.user),
		postAPI: controller.NewPostAPIController(s.post),
		admin:   controller.NewAdminController(s.user, s.quiz, s.result),
		health:  controller.NewHealthController(a.DB, a.Redis, s.mail),
	}
}

// New 用已经打开的数据库组装应用，不启动后台任务
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	monitoring.Init()
	util.RegisterValidators()
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Mode == gin.DebugMode || cfg.Server.Mode == gin.TestMode {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Pagination: util.NewPagination(cfg.Pagination),
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services)

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		app.Pagination.Apply(newCfg.Pagination)
	})

	return app
}

// NewApp 按配置建立全部依赖
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不迁移，需要 -migrate 显式开启
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := New(cfg, db, rdb)

	if cfg.SeedFile != "" {
		created, err := app.services.quiz.SeedFromYAML(cfg.SeedFile)
		if err != nil {
			logger.Log.Fatal("Failed to seed quizzes", zap.String("file", cfg.SeedFile), zap.Error(err))
		}
		logger.Log.Info("Quizzes seeded", zap.String("file", cfg.SeedFile), zap.Int("created", created))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("snaketests", cfg.Server.Mode, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins, cfg.Server.Mode == gin.DebugMode))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 邮件发送协程与配置监听
func (a *App) startBackgroundTasks(ctx context.Context) {
	a.services.mail.Run(ctx)

	if a.Config.ConfigFile == "" {
		return
	}
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, a.ApplyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startBackgroundTasks(ctx)

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 排空邮件队列，超时后放弃未发送的邮件
	if err := a.services.mail.Stop(shutdownTimeout); err != nil {
		logger.Log.Warn("Mail queue not drained", zap.Error(err), zap.Any("stats", a.services.mail.Stats()))
	}
	stop()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
