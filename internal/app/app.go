package app

import (
	"context"
	"course_platform_backend/internal/config"
	"course_platform_backend/internal/controller"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/service"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/configwatcher"
	"course_platform_backend/pkg/database"
	"course_platform_backend/pkg/logger"
	"course_platform_backend/pkg/monitoring"
	"course_platform_backend/pkg/security"
	"course_platform_backend/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigFile string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client
	Policy     *security.Policy

	services        *services
	cron            *cron.Cron
	tracerProvider  *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	learner     *repository.LearnerRepository
	course      *repository.CourseRepository
	choice      *repository.ChoiceRepository
	enrollment  *repository.EnrollmentRepository
	submission  *repository.SubmissionRepository
	examSession *repository.ExamSessionRepository
	progress    *repository.ProgressRepository
	certificate *repository.CertificateRepository
}

type services struct {
	storage     *service.StorageService
	catalog     *service.CatalogService
	enrollment  *service.EnrollmentService
	progress    *service.ProgressService
	completion  *service.CompletionService
	exam        *service.ExamService
	certificate *service.CertificateService
	learner     *service.LearnerService
	lessonMedia *service.LessonMediaService
}

type controllers struct {
	course      *controller.CourseController
	enrollment  *controller.EnrollmentController
	exam        *controller.ExamController
	certificate *controller.CertificateController
	lesson      *controller.LessonController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 配置文件变更后依次执行回调
func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		learner:     repository.NewLearnerRepository(db),
		course:      repository.NewCourseRepository(db),
		choice:      repository.NewChoiceRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		submission:  repository.NewSubmissionRepository(db),
		examSession: repository.NewExamSessionRepository(db),
		progress:    repository.NewProgressRepository(db),
		certificate: repository.NewCertificateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	var cache service.CatalogCache = service.NopCatalogCache{}
	if rdb != nil {
		cache = service.NewRedisCatalogCache(rdb, cfg.Cache.CatalogTTL())
	}

	s.storage = service.NewStorageService(&cfg.Storage)
	s.catalog = service.NewCatalogService(repos.course, repos.enrollment, cache)
	s.enrollment = service.NewEnrollmentService(db, repos.course, repos.enrollment, repos.progress, cache)
	s.progress = service.NewProgressService(db, repos.course, repos.enrollment, repos.progress)
	s.completion = service.NewCompletionService(repos.enrollment, repos.learner, repos.course, cfg.Exam.PassingGrade)
	s.exam = service.NewExamService(
		db,
		repos.course,
		repos.enrollment,
		repos.submission,
		repos.examSession,
		service.NewAnswerExtractor(repos.choice, cfg.Exam.AnswerPrefix),
		s.completion,
		cfg.Exam.SessionSeconds,
	)
	s.certificate = service.NewCertificateService(db, repos.course, repos.enrollment, repos.certificate, s.storage)
	s.learner = service.NewLearnerService(db, repos.user, repos.learner)
	s.lessonMedia = service.NewLessonMediaService(repos.course, s.storage, cache, filepath.Join(cfg.Storage.LocalPath, "temp"))

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		course:      controller.NewCourseController(s.catalog),
		enrollment:  controller.NewEnrollmentController(s.enrollment, s.progress),
		exam:        controller.NewExamController(s.exam),
		certificate: controller.NewCertificateController(s.certificate),
		lesson:      controller.NewLessonController(s.lessonMedia),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(a.Policy.CORS())
	router.Use(security.Secure())
	router.Use(a.Policy.RateLimiter())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.completion.SetPassingGrade(cfg.Exam.PassingGrade)
		logger.Log.Info("Passing grade updated", zap.Int("passingGrade", cfg.Exam.PassingGrade))
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.Policy.Update(cfg.CORS.AllowedOrigins, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	})
}

// New 使用已建立的连接组装应用，rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Policy: security.NewPolicy(cfg.CORS.AllowedOrigins, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()),
	}

	repos := app.initRepositories(db)
	svc := app.initServices(repos, cfg, db, rdb)
	app.services = svc
	ctrls := app.initControllers(svc, db, rdb)
	app.registerConfigCallbacks(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	monitoring.Init()

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer("course-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app := New(cfg, db, rdb)
	app.tracerProvider = tp
	app.startBackgroundTasks(app.services)
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.ConfigFile != "" {
		go func() {
			if err := configwatcher.Watch(ctx, a.ConfigFile, a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
