package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobportal_backend/database"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/presence"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/routes"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/storage"
	"jobportal_backend/internal/validator"
	"jobportal_backend/internal/workers"
	"jobportal_backend/pkg/apperrors"
	"jobportal_backend/ws"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/gorm"
)

const mailWorkers = 2

// App - собранное приложение со всей инфраструктурой
type App struct {
	cfg       *config.Config
	db        *gorm.DB
	router    *gin.Engine
	services  *services.ServiceContainer
	wsManager *ws.WebSocketManager
	mailer    *email.Mailer
	publisher events.Publisher
	presence  presence.Store
	mongo     *mongo.Client
}

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	if err := application.Serve(ctx); err != nil {
		logger.Fatal("Server error", "error", err)
	}
}

// New открывает БД и внешние сервисы и собирает роутер
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	apperrors.SetDebug(!cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	logger.Info("Database connected")

	a := &App{cfg: cfg, db: db}

	storageInstance, err := storage.NewStorage(ctx, storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		AccountID:  cfg.Storage.AccountID,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	violations, err := a.initViolations(ctx)
	if err != nil {
		return nil, err
	}
	a.initPresence(ctx)
	a.initPublisher()
	a.initMailer()

	// хаб создается до сервисов: он же RealtimeNotifier для уведомлений
	a.wsManager = ws.NewWebSocketManager()
	a.services = services.NewServiceContainer(services.Dependencies{
		Config:     cfg,
		Storage:    storageInstance,
		Mailer:     a.mailer,
		Publisher:  a.publisher,
		Presence:   a.presence,
		Violations: violations,
		Notifier:   a.wsManager,
	})

	if err := a.seedFirstAdmin(); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	a.router = a.initializeGinRouter()
	return a, nil
}

func (a *App) initViolations(ctx context.Context) (repositories.ViolationRepository, error) {
	if a.cfg.Mongo.URI == "" {
		logger.Info("Security violations stored in SQL database")
		return repositories.NewSQLViolationRepository(a.db), nil
	}

	client, err := mongo.Connect(options.Client().ApplyURI(a.cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	a.mongo = client

	repo := repositories.NewMongoViolationRepository(client.Database(a.cfg.Mongo.Database), a.cfg.Mongo.Collection)
	if err := repo.InitializeIndexes(pingCtx); err != nil {
		logger.Warn("Failed to create violation indexes", "error", err)
	}
	logger.Info("Security violations stored in MongoDB", "database", a.cfg.Mongo.Database)
	return repo, nil
}

// initPresence - Redis, если настроен, иначе память процесса
func (a *App) initPresence(ctx context.Context) {
	if a.cfg.Redis.Addr != "" {
		store, err := presence.NewRedisStore(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.PresenceTTL())
		if err == nil {
			logger.Info("Presence store: redis", "addr", a.cfg.Redis.Addr)
			a.presence = store
			return
		}
		logger.Warn("Redis unavailable, falling back to in-memory presence", "error", err)
	}
	a.presence = presence.NewMemoryStore()
}

func (a *App) initPublisher() {
	if a.cfg.RabbitMQ.URI == "" {
		logger.Info("Domain events publishing disabled")
		return
	}
	publisher, err := events.NewRabbitPublisher(a.cfg.RabbitMQ.URI, a.cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, domain events disabled", "error", err)
		return
	}
	logger.Info("Domain events published to RabbitMQ", "exchange", a.cfg.RabbitMQ.Exchange)
	a.publisher = publisher
}

func (a *App) initMailer() {
	templates := email.NewTemplateManager()
	if err := templates.LoadTemplates(a.cfg.Email.TemplatesDir); err != nil {
		logger.WithError(err).Warn("Failed to load email templates, using built-in ones", "dir", a.cfg.Email.TemplatesDir)
	}

	var provider email.Provider
	if a.cfg.Email.Enabled {
		provider = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      a.cfg.Email.SMTPHost,
			Port:      a.cfg.Email.SMTPPort,
			Username:  a.cfg.Email.SMTPUsername,
			Password:  a.cfg.Email.SMTPPassword,
			FromEmail: a.cfg.Email.FromEmail,
			FromName:  a.cfg.Email.FromName,
			UseTLS:    a.cfg.Email.UseTLS,
			Timeout:   10 * time.Second,
		}, templates)
		logger.Info("Email: SMTP", "host", a.cfg.Email.SMTPHost)
	} else {
		provider = email.NewLogProvider(templates)
		logger.Warn("Email disabled, messages are only logged")
	}

	a.mailer = email.NewMailer(provider, a.cfg.Email.FrontendURL, 200)
}

func (a *App) initializeGinRouter() *gin.Engine {
	security := a.services.SecurityService
	limiter := middleware.NewIPRateLimiter(a.cfg.RateLimit.RequestsPerMinute, a.cfg.RateLimit.Burst)

	base := handlers.NewBaseHandler(validator.New(), handlers.Guards{
		Auth:      middleware.AuthMiddleware(a.services.Tokens, security, a.services.AuthService),
		Optional:  middleware.OptionalAuthMiddleware(a.services.Tokens),
		RateLimit: middleware.RateLimitMiddleware(limiter, security),
		Roles: func(roles ...models.UserRole) gin.HandlerFunc {
			return middleware.RequireRoles(security, roles...)
		},
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(a.cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(a.db))

	wsHandler := ws.NewWebSocketHandler(a.wsManager, a.db, a.services, a.cfg.CORS.AllowedOrigins)

	routes.SetupOperationalRoutes(router, a.db, a.cfg)
	routes.RegisterRoutes(router, handlers.NewAppHandlers(base, a.services), wsHandler)
	return router
}

func (a *App) seedFirstAdmin() error {
	if a.cfg.Admin.Email == "" || a.cfg.Admin.Password == "" {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}
	name := a.cfg.Admin.Name
	if name == "" {
		name = "Administrator"
	}

	created, err := a.services.AuthService.SeedAdmin(a.db, name, a.cfg.Admin.Email, a.cfg.Admin.Password)
	if err != nil {
		return err
	}
	if created {
		logger.Info("First admin user created", "email", a.cfg.Admin.Email)
	}
	return nil
}

// Router - для тестов и встраивания
func (a *App) Router() *gin.Engine {
	return a.router
}

// Serve запускает HTTP, хаб, почту и воркеры; останавливается по ctx
func (a *App) Serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.mailer.Start(runCtx, mailWorkers)
	go a.wsManager.Run(runCtx)
	workers.NewJobWorker(a.db, a.services.JobService, time.Duration(a.cfg.Jobs.ExpiryInterval)*time.Minute).Start(runCtx)
	workers.NewMaintenanceWorker(a.db, a.services, a.cfg.SessionTimeout()).Start(runCtx)

	server := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			a.close()
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	// очередь писем дорабатывает до отмены воркеров
	a.mailer.Stop()
	cancel()
	// readPump закрывают сессии через БД и presence, закрываем их после
	if !a.wsManager.Wait(shutdownCtx) {
		logger.Warn("Websocket clients did not finish before shutdown timeout")
	}
	a.close()

	logger.Info("Server stopped")
	return err
}

func (a *App) close() {
	a.mailer.Stop()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if err := a.presence.Close(); err != nil {
		logger.Warn("Failed to close presence store", "error", err)
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Disconnect(ctx); err != nil {
			logger.Warn("Failed to disconnect mongo", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
