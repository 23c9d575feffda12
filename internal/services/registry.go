package services

import (
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/imageprocessor"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/presence"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	UserService         UserService
	JobService          JobService
	ApplicationService  ApplicationService
	NotificationService NotificationService
	SubscriberService   SubscriberService
	OfficeService       OfficeService
	ActivityService     ActivityService
	SecurityService     SecurityService
	DashboardService    DashboardService
	UploadService       UploadService

	SectorService         LookupService[models.Sector, *models.Sector]
	CountryService        LookupService[models.Country, *models.Country]
	ProvinceService       LookupService[models.Province, *models.Province]
	CityService           LookupService[models.City, *models.City]
	QualificationService  LookupService[models.Qualification, *models.Qualification]
	WorkModeService       LookupService[models.WorkMode, *models.WorkMode]
	WorkExperienceService LookupService[models.WorkExperience, *models.WorkExperience]

	Tokens *auth.TokenManager
}

// Dependencies - внешняя инфраструктура, собранная в app
type Dependencies struct {
	Config     *config.Config
	Storage    storage.Storage
	Mailer     *email.Mailer
	Publisher  events.Publisher
	Presence   presence.Store
	Violations repositories.ViolationRepository
	Notifier   RealtimeNotifier
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	cfg := deps.Config

	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	jobRepo := repositories.NewJobRepository()
	applicationRepo := repositories.NewApplicationRepository()
	notificationRepo := repositories.NewNotificationRepository()
	subscriberRepo := repositories.NewSubscriberRepository()
	sessionRepo := repositories.NewSessionRepository()

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.ThumbnailSize)

	uploadService := NewUploadService(deps.Storage, cfg.Policies(), processor)
	securityService := NewSecurityService(deps.Violations)
	notificationService := NewNotificationService(notificationRepo, deps.Notifier)
	activityService := NewActivityService(sessionRepo, userRepo, deps.Presence)

	return &ServiceContainer{
		AuthService: NewAuthService(userRepo, refreshTokenRepo, tokens, cfg.RefreshTokenTTL(),
			securityService, deps.Mailer, deps.Publisher),
		UserService: NewUserService(userRepo, refreshTokenRepo, uploadService),
		JobService:  NewJobService(jobRepo, subscriberRepo, uploadService, deps.Mailer, deps.Publisher),
		ApplicationService: NewApplicationService(applicationRepo, jobRepo, userRepo, notificationService,
			uploadService, deps.Notifier, deps.Mailer, deps.Publisher),
		NotificationService: notificationService,
		SubscriberService:   NewSubscriberService(subscriberRepo, deps.Mailer, deps.Publisher),
		OfficeService:       NewOfficeService(repositories.NewLookupRepository[models.Office](), uploadService),
		ActivityService:     activityService,
		SecurityService:     securityService,
		DashboardService:    NewDashboardService(jobRepo, applicationRepo, userRepo, subscriberRepo, activityService),
		UploadService:       uploadService,

		SectorService: NewLookupService("sector",
			repositories.NewLookupRepository[models.Sector](), SectorHooks()),
		CountryService: NewLookupService("country",
			repositories.NewLookupRepository[models.Country](), CountryHooks()),
		ProvinceService: NewLookupService("province",
			repositories.NewLookupRepository[models.Province]("Country"), ProvinceHooks()),
		CityService: NewLookupService("city",
			repositories.NewLookupRepository[models.City]("Province"), CityHooks()),
		QualificationService: NewLookupService("qualification",
			repositories.NewLookupRepository[models.Qualification](), QualificationHooks()),
		WorkModeService: NewLookupService("workMode",
			repositories.NewLookupRepository[models.WorkMode](), WorkModeHooks()),
		WorkExperienceService: NewLookupService("workExperience",
			repositories.NewLookupRepository[models.WorkExperience](), WorkExperienceHooks()),

		Tokens: tokens,
	}
}
