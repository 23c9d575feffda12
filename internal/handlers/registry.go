package handlers

import (
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RouteRegistrar - любой хэндлер, который умеет вешать свои маршруты
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	JobHandler          *JobHandler
	ApplicationHandler  *ApplicationHandler
	NotificationHandler *NotificationHandler
	SubscriberHandler   *SubscriberHandler
	OfficeHandler       *OfficeHandler
	ActivityHandler     *ActivityHandler
	DashboardHandler    *DashboardHandler

	// справочники (sector, country, province, city, qualification, workMode, workExperience)
	LookupHandlers []RouteRegistrar
}

func NewAppHandlers(base *BaseHandler, s *services.ServiceContainer) *AppHandlers {
	provinceBySlug := func(db *gorm.DB, slug string) (string, error) {
		province, err := s.ProvinceService.GetBySlug(db, slug)
		if err != nil {
			return "", err
		}
		return province.ID, nil
	}

	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, s.AuthService),
		UserHandler:         NewUserHandler(base, s.UserService),
		JobHandler:          NewJobHandler(base, s.JobService),
		ApplicationHandler:  NewApplicationHandler(base, s.ApplicationService),
		NotificationHandler: NewNotificationHandler(base, s.NotificationService),
		SubscriberHandler:   NewSubscriberHandler(base, s.SubscriberService),
		OfficeHandler:       NewOfficeHandler(base, s.OfficeService),
		ActivityHandler:     NewActivityHandler(base, s.ActivityService, s.SecurityService),
		DashboardHandler:    NewDashboardHandler(base, s.DashboardService),

		LookupHandlers: []RouteRegistrar{
			NewLookupHandler[models.Sector](base, s.SectorService, "sector", "Sector", "Sectors"),
			NewLookupHandler[models.Country](base, s.CountryService, "country", "Country", "Countries"),
			NewLookupHandler[models.Province](base, s.ProvinceService, "province", "Province", "Provinces"),
			NewLookupHandler[models.City](base, s.CityService, "city", "City", "Cities").
				WithParent("fetchCitiesByProvince", "province_id", provinceBySlug),
			NewLookupHandler[models.Qualification](base, s.QualificationService, "qualification", "Qualification", "Qualifications"),
			NewLookupHandler[models.WorkMode](base, s.WorkModeService, "workMode", "WorkMode", "WorkModes"),
			NewLookupHandler[models.WorkExperience](base, s.WorkExperienceService, "workExperience", "WorkExperience", "WorkExperiences"),
		},
	}
}

// All - хэндлеры в порядке регистрации
func (a *AppHandlers) All() []RouteRegistrar {
	all := []RouteRegistrar{
		a.AuthHandler,
		a.UserHandler,
		a.JobHandler,
		a.ApplicationHandler,
		a.NotificationHandler,
		a.SubscriberHandler,
		a.OfficeHandler,
		a.ActivityHandler,
		a.DashboardHandler,
	}
	return append(all, a.LookupHandlers...)
}
