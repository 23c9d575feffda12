package services

import (
	"gorm.io/gorm"

	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type DashboardService interface {
	EmployerStats(db *gorm.DB, employerID string) (*dto.EmployerStats, error)
	AdminStats(db *gorm.DB) (*dto.AdminStats, error)
}

type DashboardServiceImpl struct {
	jobRepo         repositories.JobRepository
	applicationRepo repositories.ApplicationRepository
	userRepo        repositories.UserRepository
	subscriberRepo  repositories.SubscriberRepository
	activity        ActivityService
}

func NewDashboardService(
	jobRepo repositories.JobRepository,
	applicationRepo repositories.ApplicationRepository,
	userRepo repositories.UserRepository,
	subscriberRepo repositories.SubscriberRepository,
	activity ActivityService,
) DashboardService {
	return &DashboardServiceImpl{
		jobRepo:         jobRepo,
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
		subscriberRepo:  subscriberRepo,
		activity:        activity,
	}
}

func sum(m map[string]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

func (s *DashboardServiceImpl) EmployerStats(db *gorm.DB, employerID string) (*dto.EmployerStats, error) {
	jobs, err := s.jobRepo.CountByStatus(db, employerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	apps, err := s.applicationRepo.CountByStatusForEmployer(db, employerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	views, err := s.jobRepo.SumViews(db, employerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.EmployerStats{
		JobsByStatus:         jobs,
		ApplicationsByStatus: apps,
		TotalJobs:            sum(jobs),
		TotalApplications:    sum(apps),
		TotalViews:           views,
	}, nil
}

func (s *DashboardServiceImpl) AdminStats(db *gorm.DB) (*dto.AdminStats, error) {
	users, err := s.userRepo.CountByRole(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	jobs, err := s.jobRepo.CountByStatus(db, "")
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	apps, err := s.applicationRepo.CountAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	subscribers, err := s.subscriberRepo.Count(db, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	active := true
	activeSubscribers, err := s.subscriberRepo.Count(db, &active)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	stats := &dto.AdminStats{
		UsersByRole:       users,
		JobsByStatus:      jobs,
		TotalApplications: apps,
		Subscribers:       subscribers,
		ActiveSubscribers: activeSubscribers,
	}
	if s.activity != nil {
		if online, err := s.activity.OnlineCount(db); err == nil {
			stats.OnlineUsers = online
		}
	}
	return stats, nil
}
