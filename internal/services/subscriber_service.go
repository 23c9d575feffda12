package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/events"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type SubscriberService interface {
	Subscribe(db *gorm.DB, req *dto.SubscribeRequest) (*models.Subscriber, error)
	Unsubscribe(db *gorm.DB, token string) error
	ListSubscribers(db *gorm.DB, query *dto.SubscriberListQuery) (*dto.Page[models.Subscriber], error)
	DeleteSubscriber(db *gorm.DB, id string) error
}

type SubscriberServiceImpl struct {
	subscriberRepo repositories.SubscriberRepository
	mailer         *email.Mailer
	publisher      events.Publisher
}

func NewSubscriberService(subscriberRepo repositories.SubscriberRepository, mailer *email.Mailer, publisher events.Publisher) SubscriberService {
	return &SubscriberServiceImpl{
		subscriberRepo: subscriberRepo,
		mailer:         mailer,
		publisher:      publisher,
	}
}

// Subscribe - новая подписка или повторная активация отписавшегося email
func (s *SubscriberServiceImpl) Subscribe(db *gorm.DB, req *dto.SubscribeRequest) (*models.Subscriber, error) {
	addr := normalizeEmail(req.Email)

	existing, err := s.subscriberRepo.FindByEmail(db, addr)
	switch {
	case err == nil && existing.IsActive:
		return nil, apperrors.ErrAlreadySubscribed
	case err == nil:
		token, err := auth.RandomToken(24)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		existing.IsActive = true
		existing.UnsubscribedAt = nil
		existing.UnsubscribeToken = token
		if req.Name != "" {
			existing.Name = req.Name
		}
		if err := s.subscriberRepo.Update(db, existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctxOf(db), "subscriber reactivated", "subscriber_id", existing.ID)
		s.welcome(db, existing)
		return existing, nil
	case !errors.Is(err, repositories.ErrSubscriberNotFound):
		return nil, apperrors.InternalError(err)
	}

	token, err := auth.RandomToken(24)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	sub := &models.Subscriber{
		Email:            addr,
		Name:             req.Name,
		IsActive:         true,
		UnsubscribeToken: token,
	}
	if err := s.subscriberRepo.Create(db, sub); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrAlreadySubscribed
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "subscriber created", "subscriber_id", sub.ID)
	s.welcome(db, sub)
	return sub, nil
}

func (s *SubscriberServiceImpl) welcome(db *gorm.DB, sub *models.Subscriber) {
	s.mailer.Enqueue([]string{sub.Email}, "You are subscribed to new jobs", email.TemplateSubscriberWelcome, email.TemplateData{
		"Name":  sub.Name,
		"Token": sub.UnsubscribeToken,
	})
	publishEvent(ctxOf(db), s.publisher, events.New(events.SubscriberCreated, sub.ID, "", nil))
}

func (s *SubscriberServiceImpl) Unsubscribe(db *gorm.DB, token string) error {
	sub, err := s.subscriberRepo.FindByToken(db, token)
	if err != nil {
		return notFoundOr(err, repositories.ErrSubscriberNotFound, "subscriber")
	}
	if !sub.IsActive {
		return nil
	}

	now := time.Now().UTC()
	sub.IsActive = false
	sub.UnsubscribedAt = &now
	if err := s.subscriberRepo.Update(db, sub); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SubscriberServiceImpl) ListSubscribers(db *gorm.DB, query *dto.SubscriberListQuery) (*dto.Page[models.Subscriber], error) {
	p := pagination(query.Page, query.Limit)
	items, total, err := s.subscriberRepo.List(db, query.Active, p)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func (s *SubscriberServiceImpl) DeleteSubscriber(db *gorm.DB, id string) error {
	if err := s.subscriberRepo.Delete(db, id); err != nil {
		return notFoundOr(err, repositories.ErrSubscriberNotFound, "subscriber")
	}
	return nil
}
