package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/presence"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

// ActivityService - сессии сокетов и присутствие пользователей
type ActivityService interface {
	// Connect открывает сессию. Changed=true, если пользователь только что появился онлайн.
	Connect(db *gorm.DB, userID string, client dto.ClientInfo) (string, *dto.PresenceChange, error)
	// Activity обрабатывает user:activity. Changed=true, если статус изменился.
	Activity(db *gorm.DB, sessionID, userID string, status models.PresenceStatus) (*dto.PresenceChange, error)
	// Heartbeat продлевает сессию и запись присутствия без смены статуса (pong сокета)
	Heartbeat(db *gorm.DB, sessionID, userID string) error
	// Disconnect закрывает сессию. Changed=true, если закрыт последний сокет пользователя.
	Disconnect(db *gorm.DB, sessionID, userID string) (*dto.PresenceChange, error)
	IsOnline(db *gorm.DB, userID string) bool

	OnlineUsers(db *gorm.DB) ([]dto.OnlineUser, error)
	OnlineCount(db *gorm.DB) (int64, error)
	ListSessions(db *gorm.DB, query *dto.SessionListQuery) (*dto.Page[models.ActivitySession], error)
	CloseStaleSessions(db *gorm.DB, timeout time.Duration) (int, error)
}

type ActivityServiceImpl struct {
	sessionRepo repositories.SessionRepository
	userRepo    repositories.UserRepository
	presence    presence.Store
	now         func() time.Time
}

func NewActivityService(sessionRepo repositories.SessionRepository, userRepo repositories.UserRepository, store presence.Store) ActivityService {
	return &ActivityServiceImpl{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		presence:    store,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityServiceImpl) Connect(db *gorm.DB, userID string, client dto.ClientInfo) (string, *dto.PresenceChange, error) {
	now := s.now()
	session := &models.ActivitySession{
		UserID:     userID,
		Status:     models.PresenceOnline,
		IP:         client.IP,
		UserAgent:  truncate(client.UserAgent, 255),
		StartedAt:  now,
		LastSeenAt: now,
	}
	if err := s.sessionRepo.Create(db, session); err != nil {
		return "", nil, apperrors.InternalError(err)
	}

	first, err := s.presence.Connect(ctxOf(db), userID)
	if err != nil {
		logger.CtxWithError(ctxOf(db), "presence connect failed", err, "user_id", userID)
	}
	s.touchUser(db, userID, now)

	return session.ID, &dto.PresenceChange{
		UserID:  userID,
		Status:  models.PresenceOnline,
		At:      now,
		Changed: first,
	}, nil
}

func (s *ActivityServiceImpl) Activity(db *gorm.DB, sessionID, userID string, status models.PresenceStatus) (*dto.PresenceChange, error) {
	if !status.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "status must be one of online, idle, away"})
	}

	now := s.now()
	if err := s.keepAlive(db, sessionID, userID, status, now); err != nil {
		return nil, err
	}

	changed, err := s.presence.SetStatus(ctxOf(db), userID, status)
	if err != nil {
		logger.CtxWithError(ctxOf(db), "presence update failed", err, "user_id", userID)
	}
	s.touchUser(db, userID, now)

	return &dto.PresenceChange{UserID: userID, Status: status, At: now, Changed: changed}, nil
}

func (s *ActivityServiceImpl) Heartbeat(db *gorm.DB, sessionID, userID string) error {
	status := models.PresenceOnline
	if e, ok, err := s.presence.Get(ctxOf(db), userID); err == nil && ok {
		status = e.Status
	}
	if err := s.keepAlive(db, sessionID, userID, status, s.now()); err != nil {
		return err
	}
	if err := s.presence.Touch(ctxOf(db), userID); err != nil {
		logger.CtxWithError(ctxOf(db), "presence refresh failed", err, "user_id", userID)
	}
	return nil
}

// keepAlive обновляет открытую сессию. Сессию, которую уже закрыл
// CloseStaleSessions, открывает снова: сокет этой сессии все еще жив.
func (s *ActivityServiceImpl) keepAlive(db *gorm.DB, sessionID, userID string, status models.PresenceStatus, now time.Time) error {
	err := s.sessionRepo.Touch(db, sessionID, userID, status, now)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		err = s.sessionRepo.Reopen(db, sessionID, userID, status, now)
		if err == nil {
			logger.CtxInfo(ctxOf(db), "activity session reopened", "session_id", sessionID, "user_id", userID)
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrSessionNotFound):
		return apperrors.NotFound("session")
	default:
		return apperrors.InternalError(err)
	}
}

func (s *ActivityServiceImpl) Disconnect(db *gorm.DB, sessionID, userID string) (*dto.PresenceChange, error) {
	now := s.now()

	session, err := s.sessionRepo.FindByID(db, sessionID)
	switch {
	case err == nil && session.EndedAt == nil:
		session.End(now)
		if err := s.sessionRepo.End(db, session); err != nil {
			logger.CtxWithError(ctxOf(db), "failed to end session", err, "session_id", sessionID)
		}
	case err != nil && !errors.Is(err, repositories.ErrSessionNotFound):
		logger.CtxWithError(ctxOf(db), "failed to load session", err, "session_id", sessionID)
	}

	last, err := s.presence.Disconnect(ctxOf(db), userID)
	if err != nil {
		logger.CtxWithError(ctxOf(db), "presence disconnect failed", err, "user_id", userID)
	}
	s.touchUser(db, userID, now)

	return &dto.PresenceChange{UserID: userID, Status: models.PresenceOffline, At: now, Changed: last}, nil
}

func (s *ActivityServiceImpl) IsOnline(db *gorm.DB, userID string) bool {
	_, ok, err := s.presence.Get(ctxOf(db), userID)
	return err == nil && ok
}

func (s *ActivityServiceImpl) touchUser(db *gorm.DB, userID string, at time.Time) {
	if err := s.userRepo.UpdateLastActive(db, userID, at); err != nil {
		logger.CtxWithError(ctxOf(db), "failed to update last activity", err, "user_id", userID)
	}
}

func (s *ActivityServiceImpl) OnlineUsers(db *gorm.DB) ([]dto.OnlineUser, error) {
	entries, err := s.presence.List(ctxOf(db))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	users, err := s.userRepo.FindByIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]dto.OnlineUser, 0, len(entries))
	for _, e := range entries {
		item := dto.OnlineUser{
			UserID:      e.UserID,
			Status:      e.Status,
			Since:       e.Since,
			Connections: e.Connections,
		}
		if u, ok := byID[e.UserID]; ok {
			item.Name = u.Name
			item.Role = u.Role
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ActivityServiceImpl) OnlineCount(db *gorm.DB) (int64, error) {
	return s.presence.Count(ctxOf(db))
}

func (s *ActivityServiceImpl) ListSessions(db *gorm.DB, query *dto.SessionListQuery) (*dto.Page[models.ActivitySession], error) {
	p := pagination(query.Page, query.Limit)
	items, total, err := s.sessionRepo.List(db, repositories.SessionFilter{
		UserID:     query.UserID,
		OpenOnly:   query.OpenOnly,
		Pagination: p,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

// CloseStaleSessions закрывает сессии без активности дольше timeout.
// Длительность считается до последней активности.
func (s *ActivityServiceImpl) CloseStaleSessions(db *gorm.DB, timeout time.Duration) (int, error) {
	stale, err := s.sessionRepo.FindStale(db, s.now().Add(-timeout))
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range stale {
		session := &stale[i]
		session.End(session.LastSeenAt)
		if err := s.sessionRepo.End(db, session); err != nil {
			logger.WorkerLog("activity", "close_session", err, "session_id", session.ID)
			continue
		}
		closed++
	}
	return closed, nil
}
