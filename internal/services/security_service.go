package services

import (
	"context"

	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/metrics"
	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

// SecurityService ведет журнал нарушений безопасности (MongoDB или SQL)
type SecurityService interface {
	// RecordViolation не возвращает ошибку: сбой журнала не должен ломать запрос
	RecordViolation(ctx context.Context, vType models.ViolationType, userID string, client dto.ClientInfo, details string)
	ListViolations(ctx context.Context, query *dto.ViolationListQuery) (*dto.Page[models.SecurityViolation], error)
}

type SecurityServiceImpl struct {
	violationRepo repositories.ViolationRepository
}

func NewSecurityService(violationRepo repositories.ViolationRepository) SecurityService {
	return &SecurityServiceImpl{violationRepo: violationRepo}
}

func (s *SecurityServiceImpl) RecordViolation(ctx context.Context, vType models.ViolationType, userID string, client dto.ClientInfo, details string) {
	v := &models.SecurityViolation{
		Type:      vType,
		IP:        client.IP,
		UserAgent: truncate(client.UserAgent, 255),
		Path:      truncate(client.Path, 255),
		Details:   details,
	}
	if userID != "" {
		v.UserID = &userID
	}

	metrics.SecurityViolations.WithLabelValues(string(vType)).Inc()
	logger.CtxWarn(ctx, "security violation", "type", vType, "ip", client.IP, "path", client.Path, "user_id", userID)

	if err := s.violationRepo.Record(ctx, v); err != nil {
		logger.CtxWithError(ctx, "failed to record security violation", err, "type", vType)
	}
}

func (s *SecurityServiceImpl) ListViolations(ctx context.Context, query *dto.ViolationListQuery) (*dto.Page[models.SecurityViolation], error) {
	p := repositories.NewPagination(query.Page, query.Limit)
	items, total, err := s.violationRepo.List(ctx, repositories.ViolationFilter{
		Type:       query.Type,
		UserID:     query.UserID,
		Pagination: p,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPage(items, total, p.Page, p.Limit), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
