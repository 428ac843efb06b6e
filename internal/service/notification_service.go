package service

import (
	"context"
	"fmt"

	"finance-tracker/internal/repository"
	"finance-tracker/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// NotificationService - чтение и изменение уведомлений пользователя.
//
//go:generate mockery --name NotificationService --output ../mocks --outpkg mocks --case=underscore
type NotificationService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)
	FirstUnread(ctx context.Context, userID string) (*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
}

var _ NotificationService = (*notificationService)(nil)

// NewNotificationService создает сервис поверх хранилища уведомлений.
func NewNotificationService(repo repository.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		logger: logger.Named("NotificationService"),
	}
}

// List возвращает страницу уведомлений. Лимит вне 1..MaxPageLimit заменяется значением по умолчанию
// или ограничивается сверху; отрицательное смещение считается нулем.
func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}

func (s *notificationService) FirstUnread(ctx context.Context, userID string) (*models.Notification, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	return s.repo.GetFirstUnread(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, models.ErrUnauthorized
	}
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) Get(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	return s.repo.GetByID(ctx, userID, id)
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	n, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Notification marked as read", zap.String("userID", userID), zap.String("notificationID", id.String()))
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, models.ErrUnauthorized
	}
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("All notifications marked as read", zap.String("userID", userID), zap.Int64("updated", updated))
	return updated, nil
}

func (s *notificationService) Delete(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	if userID == "" {
		return nil, models.ErrUnauthorized
	}
	n, err := s.repo.SoftDelete(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Notification deleted", zap.String("userID", userID), zap.String("notificationID", id.String()))
	return n, nil
}
