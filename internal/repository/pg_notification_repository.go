package repository

import (
	"context"
	"errors"
	"fmt"

	"finance-tracker/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const notificationColumns = `
	id, user_id, type,
	COALESCE(title, '') AS title,
	COALESCE(message, '') AS message,
	COALESCE(title_key, '') AS title_key,
	COALESCE(message_key, '') AS message_key,
	message_params,
	COALESCE(link, '') AS link,
	read, deleted, created_at, updated_at`

const (
	createNotificationQuery = `
		INSERT INTO notifications (user_id, type, title, message, title_key, message_key, message_params, link, read, deleted)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), $9, $10)
		RETURNING id, created_at, updated_at`
	getNotificationByIDQuery = `SELECT ` + notificationColumns + `
		FROM notifications WHERE id = $1 AND user_id = $2`
	listNotificationsQuery = `SELECT ` + notificationColumns + `
		FROM notifications WHERE user_id = $1 AND deleted = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	firstUnreadQuery = `SELECT ` + notificationColumns + `
		FROM notifications WHERE user_id = $1 AND read = FALSE AND deleted = FALSE
		ORDER BY created_at ASC, id ASC
		LIMIT 1`
	countUnreadQuery = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE AND deleted = FALSE`
	markReadQuery    = `UPDATE notifications SET read = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted = FALSE
		RETURNING ` + notificationColumns
	markAllReadQuery = `UPDATE notifications SET read = TRUE, updated_at = NOW()
		WHERE user_id = $1 AND deleted = FALSE AND read = FALSE`
	softDeleteQuery = `UPDATE notifications SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted = FALSE
		RETURNING ` + notificationColumns
)

type pgNotificationRepository struct {
	db     DBTX
	logger *zap.Logger
}

// Compile-time check
var _ NotificationRepository = (*pgNotificationRepository)(nil)

// NewPgNotificationRepository создает новый экземпляр репозитория уведомлений.
func NewPgNotificationRepository(db DBTX, logger *zap.Logger) NotificationRepository {
	return &pgNotificationRepository{
		db:     db,
		logger: logger.Named("PgNotificationRepo"),
	}
}

// Create вставляет запись; ID и временные метки назначает база.
func (r *pgNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	log := r.logger.With(zap.String("userID", n.UserID), zap.String("type", string(n.Type)))

	err := r.db.QueryRow(ctx, createNotificationQuery,
		n.UserID, n.Type, n.Title, n.Message, n.TitleKey, n.MessageKey,
		nullableParams(n.MessageParams), n.Link, n.Read, n.Deleted,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		log.Error("Failed to insert notification", zap.Error(err))
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	log.Debug("Notification inserted", zap.String("notificationID", n.ID.String()))
	return nil
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	return r.getOne(ctx, "get notification by id", getNotificationByIDQuery, id, userID)
}

func (r *pgNotificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	if err := pgxscan.Select(ctx, r.db, &notifications, listNotificationsQuery, userID, limit, offset); err != nil {
		r.logger.Error("Failed to list notifications", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	return notifications, nil
}

func (r *pgNotificationRepository) GetFirstUnread(ctx context.Context, userID string) (*models.Notification, error) {
	return r.getOne(ctx, "get first unread notification", firstUnreadQuery, userID)
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countUnreadQuery, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count unread notifications", zap.String("userID", userID), zap.Error(err))
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	return r.getOne(ctx, "mark notification as read", markReadQuery, id, userID)
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := r.db.Exec(ctx, markAllReadQuery, userID)
	if err != nil {
		r.logger.Error("Failed to mark all notifications as read", zap.String("userID", userID), zap.Error(err))
		return 0, fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgNotificationRepository) SoftDelete(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error) {
	return r.getOne(ctx, "soft delete notification", softDeleteQuery, id, userID)
}

// getOne выполняет запрос, возвращающий одну строку, и переводит pgx.ErrNoRows в models.ErrNotFound.
func (r *pgNotificationRepository) getOne(ctx context.Context, op, query string, args ...interface{}) (*models.Notification, error) {
	var n models.Notification
	if err := pgxscan.Get(ctx, r.db, &n, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Query failed", zap.String("op", op), zap.Any("args", args), zap.Error(err))
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &n, nil
}

// nullableParams хранит пустые параметры как SQL NULL, а не JSON null.
func nullableParams(params map[string]interface{}) interface{} {
	if len(params) == 0 {
		return nil
	}
	return params
}
