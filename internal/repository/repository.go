package repository

import (
	"context"

	"finance-tracker/shared/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - общий интерфейс для *pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// NotificationRepository определяет методы хранилища уведомлений.
//
//go:generate mockery --name NotificationRepository --output ../mocks --outpkg mocks --case=underscore
type NotificationRepository interface {
	// Create сохраняет уведомление и заполняет ID, CreatedAt и UpdatedAt.
	// После успешного возврата запись долговечна.
	Create(ctx context.Context, n *models.Notification) error

	// GetByID возвращает уведомление пользователя по ID, включая удаленные.
	// Возвращает models.ErrNotFound, если записи нет или она принадлежит другому пользователю.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)

	// ListByUser возвращает неудаленные уведомления пользователя, новые первыми.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Notification, error)

	// GetFirstUnread возвращает самое раннее непрочитанное уведомление.
	// Возвращает models.ErrNotFound, если непрочитанных нет.
	GetFirstUnread(ctx context.Context, userID string) (*models.Notification, error)

	// CountUnread возвращает число непрочитанных неудаленных уведомлений.
	CountUnread(ctx context.Context, userID string) (int64, error)

	// MarkRead помечает уведомление прочитанным и возвращает обновленную запись.
	MarkRead(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)

	// MarkAllRead помечает все неудаленные уведомления пользователя прочитанными.
	// Возвращает число обновленных записей.
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// SoftDelete помечает уведомление удаленным и возвращает обновленную запись.
	SoftDelete(ctx context.Context, userID string, id uuid.UUID) (*models.Notification, error)
}
