package service

import (
	"context"
	"fmt"

	"finance-tracker/internal/messaging"
	"finance-tracker/shared/models"

	"go.uber.org/zap"
)

// TransactionType - тип финансовой операции.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Ключи локализации и ссылки уведомлений о доменных событиях.
const (
	keyTransactionCreatedTitle   = "notifications.messages.transactionCreatedTitle"
	keyTransactionCreatedMessage = "notifications.messages.transactionCreatedMessage"
	keyTransactionUpdatedTitle   = "notifications.messages.transactionUpdatedTitle"
	keyTransactionUpdatedMessage = "notifications.messages.transactionUpdatedMessage"
	keyBudgetAlertTitle          = "notifications.messages.budgetAlertTitle"
	keyBudgetAlertMessage        = "notifications.messages.budgetAlertMessage"
	keyPeriodicExecutedTitle     = "notifications.messages.periodicTransactionExecutedTitle"
	keyPeriodicExecutedMessage   = "notifications.messages.periodicTransactionExecutedMessage"

	linkTransactions = "/dashboard/transactions"
	linkReports      = "/dashboard/reports"
)

// NotificationEvents превращает доменные события в уведомления.
// Ошибки публикации возвращаются; вызывающий код может их проигнорировать.
type NotificationEvents struct {
	publisher messaging.NotificationPublisher
	logger    *zap.Logger
}

// NewNotificationEvents создает помощник доменных уведомлений.
func NewNotificationEvents(publisher messaging.NotificationPublisher, logger *zap.Logger) *NotificationEvents {
	return &NotificationEvents{
		publisher: publisher,
		logger:    logger.Named("NotificationEvents"),
	}
}

// TransactionCreated уведомляет о созданной транзакции.
func (e *NotificationEvents) TransactionCreated(ctx context.Context, userID string, amount float64, txType TransactionType) error {
	return e.publish(ctx, userID, "transactionCreated", models.NotificationIntent{
		Type: models.NotificationTypeSuccess,
		Content: models.LocalizedContent{
			TitleKey:   keyTransactionCreatedTitle,
			MessageKey: keyTransactionCreatedMessage,
			Params:     map[string]interface{}{"type": string(txType), "amount": amount},
		},
		Link: linkTransactions,
	})
}

// TransactionUpdated уведомляет об измененной транзакции.
func (e *NotificationEvents) TransactionUpdated(ctx context.Context, userID string, amount float64, txType TransactionType) error {
	return e.publish(ctx, userID, "transactionUpdated", models.NotificationIntent{
		Type: models.NotificationTypeSuccess,
		Content: models.LocalizedContent{
			TitleKey:   keyTransactionUpdatedTitle,
			MessageKey: keyTransactionUpdatedMessage,
			Params:     map[string]interface{}{"type": string(txType), "amount": amount},
		},
		Link: linkTransactions,
	})
}

// BudgetAlert предупреждает о расходе бюджета на percentage процентов.
func (e *NotificationEvents) BudgetAlert(ctx context.Context, userID string, percentage float64) error {
	return e.publish(ctx, userID, "budgetAlert", models.NotificationIntent{
		Type: models.NotificationTypeWarning,
		Content: models.LocalizedContent{
			TitleKey:   keyBudgetAlertTitle,
			MessageKey: keyBudgetAlertMessage,
			Params:     map[string]interface{}{"percentage": percentage},
		},
		Link: linkReports,
	})
}

// PeriodicTransactionExecuted уведомляет о выполненной периодической транзакции.
func (e *NotificationEvents) PeriodicTransactionExecuted(ctx context.Context, userID, description string) error {
	return e.publish(ctx, userID, "periodicTransactionExecuted", models.NotificationIntent{
		Type: models.NotificationTypeInfo,
		Content: models.LocalizedContent{
			TitleKey:   keyPeriodicExecutedTitle,
			MessageKey: keyPeriodicExecutedMessage,
			Params:     map[string]interface{}{"description": description},
		},
		Link: linkTransactions,
	})
}

func (e *NotificationEvents) publish(ctx context.Context, userID, event string, intent models.NotificationIntent) error {
	if err := e.publisher.PublishNotification(ctx, userID, intent); err != nil {
		e.logger.Warn("Failed to publish domain notification",
			zap.String("event", event), zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to publish %s notification: %w", event, err)
	}
	return nil
}
