package handler

import (
	"context"
	"errors"
	"net/http"

	"finance-tracker/internal/messaging"
	"finance-tracker/internal/service"
	"finance-tracker/shared/models"
	"finance-tracker/shared/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DomainEvents - доменные события, которые другие сервисы превращают в уведомления.
type DomainEvents interface {
	TransactionCreated(ctx context.Context, userID string, amount float64, txType service.TransactionType) error
	TransactionUpdated(ctx context.Context, userID string, amount float64, txType service.TransactionType) error
	BudgetAlert(ctx context.Context, userID string, percentage float64) error
	PeriodicTransactionExecuted(ctx context.Context, userID, description string) error
}

const (
	eventTransactionCreated          = "transactionCreated"
	eventTransactionUpdated          = "transactionUpdated"
	eventBudgetAlert                 = "budgetAlert"
	eventPeriodicTransactionExecuted = "periodicTransactionExecuted"
)

type domainEventRequest struct {
	Event           string  `json:"event" validate:"required,oneof=transactionCreated transactionUpdated budgetAlert periodicTransactionExecuted"`
	UserID          string  `json:"userId" validate:"required"`
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transactionType" validate:"omitempty,oneof=income expense"`
	Percentage      float64 `json:"percentage" validate:"gte=0"`
	Description     string  `json:"description" validate:"required_if=Event periodicTransactionExecuted"`
}

// EventsHandler принимает доменные события от внутренних сервисов.
type EventsHandler struct {
	events DomainEvents
	logger *zap.Logger
}

func NewEventsHandler(events DomainEvents, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger.Named("EventsHandler")}
}

// RegisterRoutes регистрирует POST /internal/notifications/events.
func (h *EventsHandler) RegisterRoutes(router gin.IRouter, middlewares ...gin.HandlerFunc) {
	group := router.Group("/internal/notifications", middlewares...)
	group.POST("/events", h.publishEvent)
}

func (h *EventsHandler) publishEvent(c *gin.Context) {
	var req domainEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if err := validation.Struct(req); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if (req.Event == eventTransactionCreated || req.Event == eventTransactionUpdated) && req.TransactionType == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "transactionType is required for transaction events"})
		return
	}

	ctx := c.Request.Context()
	var err error
	switch req.Event {
	case eventTransactionCreated:
		err = h.events.TransactionCreated(ctx, req.UserID, req.Amount, service.TransactionType(req.TransactionType))
	case eventTransactionUpdated:
		err = h.events.TransactionUpdated(ctx, req.UserID, req.Amount, service.TransactionType(req.TransactionType))
	case eventBudgetAlert:
		err = h.events.BudgetAlert(ctx, req.UserID, req.Percentage)
	case eventPeriodicTransactionExecuted:
		err = h.events.PeriodicTransactionExecuted(ctx, req.UserID, req.Description)
	}

	if err != nil {
		if errors.Is(err, messaging.ErrBrokerUnavailable) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Notification broker unavailable"})
			return
		}
		handleServiceError(c, h.logger, err)
		return
	}

	h.logger.Debug("Domain event accepted",
		zap.String("event", req.Event),
		zap.String("userID", req.UserID),
		zap.String("sourceService", c.GetString(models.SourceServiceContextKey)),
	)
	c.JSON(http.StatusAccepted, models.DataResponse{Success: true, Message: "Event accepted"})
}
