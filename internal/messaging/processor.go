package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"finance-tracker/internal/repository"
	"finance-tracker/shared/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultPersistTimeout ограничивает сохранение одного сообщения.
const DefaultPersistTimeout = 15 * time.Second

// LiveRegistry - реестр живых WebSocket сессий (реализует handler.ConnectionManager).
type LiveRegistry interface {
	Lookup(userID string) (string, bool)
	PushToSession(sessionID string, payload []byte) error
}

// Processor обрабатывает одно сообщение: разбор, сохранение, доставка, подтверждение.
type Processor struct {
	repo           repository.NotificationRepository
	registry       LiveRegistry
	logger         *zap.Logger
	persistTimeout time.Duration
}

var _ MessageProcessor = (*Processor)(nil)

// NewProcessor создает обработчик. registry может быть nil: тогда уведомления только сохраняются.
func NewProcessor(repo repository.NotificationRepository, registry LiveRegistry, logger *zap.Logger, persistTimeout time.Duration) *Processor {
	if persistTimeout <= 0 {
		persistTimeout = DefaultPersistTimeout
	}
	return &Processor{
		repo:           repo,
		registry:       registry,
		logger:         logger.Named("NotificationProcessor"),
		persistTimeout: persistTimeout,
	}
}

// ProcessMessage сохраняет уведомление и только после этого подтверждает сообщение.
// Битое сообщение или ошибка сохранения - nack без повторной постановки (уходит в DLQ).
// Ошибка доставки по WebSocket на подтверждение не влияет.
func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	notificationsReceivedTotal.Inc()
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag), zap.String("routing_key", d.RoutingKey))

	env, err := ParseEnvelope(d.Body)
	if err != nil {
		log.Error("Ошибка разбора сообщения", zap.Error(err), zap.ByteString("body", d.Body))
		p.reject(log, d, "malformed")
		return
	}

	n := env.ToNotification()
	log = log.With(zap.String("userID", n.UserID))

	persistCtx, cancel := context.WithTimeout(ctx, p.persistTimeout)
	err = p.repo.Create(persistCtx, n)
	cancel()
	if err != nil {
		reason := "persist_failed"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "persist_timeout"
		}
		log.Error("Ошибка сохранения уведомления", zap.Error(err))
		p.reject(log, d, reason)
		return
	}
	notificationsPersistedTotal.Inc()
	log = log.With(zap.String("notificationID", n.ID.String()))

	p.deliver(log, n)

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ошибка Ack сообщения после сохранения", zap.Error(ackErr))
		return
	}
	log.Info("Уведомление сохранено и подтверждено (Ack)")
}

// deliver отправляет уведомление в живую сессию получателя, если она есть.
func (p *Processor) deliver(log *zap.Logger, n *models.Notification) {
	if p.registry == nil {
		return
	}
	sessionID, ok := p.registry.Lookup(n.UserID)
	if !ok {
		log.Debug("Получатель не в сети, уведомление ждет в хранилище")
		return
	}

	frame, err := json.Marshal(NewDeliveryEvent(n))
	if err != nil {
		notificationsPushFailuresTotal.Inc()
		log.Warn("Не удалось сериализовать событие доставки", zap.Error(err))
		return
	}

	if err := p.registry.PushToSession(sessionID, frame); err != nil {
		notificationsPushFailuresTotal.Inc()
		log.Warn("Не удалось доставить уведомление в сессию", zap.String("sessionID", sessionID), zap.Error(err))
		return
	}
	notificationsPushedTotal.Inc()
	log.Debug("Уведомление доставлено в сессию", zap.String("sessionID", sessionID))
}

func (p *Processor) reject(log *zap.Logger, d amqp.Delivery, reason string) {
	notificationsDeadLetteredTotal.WithLabelValues(reason).Inc()
	if err := d.Nack(false, false); err != nil {
		log.Error("Ошибка Nack сообщения", zap.Error(err), zap.String("reason", reason))
		return
	}
	log.Warn("Сообщение отклонено в DLQ", zap.String("reason", reason))
}
