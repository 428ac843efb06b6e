package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"finance-tracker/shared/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// NotificationPublisher - то, что нужно доменному коду для отправки уведомлений.
//
//go:generate mockery --name NotificationPublisher --output ../mocks --outpkg mocks --case=underscore
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, userID string, intent models.NotificationIntent) error
}

// PublisherConfig - настройки издателя уведомлений.
type PublisherConfig struct {
	URL     string
	Enabled bool
	// ConfirmTimeout ограничивает ожидание подтверждения брокера, если у ctx нет дедлайна.
	ConfirmTimeout time.Duration
}

// Publisher публикует уведомления в exchange notifications.
// Соединение открывается лениво при первой публикации и переоткрывается после обрыва.
type Publisher struct {
	cfg    PublisherConfig
	logger *zap.Logger
	dial   DialFunc
	now    func() time.Time

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

var _ NotificationPublisher = (*Publisher)(nil)

// NewPublisher создает издателя. Соединение с брокером не открывается.
func NewPublisher(cfg PublisherConfig, logger *zap.Logger) *Publisher {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 5 * time.Second
	}
	return &Publisher{
		cfg:    cfg,
		logger: logger.Named("NotificationPublisher"),
		dial:   contextDialer(cfg.ConfirmTimeout),
		now:    time.Now,
	}
}

// PublishNotification публикует уведомление для userID с routing key = userID.
// При выключенной функции ничего не делает и возвращает nil.
// Ошибки брокера оборачивают ErrBrokerUnavailable; повторных попыток нет.
func (p *Publisher) PublishNotification(ctx context.Context, userID string, intent models.NotificationIntent) error {
	if !p.cfg.Enabled {
		return nil
	}

	log := p.logger.With(zap.String("userID", userID), zap.String("type", string(intent.Type)))

	if userID == "" {
		return fmt.Errorf("%w: userID is required", models.ErrInvalidInput)
	}
	if err := intent.Validate(); err != nil {
		log.Warn("Invalid notification intent", zap.Error(err))
		return err
	}

	body, err := json.Marshal(NewEnvelope(userID, intent, p.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal notification envelope: %w", err)
	}

	// Подключение и подтверждение ограничены ctx; без дедлайна - ConfirmTimeout.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ConfirmTimeout)
		defer cancel()
	}

	ch, err := p.channel(ctx)
	if err != nil {
		notificationsPublishedTotal.WithLabelValues("unavailable").Inc()
		log.Error("Broker is unavailable", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(ctx,
		ExchangeName,
		userID, // routing key
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		p.dropChannel(ch)
		notificationsPublishedTotal.WithLabelValues("unavailable").Inc()
		log.Error("Failed to publish notification", zap.Error(err))
		return fmt.Errorf("%w: publish failed: %v", ErrBrokerUnavailable, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		notificationsPublishedTotal.WithLabelValues("unconfirmed").Inc()
		log.Error("Publish confirmation was not received", zap.Error(err))
		return fmt.Errorf("%w: confirmation not received: %v", ErrBrokerUnavailable, err)
	}
	if !acked {
		notificationsPublishedTotal.WithLabelValues("nacked").Inc()
		log.Error("Broker nacked notification")
		return fmt.Errorf("%w: broker nacked the message", ErrBrokerUnavailable)
	}

	notificationsPublishedTotal.WithLabelValues("ok").Inc()
	log.Debug("Notification published")
	return nil
}

// channel возвращает открытый канал в режиме подтверждений, при необходимости подключаясь заново.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	conn, err := p.dial(ctx, p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn, p.ch = conn, ch
	p.logger.Info("Publisher connected to RabbitMQ", zap.String("exchange", ExchangeName))
	return ch, nil
}

// dropChannel сбрасывает соединение, если оно все еще текущее, чтобы следующий вызов переподключился.
func (p *Publisher) dropChannel(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == ch {
		p.closeLocked()
	}
}

func (p *Publisher) closeLocked() error {
	var errs []error
	if p.ch != nil {
		if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		p.ch = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		p.conn = nil
	}
	return errors.Join(errs...)
}

// Close закрывает канал и соединение. Пытается закрыть оба, ошибки объединяются.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}
