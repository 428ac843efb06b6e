package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConsumerState - состояние подключения консьюмера к брокеру.
type ConsumerState int32

const (
	StateDisconnected ConsumerState = iota
	StateConnecting
	StateConnected
)

func (s ConsumerState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	}
	return fmt.Sprintf("ConsumerState(%d)", int32(s))
}

// MessageProcessor обрабатывает одно сообщение и сам решает ack/nack.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, d amqp.Delivery)
}

// ConsumerConfig - настройки консьюмера.
type ConsumerConfig struct {
	URL         string
	Concurrency int
	RetryDelay  time.Duration
	ConsumerTag string
}

// Consumer читает очередь notifications.processor пулом воркеров
// и переподключается к брокеру с фиксированной задержкой.
type Consumer struct {
	cfg       ConsumerConfig
	logger    *zap.Logger
	processor MessageProcessor
	dial      DialFunc

	state atomic.Int32

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	// Принадлежат горутине цикла run.
	conn *amqp.Connection
	ch   *amqp.Channel
	wg   sync.WaitGroup
}

// session - живое подключение: сигналы закрытия соединения и канала.
type session struct {
	connClosed <-chan *amqp.Error
	chClosed   <-chan *amqp.Error
}

// NewConsumer создает консьюмер. Подключение начинается только в Start.
func NewConsumer(cfg ConsumerConfig, processor MessageProcessor, logger *zap.Logger) *Consumer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	if cfg.ConsumerTag == "" {
		cfg.ConsumerTag = "notification-consumer"
	}
	c := &Consumer{
		cfg:       cfg,
		logger:    logger.Named("NotificationConsumer"),
		processor: processor,
		dial:      contextDialer(DefaultDialTimeout),
	}
	c.setState(StateDisconnected)
	return c
}

// State возвращает текущее состояние.
func (c *Consumer) State() ConsumerState {
	return ConsumerState(c.state.Load())
}

func (c *Consumer) setState(s ConsumerState) {
	c.state.Store(int32(s))
	consumerState.Set(float64(s))
}

// Start запускает цикл подключения в отдельной горутине. Повторный вызов ничего не делает.
func (c *Consumer) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(loopCtx)
}

// Stop останавливает цикл переподключения, отменяет подписку, дожидается воркеров
// и закрывает канал и соединение. Ошибки закрытия только логируются.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	c.logger.Info("Инициирована остановка консьюмера...")
	cancel()
	<-done
	c.logger.Info("Консьюмер остановлен")
}

// SubscribeUser вызывается шлюзом при подключении пользователя.
// Реестр соединений уже достаточен для доставки, поэтому здесь только логирование.
func (c *Consumer) SubscribeUser(userID string) {
	c.logger.Debug("User subscribed to live notifications", zap.String("userID", userID))
}

// UnsubscribeUser вызывается шлюзом при отключении пользователя.
func (c *Consumer) UnsubscribeUser(userID string) {
	c.logger.Debug("User unsubscribed from live notifications", zap.String("userID", userID))
}

// run - единственная горутина подключения, поэтому одновременно идет не больше одной попытки.
func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		c.setState(StateConnecting)
		consumerConnectAttemptsTotal.Inc()

		sess, err := c.connect(ctx)
		if err != nil {
			c.logger.Error("Не удалось подключиться к RabbitMQ", zap.Error(err), zap.Duration("retry_in", c.cfg.RetryDelay))
		} else {
			c.setState(StateConnected)
			c.logger.Info("Консьюмер подключен, ожидание сообщений...",
				zap.String("queue", QueueName), zap.Int("concurrency", c.cfg.Concurrency))

			select {
			case <-ctx.Done():
			case amqpErr := <-sess.connClosed:
				c.logger.Warn("Соединение с RabbitMQ закрыто", zap.Any("reason", amqpErr))
			case amqpErr := <-sess.chClosed:
				c.logger.Warn("Канал RabbitMQ закрыт", zap.Any("reason", amqpErr))
			}
		}

		c.teardown()
		c.setState(StateDisconnected)

		if ctx.Err() != nil {
			return
		}

		timer := time.NewTimer(c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// connect открывает соединение и канал, объявляет топологию и запускает воркеров.
func (c *Consumer) connect(ctx context.Context) (*session, error) {
	conn, err := c.dial(ctx, c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	c.conn = conn
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	c.ch = ch
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	if err := declareTopology(ch); err != nil {
		return nil, err
	}
	if err := ch.Qos(c.cfg.Concurrency, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		QueueName,
		c.cfg.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	// Остановка не должна обрывать сохранение уже полученных сообщений,
	// иначе они уйдут в DLQ. Время обработки ограничивает Processor.
	workCtx := context.WithoutCancel(ctx)
	c.wg.Add(c.cfg.Concurrency)
	for i := 0; i < c.cfg.Concurrency; i++ {
		go c.worker(workCtx, i, deliveries)
	}

	return &session{connClosed: connClosed, chClosed: chClosed}, nil
}

func (c *Consumer) worker(ctx context.Context, workerID int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()
	logger := c.logger.With(zap.Int("worker_id", workerID))
	logger.Debug("Воркер запущен")

	for d := range deliveries {
		logger.Debug("Получено сообщение", zap.Uint64("delivery_tag", d.DeliveryTag))
		c.processor.ProcessMessage(ctx, d)
	}
	logger.Debug("Канал сообщений закрыт, воркер завершает работу")
}

// teardown отменяет подписку, ждет воркеров и закрывает канал и соединение.
// Оба закрытия выполняются, даже если одно из них завершилось ошибкой.
func (c *Consumer) teardown() {
	if c.ch != nil {
		if err := c.ch.Cancel(c.cfg.ConsumerTag, false); err != nil {
			c.logClose("Failed to cancel consumer", err)
		}
	}

	c.wg.Wait()

	if c.ch != nil {
		if err := c.ch.Close(); err != nil {
			c.logClose("Failed to close channel", err)
		}
		c.ch = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logClose("Failed to close connection", err)
		}
		c.conn = nil
	}
}

func (c *Consumer) logClose(msg string, err error) {
	if errors.Is(err, amqp.ErrClosed) {
		c.logger.Debug(msg, zap.Error(err))
		return
	}
	c.logger.Warn(msg, zap.Error(err))
}
