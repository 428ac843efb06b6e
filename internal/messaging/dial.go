package messaging

import (
	"context"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultDialTimeout ограничивает TCP подключение и AMQP handshake, если у ctx нет более раннего дедлайна.
const DefaultDialTimeout = 10 * time.Second

// DialFunc открывает соединение с брокером с учетом ctx.
type DialFunc func(ctx context.Context, url string) (*amqp.Connection, error)

// contextDialer возвращает DialFunc, у которого TCP подключение отменяется вместе с ctx,
// а handshake ограничен дедлайном ctx или timeout (что раньше).
func contextDialer(timeout time.Duration) DialFunc {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return func(ctx context.Context, url string) (*amqp.Connection, error) {
		return amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial: func(network, addr string) (net.Conn, error) {
				deadline := time.Now().Add(timeout)
				if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
					deadline = ctxDeadline
				}
				d := net.Dialer{Deadline: deadline}
				conn, err := d.DialContext(ctx, network, addr)
				if err != nil {
					return nil, err
				}
				// amqp снимает дедлайн после успешного handshake.
				if err := conn.SetDeadline(deadline); err != nil {
					_ = conn.Close()
					return nil, err
				}
				return conn, nil
			},
		})
	}
}
