package messaging

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Топология брокера, общая для Publisher и Consumer.
const (
	ExchangeName     = "notifications"
	ExchangeType     = amqp.ExchangeTopic
	QueueName        = "notifications.processor"
	QueueBindingKey  = "#"
	DLXExchangeName  = "notifications.dlx"
	DLXExchangeType  = amqp.ExchangeDirect
	DLQName          = "notifications.failed"
	DLQBindingKey    = ""
	MessageTTLMillis = int32(7 * 24 * 60 * 60 * 1000) // 7 дней
)

// declareExchange объявляет основной topic exchange. Операция идемпотентна.
func declareExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeName,
		ExchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange '%s': %w", ExchangeName, err)
	}
	return nil
}

// declareTopology объявляет exchange, очередь с TTL и DLX, dead-letter exchange и очередь failed.
func declareTopology(ch *amqp.Channel) error {
	if err := declareExchange(ch); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(DLXExchangeName, DLXExchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange '%s': %w", DLXExchangeName, err)
	}

	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue '%s': %w", DLQName, err)
	}
	if err := ch.QueueBind(DLQName, DLQBindingKey, DLXExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue '%s': %w", DLQName, err)
	}

	args := amqp.Table{
		"x-message-ttl":          MessageTTLMillis,
		"x-dead-letter-exchange": DLXExchangeName,
	}
	if _, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		args,
	); err != nil {
		return fmt.Errorf("failed to declare queue '%s': %w", QueueName, err)
	}
	if err := ch.QueueBind(QueueName, QueueBindingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue '%s': %w", QueueName, err)
	}
	return nil
}
