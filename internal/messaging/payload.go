package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"finance-tracker/shared/models"
	"finance-tracker/shared/validation"
)

// TimestampLayout - ISO-8601 с миллисекундами, в UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EventNotification - имя события, которое получает клиент по WebSocket.
const EventNotification = "notification"

// NotificationEnvelope - тело сообщения в exchange notifications.
type NotificationEnvelope struct {
	UserID        string                  `json:"userId" validate:"required"`
	Type          models.NotificationType `json:"type" validate:"required,notification_type"`
	Title         string                  `json:"title,omitempty"`
	Message       string                  `json:"message,omitempty"`
	TitleKey      string                  `json:"titleKey,omitempty"`
	MessageKey    string                  `json:"messageKey,omitempty"`
	MessageParams map[string]interface{}  `json:"messageParams,omitempty"`
	Link          string                  `json:"link,omitempty"`
	CreatedAt     string                  `json:"createdAt,omitempty"`
}

// NewEnvelope собирает конверт из намерения. createdAt - момент публикации.
func NewEnvelope(userID string, intent models.NotificationIntent, createdAt time.Time) NotificationEnvelope {
	var n models.Notification
	intent.ApplyTo(&n)
	return NotificationEnvelope{
		UserID:        userID,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		TitleKey:      n.TitleKey,
		MessageKey:    n.MessageKey,
		MessageParams: n.MessageParams,
		Link:          n.Link,
		CreatedAt:     createdAt.UTC().Format(TimestampLayout),
	}
}

// ParseEnvelope декодирует и проверяет тело сообщения.
// Любая ошибка означает, что сообщение нельзя обработать повторно.
func ParseEnvelope(body []byte) (*NotificationEnvelope, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var env NotificationEnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrPoisonMessage, err)
	}
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoisonMessage, err)
	}
	return &env, nil
}

// Validate проверяет обязательные поля и наличие содержимого.
func (e *NotificationEnvelope) Validate() error {
	if err := validation.Struct(e); err != nil {
		return err
	}
	if e.Title == "" && e.Message == "" && e.TitleKey == "" && e.MessageKey == "" {
		return fmt.Errorf("%w: notification has no content", models.ErrInvalidInput)
	}
	return models.ValidateMessageParams(e.MessageParams)
}

// ToNotification возвращает запись для сохранения: непрочитанную и неудаленную.
func (e *NotificationEnvelope) ToNotification() *models.Notification {
	return &models.Notification{
		UserID:        e.UserID,
		Type:          e.Type,
		Title:         e.Title,
		Message:       e.Message,
		TitleKey:      e.TitleKey,
		MessageKey:    e.MessageKey,
		MessageParams: e.MessageParams,
		Link:          e.Link,
		Read:          false,
		Deleted:       false,
	}
}

// DeliveryEvent - кадр, который отправляется клиенту по WebSocket.
type DeliveryEvent struct {
	Event string       `json:"event"`
	Data  DeliveryData `json:"data"`
}

// DeliveryData - сохраненное уведомление в формате клиента.
type DeliveryData struct {
	ID            string                  `json:"_id"`
	Type          models.NotificationType `json:"type"`
	Title         string                  `json:"title,omitempty"`
	Message       string                  `json:"message,omitempty"`
	TitleKey      string                  `json:"titleKey,omitempty"`
	MessageKey    string                  `json:"messageKey,omitempty"`
	MessageParams map[string]interface{}  `json:"messageParams,omitempty"`
	Link          string                  `json:"link,omitempty"`
	Read          bool                    `json:"read"`
	CreatedAt     string                  `json:"createdAt"`
}

// NewDeliveryEvent строит событие из сохраненной записи (ID и CreatedAt - из хранилища).
func NewDeliveryEvent(n *models.Notification) DeliveryEvent {
	return DeliveryEvent{
		Event: EventNotification,
		Data: DeliveryData{
			ID:            n.ID.String(),
			Type:          n.Type,
			Title:         n.Title,
			Message:       n.Message,
			TitleKey:      n.TitleKey,
			MessageKey:    n.MessageKey,
			MessageParams: n.MessageParams,
			Link:          n.Link,
			Read:          false,
			CreatedAt:     n.CreatedAt.UTC().Format(TimestampLayout),
		},
	}
}
