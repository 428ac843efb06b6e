package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationType - категория уведомления.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Valid проверяет, что тип входит в фиксированный набор.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeSuccess, NotificationTypeWarning, NotificationTypeError:
		return true
	}
	return false
}

// Notification - сохраненное уведомление (таблица notifications).
// Содержимое хранится плоско: либо Title/Message, либо TitleKey/MessageKey/MessageParams.
type Notification struct {
	ID            uuid.UUID              `json:"_id" db:"id"`
	UserID        string                 `json:"userId" db:"user_id"`
	Type          NotificationType       `json:"type" db:"type"`
	Title         string                 `json:"title,omitempty" db:"title"`
	Message       string                 `json:"message,omitempty" db:"message"`
	TitleKey      string                 `json:"titleKey,omitempty" db:"title_key"`
	MessageKey    string                 `json:"messageKey,omitempty" db:"message_key"`
	MessageParams map[string]interface{} `json:"messageParams,omitempty" db:"message_params"`
	Link          string                 `json:"link,omitempty" db:"link"`
	Read          bool                   `json:"read" db:"read"`
	Deleted       bool                   `json:"deleted" db:"deleted"`
	CreatedAt     time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time              `json:"updatedAt" db:"updated_at"`
}

// HasContent сообщает, заполнен ли хотя бы один из режимов содержимого.
func (n *Notification) HasContent() bool {
	return n.Title != "" || n.Message != "" || n.TitleKey != "" || n.MessageKey != ""
}

// NotificationContent - содержимое уведомления на границе API.
// Реализации: TextContent (готовый текст) и LocalizedContent (ключи i18n + параметры).
type NotificationContent interface {
	isNotificationContent()
	validate() error
	applyTo(n *Notification)
}

// TextContent - литеральный заголовок и текст.
type TextContent struct {
	Title   string
	Message string
}

func (TextContent) isNotificationContent() {}

func (c TextContent) validate() error {
	if c.Title == "" && c.Message == "" {
		return fmt.Errorf("%w: text content requires title or message", ErrInvalidInput)
	}
	return nil
}

func (c TextContent) applyTo(n *Notification) {
	n.Title = c.Title
	n.Message = c.Message
}

// LocalizedContent - ключи локализации и параметры для интерполяции на клиенте.
// Значения Params - только строки или числа.
type LocalizedContent struct {
	TitleKey   string
	MessageKey string
	Params     map[string]interface{}
}

func (LocalizedContent) isNotificationContent() {}

func (c LocalizedContent) validate() error {
	if c.TitleKey == "" && c.MessageKey == "" {
		return fmt.Errorf("%w: localized content requires titleKey or messageKey", ErrInvalidInput)
	}
	return ValidateMessageParams(c.Params)
}

func (c LocalizedContent) applyTo(n *Notification) {
	n.TitleKey = c.TitleKey
	n.MessageKey = c.MessageKey
	n.MessageParams = c.Params
}

// ValidateMessageParams проверяет, что все значения параметров - строки или числа.
func ValidateMessageParams(params map[string]interface{}) error {
	for key, value := range params {
		switch value.(type) {
		case string, json.Number,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("%w: messageParams[%q] must be a string or a number, got %T", ErrInvalidInput, key, value)
		}
	}
	return nil
}

// NotificationIntent - намерение отправить уведомление пользователю.
type NotificationIntent struct {
	Type    NotificationType
	Content NotificationContent
	Link    string
}

// Validate проверяет тип и наличие ровно одного режима содержимого.
func (i NotificationIntent) Validate() error {
	if !i.Type.Valid() {
		return fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, i.Type)
	}
	if i.Content == nil {
		return fmt.Errorf("%w: notification content is required", ErrInvalidInput)
	}
	return i.Content.validate()
}

// ApplyTo переносит тип, содержимое и ссылку в плоскую запись.
func (i NotificationIntent) ApplyTo(n *Notification) {
	n.Type = i.Type
	n.Link = i.Link
	if i.Content != nil {
		i.Content.applyTo(n)
	}
}
