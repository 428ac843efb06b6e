package messaging

import "errors"

var (
	// ErrBrokerUnavailable - брокер недоступен или не подтвердил публикацию.
	ErrBrokerUnavailable = errors.New("message broker unavailable")
	// ErrPoisonMessage - сообщение нельзя обработать (битое тело или ошибка сохранения).
	ErrPoisonMessage = errors.New("poison message")
)
