package messaging

// Exposes unexported metrics to the external messaging_test package.
var (
	NotificationsPushFailuresTotal = notificationsPushFailuresTotal
	NotificationsDeadLetteredTotal = notificationsDeadLetteredTotal
)
