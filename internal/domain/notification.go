package domain

import "context"

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = "info"
	// NotificationLevelError is for error messages.
	NotificationLevelError NotificationLevel = "error"
)

// Notification is an operator-facing message about an operation outcome.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Level NotificationLevel `json:"level"`
}

// InfoNotification creates an info-level notification.
func InfoNotification(title, body string) *Notification {
	return &Notification{Title: title, Body: body, Level: NotificationLevelInfo}
}

// ErrorNotification creates an error-level notification.
func ErrorNotification(title, body string) *Notification {
	return &Notification{Title: title, Body: body, Level: NotificationLevelError}
}

// Notifier sends notifications.
type Notifier interface {
	// Notify sends a notification.
	Notify(ctx context.Context, notification *Notification) error

	// Validate checks if the notifier is properly configured.
	Validate(ctx context.Context) error
}

// NopNotifier is a no-op notifier.
type NopNotifier struct{}

// Notify does nothing.
func (n *NopNotifier) Notify(_ context.Context, _ *Notification) error {
	return nil
}

// Validate always returns nil.
func (n *NopNotifier) Validate(_ context.Context) error {
	return nil
}
