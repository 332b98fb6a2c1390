package models

import "time"

// NotificationKind is the severity of a notification.
type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// Notification is a transient feedback message for a mutation or load outcome.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Expired reports whether the notification is past its expiry at now.
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
