package models

import "time"

type NotificationType string

const (
	NotificationInfo      NotificationType = "info"
	NotificationRejection NotificationType = "rejection"
)

type Notification struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"isRead"`
	CreatedAt time.Time        `json:"timestamp"`
}
