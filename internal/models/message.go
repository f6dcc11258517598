package models

import (
	"strings"
	"time"

	"github.com/campuscart/backend/internal/validation"
)

type Message struct {
	ID          string    `json:"id"`
	Sender      string    `json:"sender"`
	Receiver    string    `json:"receiver"`
	Content     string    `json:"content"`
	ProductCode *int      `json:"productCode,omitempty"`
	Read        bool      `json:"isRead"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Other returns the participant of m that is not username.
func (m *Message) Other(username string) string {
	if m.Sender == username {
		return m.Receiver
	}
	return m.Sender
}

type SendMessageRequest struct {
	Receiver    string `json:"receiver" validate:"required"`
	Content     string `json:"content" validate:"required,max=2000"`
	ProductCode *int   `json:"productCode,omitempty"`
}

func (r *SendMessageRequest) Validate() map[string]string {
	r.Content = strings.TrimSpace(r.Content)
	r.Receiver = strings.TrimSpace(r.Receiver)
	return validation.Struct(r)
}

// Conversation summarizes the thread with one user about one listing (or
// about no listing when ProductCode is nil).
type Conversation struct {
	OtherUser     string   `json:"otherUser"`
	ProductCode   *int     `json:"productCode,omitempty"`
	LatestMessage *Message `json:"latestMessage"`
	UnreadCount   int      `json:"unreadCount"`
}

type UnreadCount struct {
	Count int `json:"count"`
}
