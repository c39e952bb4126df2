package domain

import "time"

// NotificationType tags what produced a notification.
type NotificationType string

const (
	NotificationMention   NotificationType = "mention"
	NotificationNote      NotificationType = "note"
	NotificationCandidate NotificationType = "candidate"
	NotificationSystem    NotificationType = "system"
)

// Notification belongs to exactly one recipient. UnreadUserID mirrors UserID
// while the notification is unread and is removed once read; it keys the sparse
// unread index.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	UserID         string           `json:"user_id" dynamodbav:"user_id"`
	UnreadUserID   string           `json:"-" dynamodbav:"unread_user_id,omitempty"`
	Type           NotificationType `json:"type" dynamodbav:"type"`
	Message        string           `json:"message" dynamodbav:"message"`
	Content        string           `json:"content,omitempty" dynamodbav:"content,omitempty"`
	CandidateID    string           `json:"candidate_id,omitempty" dynamodbav:"candidate_id,omitempty"`
	CandidateName  string           `json:"candidate_name,omitempty" dynamodbav:"candidate_name,omitempty"`
	NoteID         string           `json:"note_id,omitempty" dynamodbav:"note_id,omitempty"`
	FromUserID     string           `json:"from_user_id,omitempty" dynamodbav:"from_user_id,omitempty"`
	FromUserName   string           `json:"from_user_name,omitempty" dynamodbav:"from_user_name,omitempty"`
	Read           bool             `json:"read" dynamodbav:"read"`
	ReadAt         *time.Time       `json:"read_at,omitempty" dynamodbav:"read_at,omitempty"`
	CreatedAt      time.Time        `json:"timestamp" dynamodbav:"created_at"`
}

type MarkNotificationRequest struct {
	Read *bool `json:"read" validate:"required"`
}
