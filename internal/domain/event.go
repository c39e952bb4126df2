package domain

import "time"

// Live event names delivered to subscribers.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationUpdated = "notification.updated"
	EventInboxSnapshot       = "inbox.snapshot"
	EventNoteCreated         = "note.created"
	EventCandidateCreated    = "candidate.created"
)

// Activity is one entry of a user's recent-activity feed.
type Activity struct {
	Action      string    `json:"action"`
	CandidateID string    `json:"candidate_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
