package domain

import "time"

// Note is one entry in a candidate's thread. Mentions holds the user IDs that
// were resolved from @tokens when the note was written; it is never recomputed.
type Note struct {
	NoteID      string    `json:"id" dynamodbav:"note_id"`
	CandidateID string    `json:"candidate_id" dynamodbav:"candidate_id"`
	Content     string    `json:"content" dynamodbav:"content"`
	AuthorID    string    `json:"sender_id" dynamodbav:"author_id"`
	AuthorName  string    `json:"sender_name" dynamodbav:"author_name"`
	Mentions    []string  `json:"mentions" dynamodbav:"mentions"`
	CreatedAt   time.Time `json:"timestamp" dynamodbav:"created_at"`
}

type CreateNoteRequest struct {
	CandidateID string `json:"candidateId" validate:"required"`
	Content     string `json:"content" validate:"required"`
}
