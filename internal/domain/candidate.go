package domain

import "time"

// CandidateStatus is the pipeline stage of a candidate.
type CandidateStatus string

const (
	CandidatePending     CandidateStatus = "pending"
	CandidateReviewed    CandidateStatus = "reviewed"
	CandidateInterviewed CandidateStatus = "interviewed"
	CandidateHired       CandidateStatus = "hired"
	CandidateRejected    CandidateStatus = "rejected"
)

// Valid reports whether s is one of the known pipeline stages.
func (s CandidateStatus) Valid() bool {
	switch s {
	case CandidatePending, CandidateReviewed, CandidateInterviewed, CandidateHired, CandidateRejected:
		return true
	}
	return false
}

// Candidate is a person in the shared hiring pipeline. Every authenticated user
// may read and write every candidate; CreatedBy is informational only.
type Candidate struct {
	CandidateID string          `json:"id" dynamodbav:"candidate_id"`
	Name        string          `json:"name" dynamodbav:"name"`
	Email       string          `json:"email" dynamodbav:"email"`
	Position    *string         `json:"position,omitempty" dynamodbav:"position,omitempty"`
	Phone       *string         `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Location    *string         `json:"location,omitempty" dynamodbav:"location,omitempty"`
	Status      CandidateStatus `json:"status" dynamodbav:"status"`
	ResumeKey   *string         `json:"resume_key,omitempty" dynamodbav:"resume_key,omitempty"`
	CreatedBy   string          `json:"created_by" dynamodbav:"created_by"`
	CreatedAt   time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time       `json:"updated" dynamodbav:"updated_at"`
}

type CreateCandidateRequest struct {
	Name     string          `json:"name" validate:"required,min=2"`
	Email    string          `json:"email" validate:"required,email"`
	Position *string         `json:"position"`
	Phone    *string         `json:"phone"`
	Location *string         `json:"location"`
	Status   CandidateStatus `json:"status"`
}

type UpdateCandidateRequest struct {
	Name     *string          `json:"name" validate:"omitempty,min=2"`
	Email    *string          `json:"email" validate:"omitempty,email"`
	Position *string          `json:"position"`
	Phone    *string          `json:"phone"`
	Location *string          `json:"location"`
	Status   *CandidateStatus `json:"status"`
}
