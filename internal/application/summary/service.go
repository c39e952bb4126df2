package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/recruit-notes/internal/domain"
)

const (
	defaultRole      = "the open position"
	questionFallback = "Unable to generate follow-up questions at this time."
)

var errNotConfigured = errors.New("AI service is not configured")

type Service interface {
	Summarize(ctx context.Context, candidateID string) (*domain.CandidateSummary, error)
	FollowUpQuestions(ctx context.Context, candidateID string) ([]string, error)
}

type Generator interface {
	Summarize(ctx context.Context, name, role string, notes []string) (*domain.CandidateSummary, error)
	FollowUpQuestions(ctx context.Context, name, role string, notes []string) ([]string, error)
}

type candidateReader interface {
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
}

type noteReader interface {
	ListByCandidate(ctx context.Context, candidateID string, limit int32, cursor string) ([]domain.Note, string, error)
}

type service struct {
	candidates candidateReader
	notes      noteReader
	generator  Generator
}

type ServiceDeps struct {
	Candidates candidateReader
	NoteRepo   noteReader
	// Generator may be nil, in which case every call returns the fallback.
	Generator Generator
}

func NewService(deps ServiceDeps) Service {
	return &service{candidates: deps.Candidates, notes: deps.NoteRepo, generator: deps.Generator}
}

// Summarize never fails because of the model: generator errors yield a
// fallback summary flagged with Fallback. Lookup errors are returned.
func (s *service) Summarize(ctx context.Context, candidateID string) (*domain.CandidateSummary, error) {
	c, notes, err := s.load(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	var out *domain.CandidateSummary
	if s.generator == nil {
		err = errNotConfigured
	} else {
		out, err = s.generator.Summarize(ctx, c.Name, role(c), notes)
	}
	if err != nil {
		slog.Error("generate candidate summary", "candidate_id", candidateID, "err", err)
		return Fallback(c.Name), nil
	}
	return out, nil
}

func (s *service) FollowUpQuestions(ctx context.Context, candidateID string) ([]string, error) {
	c, notes, err := s.load(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	var out []string
	if s.generator == nil {
		err = errNotConfigured
	} else {
		out, err = s.generator.FollowUpQuestions(ctx, c.Name, role(c), notes)
	}
	if err != nil {
		slog.Error("generate follow-up questions", "candidate_id", candidateID, "err", err)
		return []string{questionFallback}, nil
	}
	return out, nil
}

func (s *service) load(ctx context.Context, candidateID string) (*domain.Candidate, []string, error) {
	c, err := s.candidates.Get(ctx, candidateID)
	if err != nil {
		return nil, nil, err
	}
	notes, _, err := s.notes.ListByCandidate(ctx, candidateID, 0, "")
	if err != nil {
		return nil, nil, err
	}
	contents := make([]string, len(notes))
	for i, n := range notes {
		contents[i] = n.Content
	}
	return c, contents, nil
}

func role(c *domain.Candidate) string {
	if c.Position != nil && *c.Position != "" {
		return *c.Position
	}
	return defaultRole
}

// Fallback is the summary shown when the model cannot produce one. The
// cause is logged by the caller and never shown to the user.
func Fallback(name string) *domain.CandidateSummary {
	return &domain.CandidateSummary{
		OverallAssessment: fmt.Sprintf("Unable to generate AI summary for %s at this time. The AI service encountered an error. Please review the notes manually or try again later.", name),
		KeyStrengths:      []string{"Manual review required - AI analysis unavailable"},
		AreasOfConcern:    []string{"AI analysis failed - please review notes manually"},
		TechnicalSkills:   []string{},
		SoftSkills:        []string{},
		Recommendation:    domain.RecommendMaybe,
		ConfidenceScore:   0,
		NextSteps: []string{
			"Manual review of interview notes recommended",
			"Check if Gemini API is properly enabled in Google Cloud Console",
			"Verify API key permissions and quotas",
			"Consider re-running AI analysis later",
		},
		Fallback: true,
	}
}
