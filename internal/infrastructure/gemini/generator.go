// Package gemini generates candidate assessments with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/recruit-notes/internal/domain"
	"google.golang.org/genai"
)

var (
	ErrNoJSON        = errors.New("no JSON found in model response")
	ErrMissingFields = errors.New("model response is missing required fields")
)

type textModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator builds prompts, calls the model and parses its JSON answers.
type Generator struct {
	model textModel
}

// NewGenerator connects to the Gemini API with an API key.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Generator{model: &genaiModel{client: client, name: model}}, nil
}

// Summarize asks the model for a structured assessment of the notes.
func (g *Generator) Summarize(ctx context.Context, name, role string, notes []string) (*domain.CandidateSummary, error) {
	text, err := g.model.GenerateText(ctx, summaryPrompt(name, role, notes))
	if err != nil {
		return nil, err
	}
	return parseSummary(text)
}

// FollowUpQuestions asks the model for interview questions not yet covered.
func (g *Generator) FollowUpQuestions(ctx context.Context, name, role string, notes []string) ([]string, error) {
	text, err := g.model.GenerateText(ctx, followUpPrompt(name, role, notes))
	if err != nil {
		return nil, err
	}
	return parseQuestions(text)
}

type genaiModel struct {
	client *genai.Client
	name   string
}

func (m *genaiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
		TopP:        genai.Ptr[float32](0.95),
		TopK:        genai.Ptr[float32](40),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return result.Text(), nil
}

func parseSummary(text string) (*domain.CandidateSummary, error) {
	raw, err := extract(text, '{', '}')
	if err != nil {
		return nil, err
	}
	var s domain.CandidateSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	if s.OverallAssessment == "" || s.Recommendation == "" {
		return nil, ErrMissingFields
	}
	s.Fallback = false
	return &s, nil
}

func parseQuestions(text string) ([]string, error) {
	raw, err := extract(text, '[', ']')
	if err != nil {
		return nil, err
	}
	var qs []string
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

// extract drops markdown code fences and returns the span from the first
// open to the last close delimiter.
func extract(text string, open, close byte) (string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	start := strings.IndexByte(cleaned, open)
	end := strings.LastIndexByte(cleaned, close)
	if start < 0 || end < start {
		return "", ErrNoJSON
	}
	return cleaned[start : end+1], nil
}

func summaryPrompt(name, role string, notes []string) string {
	return fmt.Sprintf(`As an AI hiring assistant, analyze the following candidate interview notes and provide a comprehensive summary.

Candidate: %s
Role: %s

Interview Notes:
%s

Provide a structured analysis in the following JSON format:
{
  "overallAssessment": "A 2-3 sentence overall assessment of the candidate",
  "keyStrengths": ["strength1", "strength2", "strength3"],
  "areasOfConcern": ["concern1", "concern2"],
  "technicalSkills": ["skill1", "skill2", "skill3"],
  "softSkills": ["skill1", "skill2", "skill3"],
  "recommendation": "Strong Hire|Hire|Maybe|No Hire",
  "confidenceScore": 85,
  "nextSteps": ["next step 1", "next step 2"]
}

Base your analysis on technical competency, communication skills, problem-solving ability, cultural fit indicators, experience relevance and any red flags mentioned in the notes.
Be objective and professional. If information is limited, acknowledge this in your assessment.

Return only valid JSON without any markdown formatting or code blocks.`, name, role, strings.Join(notes, "\n\n"))
}

func followUpPrompt(name, role string, notes []string) string {
	return fmt.Sprintf(`Based on the following interview notes for %s applying for %s, suggest 5 insightful follow-up questions that would help better evaluate this candidate.

Notes:
%s

Focus on areas not yet explored, clarifying technical competencies, understanding cultural fit and assessing problem-solving approach.

Return only a JSON array of questions without any markdown formatting:
["question1", "question2", "question3", "question4", "question5"]`, name, role, strings.Join(notes, "\n\n"))
}
