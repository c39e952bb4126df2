package domain

// Recommendation is the categorical hiring verdict of an AI summary.
type Recommendation string

const (
	RecommendStrongHire Recommendation = "Strong Hire"
	RecommendHire       Recommendation = "Hire"
	RecommendMaybe      Recommendation = "Maybe"
	RecommendNoHire     Recommendation = "No Hire"
)

// CandidateSummary is a structured assessment generated from a candidate's notes.
// Fallback is true when the generator failed and the placeholder was returned.
type CandidateSummary struct {
	OverallAssessment string         `json:"overallAssessment"`
	KeyStrengths      []string       `json:"keyStrengths"`
	AreasOfConcern    []string       `json:"areasOfConcern"`
	TechnicalSkills   []string       `json:"technicalSkills"`
	SoftSkills        []string       `json:"softSkills"`
	Recommendation    Recommendation `json:"recommendation"`
	ConfidenceScore   int            `json:"confidenceScore"`
	NextSteps         []string       `json:"nextSteps"`
	Fallback          bool           `json:"fallback"`
}
