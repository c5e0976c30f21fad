package domain

import "time"

// SubmissionStatus tracks a client project through its commercial lifecycle.
type SubmissionStatus string

const (
	SubmissionNewLead   SubmissionStatus = "new_lead"
	SubmissionContacted SubmissionStatus = "contacted"
	SubmissionBuilding  SubmissionStatus = "building"
	SubmissionDeployed  SubmissionStatus = "deployed"
	SubmissionLive      SubmissionStatus = "live"
)

// Submission is the core entity describing a client intake form.
// It is created once at intake and never mutated by the pipeline except
// for the derived fields committed before the first stage runs.
type Submission struct {
	ID             string
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	BusinessName   string
	TeamSize       string
	Challenges     []string
	EnquirySources []string
	AdminMethod    string
	Notes          string

	LeadScore    int
	RevenueValue float64
	Complexity   string

	Status      SubmissionStatus
	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MatchedTemplate is one challenge-to-category mapping result.
type MatchedTemplate struct {
	Challenge    string   `json:"challenge"`
	Category     string   `json:"category"`
	Urgency      string   `json:"urgency"`
	BasePrice    float64  `json:"base_price"`
	TemplateSlug string   `json:"template_slug"`
	AllTemplates []string `json:"all_templates"`
}

// RunContext is the immutable scoring bundle shared by every stage of a run.
// Computed exactly once per run, before the first stage starts.
type RunContext struct {
	MatchedTemplates []MatchedTemplate
	TotalValue       float64
	Complexity       string
	EstimatedHours   int
	EstimatedWeeks   int
	Categories       []string
}
