package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const analysisPrompt = `You are a business automation consultant analyzing a joinery business submission.

Business Details:
- Business Name: {business_name}
- Contact: {client_name} ({client_email})
- Team Size: {team_size}
- Current Admin Method: {admin_method}

Enquiry Sources:
{enquiry_sources}

Client's Selected Challenges:
{challenges}

Additional Notes from Client:
{notes}

---

Your task: Provide a structured analysis.

1. LEAD SCORE (0-100)
Calculate based on:
- Business size (larger team = higher score)
- Pain severity (more challenges = higher score)
- Budget indicators in notes (mentions of revenue, growth = higher)
- Urgency (mentions of "losing jobs", "urgent" = higher)

2. PRIORITY CHALLENGES
Rank their top 3 challenges by urgency, impact, and quick wins.
For each, explain why it's urgent and the estimated impact.

3. QUICK WINS
What 1-2 automations would give them immediate value?

4. PROJECT COMPLEXITY
Rate: Simple / Medium / Complex

5. RECOMMENDED STRATEGY
In 2-3 sentences: What should DeepFlow build first and why?

---

Output Format: JSON ONLY, no markdown, no explanation

{"lead_score": 85, "priority_challenges": [{"challenge": "...", "urgency": "high", "impact": "...", "reason": "..."}], "quick_wins": ["..."], "complexity": "medium", "strategy": "..."}
`

// Analysis produces the initial structured read of a submission: lead score,
// priority challenges, quick wins, complexity, and strategy. Unlike the
// other structured stages it has no fallback; an unparsable response fails
// the stage.
type Analysis struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*Analysis)(nil)

// NewAnalysis wires the provider and model for the analysis stage.
func NewAnalysis(gen ports.Generator, model string) *Analysis {
	return &Analysis{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (a *Analysis) Kind() domain.StageKind {
	return domain.StageAnalysis
}

// Process analyzes the client submission and returns structured insights.
func (a *Analysis) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	prompt, err := formatPrompt(analysisPrompt, map[string]string{
		"business_name":   sub.BusinessName,
		"client_name":     sub.ClientName,
		"client_email":    sub.ClientEmail,
		"team_size":       sub.TeamSize,
		"admin_method":    sub.AdminMethod,
		"enquiry_sources": strings.Join(sub.EnquirySources, ", "),
		"challenges":      numberedList(sub.Challenges),
		"notes":           orNone(sub.Notes),
	})
	if err != nil {
		return Result{}, fmt.Errorf("build analysis prompt: %w", err)
	}

	generated, err := generate(ctx, a.gen, a.model, prompt, 2000)
	if err != nil {
		return Result{}, fmt.Errorf("analysis generation: %w", err)
	}

	content, err := parseStructured(generated.Text)
	if err != nil {
		return Result{}, fmt.Errorf("parse analysis response: %w", err)
	}

	return Result{Content: content, TokensUsed: generated.TokensUsed}, nil
}
