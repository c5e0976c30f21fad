package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const proposalPrompt = `You are writing a professional project proposal for a joinery automation project.

Client: {client_name} at {business_name}

Their Current Challenges:
{challenges}

We will build the following automation systems:
{systems}

Total Investment: {total_value}
Timeline: {timeline_weeks} weeks

Create a comprehensive HTML proposal document that includes:

1. Executive Summary - acknowledge their pain points, overview of solution, expected outcomes
2. Understanding Your Business - restate their challenges in your words
3. Proposed Solution - for each automation system: what it does, how it solves their problem, key features, expected time savings
4. Implementation Plan - week-by-week timeline, what we'll need from them, when they'll see results
5. Investment Breakdown - cost per automation system, total investment {total_value}, payment terms (50% upfront, 50% on completion)
6. Why DeepFlow AI - specialization in trade businesses, custom-built, ongoing support
7. Next Steps - schedule discovery call, gather system access, kickoff date

Tone: Professional but approachable, like you're talking to a tradesperson not a corporate exec.
Format: Clean HTML with inline CSS, suitable for email.

IMPORTANT: Output ONLY the HTML. Do not include any explanations or markdown. Start with <html> tag.
`

// Proposal generates the client-facing HTML proposal plus a plain-text body
// and subject line for the follow-up email.
type Proposal struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*Proposal)(nil)

// NewProposal wires the provider and model for the proposal stage.
func NewProposal(gen ports.Generator, model string) *Proposal {
	return &Proposal{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (p *Proposal) Kind() domain.StageKind {
	return domain.StageProposal
}

// Process generates the proposal document. The raw response is the HTML
// payload; no structured parsing applies.
func (p *Proposal) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	prompt, err := formatPrompt(proposalPrompt, map[string]string{
		"client_name":    sub.ClientName,
		"business_name":  sub.BusinessName,
		"challenges":     bulletedList(sub.Challenges),
		"systems":        formatSystems(rc.MatchedTemplates),
		"total_value":    fmt.Sprintf("£%.0f", rc.TotalValue),
		"timeline_weeks": fmt.Sprintf("%d", rc.EstimatedWeeks),
	})
	if err != nil {
		return Result{}, fmt.Errorf("build proposal prompt: %w", err)
	}

	generated, err := generate(ctx, p.gen, p.model, prompt, 4000)
	if err != nil {
		return Result{}, fmt.Errorf("proposal generation: %w", err)
	}

	html := strings.TrimSpace(generated.Text)

	return Result{
		Content: map[string]any{
			"subject_line":    fmt.Sprintf("Your Custom Automation Plan - %s", sub.BusinessName),
			"estimated_value": rc.TotalValue,
			"plain_text":      htmlToText(html),
		},
		HTML:       html,
		TokensUsed: generated.TokensUsed,
	}, nil
}

func formatSystems(templates []domain.MatchedTemplate) string {
	lines := make([]string, 0, len(templates))
	for i, t := range templates {
		lines = append(lines, fmt.Sprintf("%d. %s (£%.0f)", i+1, categoryTitle(t.Category), t.BasePrice))
	}
	return strings.Join(lines, "\n")
}

// htmlToText derives the plain-text email body from the generated HTML.
// A response that is not valid markup degrades to its raw text.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}
