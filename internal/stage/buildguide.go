package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const buildGuidePrompt = `You are creating an implementation guide for the DeepFlow team to build this client's automation.

Client: {business_name}
Complexity: {complexity}
Estimated Hours: {estimated_hours}
Timeline: {timeline_weeks} weeks

Automations to Build:
{systems}

Enquiry Sources: {enquiry_sources}
Admin Method: {admin_method}

Create a detailed build guide in Markdown format covering:

# Build Guide: {business_name}

## Project Overview
Client contact, timeline, complexity, total hours.

## Phase 1: Discovery & Setup (Week 1)
Kickoff call with {client_name}, credential gathering for their enquiry sources, documenting the current process, dev environment setup. Use checkbox task lists.

## Phase 2: Build Workflows
For each automation: purpose, workflow steps (trigger, data processing, actions), configuration needed, and a testing checklist.

## Phase 3: Testing & Training (final week)
End-to-end testing, client UAT session, training materials, handoff documentation.

## Deployment Checklist
Staging tests, client approval, production deployment, 24-48 hour monitoring, client training, support documentation.

## Potential Gotchas
Technical challenges specific to their setup, integration complexities, data migration needs.

IMPORTANT: Output ONLY the Markdown. No explanations before or after.
`

// BuildGuide produces the internal implementation checklist in Markdown.
type BuildGuide struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*BuildGuide)(nil)

// NewBuildGuide wires the provider and model for the build-guide stage.
func NewBuildGuide(gen ports.Generator, model string) *BuildGuide {
	return &BuildGuide{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (b *BuildGuide) Kind() domain.StageKind {
	return domain.StageBuildGuide
}

// Process generates the build guide. The raw response is the Markdown
// payload; no structured parsing applies.
func (b *BuildGuide) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	categories := make([]string, 0, len(rc.MatchedTemplates))
	for _, t := range rc.MatchedTemplates {
		categories = append(categories, categoryTitle(t.Category))
	}

	prompt, err := formatPrompt(buildGuidePrompt, map[string]string{
		"business_name":   sub.BusinessName,
		"client_name":     sub.ClientName,
		"complexity":      rc.Complexity,
		"estimated_hours": fmt.Sprintf("%d", rc.EstimatedHours),
		"timeline_weeks":  fmt.Sprintf("%d", rc.EstimatedWeeks),
		"systems":         bulletedList(categories),
		"enquiry_sources": strings.Join(sub.EnquirySources, ", "),
		"admin_method":    sub.AdminMethod,
	})
	if err != nil {
		return Result{}, fmt.Errorf("build guide prompt: %w", err)
	}

	generated, err := generate(ctx, b.gen, b.model, prompt, 3000)
	if err != nil {
		return Result{}, fmt.Errorf("build guide generation: %w", err)
	}

	return Result{
		Content:    map[string]any{"estimated_hours": rc.EstimatedHours},
		Markdown:   strings.TrimSpace(generated.Text),
		TokensUsed: generated.TokensUsed,
	}, nil
}
