package stage

import (
	"context"
	"fmt"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const taskBreakdownPrompt = `You are a project manager breaking down an automation project into tasks.

Project: {business_name}
Complexity: {complexity}
Total Hours: {estimated_hours}
Timeline: {timeline_weeks} weeks

Client's Challenges:
{challenges}

Create a task breakdown with:
1. All tasks needed (Discovery, Setup, Build, Testing, Deployment phases)
2. Estimated hours per task
3. Dependencies
4. Task categories

Output as JSON shaped like:
{"tasks": [{"title": "Schedule kickoff call with client", "category": "Discovery", "estimatedHours": 0.5, "dependencies": [], "status": "To Do"}], "totalHours": {estimated_hours}, "estimatedWeeks": {timeline_weeks}}

IMPORTANT: Output ONLY valid JSON. No explanation.
`

// TaskBreakdown turns the project into a dependency-ordered task list.
type TaskBreakdown struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*TaskBreakdown)(nil)

// NewTaskBreakdown wires the provider and model for the task-breakdown stage.
func NewTaskBreakdown(gen ports.Generator, model string) *TaskBreakdown {
	return &TaskBreakdown{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (t *TaskBreakdown) Kind() domain.StageKind {
	return domain.StageTaskBreakdown
}

// Process generates the task breakdown. An unparsable response falls back
// to an empty task list carrying the engine's own estimates.
func (t *TaskBreakdown) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	prompt, err := formatPrompt(taskBreakdownPrompt, map[string]string{
		"business_name":   sub.BusinessName,
		"complexity":      rc.Complexity,
		"estimated_hours": fmt.Sprintf("%d", rc.EstimatedHours),
		"timeline_weeks":  fmt.Sprintf("%d", rc.EstimatedWeeks),
		"challenges":      bulletedList(sub.Challenges),
	})
	if err != nil {
		return Result{}, fmt.Errorf("build task breakdown prompt: %w", err)
	}

	generated, err := generate(ctx, t.gen, t.model, prompt, 2000)
	if err != nil {
		return Result{}, fmt.Errorf("task breakdown generation: %w", err)
	}

	content, err := parseStructured(generated.Text)
	if err != nil {
		content = map[string]any{
			"tasks":          []any{},
			"totalHours":     rc.EstimatedHours,
			"estimatedWeeks": rc.EstimatedWeeks,
		}
	}

	return Result{Content: content, TokensUsed: generated.TokensUsed}, nil
}
