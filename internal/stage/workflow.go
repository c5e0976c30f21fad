package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const workflowPrompt = `You are designing n8n workflow specifications for {business_name}.

Client Info:
- Business: {business_name}
- Team Size: {team_size}
- Enquiry Sources: {enquiry_sources}
- Admin Method: {admin_method}

Automations Needed:
{automations}

For each automation, create a workflow specification with:
1. Workflow name
2. Purpose
3. Trigger (what starts it)
4. Steps (what happens)
5. Integrations needed (Gmail, Facebook, etc.)
6. Output (what result is produced)
7. Estimated build time

Output as JSON with a top-level "workflows" array, each entry shaped like:
{"name": "Enquiry_Capture_Workflow", "purpose": "...", "trigger": "...", "steps": ["..."], "integrations": ["..."], "output": "...", "estimated_build_time": "8 hours"}

IMPORTANT: Output ONLY valid JSON. No explanation.
`

// WorkflowSpec generates per-automation n8n workflow specifications.
type WorkflowSpec struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*WorkflowSpec)(nil)

// NewWorkflowSpec wires the provider and model for the workflow-spec stage.
func NewWorkflowSpec(gen ports.Generator, model string) *WorkflowSpec {
	return &WorkflowSpec{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (w *WorkflowSpec) Kind() domain.StageKind {
	return domain.StageWorkflowSpec
}

// Process generates workflow specifications. An unparsable response falls
// back to an empty workflow list rather than failing the run.
func (w *WorkflowSpec) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	automations := make([]string, 0, len(rc.MatchedTemplates))
	for _, t := range rc.MatchedTemplates {
		automations = append(automations, fmt.Sprintf("%s: %s", categoryTitle(t.Category), t.Challenge))
	}

	prompt, err := formatPrompt(workflowPrompt, map[string]string{
		"business_name":   sub.BusinessName,
		"team_size":       sub.TeamSize,
		"enquiry_sources": strings.Join(sub.EnquirySources, ", "),
		"admin_method":    sub.AdminMethod,
		"automations":     bulletedList(automations),
	})
	if err != nil {
		return Result{}, fmt.Errorf("build workflow prompt: %w", err)
	}

	generated, err := generate(ctx, w.gen, w.model, prompt, 2500)
	if err != nil {
		return Result{}, fmt.Errorf("workflow generation: %w", err)
	}

	content, err := parseStructured(generated.Text)
	if err != nil {
		content = map[string]any{"workflows": []any{}}
	}

	return Result{Content: content, TokensUsed: generated.TokensUsed}, nil
}
