package stage

import (
	"context"
	"fmt"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const dashboardPrompt = `You are designing a custom dashboard for a joinery business.

Client: {business_name}
Team Size: {team_size}

Workflows they'll have:
{workflows}

Design a dashboard specification that shows:

1. What data will the workflows produce?
2. What should the dashboard display? Key metric cards, main data tables, charts, action buttons.
3. Dashboard layout: an overview page with 4 stat cards, a main table, and a chart.

Output as structured JSON shaped like:
{"appName": "{business_name} Command Center", "description": "...", "pages": [{"name": "Dashboard", "components": [{"type": "stat_card", "title": "...", "dataSource": "...", "icon": "inbox"}, {"type": "table", "title": "...", "columns": ["..."], "dataSource": "..."}, {"type": "chart", "chartType": "bar", "title": "...", "dataSource": "..."}]}], "features": ["..."]}

IMPORTANT: Output ONLY valid JSON. No explanations.
`

// DashboardSpec generates the client dashboard specification.
type DashboardSpec struct {
	gen   ports.Generator
	model string
}

var _ Runner = (*DashboardSpec)(nil)

// NewDashboardSpec wires the provider and model for the dashboard-spec stage.
func NewDashboardSpec(gen ports.Generator, model string) *DashboardSpec {
	return &DashboardSpec{gen: gen, model: model}
}

// Kind identifies the stage inside the registry.
func (d *DashboardSpec) Kind() domain.StageKind {
	return domain.StageDashboardSpec
}

// Process generates the dashboard specification. An unparsable response
// falls back to an empty page list under the business's app name.
func (d *DashboardSpec) Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error) {
	categories := make([]string, 0, len(rc.MatchedTemplates))
	for _, t := range rc.MatchedTemplates {
		categories = append(categories, categoryTitle(t.Category))
	}

	prompt, err := formatPrompt(dashboardPrompt, map[string]string{
		"business_name": sub.BusinessName,
		"team_size":     sub.TeamSize,
		"workflows":     bulletedList(categories),
	})
	if err != nil {
		return Result{}, fmt.Errorf("build dashboard prompt: %w", err)
	}

	generated, err := generate(ctx, d.gen, d.model, prompt, 2000)
	if err != nil {
		return Result{}, fmt.Errorf("dashboard generation: %w", err)
	}

	content, err := parseStructured(generated.Text)
	if err != nil {
		content = map[string]any{
			"appName": fmt.Sprintf("%s Dashboard", sub.BusinessName),
			"pages":   []any{},
		}
	}

	return Result{Content: content, TokensUsed: generated.TokensUsed}, nil
}
