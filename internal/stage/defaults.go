package stage

import (
	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

// NewDefaultRegistry registers all six stages against the configured model
// tiers: the heavyweight model writes the proposal, mid-tier models handle
// the structured build artifacts, and fast models cover analysis, dashboard,
// and task work.
func NewDefaultRegistry(gen ports.Generator, models config.ModelTiers) *Registry {
	registry := NewRegistry()
	registry.Register(NewAnalysis(gen, models.Flash))
	registry.Register(NewProposal(gen, models.Opus))
	registry.Register(NewBuildGuide(gen, models.Sonnet))
	registry.Register(NewWorkflowSpec(gen, models.Sonnet))
	registry.Register(NewDashboardSpec(gen, models.Flash))
	registry.Register(NewTaskBreakdown(gen, models.Haiku))
	return registry
}
