package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
	"github.com/colinc-deepflow/deepflow-control-center/internal/scoring"
	"github.com/colinc-deepflow/deepflow-control-center/internal/stage"
)

// OrchestratorDeps wires all driven adapters into the pipeline orchestrator.
type OrchestratorDeps struct {
	Registry    *stage.Registry
	Submissions ports.SubmissionRepository
	Outputs     ports.StageOutputRepository
	Publisher   ports.Publisher
	Logger      *slog.Logger
}

// Orchestrator owns the fixed stage order of a generation run. Each caller
// constructs its own instance; concurrent runs for different submissions
// share nothing but the publisher.
type Orchestrator struct {
	registry    *stage.Registry
	submissions ports.SubmissionRepository
	outputs     ports.StageOutputRepository
	publisher   ports.Publisher
	logger      *slog.Logger
}

// NewOrchestrator constructs the orchestration component.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		registry:    deps.Registry,
		submissions: deps.Submissions,
		outputs:     deps.Outputs,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
	}
}

// Run executes the whole pipeline for one submission: score it, commit the
// derived fields, then drive every stage in order. The first stage failure
// stops the run; completed stages keep their outputs and there is no retry
// or resume.
func (o *Orchestrator) Run(ctx context.Context, sub domain.Submission) (domain.RunOutcome, error) {
	outcome := domain.RunOutcome{SubmissionID: sub.ID}

	// Score once, before any stage starts. The result is the immutable
	// context every stage reads; it is never recomputed mid-run.
	result := scoring.Match(sub.Challenges)
	leadScore := scoring.LeadScore(sub.TeamSize, len(sub.Challenges), sub.Notes, result.TotalValue)

	o.debug("submission scored",
		"submission", sub.ID,
		"submitted_challenges", len(sub.Challenges),
		"matched_templates", len(result.MatchedTemplates),
		"lead_score", leadScore,
		"total_value", result.TotalValue,
		"complexity", result.Complexity)

	if err := o.submissions.UpdateDerived(ctx, sub.ID, leadScore, result.TotalValue, result.Complexity); err != nil {
		perr := domain.NewPersistenceError("commit derived fields", err)
		outcome.Err = perr
		return outcome, perr
	}

	runCtx := result.Context()

	for _, kind := range domain.StageOrder {
		if err := o.runStage(ctx, kind, sub, runCtx); err != nil {
			o.logError("stage failed", "submission", sub.ID, "stage", kind, "error", err)
			outcome.FailedStage = kind
			outcome.Err = err
			return outcome, fmt.Errorf("stage %s: %w", kind, err)
		}
		outcome.Completed = append(outcome.Completed, kind)
	}

	o.debug("pipeline completed", "submission", sub.ID, "stages", len(outcome.Completed))
	return outcome, nil
}

// runStage supplies the shared stage lifecycle: commit the output row in
// generating status, announce the start, invoke the runner, persist the
// terminal state, announce the result.
func (o *Orchestrator) runStage(ctx context.Context, kind domain.StageKind, sub domain.Submission, runCtx domain.RunContext) error {
	runner, err := o.registry.Resolve(kind)
	if err != nil {
		return domain.NewGenerationError(kind, err)
	}

	output := domain.StageOutput{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		Stage:        kind,
		Status:       domain.StageGenerating,
		Content:      map[string]any{},
		GeneratedAt:  time.Now().UTC(),
	}

	// The row must be durably visible as generating before the provider
	// call begins.
	if err := o.outputs.Create(ctx, output); err != nil {
		return domain.NewPersistenceError("create stage output", err)
	}

	o.publisher.Publish(sub.ID, domain.NewProgressEvent(kind, domain.ProgressStarted, 0, ""))

	start := time.Now()
	result, err := runner.Process(ctx, sub, runCtx)
	elapsed := int(time.Since(start).Round(time.Second) / time.Second)

	if err != nil {
		genErr := domain.NewGenerationError(kind, err)
		if failErr := o.outputs.Fail(ctx, output.ID, genErr.Error()); failErr != nil {
			o.logError("marking stage failed also failed", "submission", sub.ID, "stage", kind, "error", failErr)
		}
		o.publisher.Publish(sub.ID, domain.NewProgressEvent(kind, domain.ProgressFailed, 0, genErr.Error()))
		return genErr
	}

	output.Status = domain.StageCompleted
	output.Content = result.Content
	output.HTML = result.HTML
	output.Markdown = result.Markdown
	output.TokensUsed = result.TokensUsed
	output.GenerationSeconds = elapsed

	if err := o.outputs.Complete(ctx, output); err != nil {
		perr := domain.NewPersistenceError("complete stage output", err)
		if failErr := o.outputs.Fail(ctx, output.ID, perr.Error()); failErr != nil {
			o.logError("marking stage failed also failed", "submission", sub.ID, "stage", kind, "error", failErr)
		}
		o.publisher.Publish(sub.ID, domain.NewProgressEvent(kind, domain.ProgressFailed, 0, perr.Error()))
		return perr
	}

	o.publisher.Publish(sub.ID, domain.NewProgressEvent(kind, domain.ProgressCompleted, 100, ""))
	o.debug("stage completed", "submission", sub.ID, "stage", kind, "seconds", elapsed, "tokens", result.TokensUsed)
	return nil
}

func (o *Orchestrator) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

func (o *Orchestrator) logError(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Error(msg, args...)
	}
}
