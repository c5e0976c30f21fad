package domain

import "time"

// StageKind names one of the six fixed content-generation stages.
type StageKind string

const (
	StageAnalysis      StageKind = "analysis"
	StageProposal      StageKind = "proposal"
	StageBuildGuide    StageKind = "build_guide"
	StageWorkflowSpec  StageKind = "workflow_spec"
	StageDashboardSpec StageKind = "dashboard_spec"
	StageTaskBreakdown StageKind = "task_breakdown"
)

// StageOrder is the fixed, total execution order of a pipeline run.
// A stage is never skipped, only failed.
var StageOrder = []StageKind{
	StageAnalysis,
	StageProposal,
	StageBuildGuide,
	StageWorkflowSpec,
	StageDashboardSpec,
	StageTaskBreakdown,
}

// StageStatus enumerates the StageOutput state machine.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageGenerating StageStatus = "generating"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
	StageApproved   StageStatus = "approved"
	StageRejected   StageStatus = "rejected"
)

// CanTransition reports whether moving to next keeps transitions monotonic:
// pending -> generating -> {completed|failed} -> {approved|rejected}.
func (s StageStatus) CanTransition(next StageStatus) bool {
	switch s {
	case StagePending:
		return next == StageGenerating
	case StageGenerating:
		return next == StageCompleted || next == StageFailed
	case StageCompleted:
		return next == StageApproved || next == StageRejected
	default:
		return false
	}
}

// StageOutput stores one stage's generated content for a submission.
type StageOutput struct {
	ID           string
	SubmissionID string
	Stage        StageKind
	Status       StageStatus

	Content  map[string]any
	HTML     string
	Markdown string

	TokensUsed        int
	GenerationSeconds int

	ApprovedBy      string
	ApprovedAt      *time.Time
	RejectionReason string

	GeneratedAt time.Time
}

// RunOutcome describes how far a pipeline run got.
type RunOutcome struct {
	SubmissionID string
	Completed    []StageKind
	FailedStage  StageKind
	Err          error
}

// Success reports whether every stage completed.
func (o RunOutcome) Success() bool {
	return o.FailedStage == "" && o.Err == nil
}
