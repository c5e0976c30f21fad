package ports

import (
	"context"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
)

// GenerationRequest carries one prompt to the text-generation provider.
type GenerationRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// GenerationResult is the provider's structured reply.
type GenerationResult struct {
	Text       string
	TokensUsed int
}

// Generator is the opaque text-generation collaborator.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// SubmissionRepository persists client intake submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission domain.Submission) error
	Get(ctx context.Context, id string) (domain.Submission, error)
	// UpdateDerived commits lead score, revenue value, and complexity in one
	// statement; the orchestrator calls it before any stage starts.
	UpdateDerived(ctx context.Context, id string, leadScore int, revenueValue float64, complexity string) error
	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) error
}

// StageOutputRepository persists per-stage generation results.
type StageOutputRepository interface {
	// Create durably commits the output in generating status before the
	// provider call begins.
	Create(ctx context.Context, output domain.StageOutput) error
	Complete(ctx context.Context, output domain.StageOutput) error
	Fail(ctx context.Context, id string, errText string) error
	Get(ctx context.Context, submissionID string, stage domain.StageKind) (domain.StageOutput, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]domain.StageOutput, error)
	Approve(ctx context.Context, submissionID string, stage domain.StageKind, approver string) error
	Reject(ctx context.Context, submissionID string, stage domain.StageKind, approver, reason string) error
}

// Publisher fans progress events out to live subscribers of a subject.
type Publisher interface {
	Publish(subject string, event domain.ProgressEvent)
}

// Notifier alerts the team about a new submission via an outbound channel.
type Notifier interface {
	NotifyNewSubmission(ctx context.Context, submission domain.Submission) error
}
