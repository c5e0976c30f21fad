package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

// StageOutputStore implements ports.StageOutputRepository over Postgres.
type StageOutputStore struct {
	db *sql.DB
}

var _ ports.StageOutputRepository = (*StageOutputStore)(nil)

// NewStageOutputStore wires a sql.DB implementation.
func NewStageOutputStore(db *sql.DB) *StageOutputStore {
	return &StageOutputStore{db: db}
}

// Create inserts the output row, normally in generating status, before the
// provider call begins.
func (s *StageOutputStore) Create(ctx context.Context, output domain.StageOutput) error {
	content, err := json.Marshal(output.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	query, args, err := psql.Insert("stage_outputs").
		Columns("id", "submission_id", "stage", "status", "content",
			"html", "markdown", "tokens_used", "generation_seconds", "generated_at").
		Values(output.ID, output.SubmissionID, output.Stage, output.Status, content,
			output.HTML, output.Markdown, output.TokensUsed, output.GenerationSeconds,
			output.GeneratedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert stage output: %w", err)
	}
	return nil
}

// Complete moves a generating row to completed and stores the generated
// payloads. Rows in any other status are left untouched.
func (s *StageOutputStore) Complete(ctx context.Context, output domain.StageOutput) error {
	content, err := json.Marshal(output.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	query, args, err := psql.Update("stage_outputs").
		Set("status", domain.StageCompleted).
		Set("content", content).
		Set("html", output.HTML).
		Set("markdown", output.Markdown).
		Set("tokens_used", output.TokensUsed).
		Set("generation_seconds", output.GenerationSeconds).
		Where(sq.Eq{"id": output.ID, "status": domain.StageGenerating}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("complete stage output: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage output %s is not generating: %w", output.ID, ErrInvalidTransition)
	}
	return nil
}

// Fail moves a generating row to failed, storing the error text as the
// row's content payload so every read path can surface it.
func (s *StageOutputStore) Fail(ctx context.Context, id, errText string) error {
	content, err := json.Marshal(map[string]any{"error": errText})
	if err != nil {
		return fmt.Errorf("marshal failure content: %w", err)
	}

	query, args, err := psql.Update("stage_outputs").
		Set("status", domain.StageFailed).
		Set("content", content).
		Where(sq.Eq{"id": id, "status": domain.StageGenerating}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("fail stage output: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage output %s is not generating: %w", id, ErrInvalidTransition)
	}
	return nil
}

// Get loads one stage output for a submission.
func (s *StageOutputStore) Get(ctx context.Context, submissionID string, stage domain.StageKind) (domain.StageOutput, error) {
	query, args, err := outputSelect().
		Where(sq.Eq{"submission_id": submissionID, "stage": stage}).
		ToSql()
	if err != nil {
		return domain.StageOutput{}, fmt.Errorf("build select: %w", err)
	}

	output, err := scanOutput(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StageOutput{}, fmt.Errorf("output %s/%s: %w", submissionID, stage, ErrNotFound)
	}
	if err != nil {
		return domain.StageOutput{}, err
	}
	return output, nil
}

// ListBySubmission returns all outputs for a submission in pipeline order.
func (s *StageOutputStore) ListBySubmission(ctx context.Context, submissionID string) ([]domain.StageOutput, error) {
	query, args, err := outputSelect().
		Where(sq.Eq{"submission_id": submissionID}).
		OrderBy("generated_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stage outputs: %w", err)
	}
	defer rows.Close()

	var outputs []domain.StageOutput
	for rows.Next() {
		output, err := scanOutput(rows)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return outputs, nil
}

// Approve marks a completed output as approved. Outputs in any other status
// cannot be approved.
func (s *StageOutputStore) Approve(ctx context.Context, submissionID string, stage domain.StageKind, approver string) error {
	return s.review(ctx, submissionID, stage, domain.StageApproved, approver, "")
}

// Reject marks a completed output as rejected with a reason.
func (s *StageOutputStore) Reject(ctx context.Context, submissionID string, stage domain.StageKind, approver, reason string) error {
	return s.review(ctx, submissionID, stage, domain.StageRejected, approver, reason)
}

func (s *StageOutputStore) review(ctx context.Context, submissionID string, stage domain.StageKind, status domain.StageStatus, approver, reason string) error {
	query, args, err := psql.Update("stage_outputs").
		Set("status", status).
		Set("approved_by", approver).
		Set("approved_at", time.Now().UTC()).
		Set("rejection_reason", reason).
		Where(sq.Eq{
			"submission_id": submissionID,
			"stage":         stage,
			"status":        domain.StageCompleted,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("review stage output: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("output %s/%s is not completed: %w", submissionID, stage, ErrInvalidTransition)
	}
	return nil
}

func outputSelect() sq.SelectBuilder {
	return psql.Select("id", "submission_id", "stage", "status", "content",
		"html", "markdown", "tokens_used", "generation_seconds",
		"approved_by", "approved_at", "rejection_reason", "generated_at").
		From("stage_outputs")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutput(row rowScanner) (domain.StageOutput, error) {
	var output domain.StageOutput
	var content []byte
	var approvedAt sql.NullTime

	err := row.Scan(&output.ID, &output.SubmissionID, &output.Stage, &output.Status,
		&content, &output.HTML, &output.Markdown, &output.TokensUsed,
		&output.GenerationSeconds, &output.ApprovedBy, &approvedAt,
		&output.RejectionReason, &output.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StageOutput{}, err
		}
		return domain.StageOutput{}, fmt.Errorf("scan stage output: %w", err)
	}

	if err := json.Unmarshal(content, &output.Content); err != nil {
		return domain.StageOutput{}, fmt.Errorf("unmarshal content: %w", err)
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		output.ApprovedAt = &t
	}
	return output, nil
}
