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

// SubmissionStore implements ports.SubmissionRepository over Postgres.
type SubmissionStore struct {
	db *sql.DB
}

var _ ports.SubmissionRepository = (*SubmissionStore)(nil)

// NewSubmissionStore wires a sql.DB implementation.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create inserts the submission as it arrived from intake.
func (s *SubmissionStore) Create(ctx context.Context, sub domain.Submission) error {
	challenges, err := json.Marshal(sub.Challenges)
	if err != nil {
		return fmt.Errorf("marshal challenges: %w", err)
	}
	sources, err := json.Marshal(sub.EnquirySources)
	if err != nil {
		return fmt.Errorf("marshal enquiry sources: %w", err)
	}

	query, args, err := psql.Insert("submissions").
		Columns("id", "client_name", "client_email", "client_phone", "business_name",
			"team_size", "challenges", "enquiry_sources", "admin_method", "notes",
			"status", "submitted_at").
		Values(sub.ID, sub.ClientName, sub.ClientEmail, sub.ClientPhone, sub.BusinessName,
			sub.TeamSize, challenges, sources, sub.AdminMethod, sub.Notes,
			sub.Status, sub.SubmittedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Get loads a submission by id.
func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.Submission, error) {
	query, args, err := psql.Select("id", "client_name", "client_email", "client_phone",
		"business_name", "team_size", "challenges", "enquiry_sources", "admin_method",
		"notes", "lead_score", "revenue_value", "complexity", "status",
		"submitted_at", "created_at", "updated_at").
		From("submissions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Submission{}, fmt.Errorf("build select: %w", err)
	}

	var sub domain.Submission
	var challenges, sources []byte
	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&sub.ID, &sub.ClientName, &sub.ClientEmail, &sub.ClientPhone,
		&sub.BusinessName, &sub.TeamSize, &challenges, &sources, &sub.AdminMethod,
		&sub.Notes, &sub.LeadScore, &sub.RevenueValue, &sub.Complexity, &sub.Status,
		&sub.SubmittedAt, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("scan submission: %w", err)
	}

	if err := json.Unmarshal(challenges, &sub.Challenges); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal challenges: %w", err)
	}
	if err := json.Unmarshal(sources, &sub.EnquirySources); err != nil {
		return domain.Submission{}, fmt.Errorf("unmarshal enquiry sources: %w", err)
	}

	return sub, nil
}

// UpdateDerived commits lead score, revenue value, and complexity in a single
// statement.
func (s *SubmissionStore) UpdateDerived(ctx context.Context, id string, leadScore int, revenueValue float64, complexity string) error {
	query, args, err := psql.Update("submissions").
		Set("lead_score", leadScore).
		Set("revenue_value", revenueValue).
		Set("complexity", complexity).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update derived fields: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateStatus moves the submission through its commercial lifecycle.
func (s *SubmissionStore) UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	query, args, err := psql.Update("submissions").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return nil
}
