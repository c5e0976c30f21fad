// Package server exposes the intake and submission API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/infrastructure/storage"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

// PipelineRunner drives a full generation run for one submission.
type PipelineRunner interface {
	Run(ctx context.Context, sub domain.Submission) (domain.RunOutcome, error)
}

// Deps wires every collaborator the HTTP layer needs.
type Deps struct {
	Submissions  ports.SubmissionRepository
	Outputs      ports.StageOutputRepository
	Pipeline     PipelineRunner
	Notifier     ports.Notifier
	WSHandler    http.Handler
	DashboardURL string
	Logger       *slog.Logger
}

// Server routes intake, submission reads, output review, and the websocket
// progress feed.
type Server struct {
	submissions  ports.SubmissionRepository
	outputs      ports.StageOutputRepository
	pipeline     PipelineRunner
	notifier     ports.Notifier
	wsHandler    http.Handler
	dashboardURL string
	logger       *slog.Logger
	mux          *http.ServeMux

	scoreWait time.Duration
	scorePoll time.Duration
}

// New builds the server and registers all routes.
func New(deps Deps) *Server {
	s := &Server{
		submissions:  deps.Submissions,
		outputs:      deps.Outputs,
		pipeline:     deps.Pipeline,
		notifier:     deps.Notifier,
		wsHandler:    deps.WSHandler,
		dashboardURL: strings.TrimRight(deps.DashboardURL, "/"),
		logger:       deps.Logger,
		mux:          http.NewServeMux(),
		scoreWait:    30 * time.Second,
		scorePoll:    250 * time.Millisecond,
	}

	s.mux.HandleFunc("POST /api/intake", s.handleIntake)
	s.mux.HandleFunc("GET /api/submissions/{id}", s.handleGetSubmission)
	s.mux.HandleFunc("GET /api/submissions/{id}/outputs", s.handleListOutputs)
	s.mux.HandleFunc("POST /api/submissions/{id}/outputs/{stage}/approve", s.handleApprove)
	s.mux.HandleFunc("POST /api/submissions/{id}/outputs/{stage}/reject", s.handleReject)
	if s.wsHandler != nil {
		s.mux.Handle("GET /ws/submissions/{id}", s.wsHandler)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type intakeRequest struct {
	BusinessName   string    `json:"businessName"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	TeamSize       string    `json:"teamSize"`
	Challenges     []string  `json:"challenges"`
	EnquirySources []string  `json:"enquirySources"`
	AdminMethod    string    `json:"adminMethod"`
	Notes          string    `json:"notes"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func (r intakeRequest) validate() error {
	switch {
	case strings.TrimSpace(r.BusinessName) == "":
		return errors.New("businessName is required")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("name is required")
	case strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@"):
		return errors.New("a valid email is required")
	case strings.TrimSpace(r.TeamSize) == "":
		return errors.New("teamSize is required")
	case len(r.Challenges) == 0:
		return errors.New("at least one challenge is required")
	case len(r.EnquirySources) == 0:
		return errors.New("at least one enquiry source is required")
	case strings.TrimSpace(r.AdminMethod) == "":
		return errors.New("adminMethod is required")
	}
	return nil
}

type intakeResponse struct {
	Success             bool      `json:"success"`
	SubmissionID        string    `json:"submissionId"`
	Message             string    `json:"message"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	DashboardURL        string    `json:"dashboardUrl,omitempty"`
}

// handleIntake validates the form, persists the submission, and replies
// immediately. The pipeline run and the team notification happen on
// background goroutines detached from the request context.
func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	submittedAt := req.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	sub := domain.Submission{
		ID:             uuid.NewString(),
		ClientName:     req.Name,
		ClientEmail:    req.Email,
		ClientPhone:    req.Phone,
		BusinessName:   req.BusinessName,
		TeamSize:       req.TeamSize,
		Challenges:     req.Challenges,
		EnquirySources: req.EnquirySources,
		AdminMethod:    req.AdminMethod,
		Notes:          req.Notes,
		Status:         domain.SubmissionNewLead,
		SubmittedAt:    submittedAt,
	}

	if err := s.submissions.Create(r.Context(), sub); err != nil {
		s.logger.Error("create submission failed", "business", sub.BusinessName, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not store submission")
		return
	}

	s.logger.Info("submission received", "submission", sub.ID, "business", sub.BusinessName)

	// In-flight stages must survive the intake request ending.
	go s.runPipeline(sub)
	go s.sendNotification(sub)

	s.writeJSON(w, http.StatusCreated, intakeResponse{
		Success:             true,
		SubmissionID:        sub.ID,
		Message:             "Submission received. Content generation has started.",
		EstimatedCompletion: time.Now().UTC().Add(5 * time.Minute),
		DashboardURL:        s.submissionURL(sub.ID),
	})
}

func (s *Server) runPipeline(sub domain.Submission) {
	outcome, err := s.pipeline.Run(context.Background(), sub)
	if err != nil {
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			s.logger.Error("pipeline stopped on generation failure",
				"submission", sub.ID, "stage", genErr.Stage, "error", err)
			return
		}
		s.logger.Error("pipeline run failed", "submission", sub.ID, "error", err)
		return
	}
	s.logger.Info("pipeline completed", "submission", sub.ID, "stages", len(outcome.Completed))
}

func (s *Server) sendNotification(sub domain.Submission) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.scoreWait+30*time.Second)
	defer cancel()

	sub = s.awaitScoring(ctx, sub)

	if err := s.notifier.NotifyNewSubmission(ctx, sub); err != nil {
		s.logger.Error("whatsapp notification failed", "submission", sub.ID, "error", err)
	}
}

// awaitScoring re-reads the submission until the pipeline has committed the
// derived fields, so the message carries the real lead score, value, and
// complexity. If the commit never lands within scoreWait the intake snapshot
// is used and the message falls back to its calculating placeholders.
func (s *Server) awaitScoring(ctx context.Context, sub domain.Submission) domain.Submission {
	deadline := time.NewTimer(s.scoreWait)
	defer deadline.Stop()
	ticker := time.NewTicker(s.scorePoll)
	defer ticker.Stop()

	for {
		fresh, err := s.submissions.Get(ctx, sub.ID)
		if err == nil && fresh.Complexity != "" {
			return fresh
		}

		select {
		case <-ctx.Done():
			return sub
		case <-deadline.C:
			return sub
		case <-ticker.C:
		}
	}
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.submissions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "submission not found")
			return
		}
		s.logger.Error("get submission failed", "submission", r.PathValue("id"), "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not load submission")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":             sub.ID,
		"clientName":     sub.ClientName,
		"clientEmail":    sub.ClientEmail,
		"clientPhone":    sub.ClientPhone,
		"businessName":   sub.BusinessName,
		"teamSize":       sub.TeamSize,
		"challenges":     sub.Challenges,
		"enquirySources": sub.EnquirySources,
		"adminMethod":    sub.AdminMethod,
		"notes":          sub.Notes,
		"leadScore":      sub.LeadScore,
		"revenueValue":   sub.RevenueValue,
		"complexity":     sub.Complexity,
		"status":         sub.Status,
		"submittedAt":    sub.SubmittedAt,
		"createdAt":      sub.CreatedAt,
		"updatedAt":      sub.UpdatedAt,
	})
}

func (s *Server) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	outputs, err := s.outputs.ListBySubmission(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("list outputs failed", "submission", r.PathValue("id"), "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not load outputs")
		return
	}

	byStage := map[string]any{}
	for _, output := range outputs {
		byStage[string(output.Stage)] = map[string]any{
			"id":                output.ID,
			"status":            output.Status,
			"content":           output.Content,
			"html":              output.HTML,
			"markdown":          output.Markdown,
			"tokensUsed":        output.TokensUsed,
			"generationSeconds": output.GenerationSeconds,
			"approvedBy":        output.ApprovedBy,
			"approvedAt":        output.ApprovedAt,
			"rejectionReason":   output.RejectionReason,
			"generatedAt":       output.GeneratedAt,
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"submissionId": r.PathValue("id"),
		"outputs":      byStage,
	})
}

type reviewRequest struct {
	ApprovedBy string `json:"approvedBy"`
	Reason     string `json:"reason"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, true)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleReview(w, r, false)
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request, approve bool) {
	submissionID := r.PathValue("id")
	stage := domain.StageKind(r.PathValue("stage"))
	if !validStage(stage) {
		s.writeError(w, http.StatusNotFound, "unknown stage")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !approve && strings.TrimSpace(req.Reason) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, "a rejection reason is required")
		return
	}

	var err error
	if approve {
		err = s.outputs.Approve(r.Context(), submissionID, stage, req.ApprovedBy)
	} else {
		err = s.outputs.Reject(r.Context(), submissionID, stage, req.ApprovedBy, req.Reason)
	}
	if err != nil {
		if errors.Is(err, storage.ErrInvalidTransition) {
			s.writeError(w, http.StatusConflict, "output is not awaiting review")
			return
		}
		s.logger.Error("review failed", "submission", submissionID, "stage", stage, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not update output")
		return
	}

	status := domain.StageApproved
	if !approve {
		status = domain.StageRejected
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"submissionId": submissionID,
		"stage":        stage,
		"status":       status,
	})
}

func (s *Server) submissionURL(id string) string {
	if s.dashboardURL == "" {
		return ""
	}
	return s.dashboardURL + "/submissions/" + id
}

func validStage(stage domain.StageKind) bool {
	for _, kind := range domain.StageOrder {
		if kind == stage {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": message})
}
