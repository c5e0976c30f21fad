package domain

import "time"

// ProgressStatus is the status carried by a progress event.
type ProgressStatus string

const (
	ProgressStarted   ProgressStatus = "started"
	ProgressCompleted ProgressStatus = "completed"
	ProgressFailed    ProgressStatus = "failed"
)

// ProgressEvent is an ephemeral per-subject notification; it is pushed to
// live subscribers and never persisted.
type ProgressEvent struct {
	Type      string         `json:"type"`
	Stage     StageKind      `json:"stage"`
	Status    ProgressStatus `json:"status"`
	Progress  int            `json:"progress"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
}

// NewProgressEvent stamps an agent_progress event with the current UTC time.
func NewProgressEvent(stage StageKind, status ProgressStatus, progress int, message string) ProgressEvent {
	return ProgressEvent{
		Type:      "agent_progress",
		Stage:     stage,
		Status:    status,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
