package domain

import "fmt"

// GenerationError marks a failed provider call or a response that could not
// be parsed into the stage's expected structure after all fallbacks.
type GenerationError struct {
	Stage StageKind
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed for stage %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewGenerationError wraps err as a generation failure for stage.
func NewGenerationError(stage StageKind, err error) *GenerationError {
	return &GenerationError{Stage: stage, Err: err}
}

// PersistenceError marks a required read/write that the backing store
// could not serve.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError wraps err as a storage failure during op.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
