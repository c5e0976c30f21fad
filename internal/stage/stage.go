// Package stage implements the six content-generation stages of a pipeline
// run. Each stage builds a prompt from the submission and the shared run
// context, calls the generation provider, and interprets the response into a
// structured result. The shared lifecycle (persistence, timing, progress
// events) lives in the orchestrator; stages only generate.
package stage

import (
	"context"
	"fmt"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

// Result is what one stage produces for persistence.
type Result struct {
	Content    map[string]any
	HTML       string
	Markdown   string
	TokensUsed int
}

// Runner captures a single stage implementation.
type Runner interface {
	Kind() domain.StageKind
	Process(ctx context.Context, sub domain.Submission, rc domain.RunContext) (Result, error)
}

// Registry keeps a mapping from stage kinds to their implementations.
type Registry struct {
	runners map[domain.StageKind]Runner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: map[domain.StageKind]Runner{}}
}

// Register adds or replaces a runner implementation.
func (r *Registry) Register(runner Runner) {
	if r.runners == nil {
		r.runners = map[domain.StageKind]Runner{}
	}
	r.runners[runner.Kind()] = runner
}

// Resolve returns a runner by stage kind or an error if it is absent.
func (r *Registry) Resolve(kind domain.StageKind) (Runner, error) {
	if runner, ok := r.runners[kind]; ok {
		return runner, nil
	}
	return nil, fmt.Errorf("stage %s is not registered", kind)
}

// generate is the shared provider call used by every runner. When the
// provider reports no usage, the token count falls back to a rough
// four-chars-per-token estimate.
func generate(ctx context.Context, gen ports.Generator, model, prompt string, maxTokens int) (ports.GenerationResult, error) {
	result, err := gen.Generate(ctx, ports.GenerationRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return ports.GenerationResult{}, err
	}

	if result.TokensUsed == 0 {
		result.TokensUsed = (len(prompt) + len(result.Text)) / 4
	}

	return result, nil
}
