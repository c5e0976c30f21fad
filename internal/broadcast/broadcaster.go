// Package broadcast fans progress events out to live subscribers keyed by
// subject identifier. Subscribers come and go from outside the pipeline's
// goroutine, so the registry is lock-guarded; a failing subscriber is pruned
// and never blocks delivery to the others or the publisher.
package broadcast

import (
	"log/slog"
	"sync"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

// Subscriber is one live connection able to receive events. Send must not
// block; an error marks the subscriber dead.
type Subscriber interface {
	Send(event domain.ProgressEvent) error
}

// Broadcaster is the per-subject registry of live subscriber connections.
type Broadcaster struct {
	mu       sync.Mutex
	subjects map[string]map[Subscriber]struct{}
	logger   *slog.Logger
}

var _ ports.Publisher = (*Broadcaster)(nil)

// New builds an empty broadcaster.
func New(logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		subjects: map[string]map[Subscriber]struct{}{},
		logger:   logger,
	}
}

// Connect registers sub under subject. Registering the same subscriber
// twice is a no-op.
func (b *Broadcaster) Connect(subject string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subjects[subject]
	if !ok {
		set = map[Subscriber]struct{}{}
		b.subjects[subject] = set
	}
	set[sub] = struct{}{}

	b.debug("subscriber connected", "subject", subject, "subscribers", len(set))
}

// Disconnect removes sub from subject, dropping the subject entry once it
// has no subscribers left.
func (b *Broadcaster) Disconnect(subject string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subjects[subject]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subjects, subject)
	}

	b.debug("subscriber disconnected", "subject", subject, "subscribers", len(set))
}

// Publish delivers event to every subscriber of subject. Without
// subscribers it is a no-op. Delivery failures are collected per subscriber
// and the failed subscribers are pruned after the pass; events for one
// subject are delivered in publish order and never coalesced.
func (b *Broadcaster) Publish(subject string, event domain.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subjects[subject]
	if !ok {
		return
	}

	var dead []Subscriber
	for sub := range set {
		if err := sub.Send(event); err != nil {
			b.debug("subscriber send failed", "subject", subject, "error", err)
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		delete(set, sub)
	}
	if len(set) == 0 {
		delete(b.subjects, subject)
	}
}

// SubscriberCount reports how many subscribers a subject currently has.
func (b *Broadcaster) SubscriberCount(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subjects[subject])
}

func (b *Broadcaster) debug(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}
