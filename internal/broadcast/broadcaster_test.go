package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []domain.ProgressEvent
	fail   bool
}

func (r *recordingSubscriber) Send(event domain.ProgressEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("connection gone")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSubscriber) received() []domain.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

func event(stage domain.StageKind, status domain.ProgressStatus) domain.ProgressEvent {
	return domain.NewProgressEvent(stage, status, 0, "")
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	b := New(nil)
	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))
	assert.Equal(t, 0, b.SubscriberCount("sub-1"))
}

func TestPublishReachesAllSubjectSubscribers(t *testing.T) {
	t.Parallel()

	b := New(nil)
	first := &recordingSubscriber{}
	second := &recordingSubscriber{}
	other := &recordingSubscriber{}

	b.Connect("sub-1", first)
	b.Connect("sub-1", second)
	b.Connect("sub-2", other)

	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))

	require.Len(t, first.received(), 1)
	require.Len(t, second.received(), 1)
	assert.Empty(t, other.received(), "events must stay partitioned by subject")
}

func TestConnectIsIdempotentPerSubscriber(t *testing.T) {
	t.Parallel()

	b := New(nil)
	sub := &recordingSubscriber{}
	b.Connect("sub-1", sub)
	b.Connect("sub-1", sub)

	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))
	assert.Len(t, sub.received(), 1, "duplicate registration must not duplicate delivery")
}

func TestFailedSubscriberIsPrunedWithoutAffectingOthers(t *testing.T) {
	t.Parallel()

	b := New(nil)
	healthy := &recordingSubscriber{}
	broken := &recordingSubscriber{fail: true}

	b.Connect("sub-1", healthy)
	b.Connect("sub-1", broken)

	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))
	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressCompleted))

	require.Len(t, healthy.received(), 2)
	assert.Equal(t, 1, b.SubscriberCount("sub-1"), "broken subscriber should be pruned after the first pass")
}

func TestDisconnectStopsDeliveryAndClearsSubject(t *testing.T) {
	t.Parallel()

	b := New(nil)
	leaving := &recordingSubscriber{}
	staying := &recordingSubscriber{}

	b.Connect("sub-1", leaving)
	b.Connect("sub-1", staying)

	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))
	b.Disconnect("sub-1", leaving)
	b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressCompleted))

	assert.Len(t, leaving.received(), 1)
	assert.Len(t, staying.received(), 2)

	b.Disconnect("sub-1", staying)
	assert.Equal(t, 0, b.SubscriberCount("sub-1"))
}

func TestEventsArriveInPublishOrder(t *testing.T) {
	t.Parallel()

	b := New(nil)
	sub := &recordingSubscriber{}
	b.Connect("sub-1", sub)

	order := []domain.StageKind{domain.StageAnalysis, domain.StageProposal, domain.StageBuildGuide}
	for _, stage := range order {
		b.Publish("sub-1", event(stage, domain.ProgressStarted))
		b.Publish("sub-1", event(stage, domain.ProgressCompleted))
	}

	got := sub.received()
	require.Len(t, got, 6)
	for i, stage := range order {
		assert.Equal(t, stage, got[2*i].Stage)
		assert.Equal(t, domain.ProgressStarted, got[2*i].Status)
		assert.Equal(t, domain.ProgressCompleted, got[2*i+1].Status)
	}
}

func TestConcurrentConnectDisconnectPublish(t *testing.T) {
	t.Parallel()

	b := New(nil)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := &recordingSubscriber{}
			for j := 0; j < 50; j++ {
				b.Connect("sub-1", sub)
				b.Publish("sub-1", event(domain.StageAnalysis, domain.ProgressStarted))
				b.Disconnect("sub-1", sub)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, b.SubscriberCount("sub-1"))
}
