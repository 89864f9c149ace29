package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type countingPoller struct {
	name  string
	err   error
	polls atomic.Int32
	seeds atomic.Int32
	order *orderRecorder
}

type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (p *countingPoller) Name() string { return p.name }

func (p *countingPoller) Poll(context.Context) error {
	p.polls.Add(1)
	p.record()
	return p.err
}

func (p *countingPoller) Seed(context.Context) error {
	p.seeds.Add(1)
	p.record()
	return p.err
}

func (p *countingPoller) record() {
	if p.order == nil {
		return
	}
	p.order.mu.Lock()
	p.order.order = append(p.order.order, p.name)
	p.order.mu.Unlock()
}

type fakeStore struct {
	empty    bool
	cleanups atomic.Int32
	lastAge  time.Duration
}

func (s *fakeStore) HasSeen(string) (bool, error) { return false, nil }
func (s *fakeStore) MarkSeen(string) error        { return nil }
func (s *fakeStore) IsEmpty() (bool, error)       { return s.empty, nil }

func (s *fakeStore) Cleanup(olderThan time.Duration) error {
	s.cleanups.Add(1)
	s.lastAge = olderThan
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(store *fakeStore, pollers ...Poller) *Scheduler {
	s := NewScheduler(pollers, store, "@every 1h", 24*time.Hour, discardLogger())
	s.pause = 0
	return s
}

// --- Tests ---

func TestRun_InvalidSpec(t *testing.T) {
	s := NewScheduler(nil, &fakeStore{}, "every tuesday-ish", time.Hour, discardLogger())
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRun_ImmediateCycleThenCancel(t *testing.T) {
	p := &countingPoller{name: "go-remote"}
	s := newTestScheduler(&fakeStore{}, p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for p.polls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
	}
	if got := p.polls.Load(); got != 1 {
		t.Errorf("polls = %d, want 1 immediate cycle", got)
	}
}

func TestRunCycle_FirstCycleSeedsEmptyStore(t *testing.T) {
	p := &countingPoller{name: "go-remote"}
	store := &fakeStore{empty: true}
	s := newTestScheduler(store, p)

	s.runCycle(context.Background())
	s.runCycle(context.Background())

	if p.seeds.Load() != 1 || p.polls.Load() != 1 {
		t.Errorf("seeds=%d polls=%d, want 1 and 1", p.seeds.Load(), p.polls.Load())
	}
}

func TestRunCycle_NonEmptyStoreNotifiesImmediately(t *testing.T) {
	p := &countingPoller{name: "go-remote"}
	s := newTestScheduler(&fakeStore{}, p)

	s.runCycle(context.Background())

	if p.seeds.Load() != 0 || p.polls.Load() != 1 {
		t.Errorf("seeds=%d polls=%d, want 0 and 1", p.seeds.Load(), p.polls.Load())
	}
}

func TestRunCycle_OneErrorOthersStillRunInOrder(t *testing.T) {
	rec := &orderRecorder{}
	failing := &countingPoller{name: "failing", err: errors.New("boom"), order: rec}
	healthy := &countingPoller{name: "healthy", order: rec}
	store := &fakeStore{}
	s := newTestScheduler(store, failing, healthy)

	s.runCycle(context.Background())

	if len(rec.order) != 2 || rec.order[0] != "failing" || rec.order[1] != "healthy" {
		t.Errorf("order = %v", rec.order)
	}
	if store.cleanups.Load() != 1 || store.lastAge != 24*time.Hour {
		t.Errorf("cleanups=%d age=%v", store.cleanups.Load(), store.lastAge)
	}
}

func TestRunCycle_CancelledContextStopsEarly(t *testing.T) {
	p := &countingPoller{name: "go-remote"}
	s := newTestScheduler(&fakeStore{}, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.runCycle(ctx)

	if p.polls.Load() != 0 {
		t.Errorf("polls = %d, want 0", p.polls.Load())
	}
}

func TestRunCycle_SkipsOverlappingTick(t *testing.T) {
	p := &countingPoller{name: "go-remote"}
	s := newTestScheduler(&fakeStore{}, p)

	s.mu.Lock()
	s.runCycle(context.Background())
	s.mu.Unlock()

	if p.polls.Load() != 0 {
		t.Errorf("polls = %d, want 0 while a cycle holds the lock", p.polls.Load())
	}
}
