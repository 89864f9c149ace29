package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobsearch/internal/dedupe"
	"github.com/amishk599/jobsearch/internal/model"
)

// --- Mock/Fake Implementations ---

// MockSearcher returns a canned response or an error and records requests.
type MockSearcher struct {
	Jobs []model.Job
	Err  error
	Reqs []model.SearchRequest
}

func (m *MockSearcher) Search(_ context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	m.Reqs = append(m.Reqs, req)
	if m.Err != nil {
		return model.SearchResponse{}, m.Err
	}
	return model.SearchResponse{Jobs: m.Jobs}, nil
}

// InMemoryStore is a map-based store for testing dedup.
type InMemoryStore struct {
	seen map[string]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[string]bool)}
}

func (s *InMemoryStore) HasSeen(key string) (bool, error) { return s.seen[key], nil }

func (s *InMemoryStore) MarkSeen(key string) error {
	s.seen[key] = true
	return nil
}

func (s *InMemoryStore) Cleanup(_ time.Duration) error { return nil }

func (s *InMemoryStore) IsEmpty() (bool, error) { return len(s.seen) == 0, nil }

// RecordingNotifier records which jobs were sent to Notify.
type RecordingNotifier struct {
	Notified []model.Job
	Calls    int
	Err      error
}

func (n *RecordingNotifier) Notify(jobs []model.Job) error {
	n.Calls++
	if n.Err != nil {
		return n.Err
	}
	n.Notified = append(n.Notified, jobs...)
	return nil
}

type AcceptAllFilter struct{}

func (f *AcceptAllFilter) Match(_ model.Job) bool { return true }

type RejectAllFilter struct{}

func (f *RejectAllFilter) Match(_ model.Job) bool { return false }

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJobs(ids ...string) []model.Job {
	jobs := make([]model.Job, len(ids))
	for i, id := range ids {
		jobs[i] = model.Job{
			ID:       "remotive-free-" + id,
			Company:  "testco",
			Title:    "Software Engineer",
			Location: "Remote",
			URL:      "https://example.com/" + id,
			Source:   "remotive",
		}
	}
	return jobs
}

func keyOf(t *testing.T, j model.Job) string {
	t.Helper()
	k, ok := dedupe.Key(j)
	if !ok {
		t.Fatalf("job %s has no dedupe key", j.ID)
	}
	return k
}

var goReq = model.SearchRequest{Skills: []string{"go"}}

// --- Tests ---

func TestPoll_FilterAndDedup(t *testing.T) {
	jobs := makeJobs("1", "2", "3", "4", "5")
	store := NewInMemoryStore()
	store.MarkSeen(keyOf(t, jobs[1]))

	searcher := &MockSearcher{Jobs: jobs}
	notifier := &RecordingNotifier{}
	p := NewSearchPoller("go-remote", goReq, searcher, &AcceptAllFilter{}, store, notifier, discardLogger())

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(notifier.Notified); got != 4 {
		t.Errorf("notified = %d, want 4", got)
	}
	for _, j := range jobs {
		if seen, _ := store.HasSeen(keyOf(t, j)); !seen {
			t.Errorf("job %s should be marked seen", j.ID)
		}
	}
	if len(searcher.Reqs) != 1 || searcher.Reqs[0].Skills[0] != "go" {
		t.Errorf("searcher got %+v", searcher.Reqs)
	}
}

func TestPoll_SameKeyTwiceInOneResultNotifiesOnce(t *testing.T) {
	jobs := makeJobs("1", "1")
	notifier := &RecordingNotifier{}
	p := NewSearchPoller("dup", goReq, &MockSearcher{Jobs: jobs}, &AcceptAllFilter{}, NewInMemoryStore(), notifier, discardLogger())

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.Notified) != 1 {
		t.Errorf("notified = %d, want 1", len(notifier.Notified))
	}
}

func TestPoll_SearchError(t *testing.T) {
	notifier := &RecordingNotifier{}
	p := NewSearchPoller("fail", goReq, &MockSearcher{Err: errors.New("invalid request")}, &AcceptAllFilter{}, NewInMemoryStore(), notifier, discardLogger())

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if notifier.Calls != 0 {
		t.Error("notifier should not be called on search error")
	}
}

func TestPoll_AllAlreadySeen(t *testing.T) {
	jobs := makeJobs("1", "2")
	store := NewInMemoryStore()
	for _, j := range jobs {
		store.MarkSeen(keyOf(t, j))
	}

	notifier := &RecordingNotifier{}
	p := NewSearchPoller("seen", goReq, &MockSearcher{Jobs: jobs}, &AcceptAllFilter{}, store, notifier, discardLogger())

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.Calls != 0 {
		t.Error("notifier should not be called when all jobs already seen")
	}
}

func TestPoll_FilterRejectsAll(t *testing.T) {
	store := NewInMemoryStore()
	notifier := &RecordingNotifier{}
	p := NewSearchPoller("reject", goReq, &MockSearcher{Jobs: makeJobs("1", "2")}, &RejectAllFilter{}, store, notifier, discardLogger())

	if err := p.Poll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.Calls != 0 {
		t.Error("notifier should not be called when filter rejects all")
	}
	if empty, _ := store.IsEmpty(); !empty {
		t.Error("rejected jobs must not be marked seen")
	}
}

func TestPoll_NotifyErrorLeavesJobsUnseen(t *testing.T) {
	jobs := makeJobs("1")
	store := NewInMemoryStore()
	notifier := &RecordingNotifier{Err: errors.New("slack down")}
	p := NewSearchPoller("retry", goReq, &MockSearcher{Jobs: jobs}, &AcceptAllFilter{}, store, notifier, discardLogger())

	if err := p.Poll(context.Background()); err == nil {
		t.Fatal("expected notify error")
	}
	if seen, _ := store.HasSeen(keyOf(t, jobs[0])); seen {
		t.Error("job should stay unseen so the next cycle retries it")
	}
}

func TestSeed_MarksSeenWithoutNotifying(t *testing.T) {
	jobs := makeJobs("1", "2", "3")
	store := NewInMemoryStore()
	notifier := &RecordingNotifier{}
	p := NewSearchPoller("seed", goReq, &MockSearcher{Jobs: jobs}, &AcceptAllFilter{}, store, notifier, discardLogger())

	if err := p.Seed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if notifier.Calls != 0 {
		t.Error("notifier should not be called while seeding")
	}
	for _, j := range jobs {
		if seen, _ := store.HasSeen(keyOf(t, j)); !seen {
			t.Errorf("job %s should be marked seen after seeding", j.ID)
		}
	}
}
