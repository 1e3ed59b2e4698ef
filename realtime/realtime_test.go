// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/store"
	"github.com/danielhkuo/live-poll/tally"
)

var errBoom = errors.New("boom")

// flakyStore wraps a MemoryStore and can be told to fail
type flakyStore struct {
	*store.MemoryStore
	failAppend   atomic.Bool
	failFetch    atomic.Bool
	appendFails  atomic.Int32 // fail this many appends, then succeed
	appendCalls  atomic.Int32
	blockAppends chan struct{}
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (f *flakyStore) Append(ctx context.Context, vote models.Vote) error {
	f.appendCalls.Add(1)
	if f.blockAppends != nil {
		<-f.blockAppends
	}
	if f.failAppend.Load() {
		return errBoom
	}
	if f.appendFails.Load() > 0 {
		f.appendFails.Add(-1)
		return errBoom
	}
	return f.MemoryStore.Append(ctx, vote)
}

func (f *flakyStore) FetchAll(ctx context.Context) ([]models.Vote, error) {
	if f.failFetch.Load() {
		return nil, errBoom
	}
	return f.MemoryStore.FetchAll(ctx)
}

// observer collects the frames written for one session
type observer struct {
	session *Session
	mu      sync.Mutex
	frames  []models.OutboundEvent
	updates chan models.Tally
	done    chan error
}

func watch(t *testing.T, session *Session) *observer {
	t.Helper()
	o := &observer{
		session: session,
		updates: make(chan models.Tally, 64),
		done:    make(chan error, 1),
	}
	go func() {
		o.done <- session.Run(func(frame []byte) error {
			var raw struct {
				Event string       `json:"event"`
				Data  models.Tally `json:"data"`
			}
			if err := json.Unmarshal(frame, &raw); err != nil {
				return err
			}
			o.mu.Lock()
			o.frames = append(o.frames, models.OutboundEvent{Event: raw.Event, Data: raw.Data})
			o.mu.Unlock()
			if raw.Event == models.EventUpdateLeaderboard {
				o.updates <- raw.Data
			}
			return nil
		})
	}()
	return o
}

// waitFor blocks until a leaderboard matching want arrives
func (o *observer) waitFor(t *testing.T, want models.Tally) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got := <-o.updates:
			if tally.Equal(got, want) {
				return
			}
		case <-timeout:
			t.Fatalf("session %s never received %v", o.session.ID, want)
		}
	}
}

func (o *observer) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

func testPolicy() RetryPolicy {
	return RetryPolicy{Timeout: time.Second, Retries: 2, Backoff: time.Millisecond}
}

func newTestCoordinator(t *testing.T, s store.VoteStore) (*Coordinator, *Registry) {
	return newTestCoordinatorWithPolicy(t, s, testPolicy())
}

func newTestCoordinatorWithPolicy(t *testing.T, s store.VoteStore, p RetryPolicy) (*Coordinator, *Registry) {
	t.Helper()
	registry := NewRegistry()
	coord := NewCoordinator(s, registry, p, nil)
	t.Cleanup(coord.Close)
	return coord, registry
}

func TestSubmitBroadcastsToAllObservers(t *testing.T) {
	coord, _ := newTestCoordinator(t, store.NewMemoryStore())
	ctx := context.Background()

	var observers []*observer
	for i := 0; i < 5; i++ {
		session, err := coord.Join(ctx, "127.0.0.1")
		if err != nil {
			t.Fatalf("Join() error = %v", err)
		}
		o := watch(t, session)
		o.waitFor(t, models.Tally{})
		observers = append(observers, o)
	}

	if _, err := coord.Submit(ctx, 1, "JavaScript"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	for _, o := range observers {
		o.waitFor(t, models.Tally{1: {"JavaScript": 1}})
	}
}

func TestSubmitScenario(t *testing.T) {
	coord, _ := newTestCoordinator(t, store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := coord.Submit(ctx, 1, "JavaScript"); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if _, err := coord.Submit(ctx, 1, "Python"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got, err := coord.Tallies(ctx)
	if err != nil {
		t.Fatalf("Tallies() error = %v", err)
	}
	want := models.Tally{1: {"JavaScript": 3, "Python": 1}}
	if !tally.Equal(got, want) {
		t.Errorf("Tallies() = %v, want %v", got, want)
	}
	if !tally.Equal(coord.Snapshot(), want) {
		t.Errorf("Snapshot() = %v, want %v", coord.Snapshot(), want)
	}
}

func TestJoinAfterVotesGetsFullSnapshot(t *testing.T) {
	coord, _ := newTestCoordinator(t, store.NewMemoryStore())
	ctx := context.Background()

	options := []string{"Java", "Java", "Python", "Other", "Java"}
	for _, opt := range options {
		if _, err := coord.Submit(ctx, 1, opt); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	session, err := coord.Join(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)
	o.waitFor(t, models.Tally{1: {"Java": 3, "Python": 1, "Other": 1}})
}

func TestJoinOnFreshProcessScansStore(t *testing.T) {
	seeded := store.NewMemoryStore(
		models.Vote{ID: "a", QuestionID: 2, SelectedOption: "hello"},
		models.Vote{ID: "b", QuestionID: 2, SelectedOption: "hello"},
	)
	coord, _ := newTestCoordinator(t, seeded)

	session, err := coord.Join(context.Background(), "10.0.0.2")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)
	o.waitFor(t, models.Tally{2: {"hello": 2}})
}

func TestJoinDoesNotSeeUnbroadcastData(t *testing.T) {
	s := store.NewMemoryStore()
	coord, _ := newTestCoordinator(t, s)
	ctx := context.Background()

	if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// Written behind the coordinator's back: not broadcast yet
	if err := s.Append(ctx, models.Vote{ID: "sneaky", QuestionID: 1, SelectedOption: "Python"}); err != nil {
		t.Fatal(err)
	}

	session, err := coord.Join(ctx, "10.0.0.3")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)
	o.waitFor(t, models.Tally{1: {"Java": 1}})

	// Direct reads always scan the store
	got, err := coord.Tallies(ctx)
	if err != nil {
		t.Fatalf("Tallies() error = %v", err)
	}
	if !tally.Equal(got, models.Tally{1: {"Java": 1, "Python": 1}}) {
		t.Errorf("Tallies() = %v", got)
	}
}

func TestStoreFailureContainment(t *testing.T) {
	s := newFlakyStore()
	coord, _ := newTestCoordinator(t, s)
	ctx := context.Background()

	if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	session, err := coord.Join(ctx, "10.0.0.4")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)
	o.waitFor(t, models.Tally{1: {"Java": 1}})
	before := o.count()

	s.failAppend.Store(true)
	_, err = coord.Submit(ctx, 1, "Python")
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	// Give a stray broadcast a chance to show up
	time.Sleep(50 * time.Millisecond)
	if after := o.count(); after != before {
		t.Errorf("expected no broadcast after failed append, frames went %d -> %d", before, after)
	}
	if !tally.Equal(coord.Snapshot(), models.Tally{1: {"Java": 1}}) {
		t.Errorf("snapshot changed after failed append: %v", coord.Snapshot())
	}
	if got := s.appendCalls.Load(); got != 1+int32(testPolicy().Retries+1) {
		t.Errorf("expected %d append attempts, got %d", 1+testPolicy().Retries+1, got)
	}
}

func TestSubmitRetriesTransientFailure(t *testing.T) {
	s := newFlakyStore()
	s.appendFails.Store(2)
	coord, _ := newTestCoordinator(t, s)

	if _, err := coord.Submit(context.Background(), 1, "Java"); err != nil {
		t.Fatalf("Submit() should succeed after retries, got %v", err)
	}

	votes, _ := s.FetchAll(context.Background())
	if len(votes) != 1 {
		t.Errorf("expected exactly 1 stored vote, got %d", len(votes))
	}
}

func TestSubmitTimesOutBlockedStore(t *testing.T) {
	s := newFlakyStore()
	s.blockAppends = make(chan struct{})
	defer close(s.blockAppends)

	coord, _ := newTestCoordinatorWithPolicy(t, s, RetryPolicy{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := coord.Submit(context.Background(), 1, "Java")
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Submit took %s despite 20ms timeout", elapsed)
	}
}

func TestRecordedVoteSurvivesFailedRefresh(t *testing.T) {
	s := newFlakyStore()
	coord, _ := newTestCoordinator(t, s)
	ctx := context.Background()

	s.failFetch.Store(true)
	if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
		t.Fatalf("vote was stored, Submit() should not fail: %v", err)
	}

	s.failFetch.Store(false)
	if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if !tally.Equal(coord.Snapshot(), models.Tally{1: {"Java": 2}}) {
		t.Errorf("expected both votes counted once, got %v", coord.Snapshot())
	}
}

func TestJoinWithUnavailableStore(t *testing.T) {
	s := newFlakyStore()
	s.failFetch.Store(true)
	coord, registry := newTestCoordinator(t, s)

	session, err := coord.Join(context.Background(), "10.0.0.5")
	if !errors.Is(err, store.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if session == nil || registry.Len() != 1 {
		t.Fatal("session should still be registered")
	}

	s.failFetch.Store(false)
	o := watch(t, session)
	if _, err := coord.Submit(context.Background(), 1, "Python"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	o.waitFor(t, models.Tally{1: {"Python": 1}})
}

func TestLeaveDuringBroadcasts(t *testing.T) {
	coord, registry := newTestCoordinator(t, store.NewMemoryStore())
	ctx := context.Background()

	const n = 11
	var observers []*observer
	for i := 0; i < n; i++ {
		session, err := coord.Join(ctx, "192.168.0.1")
		if err != nil {
			t.Fatalf("Join() error = %v", err)
		}
		observers = append(observers, watch(t, session))
	}

	const votes = 30
	leaving := observers[3].session
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < votes; i++ {
			if i == 5 {
				close(started)
			}
			if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
				t.Errorf("Submit() error = %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		<-started
		coord.Leave(leaving)
		coord.Leave(leaving) // second leave is a no-op
	}()
	wg.Wait()

	for i, o := range observers {
		if i == 3 {
			continue
		}
		o.waitFor(t, models.Tally{1: {"Java": votes}})
	}
	if registry.Len() != n-1 {
		t.Errorf("expected %d registered sessions, got %d", n-1, registry.Len())
	}
	if err := leaving.Publish([]byte("late")); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("expected departed session to refuse frames, got %v", err)
	}
}

func TestFailedRefreshIsRetriedInBackground(t *testing.T) {
	s := newFlakyStore()
	coord, _ := newTestCoordinator(t, s)
	ctx := context.Background()

	session, err := coord.Join(ctx, "10.0.0.6")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)
	o.waitFor(t, models.Tally{})

	s.failFetch.Store(true)
	if _, err := coord.Submit(ctx, 1, "Java"); err != nil {
		t.Fatalf("vote was stored, Submit() should not fail: %v", err)
	}
	s.failFetch.Store(false)

	// No further votes: the stored one must still reach the observer
	o.waitFor(t, models.Tally{1: {"Java": 1}})

	deadline := time.Now().Add(2 * time.Second)
	for coord.Stale() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if coord.Stale() {
		t.Fatal("snapshot still stale after a successful refresh")
	}

	joiner, err := coord.Join(ctx, "10.0.0.7")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	watch(t, joiner).waitFor(t, models.Tally{1: {"Java": 1}})
}

func TestJoinRescansStaleSnapshot(t *testing.T) {
	s := newFlakyStore()
	// Background refresh would not fire within the test
	coord, _ := newTestCoordinatorWithPolicy(t, s, RetryPolicy{Timeout: time.Second, Backoff: time.Hour})
	ctx := context.Background()

	first, err := coord.Join(ctx, "10.0.0.8")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, first)
	o.waitFor(t, models.Tally{})

	s.failFetch.Store(true)
	if _, err := coord.Submit(ctx, 2, "hello"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !coord.Stale() {
		t.Fatal("expected snapshot to be stale after failed refresh")
	}
	s.failFetch.Store(false)

	second, err := coord.Join(ctx, "10.0.0.9")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	want := models.Tally{2: {"hello": 1}}
	watch(t, second).waitFor(t, want)
	o.waitFor(t, want)

	if coord.Stale() {
		t.Error("snapshot should be fresh after join rescan")
	}
}

func TestConcurrentSubmissionsCountedOnce(t *testing.T) {
	coord, _ := newTestCoordinator(t, store.NewMemoryStore())
	ctx := context.Background()

	session, err := coord.Join(ctx, "127.0.0.1")
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	o := watch(t, session)

	const voters = 50
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			option := "Java"
			if i%2 == 0 {
				option = "Python"
			}
			if _, err := coord.Submit(ctx, 1, option); err != nil {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d submissions failed", failures.Load())
	}

	want := models.Tally{1: {"Java": voters / 2, "Python": voters / 2}}
	o.waitFor(t, want)

	got, err := coord.Tallies(ctx)
	if err != nil {
		t.Fatalf("Tallies() error = %v", err)
	}
	if tally.Total(got, 1) != voters {
		t.Errorf("expected %d votes, got %d", voters, tally.Total(got, 1))
	}
}
