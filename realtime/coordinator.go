// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/live-poll/models"
	"github.com/danielhkuo/live-poll/store"
	"github.com/danielhkuo/live-poll/tally"
)

// Coordinator runs the vote pipeline: persist, recompute, broadcast.
type Coordinator struct {
	store    store.VoteStore
	registry *Registry
	retry    RetryPolicy
	logger   *slog.Logger

	// mu serializes recompute+publish and joins, so published snapshots
	// never go backwards and a joiner cannot fall between two broadcasts.
	mu       sync.Mutex
	snapshot models.Tally
	frame    []byte
	// stale is set when a stored vote may be missing from frame
	stale bool

	retrying  atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

// Bounds for the background refresh after a failed broadcast
const (
	minRefreshDelay = 50 * time.Millisecond
	maxRefreshDelay = 30 * time.Second
)

func NewCoordinator(s store.VoteStore, registry *Registry, retry RetryPolicy, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    s,
		registry: registry,
		retry:    retry,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Close stops background refreshes. Safe to call twice.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Submit records one vote and, once it is durable, pushes fresh tallies to
// every observer. An error means the vote was not recorded and nothing was
// broadcast.
func (c *Coordinator) Submit(ctx context.Context, questionID int, option string) (models.Vote, error) {
	vote := models.Vote{
		ID:             uuid.NewString(),
		QuestionID:     questionID,
		SelectedOption: option,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := call(ctx, c.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.store.Append(ctx, vote)
	})
	if err != nil {
		c.logger.Error("vote rejected",
			"vote_id", vote.ID,
			"question_id", questionID,
			"error", err,
		)
		return vote, err
	}

	c.logger.Info("vote recorded", "vote_id", vote.ID, "question_id", questionID)

	// The vote is stored now; the broadcast must not depend on the submitter
	// staying connected.
	if err := c.Refresh(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("vote recorded but leaderboard not refreshed",
			"vote_id", vote.ID,
			"error", err,
		)
		c.scheduleRefresh()
	}

	return vote, nil
}

// Refresh recomputes tallies from a full scan and broadcasts them.
// On failure the current snapshot is marked stale until a refresh succeeds.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.reload(ctx); err != nil {
		c.stale = true
		return err
	}
	c.broadcast(c.frame)
	return nil
}

// scheduleRefresh starts the background refresh loop unless one is running
func (c *Coordinator) scheduleRefresh() {
	if !c.retrying.CompareAndSwap(false, true) {
		return
	}
	go c.refreshUntilFresh()
}

// refreshUntilFresh retries Refresh with doubling delays until the snapshot
// is no longer stale or the coordinator is closed.
func (c *Coordinator) refreshUntilFresh() {
	delay := c.retry.Backoff
	if delay < minRefreshDelay {
		delay = minRefreshDelay
	}

	for {
		timer := time.NewTimer(delay)
		select {
		case <-c.done:
			timer.Stop()
			c.retrying.Store(false)
			return
		case <-timer.C:
		}

		if !c.Stale() {
			break
		}
		err := c.Refresh(context.Background())
		if err == nil {
			c.logger.Info("leaderboard refreshed after earlier failure")
			break
		}
		c.logger.Warn("background leaderboard refresh failed", "retry_in", delay*2, "error", err)

		delay *= 2
		if delay > maxRefreshDelay {
			delay = maxRefreshDelay
		}
	}

	c.retrying.Store(false)
	// A refresh may have failed after ours succeeded
	if c.Stale() {
		c.scheduleRefresh()
	}
}

// Stale reports whether a stored vote may be missing from the last broadcast
func (c *Coordinator) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// Join registers a new observer and hands it the current snapshot.
// On a fresh process, or while the snapshot is stale, the store is scanned
// first; a stale snapshot that could be refreshed is broadcast to everyone.
// If the store cannot be read the session is still registered and the error
// is returned; the observer will catch up with the next broadcast.
func (c *Coordinator) Join(ctx context.Context, remoteAddr string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.frame == nil || c.stale {
		wasStale := c.stale
		if err = c.reload(ctx); err == nil && wasStale {
			c.broadcast(c.frame)
		}
	}

	session := c.registry.Register(remoteAddr)
	if c.frame != nil {
		_ = session.Publish(c.frame)
	}

	c.logger.Info("observer connected",
		"session_id", session.ID,
		"remote", remoteAddr,
		"observers", c.registry.Len(),
	)
	return session, err
}

// Leave unregisters an observer. Safe to call twice.
func (c *Coordinator) Leave(session *Session) {
	if session == nil {
		return
	}
	c.registry.Unregister(session)
	c.logger.Info("observer disconnected",
		"session_id", session.ID,
		"observers", c.registry.Len(),
	)
}

// Tallies computes tallies from a full scan without touching the broadcast
// snapshot.
func (c *Coordinator) Tallies(ctx context.Context) (models.Tally, error) {
	return c.recompute(ctx)
}

// Snapshot returns the tally last sent to observers, or nil before the
// first broadcast or join.
func (c *Coordinator) Snapshot() models.Tally {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Coordinator) recompute(ctx context.Context) (models.Tally, error) {
	votes, err := call(ctx, c.retry, c.store.FetchAll)
	if err != nil {
		return nil, err
	}
	return tally.ComputeTallies(votes), nil
}

// reload replaces the snapshot. Caller holds c.mu.
func (c *Coordinator) reload(ctx context.Context) error {
	t, err := c.recompute(ctx)
	if err != nil {
		return err
	}

	frame, err := EncodeEvent(models.EventUpdateLeaderboard, t)
	if err != nil {
		return err
	}

	c.snapshot = t
	c.frame = frame
	c.stale = false
	return nil
}

// broadcast delivers frame to every observer. Caller holds c.mu.
func (c *Coordinator) broadcast(frame []byte) {
	delivered, skipped := 0, 0

	c.registry.ForEach(func(s *Session) {
		if err := s.Publish(frame); err != nil {
			skipped++
			c.logger.Debug("leaderboard delivery skipped", "session_id", s.ID, "error", err)
			return
		}
		delivered++
	})

	c.logger.Info("leaderboard broadcast", "delivered", delivered, "skipped", skipped)
}

// EncodeEvent builds a realtime frame
func EncodeEvent(event string, data interface{}) ([]byte, error) {
	frame, err := json.Marshal(models.OutboundEvent{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event, err)
	}
	return frame, nil
}
