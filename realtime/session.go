// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrReplyQueueFull = errors.New("reply queue full")
)

const replyQueueSize = 16

// Session is the handle for one connected observer.
//
// Tally frames use a single latest-wins slot: a slow observer may skip an
// intermediate leaderboard but always ends up with the newest one. Replies
// (errors for this observer only) go through a small bounded queue.
type Session struct {
	ID          string
	RemoteAddr  string
	ConnectedAt time.Time

	mu      sync.Mutex
	pending []byte
	notify  chan struct{}
	replies chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(id, remoteAddr string) *Session {
	return &Session{
		ID:          id,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		notify:      make(chan struct{}, 1),
		replies:     make(chan []byte, replyQueueSize),
		done:        make(chan struct{}),
	}
}

// Publish hands the session the newest leaderboard frame, replacing any
// frame that has not been written yet. It never blocks.
func (s *Session) Publish(frame []byte) error {
	if s.Closed() {
		return ErrSessionClosed
	}

	s.mu.Lock()
	s.pending = frame
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Reply queues a frame meant for this observer alone. It never blocks.
func (s *Session) Reply(frame []byte) error {
	if s.Closed() {
		return ErrSessionClosed
	}

	select {
	case s.replies <- frame:
		return nil
	default:
		return ErrReplyQueueFull
	}
}

// Run writes frames with write until the session is closed or a write fails.
// Exactly one goroutine should call Run per session.
func (s *Session) Run(write func([]byte) error) error {
	for {
		select {
		case <-s.done:
			return nil

		case frame := <-s.replies:
			if err := write(frame); err != nil {
				return err
			}

		case <-s.notify:
			s.mu.Lock()
			frame := s.pending
			s.pending = nil
			s.mu.Unlock()

			if frame == nil {
				continue
			}
			if err := write(frame); err != nil {
				return err
			}
		}
	}
}

// Close stops Run and makes further deliveries fail. Safe to call twice.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}
