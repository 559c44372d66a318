// Package syncer drives the periodic refresh of the conversation from the
// remote service. One goroutine owns the poll loop, so at most one fetch is
// ever in flight.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"free-chat-client/internal/domain"
)

const defaultInterval = 5 * time.Second

// Conversation is the slice of the message store the scheduler feeds.
type Conversation interface {
	ReplaceAll(serverMessages []domain.Message)
}

// Sessions is the slice of the session manager the scheduler needs.
type Sessions interface {
	Token() string
	Logout()
}

var ErrNotRunning = errors.New("scheduler is not running")

// Scheduler is a two-state machine: Idle <-> Running. Start requires a valid
// session; Stop is called automatically on logout.
type Scheduler struct {
	transport domain.Transport
	sessions  Sessions
	conv      Conversation
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	kick   chan struct{}
}

func NewScheduler(transport domain.Transport, sessions Sessions, conv Conversation, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		transport: transport,
		sessions:  sessions,
		conv:      conv,
		interval:  interval,
		logger:    logger.Named("syncer"),
	}
}

// Start transitions Idle -> Running. Fails when no valid session exists;
// starting a running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}
	if s.sessions.Token() == "" {
		return domain.ErrNoSession
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.kick = make(chan struct{}, 1)

	go s.loop(ctx, s.done, s.kick)
	s.logger.Info("started", zap.Duration("interval", s.interval))
	return nil
}

// Stop transitions Running -> Idle, cancelling the pending timer and waiting
// for the loop to exit. An in-flight fetch winds down on its own and its
// result is discarded. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("stopped")
}

// Running reports whether the poll loop is live.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// RefreshNow requests an immediate poll. Coalesced with any poll already
// queued or in flight.
func (s *Scheduler) RefreshNow() error {
	s.mu.Lock()
	kick, running := s.kick, s.cancel != nil
	s.mu.Unlock()

	if !running {
		return ErrNotRunning
	}
	select {
	case kick <- struct{}{}:
	default:
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}, kick chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Fill the conversation right away instead of waiting a full period.
	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		case <-kick:
			s.poll(ctx)
		}
	}
}

// poll runs one fetch. The fetch is synchronous inside the loop goroutine,
// which is what enforces the single-in-flight invariant.
func (s *Scheduler) poll(ctx context.Context) {
	token := s.sessions.Token()
	if token == "" {
		return
	}

	messages, err := s.transport.Messages(ctx, token)
	if err != nil {
		if domain.IsAuth(err) {
			s.logger.Warn("poll rejected, terminating session", zap.Error(err))
			// Logout calls Stop through its hooks; run it off the loop
			// goroutine so Stop can observe the loop exiting.
			go s.sessions.Logout()
			return
		}
		// Transient: the view stays stale but valid until the next tick.
		s.logger.Warn("poll failed", zap.Error(err))
		return
	}

	// Discard results that raced with a stop or a session change.
	if ctx.Err() != nil || s.sessions.Token() != token {
		return
	}
	s.conv.ReplaceAll(messages)
}
