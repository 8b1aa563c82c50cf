// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/models"
)

// WindowStore persists the single voting window record.
type WindowStore interface {
	GetWindow(ctx context.Context) (models.VotingWindow, error)
	SaveWindow(ctx context.Context, w models.VotingWindow) error
}

// Session is the voting window state machine. The state at any instant is
// set by the most recent event at or before it: the scheduled start opens,
// the scheduled end closes, and a manual toggle sets its own value. With no
// event yet the window is closed.
type Session struct {
	store   WindowStore
	metrics *metrics.Metrics
	now     func() time.Time

	mu     sync.RWMutex
	window models.VotingWindow
}

// NewSession loads the stored window.
func NewSession(ctx context.Context, store WindowStore, m *metrics.Metrics, now func() time.Time) (*Session, error) {
	if now == nil {
		now = time.Now
	}
	w, err := store.GetWindow(ctx)
	if err != nil {
		return nil, internal(err)
	}
	s := &Session{store: store, metrics: m, now: now, window: w}
	m.SetWindowOpen(s.IsOpen())
	return s, nil
}

func (s *Session) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return openAt(s.window, s.now())
}

func (s *Session) Window() models.WindowResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	open := openAt(s.window, s.now())
	state := models.StateClosed
	if open {
		state = models.StateOpen
	}
	return models.WindowResponse{
		Open:     open,
		State:    state,
		StartsAt: s.window.StartsAt,
		EndsAt:   s.window.EndsAt,
	}
}

// Toggle flips the current state and records the flip in the window row so
// it survives restarts. Returns the new state.
func (s *Session) Toggle(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	next := !openAt(s.window, now)

	w := s.window
	w.Override = &next
	w.OverrideAt = &now
	if err := s.store.SaveWindow(ctx, w); err != nil {
		return false, internal(err)
	}
	s.window = w
	s.metrics.SetWindowOpen(next)

	slog.Info("voting window toggled", "open", next)
	return next, nil
}

// SetSchedule replaces the start and end times. A saved schedule clears any
// earlier manual toggle.
func (s *Session) SetSchedule(ctx context.Context, startsAt, endsAt time.Time) error {
	if !endsAt.After(startsAt) {
		return ErrInvalidWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := startsAt.UTC(), endsAt.UTC()
	w := models.VotingWindow{StartsAt: &start, EndsAt: &end}
	if err := s.store.SaveWindow(ctx, w); err != nil {
		return internal(err)
	}
	s.window = w
	open := openAt(w, s.now())
	s.metrics.SetWindowOpen(open)

	slog.Info("voting schedule set", "starts_at", start, "ends_at", end, "open", open)
	return nil
}

// Watch re-evaluates the window every interval and logs time-driven
// transitions until ctx is done.
func (s *Session) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid watch interval %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := s.IsOpen()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			open := s.IsOpen()
			if open != last {
				slog.Info("voting window changed", "open", open)
				s.metrics.SetWindowOpen(open)
				last = open
			}
		}
	}
}

type windowEvent struct {
	at   time.Time
	open bool
	rank int // breaks ties: start < end < manual toggle
}

func openAt(w models.VotingWindow, now time.Time) bool {
	var events []windowEvent
	if w.StartsAt != nil {
		events = append(events, windowEvent{at: *w.StartsAt, open: true, rank: 0})
	}
	if w.EndsAt != nil {
		events = append(events, windowEvent{at: *w.EndsAt, open: false, rank: 1})
	}
	if w.Override != nil && w.OverrideAt != nil {
		events = append(events, windowEvent{at: *w.OverrideAt, open: *w.Override, rank: 2})
	}

	var latest *windowEvent
	for i := range events {
		e := &events[i]
		if e.at.After(now) {
			continue
		}
		if latest == nil || e.at.After(latest.at) || (e.at.Equal(latest.at) && e.rank > latest.rank) {
			latest = e
		}
	}
	if latest == nil {
		return false
	}
	return latest.open
}
