// Package scheduler arms the per-question deadline timers and guarantees
// that exactly one close-window action runs per (room, question), whichever
// of the deadline or the all-answered path gets there first.
package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Key identifies one open question window.
type Key struct {
	RoomID     uuid.UUID
	QuestionID string
}

type entry struct {
	timer     clockwork.Timer
	startedAt time.Time
	done      chan struct{}
}

// Scheduler tracks one cancellable deadline per open question window. An
// entry exists only while the window is open; both closing paths consume it
// through Take, which is the single atomic take-and-clear point.
type Scheduler struct {
	clock clockwork.Clock
	log   *logrus.Logger

	mu      sync.Mutex
	entries map[Key]*entry
}

// New builds a scheduler on the given clock. Tests pass a fake clock.
func New(clock clockwork.Clock, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		clock:   clock,
		log:     log,
		entries: make(map[Key]*entry),
	}
}

// Now exposes the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Arm opens the window for key: it records the authoritative start time and
// schedules fire to run after d, unless the entry is taken first. fire runs
// on its own goroutine with the recorded start time. Returns the start time.
func (s *Scheduler) Arm(key Key, d time.Duration, fire func(startedAt time.Time)) time.Time {
	s.mu.Lock()
	if old, exists := s.entries[key]; exists {
		// A window for this question is already open; keep the original
		// start time and timer.
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{
			"room":     key.RoomID,
			"question": key.QuestionID,
		}).Warn("scheduler: window already armed")
		return old.startedAt
	}

	e := &entry{
		timer:     s.clock.NewTimer(d),
		startedAt: s.clock.Now(),
		done:      make(chan struct{}),
	}
	s.entries[key] = e
	s.mu.Unlock()

	go func() {
		select {
		case <-e.timer.Chan():
			if startedAt, ok := s.Take(key); ok {
				fire(startedAt)
			}
		case <-e.done:
		}
	}()

	return e.startedAt
}

// Take atomically removes the entry for key and returns its start time.
// Exactly one caller observes ok == true per armed window; every later
// caller, including a deadline that fires after an early termination, finds
// nothing to act on.
func (s *Scheduler) Take(key Key) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return time.Time{}, false
	}
	delete(s.entries, key)
	stopAndDrain(e.timer)
	close(e.done)
	return e.startedAt, true
}

// CancelRoom tears down every entry belonging to a room. Used when the room
// itself is torn down; the pending deadline goroutines exit without firing.
func (s *Scheduler) CancelRoom(roomID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if key.RoomID != roomID {
			continue
		}
		delete(s.entries, key)
		stopAndDrain(e.timer)
		close(e.done)
	}
}

// Len reports the number of open windows.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// stopAndDrain stops a timer and drains its channel so a fired-but-unread
// timer cannot wake anyone later.
func stopAndDrain(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
