package main

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TurnScheduler keeps at most one pending timer per room. Arming a timer for
// a room atomically replaces any previously armed one, which is the mechanism
// that prevents a stale timeout from firing after the turn has already
// advanced through a guess or skip. The clock is injectable so tests can
// drive firings deterministically.
type TurnScheduler struct {
	clock clockwork.Clock

	mu      sync.Mutex
	pending map[string]*pendingTimer
}

type pendingTimer struct {
	timer  clockwork.Timer
	cancel chan struct{}
}

func newTurnScheduler(clock clockwork.Clock) *TurnScheduler {
	return &TurnScheduler{
		clock:   clock,
		pending: make(map[string]*pendingTimer),
	}
}

// Arm schedules fire to run after d, replacing and discarding any timer
// already armed for this room.
func (s *TurnScheduler) Arm(roomID string, d time.Duration, fire func()) {
	pt := &pendingTimer{
		timer:  s.clock.NewTimer(d),
		cancel: make(chan struct{}),
	}

	s.mu.Lock()
	if old, ok := s.pending[roomID]; ok {
		close(old.cancel)
	}
	s.pending[roomID] = pt
	s.mu.Unlock()

	go func() {
		select {
		case <-pt.timer.Chan():
			s.mu.Lock()
			live := s.pending[roomID] == pt
			if live {
				delete(s.pending, roomID)
			}
			s.mu.Unlock()

			if live {
				fire()
			}
		case <-pt.cancel:
			stopAndDrainTimer(pt.timer)
		}
	}()
}

// Cancel discards any pending timer for the room. Cancelling a room with
// nothing armed is a no-op.
func (s *TurnScheduler) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pt, ok := s.pending[roomID]; ok {
		close(pt.cancel)
		delete(s.pending, roomID)
	}
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired,
// per the time.Timer.Stop documentation.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
