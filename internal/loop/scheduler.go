package loop

import (
	"context"
	"sync"
	"time"

	"github.com/vovakirdan/retroplay/internal/core"
)

// TickFunc receives the clamped frame delta in 60Hz units.
type TickFunc func(dt float64)

// Scheduler turns display refreshes into engine ticks. It owns the last-time
// reference: the first frame after Start or Resume always ticks with dt = 0,
// so time spent stopped never reaches the engine.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	tick    TickFunc
	running bool
	last    time.Time
	hasLast bool
}

// NewScheduler creates a stopped scheduler. A nil clock uses the system clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Start installs tick and begins delivering frames.
func (s *Scheduler) Start(tick TickFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick = tick
	s.running = true
	s.hasLast = false
}

// Stop suspends frame delivery. Safe to call from any goroutine.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.hasLast = false
}

// Resume restarts frame delivery after Stop.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tick == nil {
		return
	}
	s.running = true
	s.hasLast = false
}

// Running reports whether frames are being delivered.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Frame is called once per display refresh. It measures the delta since the
// previous frame, invokes the tick function and returns the delta. A stopped
// scheduler returns false without ticking.
func (s *Scheduler) Frame() (float64, bool) {
	s.mu.Lock()
	if !s.running || s.tick == nil {
		s.mu.Unlock()
		return 0, false
	}
	now := s.clock.Now()
	dt := 0.0
	if s.hasLast {
		dt = core.FrameDelta(now.Sub(s.last))
	}
	s.last = now
	s.hasLast = true
	tick := s.tick
	s.mu.Unlock()

	tick(dt)
	return dt, true
}

// Run calls Frame at the given refresh rate until ctx is done. Hosts without
// their own render loop (headless play, tests) use it.
func (s *Scheduler) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Frame()
		}
	}
}
