package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Intervals are the refresh intervals offered by the dashboard.
var Intervals = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second, 30 * time.Second}

// AllowedInterval reports whether d is one of the offered intervals.
func AllowedInterval(d time.Duration) bool {
	for _, iv := range Intervals {
		if d == iv {
			return true
		}
	}
	return false
}

type schedCmd int

const (
	cmdKick schedCmd = iota
	cmdRearm
	cmdPause
	cmdResume
)

// Scheduler drives periodic refresh cycles. It has two states, Live and
// Paused. In Live a cycle fires immediately on entry and then repeats at the
// configured interval. Pausing cancels the pending timer without affecting
// an in-flight cycle. Changing the interval while Live re-arms the timer
// from now. A kick fires one immediate out-of-schedule cycle and leaves the
// timer phase alone.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	live     bool

	run  func()
	cmds chan schedCmd
	log  *logrus.Logger
}

// NewScheduler creates a scheduler that invokes run for each cycle. Each
// cycle runs in its own goroutine so a hung fetch never blocks the
// scheduler's own state changes.
func NewScheduler(interval time.Duration, run func(), log *logrus.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		run:      run,
		cmds:     make(chan schedCmd, 16),
		log:      log,
	}
}

// Start enters Live and launches the timer loop. It returns immediately;
// the loop exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.live = true
	s.mu.Unlock()
	go s.loop(ctx)
	s.cmds <- cmdResume
}

// Live reports whether the scheduler is in the Live state.
func (s *Scheduler) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Interval returns the configured refresh interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Pause cancels the pending timer. In-flight cycles are unaffected.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.live = false
	s.mu.Unlock()
	s.cmds <- cmdPause
	s.log.Info("Refresh paused")
}

// Resume re-enters Live: one cycle fires immediately and a fresh interval
// timer is armed.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if s.live {
		s.mu.Unlock()
		return
	}
	s.live = true
	s.mu.Unlock()
	s.cmds <- cmdResume
	s.log.Info("Refresh resumed")
}

// SetInterval changes the refresh interval. While Live the timer is re-armed
// from now; partial elapsed time is not preserved.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	s.cmds <- cmdRearm
	s.log.WithField("interval", d).Info("Refresh interval changed")
}

// Kick fires one immediate out-of-schedule cycle without touching the timer
// phase. Used for manual refresh and for view/stage/threshold changes that
// affect the server-side query. Works in both states.
func (s *Scheduler) Kick() {
	s.cmds <- cmdKick
}

func (s *Scheduler) loop(ctx context.Context) {
	timer := time.NewTimer(s.Interval())
	stopTimer(timer)

	for {
		select {
		case <-ctx.Done():
			stopTimer(timer)
			return
		case <-timer.C:
			if !s.Live() {
				continue
			}
			go s.run()
			timer.Reset(s.Interval())
		case cmd := <-s.cmds:
			switch cmd {
			case cmdKick:
				go s.run()
			case cmdResume:
				go s.run()
				stopTimer(timer)
				timer.Reset(s.Interval())
			case cmdRearm:
				if s.Live() {
					stopTimer(timer)
					timer.Reset(s.Interval())
				}
			case cmdPause:
				stopTimer(timer)
			}
		}
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
