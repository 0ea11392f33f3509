package suggest

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

// Timer is a pending delayed task.
type Timer interface {
	// Stop cancels the task. Returns false if it already ran or was stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer wheel.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Rand is the randomness source for intervals, sampling and confidence.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the math/rand/v2 global source, which is safe for
// concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// between returns a duration uniformly drawn from [lo, hi).
func between(r Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.IntN(int(hi-lo)))
}

// ManualScheduler is a virtual-time Scheduler for tests. Tasks run
// synchronously inside Advance, in due-time order.
//
// Thread-safety: safe for concurrent use; tasks run without the lock held,
// so they may schedule further tasks.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	order int
	tasks []*manualTimer
}

type manualTimer struct {
	s     *ManualScheduler
	at    time.Duration
	order int
	f     func()
	done  bool
}

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order++
	t := &manualTimer{s: s, at: s.now + d, order: s.order, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

// Stop implements Timer.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves virtual time forward by d, running every task that falls
// due, including tasks scheduled by tasks run during this call.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		t := s.nextDueLocked(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = t.at
		t.done = true
		s.mu.Unlock()

		t.f()
	}
}

// Pending returns the number of tasks not yet run or stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

// NextDue returns how far in the future the earliest pending task is.
func (s *ManualScheduler) NextDue() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.nextDueLocked(1<<63 - 1)
	if t == nil {
		return 0, false
	}
	return t.at - s.now, true
}

func (s *ManualScheduler) nextDueLocked(limit time.Duration) *manualTimer {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	s.tasks = live
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].order < s.tasks[j].order
	})
	if len(s.tasks) == 0 || s.tasks[0].at > limit {
		return nil
	}
	return s.tasks[0]
}
