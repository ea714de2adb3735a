package canvas

import (
	"sync"
	"time"
)

// Clock abstracts time for the pacer so tests can inject a fake.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Pacer enforces a minimum interval between consecutive API calls, measured
// from the end of the previous call. It blocks the calling goroutine; there
// is no queueing because all gateway traffic is sequential.
type Pacer struct {
	mu    sync.Mutex
	min   time.Duration
	clock Clock
	last  time.Time
}

// NewPacer returns a pacer with the given minimum inter-call interval.
func NewPacer(min time.Duration) *Pacer {
	return &Pacer{min: min, clock: realClock{}}
}

// NewPacerWithClock is NewPacer with an injectable clock, for tests.
func NewPacerWithClock(min time.Duration, clock Clock) *Pacer {
	return &Pacer{min: min, clock: clock}
}

// Wait blocks until at least the minimum interval has elapsed since the last
// call to Done. The first call never waits.
func (p *Pacer) Wait() {
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	if last.IsZero() {
		return
	}
	if elapsed := p.clock.Now().Sub(last); elapsed < p.min {
		p.clock.Sleep(p.min - elapsed)
	}
}

// Done records the end of a call as the new pacing reference point.
func (p *Pacer) Done() {
	p.mu.Lock()
	p.last = p.clock.Now()
	p.mu.Unlock()
}
