// Package circuitbreaker stops calling a sibling service that keeps failing.
//
// The breaker records the outcome of the last Window calls. Once the share of
// failures reaches Threshold it opens and rejects calls with ErrOpen for
// Cooldown. The first call after the cooldown runs half-open: Recovery
// consecutive successes close the breaker, a single failure reopens it.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrOpen = errors.New("circuit breaker is open")

type Breaker interface {
	Call(fn func() error) error
	State() State
	Reset()
}

type Config struct {
	Window    int
	Cooldown  time.Duration
	Threshold float64
	Recovery  int
}

type breaker struct {
	mu  sync.Mutex
	cfg Config

	state    State
	openedAt time.Time
	outcomes []bool // true = failed
	pos      int
	failures int
	streak   int

	now func() time.Time
}

func New(cfg Config) Breaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	return &breaker{
		cfg:      cfg,
		state:    Closed,
		outcomes: make([]bool, cfg.Window),
		now:      time.Now,
	}
}

func (b *breaker) Call(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := fn()
	b.record(err != nil)
	return err
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return true
	}
	if b.now().Sub(b.openedAt) <= b.cfg.Cooldown {
		return false
	}
	b.state = HalfOpen
	b.streak = 0
	return true
}

func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.outcomes[b.pos] {
		b.failures--
	}
	b.outcomes[b.pos] = failed
	if failed {
		b.failures++
	}
	b.pos = (b.pos + 1) % len(b.outcomes)

	switch b.state {
	case HalfOpen:
		if failed {
			b.trip()
			return
		}
		b.streak++
		if b.streak >= b.cfg.Recovery {
			b.reset()
		}
	case Closed:
		if float64(b.failures)/float64(len(b.outcomes)) >= b.cfg.Threshold {
			b.trip()
		}
	}
}

func (b *breaker) trip() {
	b.state = Open
	b.streak = 0
	b.openedAt = b.now()
}

func (b *breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *breaker) reset() {
	for i := range b.outcomes {
		b.outcomes[i] = false
	}
	b.failures = 0
	b.pos = 0
	b.streak = 0
	b.state = Closed
}
