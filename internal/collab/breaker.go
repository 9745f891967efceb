package collab

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets calls through.
	StateClosed State = iota
	// StateOpen fails calls fast until the cool-down passes.
	StateOpen
	// StateHalfOpen lets a single probe through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling the collaborator while it is
// considered down.
var ErrCircuitOpen = errors.New("collaborator circuit is open")

// Breaker stops calling the collaborator after maxFailures consecutive
// failures and probes it again once cooldown has passed.
type Breaker struct {
	mu sync.Mutex

	maxFailures int
	cooldown    time.Duration
	now         func() time.Time

	state       State
	failures    int
	openedAt    time.Time
	probeActive bool
}

// NewBreaker creates a closed breaker. maxFailures <= 0 disables it.
func NewBreaker(maxFailures int, cooldown time.Duration) *Breaker {
	return &Breaker{maxFailures: maxFailures, cooldown: cooldown, now: time.Now}
}

// Execute runs fn unless the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	if b == nil || b.maxFailures <= 0 {
		return fn()
	}
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	b.after(err)
	return err
}

// ExecuteContext is Execute for calls bound to ctx. A call that fails after
// ctx is done is not held against the collaborator.
func (b *Breaker) ExecuteContext(ctx context.Context, fn func() error) error {
	if b == nil || b.maxFailures <= 0 {
		return fn()
	}
	if err := b.before(); err != nil {
		return err
	}
	err := fn()
	if err != nil && ctx.Err() != nil {
		b.release()
		return err
	}
	b.after(err)
	return err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.state = StateHalfOpen
		log.Info().Msg("collab circuit half-open")
		fallthrough
	case StateHalfOpen:
		if b.probeActive {
			return ErrCircuitOpen
		}
		b.probeActive = true
	}
	return nil
}

func (b *Breaker) after(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probeActive = false
	}

	if err == nil {
		if b.state != StateClosed {
			log.Info().Msg("collab circuit closed")
		}
		b.state = StateClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.maxFailures {
		if b.state != StateOpen {
			log.Warn().Err(err).Int("failures", b.failures).Dur("cooldown", b.cooldown).Msg("collab circuit opened")
		}
		b.state = StateOpen
		b.openedAt = b.now()
	}
}

// release ends a call without recording its outcome.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probeActive = false
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
