package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without running the call while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	// StateClosed - normal operation, calls pass through
	StateClosed State = iota

	// StateOpen - upstream considered down, calls fail immediately
	StateOpen

	// StateHalfOpen - cooldown elapsed, next call probes the upstream
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

// Breaker guards an external upstream (the AI generation API). After
// maxFailures consecutive failures the breaker opens and calls fail fast for
// the cooldown duration; the first call after cooldown probes the upstream
// and either closes the breaker or reopens it.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	lastChange  time.Time
	maxFailures int
	cooldown    time.Duration
}

func New(maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		state:       StateClosed,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		lastChange:  time.Now(),
	}
}

// Call runs fn unless the breaker is open. The probe after cooldown runs a
// single call; its outcome decides whether the breaker closes or reopens.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.setState(StateHalfOpen)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.openedAt = time.Now()
		if b.state == StateHalfOpen || b.failures >= b.maxFailures {
			b.setState(StateOpen)
		}
		return err
	}

	b.failures = 0
	if b.state != StateClosed {
		b.setState(StateClosed)
	}
	return nil
}

func (b *Breaker) setState(s State) {
	if b.state != s {
		b.state = s
		b.lastChange = time.Now()
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed, clearing the failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.lastChange = time.Now()
}

// Metrics is a snapshot for the admin status endpoint.
type Metrics struct {
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	LastChange  time.Time `json:"last_change"`
	MaxFailures int       `json:"max_failures"`
}

func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Metrics{
		State:       b.state.String(),
		Failures:    b.failures,
		LastChange:  b.lastChange,
		MaxFailures: b.maxFailures,
	}
}
