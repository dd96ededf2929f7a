// Package resilience provides the circuit breaker that gates cache traffic.
package resilience

import (
	"sync"
	"time"

	"github.com/LavishGent/productcache/internal/config"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
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

// Breaker gates calls to a dependency that may be down.
type Breaker interface {
	Execute(fn func() error) error
	State() State
	SetOnStateChange(fn func(from, to State))
}

var (
	_ Breaker = (*CircuitBreaker)(nil)
	_ Breaker = (*DisabledCircuitBreaker)(nil)
)

// New returns a circuit breaker for cfg, or a disabled one when cfg is not enabled.
func New(name string, cfg config.CircuitBreakerConfig) Breaker {
	if !cfg.Enabled {
		return NewDisabledCircuitBreaker()
	}
	return NewCircuitBreaker(name, cfg)
}

// CircuitBreaker opens after FailureThreshold consecutive failed calls and
// rejects calls until OpenDuration has passed. It then lets up to
// HalfOpenMaxRequests trial calls through: SuccessThreshold successes close
// it, a single failure opens it again.
type CircuitBreaker struct {
	name string
	cfg  config.CircuitBreakerConfig
	now  func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	trials    int
	openUntil time.Time
	onChange  func(from, to State)
}

// NewCircuitBreaker creates a closed breaker. Zero thresholds fall back to
// 5 failures, 2 successes, 10s open and 3 trial calls.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = 10 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 3
	}
	return &CircuitBreaker{name: name, cfg: cfg, now: time.Now}
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute runs fn unless the breaker rejects the call, in which case it
// returns ErrCircuitOpen. An error from fn counts as a failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.admit() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.report(err == nil)
	return err
}

func (cb *CircuitBreaker) admit() bool {
	notify := noChange

	cb.mu.Lock()
	allowed := true
	switch cb.state {
	case StateOpen:
		if cb.now().Before(cb.openUntil) {
			allowed = false
			break
		}
		notify = cb.moveLocked(StateHalfOpen)
		cb.trials = 1
	case StateHalfOpen:
		if cb.trials >= cb.cfg.HalfOpenMaxRequests {
			allowed = false
			break
		}
		cb.trials++
	}
	cb.mu.Unlock()

	notify()
	return allowed
}

func (cb *CircuitBreaker) report(ok bool) {
	notify := noChange

	cb.mu.Lock()
	switch cb.state {
	case StateClosed:
		if ok {
			cb.failures = 0
			break
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			notify = cb.moveLocked(StateOpen)
		}
	case StateHalfOpen:
		if !ok {
			notify = cb.moveLocked(StateOpen)
			break
		}
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			notify = cb.moveLocked(StateClosed)
		}
	}
	cb.mu.Unlock()

	notify()
}

func noChange() {}

// moveLocked switches state and resets the counters. The returned func runs
// the state-change callback and must be called after cb.mu is released.
func (cb *CircuitBreaker) moveLocked(to State) func() {
	from := cb.state
	if from == to {
		return noChange
	}

	cb.state = to
	cb.failures, cb.successes, cb.trials = 0, 0, 0
	if to == StateOpen {
		cb.openUntil = cb.now().Add(cb.cfg.OpenDuration)
	}

	callback := cb.onChange
	if callback == nil {
		return noChange
	}
	return func() { callback(from, to) }
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// SetOnStateChange registers fn to run after each transition. fn runs
// outside the breaker's lock and may call State.
func (cb *CircuitBreaker) SetOnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onChange = fn
}

// DisabledCircuitBreaker lets every call through.
type DisabledCircuitBreaker struct{}

func NewDisabledCircuitBreaker() *DisabledCircuitBreaker {
	return &DisabledCircuitBreaker{}
}

func (cb *DisabledCircuitBreaker) Execute(fn func() error) error {
	return fn()
}

func (cb *DisabledCircuitBreaker) State() State { return StateClosed }

func (cb *DisabledCircuitBreaker) SetOnStateChange(fn func(from, to State)) {}
