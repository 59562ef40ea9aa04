package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	Closed   State = iota // Normal operation, calls pass through.
	Open                  // Backend failing, calls are rejected immediately.
	HalfOpen              // One probe call is allowed through.
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Option customises a Breaker.
type Option func(*Breaker)

// WithFailureFilter decides which errors count against the backend. Errors
// for which isFailure returns false are passed through and count as success.
func WithFailureFilter(isFailure func(error) bool) Option {
	return func(b *Breaker) { b.isFailure = isFailure }
}

// WithStateChange registers a callback run on every transition. It is called
// with the breaker lock held and must not call back into the breaker.
func WithStateChange(fn func(from, to State)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

// Breaker guards calls to a backend that may fail as a whole.
type Breaker struct {
	mu              sync.Mutex
	state           State
	failures        int
	maxFailures     int
	resetTimeout    time.Duration
	lastFailureTime time.Time
	probing         bool

	isFailure func(error) bool
	onChange  func(from, to State)
	now       func() time.Time
}

// New creates a Breaker that opens after maxFailures consecutive failures
// and lets a probe through once resetTimeout has passed.
func New(maxFailures int, resetTimeout time.Duration, opts ...Option) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	b := &Breaker{
		state:        Closed,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		isFailure:    func(err error) bool { return err != nil },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn unless the circuit is open, in which case ErrCircuitOpen is
// returned without calling fn. fn's error is always returned as is.
func (b *Breaker) Execute(fn func() error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}
	if probe {
		// A panicking probe must not hold the half-open slot forever.
		defer func() {
			if r := recover(); r != nil {
				b.mu.Lock()
				b.probing = false
				b.mu.Unlock()
				panic(r)
			}
		}()
	}

	err = fn()
	b.record(probe, err)
	return err
}

// record applies the outcome of a call admitted by admit.
func (b *Breaker) record(probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if probe {
		b.probing = false
	}

	if err != nil && b.isFailure(err) {
		b.failures++
		b.lastFailureTime = b.now()
		if b.state == HalfOpen || b.failures >= b.maxFailures {
			b.setState(Open)
		}
		return
	}

	// A call admitted before the circuit opened says nothing about recovery;
	// only the probe may close it.
	if !probe && b.state != Closed {
		return
	}
	b.failures = 0
	b.setState(Closed)
}

func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.lastFailureTime) <= b.resetTimeout {
			return false, ErrCircuitOpen
		}
		b.setState(HalfOpen)
		b.probing = true
		return true, nil
	case HalfOpen:
		if b.probing {
			return false, ErrCircuitOpen
		}
		b.probing = true
		return true, nil
	}
	return false, nil
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}

// State returns the current state of the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
