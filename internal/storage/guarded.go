package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ryanbastic/padboard/internal/circuitbreaker"
	"github.com/ryanbastic/padboard/internal/model"
)

// GuardedStore wraps a Store with a circuit breaker. Only infrastructure
// errors trip the breaker; domain errors and caller cancellation mean the
// backend answered and count as success.
type GuardedStore struct {
	next    Store
	breaker *circuitbreaker.Breaker
}

// NewGuardedStore wraps next. The breaker should be built with
// IsBackendFailure as its failure filter.
func NewGuardedStore(next Store, breaker *circuitbreaker.Breaker) *GuardedStore {
	return &GuardedStore{next: next, breaker: breaker}
}

// IsBackendFailure reports whether err indicates the store itself is failing.
func IsBackendFailure(err error) bool {
	if err == nil {
		return false
	}
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		return false
	}
	if isDataException(err) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

func (g *GuardedStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return g.guard(func() error { return g.next.InTx(ctx, fn) })
}

func (g *GuardedStore) Ping(ctx context.Context) error {
	return g.guard(func() error { return g.next.Ping(ctx) })
}

func (g *GuardedStore) guard(fn func() error) error {
	err := g.breaker.Execute(fn)
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// State exposes the breaker state for health reporting.
func (g *GuardedStore) State() circuitbreaker.State {
	return g.breaker.State()
}
