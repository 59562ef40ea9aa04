package board

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/metrics"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// ReferencePolicy decides what deleting a page_switch target does.
type ReferencePolicy int

const (
	// RefuseDelete fails the delete with BoardInUse.
	RefuseDelete ReferencePolicy = iota
	// CascadeUnassign removes the referencing functionalities, leaving their
	// buttons unassigned.
	CascadeUnassign
)

// ParseReferencePolicy accepts "refuse" or "cascade".
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch s {
	case "refuse":
		return RefuseDelete, nil
	case "cascade":
		return CascadeUnassign, nil
	}
	return RefuseDelete, fmt.Errorf("unknown reference policy %q", s)
}

// ShapePolicy decides how two custom boards with the same dimensions are
// treated.
type ShapePolicy int

const (
	EnforceUniqueShapes ShapePolicy = iota
	WarnDuplicateShapes
)

// ParseShapePolicy accepts "enforce" or "warn".
func ParseShapePolicy(s string) (ShapePolicy, error) {
	switch s {
	case "enforce":
		return EnforceUniqueShapes, nil
	case "warn":
		return WarnDuplicateShapes, nil
	}
	return EnforceUniqueShapes, fmt.Errorf("unknown shape policy %q", s)
}

// Options configure the policies of a Service. The zero value is the strict
// configuration.
type Options struct {
	References ReferencePolicy
	Shapes     ShapePolicy
	Fields     model.FieldMode
}

// StoreOptions returns the storage constraints matching these policies.
func (o Options) StoreOptions() storage.Options {
	return storage.Options{UniqueCustomShapes: o.Shapes == EnforceUniqueShapes}
}

// Service owns boards, buttons and functionalities. Every exported method
// runs in a single store transaction, so its checks and writes are atomic.
type Service struct {
	store  storage.Store
	opts   Options
	logger *slog.Logger
	newID  func() uuid.UUID
}

// NewService creates a Service on store. The store must enforce the
// constraints returned by opts.StoreOptions.
func NewService(store storage.Store, opts Options, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		opts:   opts,
		logger: logger,
		newID:  uuid.New,
	}
}

// Options returns the configured policies.
func (s *Service) Options() Options {
	return s.opts
}

// finish records the outcome of op and hands err back.
func (s *Service) finish(op string, err error) error {
	metrics.ObserveOperation(op, err)
	if err != nil && model.ClassOf(err) == model.ClassUnknown {
		s.logger.Error("operation failed", "operation", op, "error", err)
	}
	return err
}
