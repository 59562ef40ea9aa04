package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
)

// ErrUnavailable is returned when the backing store is rejecting work, e.g.
// because the circuit breaker is open.
var ErrUnavailable = errors.New("store unavailable")

// Options configure constraints enforced by the store itself.
type Options struct {
	// UniqueCustomShapes rejects a second custom board with the same
	// (kind, width, height) triple. Fixed-kind boards never collide.
	UniqueCustomShapes bool
}

// Store is the durable home of boards, buttons and functionalities. Every
// mutation happens inside InTx; a non-nil error from fn rolls back everything
// fn did.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
}

// Tx is the per-transaction view of the store. Implementations enforce the
// uniqueness and referential constraints as a second line of defence and
// report violations as *model.Error.
type Tx interface {
	InsertBoard(ctx context.Context, b model.Board) error
	GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error)
	ListBoards(ctx context.Context, page PageRequest) (*BoardPage, error)
	// FindBoardsByShape returns boards whose (kind, width, height) equals l's.
	FindBoardsByShape(ctx context.Context, l layout.Layout) ([]model.Board, error)
	// UpdateBoard rewrites name and layout.
	UpdateBoard(ctx context.Context, b model.Board) error
	// DeleteBoard removes the board with its buttons and their functionalities.
	// It fails with BoardInUse while another board's functionality targets it.
	DeleteBoard(ctx context.Context, id uuid.UUID) error

	InsertButton(ctx context.Context, b model.Button) error
	GetButton(ctx context.Context, id uuid.UUID) (*model.Button, error)
	ListButtons(ctx context.Context, boardID uuid.UUID) ([]model.Button, error)
	// UpdateButton rewrites position and image filename.
	UpdateButton(ctx context.Context, b model.Button) error
	// DeleteButton removes the button and its functionality.
	DeleteButton(ctx context.Context, id uuid.UUID) error

	// PutFunctionality stores f, replacing any functionality of the same button.
	PutFunctionality(ctx context.Context, f model.Functionality) error
	GetFunctionality(ctx context.Context, buttonID uuid.UUID) (*model.Functionality, error)
	DeleteFunctionality(ctx context.Context, buttonID uuid.UUID) error
	// ListSwitchesTo returns every page_switch functionality targeting boardID.
	ListSwitchesTo(ctx context.Context, boardID uuid.UUID) ([]model.Functionality, error)
}
