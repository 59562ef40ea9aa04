package storage

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
)

// MemoryStore implements Store in process memory. Transactions are serialised
// by a mutex and run against a copy of the state, which replaces the live
// state only when fn succeeds.
// Intended for tests and single-process deployments; nothing is persisted.
type MemoryStore struct {
	mu    sync.Mutex
	opts  Options
	state *memState
}

type cellKey struct {
	board uuid.UUID
	x, y  int
}

type memState struct {
	boards          map[uuid.UUID]model.Board
	buttons         map[uuid.UUID]model.Button
	cells           map[cellKey]uuid.UUID
	functionalities map[uuid.UUID]model.Functionality // keyed by button id
}

func newMemState() *memState {
	return &memState{
		boards:          make(map[uuid.UUID]model.Board),
		buttons:         make(map[uuid.UUID]model.Button),
		cells:           make(map[cellKey]uuid.UUID),
		functionalities: make(map[uuid.UUID]model.Functionality),
	}
}

func (st *memState) clone() *memState {
	return &memState{
		boards:          maps.Clone(st.boards),
		buttons:         maps.Clone(st.buttons),
		cells:           maps.Clone(st.cells),
		functionalities: maps.Clone(st.functionalities),
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{opts: opts, state: newMemState()}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{opts: s.opts, st: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memTx struct {
	opts Options
	st   *memState
}

func (t *memTx) InsertBoard(_ context.Context, b model.Board) error {
	if _, ok := t.st.boards[b.ID]; ok {
		return &model.Error{Code: model.CodeDuplicateID, Entity: model.EntityBoard, ID: b.ID.String()}
	}
	if err := t.checkShape(b); err != nil {
		return err
	}
	t.st.boards[b.ID] = b
	return nil
}

func (t *memTx) checkShape(b model.Board) error {
	if !t.opts.UniqueCustomShapes || b.Layout.Kind != layout.Custom {
		return nil
	}
	for _, other := range t.st.boards {
		if other.ID != b.ID && other.Layout == b.Layout {
			return &model.Error{
				Code:   model.CodeDuplicateLayout,
				Entity: model.EntityBoard,
				ID:     other.ID.String(),
				Field:  "layout",
				Msg:    fmt.Sprintf("board %s already uses layout %s", other.ID, b.Layout),
			}
		}
	}
	return nil
}

func (t *memTx) GetBoard(_ context.Context, id uuid.UUID) (*model.Board, error) {
	b, ok := t.st.boards[id]
	if !ok {
		return nil, model.NotFound(model.EntityBoard, id)
	}
	return &b, nil
}

func (t *memTx) ListBoards(_ context.Context, page PageRequest) (*BoardPage, error) {
	cur, err := page.cursor()
	if err != nil {
		return nil, err
	}

	boards := make([]model.Board, 0, len(t.st.boards))
	for _, b := range t.st.boards {
		if cur == nil || cur.After(b) {
			boards = append(boards, b)
		}
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].ID.String() < boards[j].ID.String()
	})

	limit := page.limit()
	if len(boards) > limit+1 {
		boards = boards[:limit+1]
	}
	return newBoardPage(boards, limit)
}

func (t *memTx) FindBoardsByShape(_ context.Context, l layout.Layout) ([]model.Board, error) {
	var out []model.Board
	for _, b := range t.st.boards {
		if b.Layout == l {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (t *memTx) UpdateBoard(_ context.Context, b model.Board) error {
	if _, ok := t.st.boards[b.ID]; !ok {
		return model.NotFound(model.EntityBoard, b.ID)
	}
	if err := t.checkShape(b); err != nil {
		return err
	}
	t.st.boards[b.ID] = b
	return nil
}

func (t *memTx) DeleteBoard(_ context.Context, id uuid.UUID) error {
	if _, ok := t.st.boards[id]; !ok {
		return model.NotFound(model.EntityBoard, id)
	}
	for buttonID, f := range t.st.functionalities {
		target, ok := f.Target()
		if !ok || target != id {
			continue
		}
		if t.st.buttons[buttonID].BoardID != id {
			return &model.Error{
				Code:   model.CodeBoardInUse,
				Entity: model.EntityBoard,
				ID:     id.String(),
				Msg:    fmt.Sprintf("referenced by button %s", buttonID),
			}
		}
	}

	for buttonID, b := range t.st.buttons {
		if b.BoardID == id {
			t.removeButton(b)
			delete(t.st.functionalities, buttonID)
		}
	}
	delete(t.st.boards, id)
	return nil
}

func (t *memTx) InsertButton(_ context.Context, b model.Button) error {
	if _, ok := t.st.buttons[b.ID]; ok {
		return &model.Error{Code: model.CodeDuplicateID, Entity: model.EntityButton, ID: b.ID.String()}
	}
	if _, ok := t.st.boards[b.BoardID]; !ok {
		return model.NotFound(model.EntityBoard, b.BoardID)
	}
	if err := model.ValidateImageFilename(b.ImageFilename); err != nil {
		return err
	}
	if err := t.claimCell(b); err != nil {
		return err
	}
	t.st.buttons[b.ID] = b
	return nil
}

func (t *memTx) claimCell(b model.Button) error {
	key := cellKey{board: b.BoardID, x: b.X, y: b.Y}
	if holder, ok := t.st.cells[key]; ok && holder != b.ID {
		return &model.Error{
			Code:   model.CodePositionTaken,
			Entity: model.EntityButton,
			ID:     holder.String(),
			Field:  "position",
			Msg:    fmt.Sprintf("%s is occupied", b.Position),
		}
	}
	t.st.cells[key] = b.ID
	return nil
}

func (t *memTx) removeButton(b model.Button) {
	delete(t.st.cells, cellKey{board: b.BoardID, x: b.X, y: b.Y})
	delete(t.st.buttons, b.ID)
}

func (t *memTx) GetButton(_ context.Context, id uuid.UUID) (*model.Button, error) {
	b, ok := t.st.buttons[id]
	if !ok {
		return nil, model.NotFound(model.EntityButton, id)
	}
	return &b, nil
}

func (t *memTx) ListButtons(_ context.Context, boardID uuid.UUID) ([]model.Button, error) {
	if _, ok := t.st.boards[boardID]; !ok {
		return nil, model.NotFound(model.EntityBoard, boardID)
	}
	var out []model.Button
	for _, b := range t.st.buttons {
		if b.BoardID == boardID {
			out = append(out, b)
		}
	}
	sortButtons(out)
	return out, nil
}

// sortButtons orders row-major, matching the SQL ORDER BY y, x.
func sortButtons(bs []model.Button) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Y != bs[j].Y {
			return bs[i].Y < bs[j].Y
		}
		return bs[i].X < bs[j].X
	})
}

func (t *memTx) UpdateButton(_ context.Context, b model.Button) error {
	old, ok := t.st.buttons[b.ID]
	if !ok {
		return model.NotFound(model.EntityButton, b.ID)
	}
	if old.BoardID != b.BoardID {
		return fmt.Errorf("update button %s: board cannot change", b.ID)
	}
	if err := model.ValidateImageFilename(b.ImageFilename); err != nil {
		return err
	}
	if old.Position != b.Position {
		if err := t.claimCell(b); err != nil {
			return err
		}
		delete(t.st.cells, cellKey{board: old.BoardID, x: old.X, y: old.Y})
	}
	t.st.buttons[b.ID] = b
	return nil
}

func (t *memTx) DeleteButton(_ context.Context, id uuid.UUID) error {
	b, ok := t.st.buttons[id]
	if !ok {
		return model.NotFound(model.EntityButton, id)
	}
	t.removeButton(b)
	delete(t.st.functionalities, id)
	return nil
}

func (t *memTx) PutFunctionality(_ context.Context, f model.Functionality) error {
	if _, ok := t.st.buttons[f.ButtonID]; !ok {
		return model.NotFound(model.EntityButton, f.ButtonID)
	}
	if err := model.ValidateAction(f.Action); err != nil {
		return err
	}
	if target, ok := f.Target(); ok {
		if _, exists := t.st.boards[target]; !exists {
			return &model.Error{
				Code:   model.CodeUnknownTargetBoard,
				Entity: model.EntityFunctionality,
				ID:     f.ID.String(),
				Field:  "target_board_id",
				Msg:    fmt.Sprintf("board %s does not exist", target),
			}
		}
	}
	t.st.functionalities[f.ButtonID] = f
	return nil
}

func (t *memTx) GetFunctionality(_ context.Context, buttonID uuid.UUID) (*model.Functionality, error) {
	f, ok := t.st.functionalities[buttonID]
	if !ok {
		return nil, &model.Error{Code: model.CodeNotFound, Entity: model.EntityFunctionality, ID: buttonID.String(), Msg: "button has no functionality"}
	}
	return &f, nil
}

func (t *memTx) DeleteFunctionality(_ context.Context, buttonID uuid.UUID) error {
	if _, ok := t.st.functionalities[buttonID]; !ok {
		return &model.Error{Code: model.CodeNotFound, Entity: model.EntityFunctionality, ID: buttonID.String(), Msg: "button has no functionality"}
	}
	delete(t.st.functionalities, buttonID)
	return nil
}

func (t *memTx) ListSwitchesTo(_ context.Context, boardID uuid.UUID) ([]model.Functionality, error) {
	var out []model.Functionality
	for _, f := range t.st.functionalities {
		if target, ok := f.Target(); ok && target == boardID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
