package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// AssignFunctionality decodes spec under the configured field mode and binds
// the resulting action to a button, replacing any previous one.
func (s *Service) AssignFunctionality(ctx context.Context, buttonID uuid.UUID, spec model.FunctionalitySpec) (*model.Functionality, error) {
	a, err := model.DecodeAction(spec, s.opts.Fields)
	if err != nil {
		return nil, s.finish("assign_functionality", err)
	}
	return s.AssignAction(ctx, buttonID, a)
}

// AssignAction binds a to a button, replacing any previous functionality.
// Either the new functionality is stored in full or the old one stays.
func (s *Service) AssignAction(ctx context.Context, buttonID uuid.UUID, a model.Action) (*model.Functionality, error) {
	if err := model.ValidateAction(a); err != nil {
		return nil, s.finish("assign_functionality", err)
	}
	f := model.Functionality{ID: s.newID(), ButtonID: buttonID, Action: a}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		btn, err := tx.GetButton(ctx, buttonID)
		if err != nil {
			return err
		}
		if err := checkTarget(ctx, tx, f, btn.BoardID); err != nil {
			return err
		}
		return tx.PutFunctionality(ctx, f)
	})
	if err != nil {
		return nil, s.finish("assign_functionality", err)
	}

	s.logger.Info("functionality assigned", "button_id", buttonID, "functionality_id", f.ID, "kind", f.Kind())
	return &f, s.finish("assign_functionality", nil)
}

// checkTarget validates the switch target of a page_switch functionality
// owned by a button on ownerBoardID. Other kinds pass.
func checkTarget(ctx context.Context, tx storage.Tx, f model.Functionality, ownerBoardID uuid.UUID) error {
	target, ok := f.Target()
	if !ok {
		return nil
	}
	if target == ownerBoardID {
		return &model.Error{
			Code:   model.CodeSelfReferentialSwitch,
			Entity: model.EntityFunctionality,
			ID:     f.ID.String(),
			Field:  "target_board_id",
			Msg:    "a button cannot switch to its own board",
		}
	}
	if _, err := tx.GetBoard(ctx, target); err != nil {
		if model.IsNotFound(err) {
			return &model.Error{
				Code:   model.CodeUnknownTargetBoard,
				Entity: model.EntityFunctionality,
				ID:     f.ID.String(),
				Field:  "target_board_id",
				Msg:    fmt.Sprintf("board %s does not exist", target),
			}
		}
		return err
	}
	return nil
}

// ClearFunctionality returns a button to the unassigned state.
func (s *Service) ClearFunctionality(ctx context.Context, buttonID uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetButton(ctx, buttonID); err != nil {
			return err
		}
		return tx.DeleteFunctionality(ctx, buttonID)
	})
	if err != nil {
		return s.finish("clear_functionality", err)
	}

	s.logger.Info("functionality cleared", "button_id", buttonID)
	return s.finish("clear_functionality", nil)
}

// GetFunctionality returns the functionality bound to a button. An
// unassigned button yields a not-found error for the functionality entity.
func (s *Service) GetFunctionality(ctx context.Context, buttonID uuid.UUID) (*model.Functionality, error) {
	var f *model.Functionality
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetButton(ctx, buttonID); err != nil {
			return err
		}
		var err error
		f, err = tx.GetFunctionality(ctx, buttonID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ResolveTarget returns the board a page_switch functionality switches to.
// Other kinds fail with NotPageSwitch.
func (s *Service) ResolveTarget(ctx context.Context, f model.Functionality) (*model.Board, error) {
	target, ok := f.Target()
	if !ok {
		return nil, &model.Error{
			Code:   model.CodeNotPageSwitch,
			Entity: model.EntityFunctionality,
			ID:     f.ID.String(),
			Msg:    fmt.Sprintf("kind %s has no target board", f.Kind()),
		}
	}

	var b *model.Board
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		b, err = tx.GetBoard(ctx, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ResolveButtonTarget resolves the switch target of the functionality bound
// to a button.
func (s *Service) ResolveButtonTarget(ctx context.Context, buttonID uuid.UUID) (*model.Board, error) {
	f, err := s.GetFunctionality(ctx, buttonID)
	if err != nil {
		return nil, err
	}
	return s.ResolveTarget(ctx, *f)
}
