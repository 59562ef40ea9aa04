package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// CreateBoard stores a new board with a fresh id. With EnforceUniqueShapes a
// custom layout already used by another board fails with DuplicateLayout.
func (s *Service) CreateBoard(ctx context.Context, name string, l layout.Layout) (*model.Board, error) {
	b := model.Board{ID: s.newID(), Name: name, Layout: l}
	if err := b.Validate(); err != nil {
		return nil, s.finish("create_board", err)
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := s.checkShape(ctx, tx, b); err != nil {
			return err
		}
		return tx.InsertBoard(ctx, b)
	})
	if err != nil {
		return nil, s.finish("create_board", err)
	}

	s.logger.Info("board created", "board_id", b.ID, "name", b.Name, "layout", b.Layout.String())
	return &b, s.finish("create_board", nil)
}

// checkShape applies the shape policy to b against every other board.
func (s *Service) checkShape(ctx context.Context, tx storage.Tx, b model.Board) error {
	if b.Layout.Kind != layout.Custom {
		return nil
	}
	same, err := tx.FindBoardsByShape(ctx, b.Layout)
	if err != nil {
		return err
	}
	for _, other := range same {
		if other.ID == b.ID {
			continue
		}
		if s.opts.Shapes == WarnDuplicateShapes {
			s.logger.Warn("custom layout shared by several boards",
				"board_id", b.ID, "other_board_id", other.ID, "layout", b.Layout.String())
			return nil
		}
		return &model.Error{
			Code:   model.CodeDuplicateLayout,
			Entity: model.EntityBoard,
			ID:     other.ID.String(),
			Field:  "layout",
			Msg:    fmt.Sprintf("board %q already uses layout %s", other.Name, b.Layout),
		}
	}
	return nil
}

// GetBoard returns the board with the given id.
func (s *Service) GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	var b *model.Board
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		b, err = tx.GetBoard(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListBoards returns one page of boards ordered by name.
func (s *Service) ListBoards(ctx context.Context, page storage.PageRequest) (*storage.BoardPage, error) {
	var p *storage.BoardPage
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		p, err = tx.ListBoards(ctx, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RenameBoard changes the display name of a board.
func (s *Service) RenameBoard(ctx context.Context, id uuid.UUID, name string) (*model.Board, error) {
	if err := model.ValidateBoardName(name); err != nil {
		return nil, s.finish("rename_board", err)
	}

	var b *model.Board
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		if b, err = tx.GetBoard(ctx, id); err != nil {
			return err
		}
		b.Name = name
		return tx.UpdateBoard(ctx, *b)
	})
	if err != nil {
		return nil, s.finish("rename_board", err)
	}

	s.logger.Info("board renamed", "board_id", id, "name", name)
	return b, s.finish("rename_board", nil)
}

// ResizeBoard changes the dimensions of a custom board. Existing buttons keep
// their positions; a resize that would leave any of them outside the new
// bounds fails with ShrinkWouldOrphanButtons.
func (s *Service) ResizeBoard(ctx context.Context, id uuid.UUID, width, height int) (*model.Board, error) {
	var b *model.Board
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		if b, err = tx.GetBoard(ctx, id); err != nil {
			return err
		}
		resized, err := b.Layout.Resize(width, height)
		if err != nil {
			return model.LayoutError(id, err)
		}

		buttons, err := tx.ListButtons(ctx, id)
		if err != nil {
			return err
		}
		var orphans []string
		for _, btn := range buttons {
			if !resized.Contains(btn.X, btn.Y) {
				orphans = append(orphans, btn.Position.String())
			}
		}
		if len(orphans) > 0 {
			return &model.Error{
				Code:   model.CodeShrinkWouldOrphanButtons,
				Entity: model.EntityBoard,
				ID:     id.String(),
				Field:  "layout",
				Msg:    fmt.Sprintf("%d button(s) outside %dx%d: %s", len(orphans), width, height, strings.Join(orphans, " ")),
			}
		}

		b.Layout = resized
		if err := s.checkShape(ctx, tx, *b); err != nil {
			return err
		}
		return tx.UpdateBoard(ctx, *b)
	})
	if err != nil {
		return nil, s.finish("resize_board", err)
	}

	s.logger.Info("board resized", "board_id", id, "layout", b.Layout.String())
	return b, s.finish("resize_board", nil)
}

// DeleteBoard removes a board with its buttons. Page switches on other boards
// that target it are handled by the reference policy: RefuseDelete fails with
// BoardInUse, CascadeUnassign removes them in the same transaction.
func (s *Service) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	var unassigned []uuid.UUID
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.GetBoard(ctx, id); err != nil {
			return err
		}

		refs, err := tx.ListSwitchesTo(ctx, id)
		if err != nil {
			return err
		}
		var referrers []uuid.UUID
		for _, f := range refs {
			btn, err := tx.GetButton(ctx, f.ButtonID)
			if err != nil {
				return err
			}
			if btn.BoardID != id {
				referrers = append(referrers, btn.ID)
			}
		}

		if len(referrers) > 0 && s.opts.References == RefuseDelete {
			ids := make([]string, len(referrers))
			for i, r := range referrers {
				ids[i] = r.String()
			}
			return &model.Error{
				Code:   model.CodeBoardInUse,
				Entity: model.EntityBoard,
				ID:     id.String(),
				Msg:    "page switch target of button(s) " + strings.Join(ids, ", "),
			}
		}
		for _, buttonID := range referrers {
			if err := tx.DeleteFunctionality(ctx, buttonID); err != nil {
				return err
			}
		}
		unassigned = referrers

		return tx.DeleteBoard(ctx, id)
	})
	if err != nil {
		return s.finish("delete_board", err)
	}

	for _, buttonID := range unassigned {
		s.logger.Info("page switch unassigned", "button_id", buttonID, "deleted_board_id", id)
	}
	s.logger.Info("board deleted", "board_id", id)
	return s.finish("delete_board", nil)
}
