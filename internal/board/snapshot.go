package board

import (
	"context"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// ExportBoard returns a board with its buttons and their functionalities.
func (s *Service) ExportBoard(ctx context.Context, id uuid.UUID) (*model.BoardGraph, error) {
	var g *model.BoardGraph
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		b, err := tx.GetBoard(ctx, id)
		if err != nil {
			return err
		}
		g, err = exportGraph(ctx, tx, *b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Export returns every board in a single consistent snapshot.
func (s *Service) Export(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{Boards: []model.BoardGraph{}}
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		snap.Boards = snap.Boards[:0]
		page := storage.PageRequest{Limit: storage.MaxPageLimit}
		for {
			p, err := tx.ListBoards(ctx, page)
			if err != nil {
				return err
			}
			for _, b := range p.Boards {
				g, err := exportGraph(ctx, tx, b)
				if err != nil {
					return err
				}
				snap.Boards = append(snap.Boards, *g)
			}
			if !p.HasMore {
				return nil
			}
			page.Cursor = p.NextCursor
		}
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func exportGraph(ctx context.Context, tx storage.Tx, b model.Board) (*model.BoardGraph, error) {
	buttons, err := tx.ListButtons(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	g := &model.BoardGraph{Board: b, Buttons: make([]model.ButtonGraph, 0, len(buttons))}
	for _, btn := range buttons {
		bg := model.ButtonGraph{Button: btn}
		f, err := tx.GetFunctionality(ctx, btn.ID)
		switch {
		case err == nil:
			bg.Functionality = f
		case !model.IsNotFound(err):
			return nil, err
		}
		g.Buttons = append(g.Buttons, bg)
	}
	return g, nil
}

// Import stores every board of snap with its original ids, all or nothing.
// Page switches may target boards of the snapshot or boards already stored.
func (s *Service) Import(ctx context.Context, snap model.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return s.finish("import", err)
	}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		for _, g := range snap.Boards {
			if err := s.checkShape(ctx, tx, g.Board); err != nil {
				return err
			}
			if err := tx.InsertBoard(ctx, g.Board); err != nil {
				return err
			}
		}
		for _, g := range snap.Boards {
			for _, bg := range g.Buttons {
				// The enclosing board is authoritative for ownership.
				btn := bg.Button
				btn.BoardID = g.ID
				if err := s.checkPlacement(ctx, tx, btn); err != nil {
					return err
				}
				if err := tx.InsertButton(ctx, btn); err != nil {
					return err
				}
			}
		}
		// Functionalities last: their targets may be any imported board.
		for _, g := range snap.Boards {
			for _, bg := range g.Buttons {
				if bg.Functionality == nil {
					continue
				}
				f := *bg.Functionality
				if f.ID == uuid.Nil {
					f.ID = s.newID()
				}
				f.ButtonID = bg.ID
				if err := checkTarget(ctx, tx, f, g.ID); err != nil {
					return err
				}
				if err := tx.PutFunctionality(ctx, f); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return s.finish("import", err)
	}

	s.logger.Info("snapshot imported", "boards", len(snap.Boards))
	return s.finish("import", nil)
}

// validateSnapshot checks everything that does not need the store.
func validateSnapshot(snap model.Snapshot) error {
	for _, g := range snap.Boards {
		if g.ID == uuid.Nil {
			return &model.Error{Code: model.CodeMissingRequiredField, Entity: model.EntityBoard, Field: "id", Msg: "imported boards need an id"}
		}
		if err := g.Board.Validate(); err != nil {
			return err
		}
		for _, bg := range g.Buttons {
			if bg.ID == uuid.Nil {
				return &model.Error{Code: model.CodeMissingRequiredField, Entity: model.EntityButton, Field: "id", Msg: "imported buttons need an id"}
			}
			if err := model.ValidateImageFilename(bg.ImageFilename); err != nil {
				return err
			}
			if bg.Functionality != nil {
				if err := model.ValidateAction(bg.Functionality.Action); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
