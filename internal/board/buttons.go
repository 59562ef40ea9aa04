package board

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// PlaceButton creates a button on a free cell of a board.
func (s *Service) PlaceButton(ctx context.Context, boardID uuid.UUID, pos model.Position, imageFilename string) (*model.Button, error) {
	if err := model.ValidateImageFilename(imageFilename); err != nil {
		return nil, s.finish("place_button", err)
	}
	btn := model.Button{ID: s.newID(), BoardID: boardID, Position: pos, ImageFilename: imageFilename}

	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		if err := s.checkPlacement(ctx, tx, btn); err != nil {
			return err
		}
		return tx.InsertButton(ctx, btn)
	})
	if err != nil {
		return nil, s.finish("place_button", err)
	}

	s.logger.Info("button placed", "button_id", btn.ID, "board_id", boardID, "position", pos.String())
	return &btn, s.finish("place_button", nil)
}

// checkPlacement verifies btn lies inside its board and that no other button
// of the board occupies its cell.
func (s *Service) checkPlacement(ctx context.Context, tx storage.Tx, btn model.Button) error {
	b, err := tx.GetBoard(ctx, btn.BoardID)
	if err != nil {
		return err
	}
	if err := model.CheckBounds(b.Layout, btn.Position); err != nil {
		return err
	}

	others, err := tx.ListButtons(ctx, btn.BoardID)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.ID != btn.ID && other.Position == btn.Position {
			return &model.Error{
				Code:   model.CodePositionTaken,
				Entity: model.EntityButton,
				ID:     other.ID.String(),
				Field:  "position",
				Msg:    fmt.Sprintf("%s on board %s is occupied", btn.Position, btn.BoardID),
			}
		}
	}
	return nil
}

// MoveButton repositions a button within its board.
func (s *Service) MoveButton(ctx context.Context, buttonID uuid.UUID, pos model.Position) (*model.Button, error) {
	var btn *model.Button
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		if btn, err = tx.GetButton(ctx, buttonID); err != nil {
			return err
		}
		if btn.Position == pos {
			return nil
		}
		btn.Position = pos
		if err := s.checkPlacement(ctx, tx, *btn); err != nil {
			return err
		}
		return tx.UpdateButton(ctx, *btn)
	})
	if err != nil {
		return nil, s.finish("move_button", err)
	}

	s.logger.Info("button moved", "button_id", buttonID, "position", pos.String())
	return btn, s.finish("move_button", nil)
}

// UpdateButtonImage replaces the image filename of a button.
func (s *Service) UpdateButtonImage(ctx context.Context, buttonID uuid.UUID, imageFilename string) (*model.Button, error) {
	if err := model.ValidateImageFilename(imageFilename); err != nil {
		return nil, s.finish("update_button_image", err)
	}

	var btn *model.Button
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		if btn, err = tx.GetButton(ctx, buttonID); err != nil {
			return err
		}
		btn.ImageFilename = imageFilename
		return tx.UpdateButton(ctx, *btn)
	})
	if err != nil {
		return nil, s.finish("update_button_image", err)
	}

	s.logger.Info("button image updated", "button_id", buttonID, "image_filename", imageFilename)
	return btn, s.finish("update_button_image", nil)
}

// RemoveButton deletes a button together with its functionality.
func (s *Service) RemoveButton(ctx context.Context, buttonID uuid.UUID) error {
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		return tx.DeleteButton(ctx, buttonID)
	})
	if err != nil {
		return s.finish("remove_button", err)
	}

	s.logger.Info("button removed", "button_id", buttonID)
	return s.finish("remove_button", nil)
}

// GetButton returns the button with the given id.
func (s *Service) GetButton(ctx context.Context, buttonID uuid.UUID) (*model.Button, error) {
	var btn *model.Button
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		btn, err = tx.GetButton(ctx, buttonID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return btn, nil
}

// ListButtons returns the buttons of a board in row-major order.
func (s *Service) ListButtons(ctx context.Context, boardID uuid.UUID) ([]model.Button, error) {
	var buttons []model.Button
	err := s.store.InTx(ctx, func(tx storage.Tx) error {
		var err error
		buttons, err = tx.ListButtons(ctx, boardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return buttons, nil
}
