package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
)

// storeFactory returns an empty store enforcing unique custom shapes.
type storeFactory func(t *testing.T) Store

// runStoreContract checks the behavior every Store implementation shares.
func runStoreContract(t *testing.T, newStore storeFactory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s Store)
	}{
		{"BoardCRUD", testBoardCRUD},
		{"DuplicateBoardID", testDuplicateBoardID},
		{"UniqueCustomShape", testUniqueCustomShape},
		{"ListBoardsPagination", testListBoardsPagination},
		{"ButtonPositionUnique", testButtonPositionUnique},
		{"ButtonMoveFreesCell", testButtonMoveFreesCell},
		{"ListButtonsOrder", testListButtonsOrder},
		{"FunctionalityReplace", testFunctionalityReplace},
		{"FunctionalityUnknownTarget", testFunctionalityUnknownTarget},
		{"DeleteBoardInUse", testDeleteBoardInUse},
		{"DeleteBoardCascades", testDeleteBoardCascades},
		{"RollbackOnError", testRollbackOnError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func inTx(t *testing.T, s Store, fn func(tx Tx) error) error {
	t.Helper()
	return s.InTx(context.Background(), fn)
}

func mustTx(t *testing.T, s Store, fn func(tx Tx) error) {
	t.Helper()
	if err := inTx(t, s, fn); err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func newBoard(name string, l layout.Layout) model.Board {
	return model.Board{ID: uuid.New(), Name: name, Layout: l}
}

func grid() layout.Layout { return layout.Layout{Kind: layout.Grid8x4} }

func custom(w, h int) layout.Layout { return layout.Layout{Kind: layout.Custom, Width: w, Height: h} }

func newButton(boardID uuid.UUID, x, y int) model.Button {
	return model.Button{ID: uuid.New(), BoardID: boardID, Position: model.Position{X: x, Y: y}, ImageFilename: fmt.Sprintf("b%d_%d.png", x, y)}
}

func seedBoard(t *testing.T, s Store, b model.Board, buttons ...model.Button) {
	t.Helper()
	mustTx(t, s, func(tx Tx) error {
		ctx := context.Background()
		if err := tx.InsertBoard(ctx, b); err != nil {
			return err
		}
		for _, btn := range buttons {
			if err := tx.InsertButton(ctx, btn); err != nil {
				return err
			}
		}
		return nil
	})
}

func testBoardCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBoard("My Board", grid())
	seedBoard(t, s, b)

	var got *model.Board
	mustTx(t, s, func(tx Tx) error {
		var err error
		got, err = tx.GetBoard(ctx, b.ID)
		return err
	})
	if got.Name != b.Name || got.Layout != b.Layout {
		t.Errorf("GetBoard: got %+v, want %+v", got, b)
	}

	b.Name = "Renamed"
	mustTx(t, s, func(tx Tx) error { return tx.UpdateBoard(ctx, b) })
	mustTx(t, s, func(tx Tx) error {
		var err error
		got, err = tx.GetBoard(ctx, b.ID)
		return err
	})
	if got.Name != "Renamed" {
		t.Errorf("Name after update: got %q", got.Name)
	}

	mustTx(t, s, func(tx Tx) error { return tx.DeleteBoard(ctx, b.ID) })
	err := inTx(t, s, func(tx Tx) error {
		_, err := tx.GetBoard(ctx, b.ID)
		return err
	})
	if !errors.Is(err, model.ErrBoardNotFound) {
		t.Errorf("GetBoard after delete: got %v, want board not found", err)
	}
}

func testDuplicateBoardID(t *testing.T, s Store) {
	b := newBoard("a", grid())
	seedBoard(t, s, b)

	err := inTx(t, s, func(tx Tx) error { return tx.InsertBoard(context.Background(), b) })
	if !errors.Is(err, model.ErrDuplicateID) {
		t.Errorf("got %v, want duplicate id", err)
	}
}

func testUniqueCustomShape(t *testing.T, s Store) {
	seedBoard(t, s, newBoard("first", custom(6, 2)))
	seedBoard(t, s, newBoard("fixed one", grid()))
	seedBoard(t, s, newBoard("fixed two", grid()))

	err := inTx(t, s, func(tx Tx) error {
		return tx.InsertBoard(context.Background(), newBoard("second", custom(6, 2)))
	})
	if !errors.Is(err, model.ErrDuplicateLayout) {
		t.Errorf("got %v, want duplicate layout", err)
	}

	var same []model.Board
	mustTx(t, s, func(tx Tx) error {
		var err error
		same, err = tx.FindBoardsByShape(context.Background(), grid())
		return err
	})
	if len(same) != 2 {
		t.Errorf("FindBoardsByShape: got %d boards, want 2", len(same))
	}
}

func testListBoardsPagination(t *testing.T, s Store) {
	for _, name := range []string{"delta", "alpha", "charlie", "bravo", "Zulu"} {
		seedBoard(t, s, newBoard(name, grid()))
	}

	var names []string
	page := PageRequest{Limit: 2}
	for range 10 {
		var p *BoardPage
		mustTx(t, s, func(tx Tx) error {
			var err error
			p, err = tx.ListBoards(context.Background(), page)
			return err
		})
		for _, b := range p.Boards {
			names = append(names, b.Name)
		}
		if !p.HasMore {
			break
		}
		page.Cursor = p.NextCursor
	}

	want := []string{"Zulu", "alpha", "bravo", "charlie", "delta"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("names: got %v, want %v", names, want)
	}
}

func testButtonPositionUnique(t *testing.T, s Store) {
	b := newBoard("b", grid())
	seedBoard(t, s, b, newButton(b.ID, 0, 0))

	err := inTx(t, s, func(tx Tx) error { return tx.InsertButton(context.Background(), newButton(b.ID, 0, 0)) })
	if !errors.Is(err, model.ErrPositionTaken) {
		t.Errorf("got %v, want position taken", err)
	}

	other := newBoard("other", grid())
	seedBoard(t, s, other, newButton(other.ID, 0, 0))
}

func testButtonMoveFreesCell(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBoard("b", grid())
	btn := newButton(b.ID, 0, 0)
	seedBoard(t, s, b, btn)

	btn.Position = model.Position{X: 1, Y: 0}
	mustTx(t, s, func(tx Tx) error { return tx.UpdateButton(ctx, btn) })
	mustTx(t, s, func(tx Tx) error { return tx.InsertButton(ctx, newButton(b.ID, 0, 0)) })

	err := inTx(t, s, func(tx Tx) error { return tx.InsertButton(ctx, newButton(b.ID, 1, 0)) })
	if !errors.Is(err, model.ErrPositionTaken) {
		t.Errorf("got %v, want position taken", err)
	}
}

func testListButtonsOrder(t *testing.T, s Store) {
	b := newBoard("b", grid())
	seedBoard(t, s, b, newButton(b.ID, 2, 1), newButton(b.ID, 5, 0), newButton(b.ID, 0, 1))

	var buttons []model.Button
	mustTx(t, s, func(tx Tx) error {
		var err error
		buttons, err = tx.ListButtons(context.Background(), b.ID)
		return err
	})

	want := []model.Position{{X: 5, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}}
	if len(buttons) != len(want) {
		t.Fatalf("got %d buttons, want %d", len(buttons), len(want))
	}
	for i, p := range want {
		if buttons[i].Position != p {
			t.Errorf("buttons[%d]: got %s, want %s", i, buttons[i].Position, p)
		}
	}

	err := inTx(t, s, func(tx Tx) error {
		_, err := tx.ListButtons(context.Background(), uuid.New())
		return err
	})
	if !errors.Is(err, model.ErrBoardNotFound) {
		t.Errorf("unknown board: got %v", err)
	}
}

func testFunctionalityReplace(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBoard("b", grid())
	btn := newButton(b.ID, 0, 0)
	seedBoard(t, s, b, btn)

	first := model.Functionality{ID: uuid.New(), ButtonID: btn.ID, Action: model.AppSwitch{AppName: "Chrome"}}
	second := model.Functionality{ID: uuid.New(), ButtonID: btn.ID, Action: model.RunScript{ScriptPath: "/bin/mute"}}
	mustTx(t, s, func(tx Tx) error { return tx.PutFunctionality(ctx, first) })
	mustTx(t, s, func(tx Tx) error { return tx.PutFunctionality(ctx, second) })

	var got *model.Functionality
	mustTx(t, s, func(tx Tx) error {
		var err error
		got, err = tx.GetFunctionality(ctx, btn.ID)
		return err
	})
	if got.ID != second.ID || got.Action != second.Action {
		t.Errorf("got %+v, want %+v", got, second)
	}

	mustTx(t, s, func(tx Tx) error { return tx.DeleteFunctionality(ctx, btn.ID) })
	err := inTx(t, s, func(tx Tx) error {
		_, err := tx.GetFunctionality(ctx, btn.ID)
		return err
	})
	if !errors.Is(err, model.ErrFunctionalityNotFound) {
		t.Errorf("after delete: got %v", err)
	}
}

func testFunctionalityUnknownTarget(t *testing.T, s Store) {
	b := newBoard("b", grid())
	btn := newButton(b.ID, 0, 0)
	seedBoard(t, s, b, btn)

	f := model.Functionality{ID: uuid.New(), ButtonID: btn.ID, Action: model.PageSwitch{TargetBoardID: uuid.New()}}
	err := inTx(t, s, func(tx Tx) error { return tx.PutFunctionality(context.Background(), f) })
	if !errors.Is(err, model.ErrUnknownTargetBoard) {
		t.Errorf("got %v, want unknown target board", err)
	}
}

func testDeleteBoardInUse(t *testing.T, s Store) {
	ctx := context.Background()
	home := newBoard("home", grid())
	media := newBoard("media", grid())
	btn := newButton(home.ID, 0, 0)
	seedBoard(t, s, home, btn)
	seedBoard(t, s, media)

	f := model.Functionality{ID: uuid.New(), ButtonID: btn.ID, Action: model.PageSwitch{TargetBoardID: media.ID}}
	mustTx(t, s, func(tx Tx) error { return tx.PutFunctionality(ctx, f) })

	var switches []model.Functionality
	mustTx(t, s, func(tx Tx) error {
		var err error
		switches, err = tx.ListSwitchesTo(ctx, media.ID)
		return err
	})
	if len(switches) != 1 || switches[0].ID != f.ID {
		t.Errorf("ListSwitchesTo: got %+v", switches)
	}

	err := inTx(t, s, func(tx Tx) error { return tx.DeleteBoard(ctx, media.ID) })
	if !errors.Is(err, model.ErrBoardInUse) {
		t.Errorf("got %v, want board in use", err)
	}
}

func testDeleteBoardCascades(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBoard("b", grid())
	target := newBoard("target", grid())
	btn := newButton(b.ID, 0, 0)
	seedBoard(t, s, b, btn)
	seedBoard(t, s, target)
	f := model.Functionality{ID: uuid.New(), ButtonID: btn.ID, Action: model.PageSwitch{TargetBoardID: target.ID}}
	mustTx(t, s, func(tx Tx) error { return tx.PutFunctionality(ctx, f) })

	mustTx(t, s, func(tx Tx) error { return tx.DeleteBoard(ctx, b.ID) })

	err := inTx(t, s, func(tx Tx) error {
		_, err := tx.GetButton(ctx, btn.ID)
		return err
	})
	if !errors.Is(err, model.ErrButtonNotFound) {
		t.Errorf("button after board delete: got %v", err)
	}
	// The target lost its only referrer and can now go too.
	mustTx(t, s, func(tx Tx) error { return tx.DeleteBoard(ctx, target.ID) })
}

func testRollbackOnError(t *testing.T, s Store) {
	ctx := context.Background()
	b := newBoard("b", grid())
	boom := errors.New("boom")

	err := inTx(t, s, func(tx Tx) error {
		if err := tx.InsertBoard(ctx, b); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	err = inTx(t, s, func(tx Tx) error {
		_, err := tx.GetBoard(ctx, b.ID)
		return err
	})
	if !errors.Is(err, model.ErrBoardNotFound) {
		t.Errorf("board survived rollback: %v", err)
	}
}
