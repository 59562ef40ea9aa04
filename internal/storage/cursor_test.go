package storage

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/model"
)

func TestCursor_EncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		c    Cursor
	}{
		{
			name: "name and id",
			c:    Cursor{Name: "My Board", ID: uuid.New()},
		},
		{
			name: "unicode name",
			c:    Cursor{Name: "Startseite ✓", ID: uuid.New()},
		},
		{
			name: "zero values",
			c:    Cursor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := tt.c.Encode()
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			decoded, err := DecodeCursor(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if decoded.Name != tt.c.Name {
				t.Errorf("Name: got %q, want %q", decoded.Name, tt.c.Name)
			}
			if decoded.ID != tt.c.ID {
				t.Errorf("ID: got %s, want %s", decoded.ID, tt.c.ID)
			}
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "invalid base64",
			input: "!!!invalid!!!",
		},
		{
			name:  "invalid json",
			input: base64.URLEncoding.EncodeToString([]byte("not json")),
		},
		{
			name:  "invalid id",
			input: base64.URLEncoding.EncodeToString([]byte(`{"name":"a","id":"nope"}`)),
		},
		{
			name:  "NUL in name",
			input: base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"name":"a\u0000b","id":%q}`, uuid.New()))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.input)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCursor_After(t *testing.T) {
	lo := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	hi := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := Cursor{Name: "b", ID: lo}

	tests := []struct {
		board model.Board
		want  bool
	}{
		{model.Board{Name: "a", ID: hi}, false},
		{model.Board{Name: "c", ID: lo}, true},
		{model.Board{Name: "b", ID: lo}, false},
		{model.Board{Name: "b", ID: hi}, true},
	}
	for _, tt := range tests {
		if got := c.After(tt.board); got != tt.want {
			t.Errorf("After(%s/%s): got %v, want %v", tt.board.Name, tt.board.ID, got, tt.want)
		}
	}
}

func TestPageRequest_Limit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPageLimit},
		{-5, DefaultPageLimit},
		{10, 10},
		{MaxPageLimit + 1, MaxPageLimit},
	}
	for _, tt := range tests {
		if got := (PageRequest{Limit: tt.in}).limit(); got != tt.want {
			t.Errorf("limit(%d): got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNewBoardPage(t *testing.T) {
	boards := make([]model.Board, 3)
	for i := range boards {
		boards[i] = model.Board{ID: uuid.New(), Name: fmt.Sprintf("board-%d", i)}
	}

	page, err := newBoardPage(boards, 2)
	if err != nil {
		t.Fatalf("newBoardPage: %v", err)
	}
	if len(page.Boards) != 2 || !page.HasMore {
		t.Fatalf("got %d boards, has_more=%v", len(page.Boards), page.HasMore)
	}
	next, err := DecodeCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if next.ID != boards[1].ID {
		t.Errorf("next cursor id: got %s, want %s", next.ID, boards[1].ID)
	}

	last, err := newBoardPage(nil, 2)
	if err != nil {
		t.Fatalf("newBoardPage: %v", err)
	}
	if last.HasMore || last.NextCursor != "" || last.Boards == nil {
		t.Errorf("empty page: got %+v", last)
	}
}
