package storage

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/model"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Cursor is an opaque pagination token for board listings, which are ordered
// by (name, id).
type Cursor struct {
	Name string    `json:"name"`
	ID   uuid.UUID `json:"id"`
}

// Encode serializes the cursor to a base64-encoded string.
func (c *Cursor) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses a base64-encoded cursor string.
func DecodeCursor(s string) (*Cursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	if !model.IsStorableText(c.Name) {
		return nil, errors.New("decode cursor: name is not valid text")
	}
	return &c, nil
}

// After reports whether b sorts strictly after the cursor position.
func (c *Cursor) After(b model.Board) bool {
	if b.Name != c.Name {
		return b.Name > c.Name
	}
	return b.ID.String() > c.ID.String()
}

// PageRequest selects a page of boards. A zero value reads the first page.
type PageRequest struct {
	Cursor string
	Limit  int
}

func (p PageRequest) limit() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageLimit
	case p.Limit > MaxPageLimit:
		return MaxPageLimit
	}
	return p.Limit
}

func (p PageRequest) cursor() (*Cursor, error) {
	if p.Cursor == "" {
		return nil, nil
	}
	return DecodeCursor(p.Cursor)
}

// BoardPage is one page of a board listing.
type BoardPage struct {
	Boards     []model.Board `json:"boards"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// newBoardPage builds a page from up to limit+1 ordered boards; the extra
// board only signals that more remain.
func newBoardPage(boards []model.Board, limit int) (*BoardPage, error) {
	page := &BoardPage{Boards: boards}
	if len(boards) > limit {
		page.Boards = boards[:limit]
		last := page.Boards[limit-1]
		next := Cursor{Name: last.Name, ID: last.ID}
		encoded, err := next.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode next cursor: %w", err)
		}
		page.NextCursor = encoded
		page.HasMore = true
	}
	if page.Boards == nil {
		page.Boards = []model.Board{}
	}
	return page, nil
}
