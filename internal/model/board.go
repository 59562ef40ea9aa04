package model

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
)

// MaxBoardNameLength bounds board display names, in runes.
const MaxBoardNameLength = 128

// Board is a grid of buttons with a declared shape.
type Board struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Layout layout.Layout `json:"layout"`
}

// ValidateBoardName rejects blank or oversized display names.
func ValidateBoardName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &Error{Code: CodeInvalidName, Entity: EntityBoard, Field: "name", Msg: "name is empty"}
	}
	if !IsStorableText(name) {
		return &Error{Code: CodeInvalidName, Entity: EntityBoard, Field: "name", Msg: "name must be valid UTF-8 without NUL bytes"}
	}
	if utf8.RuneCountInString(name) > MaxBoardNameLength {
		return &Error{Code: CodeInvalidName, Entity: EntityBoard, Field: "name", Msg: "name is too long"}
	}
	return nil
}

// IsStorableText reports whether s is valid UTF-8 free of NUL bytes, the
// strings a TEXT column accepts.
func IsStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// LayoutError converts a layout package error into a domain error.
func LayoutError(boardID uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, layout.ErrInvalidLayout) {
		return err
	}
	e := &Error{Code: CodeInvalidLayout, Entity: EntityBoard, Field: "layout", Err: err}
	if boardID != uuid.Nil {
		e.ID = boardID.String()
	}
	return e
}

// Validate checks every board attribute.
func (b Board) Validate() error {
	if err := ValidateBoardName(b.Name); err != nil {
		return err
	}
	return LayoutError(b.ID, b.Layout.Validate())
}
