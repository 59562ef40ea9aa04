package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/layout"
)

// Position is a grid cell, zero-based from the top-left corner.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Button is a single addressable cell on a board.
type Button struct {
	ID      uuid.UUID `json:"id"`
	BoardID uuid.UUID `json:"board_id"`
	Position
	ImageFilename string `json:"image_filename"`
}

// ValidateImageFilename accepts bare filenames only: no path separators and no
// directory references.
func ValidateImageFilename(name string) error {
	reject := func(msg string) error {
		return &Error{Code: CodeInvalidImageFilename, Entity: EntityButton, Field: "image_filename", Msg: msg}
	}
	switch {
	case name == "":
		return reject("filename is empty")
	case strings.ContainsAny(name, `/\`):
		return reject(fmt.Sprintf("filename %q contains a path separator", name))
	case name == "." || name == "..":
		return reject(fmt.Sprintf("filename %q is a directory reference", name))
	case !IsStorableText(name):
		return reject("filename must be valid UTF-8 without NUL bytes")
	}
	return nil
}

// CheckBounds returns OutOfBounds when pos lies outside l.
func CheckBounds(l layout.Layout, pos Position) error {
	if l.Contains(pos.X, pos.Y) {
		return nil
	}
	w, h := l.Bounds()
	return &Error{
		Code:   CodeOutOfBounds,
		Entity: EntityButton,
		Field:  "position",
		Msg:    fmt.Sprintf("%s is outside %dx%d board", pos, w, h),
	}
}
