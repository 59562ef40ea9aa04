package layout

import (
	"errors"
	"fmt"
)

// Kind identifies a board shape. Fixed kinds have known dimensions; Custom
// carries its own width and height.
type Kind string

const (
	Grid8x4 Kind = "8x4_grid"
	Grid5x3 Kind = "5x3_grid"
	Grid3x2 Kind = "3x2_grid"
	Custom  Kind = "custom"
)

// MaxDimension bounds the width and height of a custom layout.
const MaxDimension = 256

// ErrInvalidLayout is returned when a kind/dimension combination is rejected.
var ErrInvalidLayout = errors.New("invalid layout")

type dims struct{ w, h int }

var fixed = map[Kind]dims{
	Grid8x4: {8, 4},
	Grid5x3: {5, 3},
	Grid3x2: {3, 2},
}

// Kinds returns every known kind, fixed shapes first.
func Kinds() []Kind {
	return []Kind{Grid8x4, Grid5x3, Grid3x2, Custom}
}

// ParseKind validates s against the closed set of kinds.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if k == Custom {
		return k, nil
	}
	if _, ok := fixed[k]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown layout kind %q", ErrInvalidLayout, s)
}

// IsFixed reports whether k is one of the built-in shapes.
func (k Kind) IsFixed() bool {
	_, ok := fixed[k]
	return ok
}

// Layout is the canonical shape descriptor of a board. Width and Height are
// only set for Custom layouts.
type Layout struct {
	Kind   Kind `json:"kind"`
	Width  int  `json:"width,omitempty"`
	Height int  `json:"height,omitempty"`
}

// Define validates a requested layout. Zero width or height means the value was
// not supplied. Fixed kinds accept dimensions only when they match the shape.
func Define(kind Kind, width, height int) (Layout, error) {
	if width < 0 || height < 0 {
		return Layout{}, fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidLayout, width, height)
	}

	if kind == Custom {
		if width == 0 || height == 0 {
			return Layout{}, fmt.Errorf("%w: custom layout requires width and height", ErrInvalidLayout)
		}
		if width > MaxDimension || height > MaxDimension {
			return Layout{}, fmt.Errorf("%w: custom layout %dx%d exceeds %dx%d", ErrInvalidLayout, width, height, MaxDimension, MaxDimension)
		}
		return Layout{Kind: Custom, Width: width, Height: height}, nil
	}

	d, ok := fixed[kind]
	if !ok {
		return Layout{}, fmt.Errorf("%w: unknown layout kind %q", ErrInvalidLayout, kind)
	}
	if width != 0 && width != d.w {
		return Layout{}, fmt.Errorf("%w: %s has width %d, got %d", ErrInvalidLayout, kind, d.w, width)
	}
	if height != 0 && height != d.h {
		return Layout{}, fmt.Errorf("%w: %s has height %d, got %d", ErrInvalidLayout, kind, d.h, height)
	}
	return Layout{Kind: kind}, nil
}

// Validate re-checks a Layout that did not come from Define, e.g. one decoded
// from storage or JSON.
func (l Layout) Validate() error {
	if l.Kind == Custom {
		_, err := Define(Custom, l.Width, l.Height)
		return err
	}
	if !l.Kind.IsFixed() {
		return fmt.Errorf("%w: unknown layout kind %q", ErrInvalidLayout, l.Kind)
	}
	if l.Width != 0 || l.Height != 0 {
		return fmt.Errorf("%w: %s must not carry explicit dimensions", ErrInvalidLayout, l.Kind)
	}
	return nil
}

// Bounds returns the grid width and height regardless of kind. An unknown kind
// yields 0x0, which contains no cells.
func (l Layout) Bounds() (width, height int) {
	if l.Kind == Custom {
		return l.Width, l.Height
	}
	d := fixed[l.Kind]
	return d.w, d.h
}

// Contains reports whether (x, y) addresses a cell of the layout.
func (l Layout) Contains(x, y int) bool {
	w, h := l.Bounds()
	return x >= 0 && y >= 0 && x < w && y < h
}

// Resize returns a custom layout with new dimensions.
func (l Layout) Resize(width, height int) (Layout, error) {
	if l.Kind != Custom {
		return Layout{}, fmt.Errorf("%w: only custom layouts can be resized, board is %s", ErrInvalidLayout, l.Kind)
	}
	return Define(Custom, width, height)
}

// ShapeKey identifies the (kind, width, height) triple used for the shape
// uniqueness rule.
func (l Layout) ShapeKey() string {
	return fmt.Sprintf("%s:%d:%d", l.Kind, l.Width, l.Height)
}

func (l Layout) String() string {
	w, h := l.Bounds()
	if l.Kind == Custom {
		return fmt.Sprintf("custom %dx%d", w, h)
	}
	return string(l.Kind)
}
