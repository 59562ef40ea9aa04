package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Code names a single failure mode. Codes are stable and safe to expose to
// API clients.
type Code string

const (
	CodeInvalidLayout        Code = "invalid_layout"
	CodeInvalidName          Code = "invalid_name"
	CodeInvalidImageFilename Code = "invalid_image_filename"
	CodeInvalidKind          Code = "invalid_functionality_kind"
	CodeMissingRequiredField Code = "missing_required_field"
	CodeExtraneousField      Code = "extraneous_field"
	CodeInvalidValue         Code = "invalid_value"

	CodeDuplicateLayout          Code = "duplicate_layout"
	CodeBoardInUse               Code = "board_in_use"
	CodeShrinkWouldOrphanButtons Code = "shrink_would_orphan_buttons"
	CodePositionTaken            Code = "position_taken"
	CodeOutOfBounds              Code = "out_of_bounds"
	CodeUnknownTargetBoard       Code = "unknown_target_board"
	CodeSelfReferentialSwitch    Code = "self_referential_switch"
	CodeNotPageSwitch            Code = "not_page_switch"
	CodeDuplicateID              Code = "duplicate_id"

	CodeConcurrentUpdate Code = "concurrent_update"

	CodeNotFound Code = "not_found"
)

// Class groups codes into the failure taxonomy callers branch on.
type Class int

const (
	ClassUnknown Class = iota
	// ClassValidation is bad input shape, fixable by the caller alone.
	ClassValidation
	// ClassConstraint is a uniqueness, bounds or referential violation.
	ClassConstraint
	// ClassConflict is a race lost against a concurrent writer; retrying may succeed.
	ClassConflict
	ClassNotFound
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassConstraint:
		return "constraint"
	case ClassConflict:
		return "conflict"
	case ClassNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

var codeClass = map[Code]Class{
	CodeInvalidLayout:            ClassValidation,
	CodeInvalidName:              ClassValidation,
	CodeInvalidImageFilename:     ClassValidation,
	CodeInvalidKind:              ClassValidation,
	CodeMissingRequiredField:     ClassValidation,
	CodeExtraneousField:          ClassValidation,
	CodeInvalidValue:             ClassValidation,
	CodeDuplicateLayout:          ClassConstraint,
	CodeBoardInUse:               ClassConstraint,
	CodeShrinkWouldOrphanButtons: ClassConstraint,
	CodePositionTaken:            ClassConstraint,
	CodeOutOfBounds:              ClassConstraint,
	CodeUnknownTargetBoard:       ClassConstraint,
	CodeSelfReferentialSwitch:    ClassConstraint,
	CodeNotPageSwitch:            ClassConstraint,
	CodeDuplicateID:              ClassConstraint,
	CodeConcurrentUpdate:         ClassConflict,
	CodeNotFound:                 ClassNotFound,
}

// Entity names used in Error.Entity.
const (
	EntityBoard         = "board"
	EntityButton        = "button"
	EntityFunctionality = "functionality"
)

// Error is the domain error returned by every model, storage and service
// operation. It carries enough context (entity, id, field) for the caller to
// correct the request or retry.
type Error struct {
	Code   Code
	Entity string
	ID     string
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Entity != "" {
		b.WriteString(" ")
		b.WriteString(e.Entity)
		if e.ID != "" {
			b.WriteString(" ")
			b.WriteString(e.ID)
		}
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, and on Entity when the target names one. This lets the
// sentinels below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Entity == "" || t.Entity == e.Entity
}

// Class returns the taxonomy class of the error's code.
func (e *Error) Class() Class {
	return codeClass[e.Code]
}

var (
	ErrInvalidLayout            = &Error{Code: CodeInvalidLayout}
	ErrInvalidName              = &Error{Code: CodeInvalidName}
	ErrInvalidImageFilename     = &Error{Code: CodeInvalidImageFilename}
	ErrInvalidKind              = &Error{Code: CodeInvalidKind}
	ErrMissingRequiredField     = &Error{Code: CodeMissingRequiredField}
	ErrExtraneousField          = &Error{Code: CodeExtraneousField}
	ErrInvalidValue             = &Error{Code: CodeInvalidValue}
	ErrDuplicateLayout          = &Error{Code: CodeDuplicateLayout}
	ErrBoardInUse               = &Error{Code: CodeBoardInUse}
	ErrShrinkWouldOrphanButtons = &Error{Code: CodeShrinkWouldOrphanButtons}
	ErrPositionTaken            = &Error{Code: CodePositionTaken}
	ErrOutOfBounds              = &Error{Code: CodeOutOfBounds}
	ErrUnknownTargetBoard       = &Error{Code: CodeUnknownTargetBoard}
	ErrSelfReferentialSwitch    = &Error{Code: CodeSelfReferentialSwitch}
	ErrNotPageSwitch            = &Error{Code: CodeNotPageSwitch}
	ErrDuplicateID              = &Error{Code: CodeDuplicateID}
	ErrConcurrentUpdate         = &Error{Code: CodeConcurrentUpdate}

	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrBoardNotFound         = &Error{Code: CodeNotFound, Entity: EntityBoard}
	ErrButtonNotFound        = &Error{Code: CodeNotFound, Entity: EntityButton}
	ErrFunctionalityNotFound = &Error{Code: CodeNotFound, Entity: EntityFunctionality}
)

// NotFound builds a not-found error for an entity id.
func NotFound(entity string, id uuid.UUID) *Error {
	return &Error{Code: CodeNotFound, Entity: entity, ID: id.String()}
}

// ClassOf returns the class of the first *Error in err's chain.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class()
	}
	return ClassUnknown
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool { return ClassOf(err) == ClassValidation }
func IsConstraint(err error) bool { return ClassOf(err) == ClassConstraint }
func IsConflict(err error) bool   { return ClassOf(err) == ClassConflict }
func IsNotFound(err error) bool   { return ClassOf(err) == ClassNotFound }
