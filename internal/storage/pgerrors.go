package storage

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ryanbastic/padboard/internal/model"
)

// SQLSTATE codes the store reacts to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"

	// pgDataExceptionClass covers values the server could not accept, such
	// as out-of-range integers or NUL bytes in text.
	pgDataExceptionClass = "22"
)

// isDataException reports whether err is a class 22 error, i.e. bad input
// rather than a failing server.
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pgDataExceptionClass)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

// mapError turns constraint violations into domain errors. Anything it does
// not recognise is returned unchanged.
func mapError(err error, entity string, id uuid.UUID) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	e := &model.Error{Entity: entity, ID: id.String(), Err: err}
	if strings.HasPrefix(pgErr.Code, pgDataExceptionClass) {
		e.Code, e.Field, e.Msg = model.CodeInvalidValue, pgErr.ColumnName, pgErr.Message
		return e
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case "uq_buttons_position":
			e.Code, e.Field = model.CodePositionTaken, "position"
		case "uq_boards_custom_shape":
			e.Code, e.Field = model.CodeDuplicateLayout, "layout"
		case "boards_pkey", "buttons_pkey", "functionalities_pkey":
			e.Code = model.CodeDuplicateID
		default:
			return err
		}
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case "fk_functionalities_target":
			if entity == model.EntityBoard {
				e.Code = model.CodeBoardInUse
			} else {
				e.Code, e.Field = model.CodeUnknownTargetBoard, "target_board_id"
			}
		case "fk_buttons_board":
			e.Code, e.Entity, e.ID, e.Field = model.CodeNotFound, model.EntityBoard, "", "board_id"
		case "fk_functionalities_button":
			e.Code, e.Entity, e.ID, e.Field = model.CodeNotFound, model.EntityButton, "", "button_id"
		default:
			return err
		}
	case pgCheckViolation:
		switch pgErr.ConstraintName {
		case "ck_boards_layout":
			e.Code, e.Field = model.CodeInvalidLayout, "layout"
		case "ck_buttons_position":
			e.Code, e.Field = model.CodeOutOfBounds, "position"
		case "ck_buttons_image_filename":
			e.Code, e.Field = model.CodeInvalidImageFilename, "image_filename"
		case "ck_functionalities_payload":
			e.Code, e.Msg = model.CodeExtraneousField, "payload does not match kind"
		default:
			return err
		}
	default:
		return err
	}
	return e
}
