package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS boards (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		layout_kind TEXT NOT NULL,
		width       INTEGER,
		height      INTEGER,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),

		CONSTRAINT ck_boards_layout CHECK (
			(layout_kind = 'custom' AND width > 0 AND height > 0)
			OR (layout_kind <> 'custom' AND width IS NULL AND height IS NULL)
		)
	);

	CREATE TABLE IF NOT EXISTS buttons (
		id             UUID PRIMARY KEY,
		board_id       UUID NOT NULL,
		x              INTEGER NOT NULL,
		y              INTEGER NOT NULL,
		image_filename TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),

		CONSTRAINT fk_buttons_board FOREIGN KEY (board_id)
			REFERENCES boards (id) ON DELETE CASCADE,
		CONSTRAINT uq_buttons_position UNIQUE (board_id, x, y),
		CONSTRAINT ck_buttons_position CHECK (x >= 0 AND y >= 0),
		CONSTRAINT ck_buttons_image_filename CHECK (
			image_filename <> ''
			AND image_filename NOT IN ('.', '..')
			AND strpos(image_filename, '/') = 0
			AND strpos(image_filename, chr(92)) = 0
		)
	);

	CREATE TABLE IF NOT EXISTS functionalities (
		id              UUID PRIMARY KEY,
		button_id       UUID NOT NULL,
		kind            TEXT NOT NULL,
		app_name        TEXT,
		script_path     TEXT,
		target_board_id UUID,

		CONSTRAINT uq_functionalities_button UNIQUE (button_id),
		CONSTRAINT fk_functionalities_button FOREIGN KEY (button_id)
			REFERENCES buttons (id) ON DELETE CASCADE,
		CONSTRAINT fk_functionalities_target FOREIGN KEY (target_board_id)
			REFERENCES boards (id) ON DELETE RESTRICT,
		CONSTRAINT ck_functionalities_payload CHECK (
			(kind = 'app_switch' AND app_name <> '' AND script_path IS NULL AND target_board_id IS NULL)
			OR (kind = 'run_script' AND script_path <> '' AND app_name IS NULL AND target_board_id IS NULL)
			OR (kind = 'page_switch' AND target_board_id IS NOT NULL AND app_name IS NULL AND script_path IS NULL)
		)
	);

	CREATE INDEX IF NOT EXISTS idx_buttons_board
		ON buttons (board_id, y, x);

	CREATE INDEX IF NOT EXISTS idx_functionalities_target
		ON functionalities (target_board_id) WHERE target_board_id IS NOT NULL;
`

const (
	createShapeIndex = `
		CREATE UNIQUE INDEX IF NOT EXISTS uq_boards_custom_shape
			ON boards (layout_kind, width, height) WHERE layout_kind = 'custom';
	`
	dropShapeIndex = `DROP INDEX IF EXISTS uq_boards_custom_shape;`
)

// RunMigrations creates the board tables and applies the shape policy in opts.
// It is idempotent and safe to run on every start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, opts Options) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	shapeDDL := dropShapeIndex
	if opts.UniqueCustomShapes {
		shapeDDL = createShapeIndex
	}
	if _, err := pool.Exec(ctx, shapeDDL); err != nil {
		return fmt.Errorf("migrate shape index: %w", err)
	}

	return nil
}
