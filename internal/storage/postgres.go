package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
)

// PostgresConfig tunes transaction behaviour of a PostgresStore.
type PostgresConfig struct {
	// QueryTimeout bounds each transaction; zero means no timeout.
	QueryTimeout time.Duration
	// RetryMax is how many times a transaction aborted by a serialization
	// failure is re-run before ConcurrentUpdate is reported.
	RetryMax int
	// RetryBackoff is the base delay between retries, multiplied by the attempt.
	RetryBackoff time.Duration
}

// PostgresStore implements Store using serializable PostgreSQL transactions.
type PostgresStore struct {
	pool   *pgxpool.Pool
	cfg    PostgresConfig
	logger *slog.Logger
}

// NewPostgresStore creates a Store on an already migrated pool.
func NewPostgresStore(pool *pgxpool.Pool, cfg PostgresConfig, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, cfg: cfg, logger: logger}
}

// withTimeout derives a child context with the configured query timeout.
// If QueryTimeout is zero, the parent context is returned unchanged.
func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.QueryTimeout)
	}
	return ctx, func() {}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.runTx(ctx, fn)
		if !isSerializationFailure(err) {
			return err
		}
		if attempt >= s.cfg.RetryMax {
			break
		}
		s.logger.Debug("retrying transaction after serialization failure", "attempt", attempt+1, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt+1)):
		}
	}
	return &model.Error{Code: model.CodeConcurrentUpdate, Msg: "transaction lost against a concurrent update", Err: err}
}

func (s *PostgresStore) runTx(ctx context.Context, fn func(tx Tx) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(&pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func layoutColumns(l layout.Layout) (kind string, width, height *int) {
	kind = string(l.Kind)
	if l.Kind == layout.Custom {
		w, h := l.Width, l.Height
		width, height = &w, &h
	}
	return kind, width, height
}

func (t *pgTx) InsertBoard(ctx context.Context, b model.Board) error {
	kind, width, height := layoutColumns(b.Layout)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO boards (id, name, layout_kind, width, height)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.Name, kind, width, height)
	if err != nil {
		return mapError(fmt.Errorf("insert board: %w", err), model.EntityBoard, b.ID)
	}
	return nil
}

const boardColumns = `id, name, layout_kind, width, height`

func scanBoard(row pgx.Row) (*model.Board, error) {
	var (
		b             model.Board
		kind          string
		width, height *int
	)
	if err := row.Scan(&b.ID, &b.Name, &kind, &width, &height); err != nil {
		return nil, err
	}
	b.Layout = layout.Layout{Kind: layout.Kind(kind)}
	if width != nil {
		b.Layout.Width = *width
	}
	if height != nil {
		b.Layout.Height = *height
	}
	return &b, nil
}

func (t *pgTx) GetBoard(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	b, err := scanBoard(t.tx.QueryRow(ctx, `SELECT `+boardColumns+` FROM boards WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFound(model.EntityBoard, id)
		}
		return nil, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

func (t *pgTx) ListBoards(ctx context.Context, page PageRequest) (*BoardPage, error) {
	cur, err := page.cursor()
	if err != nil {
		return nil, err
	}
	limit := page.limit()

	// COLLATE "C" keeps the order byte-wise, the same order cursors compare in.
	var rows pgx.Rows
	if cur == nil {
		rows, err = t.tx.Query(ctx, `
			SELECT `+boardColumns+` FROM boards
			ORDER BY name COLLATE "C", id
			LIMIT $1
		`, limit+1)
	} else {
		rows, err = t.tx.Query(ctx, `
			SELECT `+boardColumns+` FROM boards
			WHERE (name COLLATE "C", id) > ($1::text COLLATE "C", $2::uuid)
			ORDER BY name COLLATE "C", id
			LIMIT $3
		`, cur.Name, cur.ID, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	boards, err := collectBoards(rows)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	return newBoardPage(boards, limit)
}

func collectBoards(rows pgx.Rows) ([]model.Board, error) {
	defer rows.Close()
	var boards []model.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, *b)
	}
	return boards, rows.Err()
}

func (t *pgTx) FindBoardsByShape(ctx context.Context, l layout.Layout) ([]model.Board, error) {
	kind, width, height := layoutColumns(l)
	rows, err := t.tx.Query(ctx, `
		SELECT `+boardColumns+` FROM boards
		WHERE layout_kind = $1
			AND width IS NOT DISTINCT FROM $2
			AND height IS NOT DISTINCT FROM $3
		ORDER BY id
	`, kind, width, height)
	if err != nil {
		return nil, fmt.Errorf("find boards by shape: %w", err)
	}
	boards, err := collectBoards(rows)
	if err != nil {
		return nil, fmt.Errorf("find boards by shape: %w", err)
	}
	return boards, nil
}

func (t *pgTx) UpdateBoard(ctx context.Context, b model.Board) error {
	kind, width, height := layoutColumns(b.Layout)
	tag, err := t.tx.Exec(ctx, `
		UPDATE boards SET name = $2, layout_kind = $3, width = $4, height = $5
		WHERE id = $1
	`, b.ID, b.Name, kind, width, height)
	if err != nil {
		return mapError(fmt.Errorf("update board: %w", err), model.EntityBoard, b.ID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound(model.EntityBoard, b.ID)
	}
	return nil
}

func (t *pgTx) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return mapError(fmt.Errorf("delete board: %w", err), model.EntityBoard, id)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound(model.EntityBoard, id)
	}
	return nil
}

func (t *pgTx) InsertButton(ctx context.Context, b model.Button) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO buttons (id, board_id, x, y, image_filename)
		VALUES ($1, $2, $3, $4, $5)
	`, b.ID, b.BoardID, b.X, b.Y, b.ImageFilename)
	if err != nil {
		return mapError(fmt.Errorf("insert button: %w", err), model.EntityButton, b.ID)
	}
	return nil
}

const buttonColumns = `id, board_id, x, y, image_filename`

func scanButton(row pgx.Row) (*model.Button, error) {
	var b model.Button
	if err := row.Scan(&b.ID, &b.BoardID, &b.X, &b.Y, &b.ImageFilename); err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *pgTx) GetButton(ctx context.Context, id uuid.UUID) (*model.Button, error) {
	b, err := scanButton(t.tx.QueryRow(ctx, `SELECT `+buttonColumns+` FROM buttons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFound(model.EntityButton, id)
		}
		return nil, fmt.Errorf("get button: %w", err)
	}
	return b, nil
}

func (t *pgTx) ListButtons(ctx context.Context, boardID uuid.UUID) ([]model.Button, error) {
	if _, err := t.GetBoard(ctx, boardID); err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx, `
		SELECT `+buttonColumns+` FROM buttons
		WHERE board_id = $1
		ORDER BY y, x
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	defer rows.Close()

	var buttons []model.Button
	for rows.Next() {
		b, err := scanButton(rows)
		if err != nil {
			return nil, fmt.Errorf("list buttons scan: %w", err)
		}
		buttons = append(buttons, *b)
	}
	return buttons, rows.Err()
}

func (t *pgTx) UpdateButton(ctx context.Context, b model.Button) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE buttons SET x = $3, y = $4, image_filename = $5
		WHERE id = $1 AND board_id = $2
	`, b.ID, b.BoardID, b.X, b.Y, b.ImageFilename)
	if err != nil {
		return mapError(fmt.Errorf("update button: %w", err), model.EntityButton, b.ID)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound(model.EntityButton, b.ID)
	}
	return nil
}

func (t *pgTx) DeleteButton(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM buttons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete button: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound(model.EntityButton, id)
	}
	return nil
}

func (t *pgTx) PutFunctionality(ctx context.Context, f model.Functionality) error {
	if err := model.ValidateAction(f.Action); err != nil {
		return err
	}
	spec := model.EncodeAction(f.Action)
	_, err := t.tx.Exec(ctx, `
		INSERT INTO functionalities (id, button_id, kind, app_name, script_path, target_board_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (button_id) DO UPDATE SET
			id = EXCLUDED.id,
			kind = EXCLUDED.kind,
			app_name = EXCLUDED.app_name,
			script_path = EXCLUDED.script_path,
			target_board_id = EXCLUDED.target_board_id
	`, f.ID, f.ButtonID, string(spec.Kind), spec.AppName, spec.ScriptPath, spec.TargetBoardID)
	if err != nil {
		return mapError(fmt.Errorf("put functionality: %w", err), model.EntityFunctionality, f.ID)
	}
	return nil
}

const functionalityColumns = `id, button_id, kind, app_name, script_path, target_board_id`

func scanFunctionality(row pgx.Row) (*model.Functionality, error) {
	var (
		f    model.Functionality
		spec model.FunctionalitySpec
		kind string
	)
	if err := row.Scan(&f.ID, &f.ButtonID, &kind, &spec.AppName, &spec.ScriptPath, &spec.TargetBoardID); err != nil {
		return nil, err
	}
	spec.Kind = model.Kind(kind)
	a, err := model.DecodeAction(spec, model.StrictFields)
	if err != nil {
		return nil, fmt.Errorf("decode stored functionality %s: %w", f.ID, err)
	}
	f.Action = a
	return &f, nil
}

func (t *pgTx) GetFunctionality(ctx context.Context, buttonID uuid.UUID) (*model.Functionality, error) {
	f, err := scanFunctionality(t.tx.QueryRow(ctx, `
		SELECT `+functionalityColumns+` FROM functionalities WHERE button_id = $1
	`, buttonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &model.Error{Code: model.CodeNotFound, Entity: model.EntityFunctionality, ID: buttonID.String(), Msg: "button has no functionality"}
		}
		return nil, fmt.Errorf("get functionality: %w", err)
	}
	return f, nil
}

func (t *pgTx) DeleteFunctionality(ctx context.Context, buttonID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM functionalities WHERE button_id = $1`, buttonID)
	if err != nil {
		return fmt.Errorf("delete functionality: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.Error{Code: model.CodeNotFound, Entity: model.EntityFunctionality, ID: buttonID.String(), Msg: "button has no functionality"}
	}
	return nil
}

func (t *pgTx) ListSwitchesTo(ctx context.Context, boardID uuid.UUID) ([]model.Functionality, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+functionalityColumns+` FROM functionalities
		WHERE target_board_id = $1
		ORDER BY id
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list switches: %w", err)
	}
	defer rows.Close()

	var out []model.Functionality
	for rows.Next() {
		f, err := scanFunctionality(rows)
		if err != nil {
			return nil, fmt.Errorf("list switches scan: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}
