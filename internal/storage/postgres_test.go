package storage

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

// TestMain starts a PostgreSQL container unless -short is set; the Postgres
// tests skip without it.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16",
		postgres.WithDatabase("padboard"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic(fmt.Sprintf("start postgres container: %v", err))
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(fmt.Sprintf("get connection string: %v", err))
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		panic(fmt.Sprintf("create pool: %v", err))
	}

	code := m.Run()

	testPool.Close()
	_ = testcontainers.TerminateContainer(ctr)

	os.Exit(code)
}

// freshStore migrates with unique custom shapes and empties every table.
func freshStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testPool == nil {
		t.Skip("postgres not available in -short mode")
	}
	ctx := context.Background()
	if err := RunMigrations(ctx, testPool, Options{UniqueCustomShapes: true}); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := testPool.Exec(ctx, `TRUNCATE boards, buttons, functionalities CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return NewPostgresStore(testPool, PostgresConfig{
		QueryTimeout: 5 * time.Second,
		RetryMax:     5,
		RetryBackoff: 5 * time.Millisecond,
	}, slog.New(slog.DiscardHandler))
}

func TestPostgresStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return freshStore(t) })
}

func TestPostgresStore_ConcurrentPlacement(t *testing.T) {
	s := freshStore(t)
	b := newBoard("b", grid())
	seedBoard(t, s, b)

	const writers = 8
	var (
		wg   sync.WaitGroup
		errs = make(chan error, writers)
	)
	for range writers {
		wg.Go(func() {
			errs <- s.InTx(context.Background(), func(tx Tx) error {
				return tx.InsertButton(context.Background(), newButton(b.ID, 1, 1))
			})
		})
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrPositionTaken), errors.Is(err, model.ErrConcurrentUpdate):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("successes: got %d, want 1", ok)
	}
}

func TestPostgresStore_CheckConstraints(t *testing.T) {
	s := freshStore(t)
	b := newBoard("b", grid())
	seedBoard(t, s, b)

	btn := newButton(b.ID, 0, 0)
	btn.ImageFilename = "icons/a.png"
	err := s.InTx(context.Background(), func(tx Tx) error { return tx.InsertButton(context.Background(), btn) })
	if !errors.Is(err, model.ErrInvalidImageFilename) {
		t.Errorf("image filename: got %v", err)
	}

	err = s.InTx(context.Background(), func(tx Tx) error {
		return tx.InsertButton(context.Background(), newButton(b.ID, -1, 0))
	})
	if !errors.Is(err, model.ErrOutOfBounds) {
		t.Errorf("negative position: got %v", err)
	}

	err = s.InTx(context.Background(), func(tx Tx) error {
		return tx.InsertButton(context.Background(), newButton(newBoard("ghost", grid()).ID, 0, 0))
	})
	if !errors.Is(err, model.ErrBoardNotFound) {
		t.Errorf("unknown board: got %v", err)
	}
}

func TestPostgresStore_RejectsUnstorableText(t *testing.T) {
	s := freshStore(t)
	ctx := context.Background()

	for range 3 {
		err := s.InTx(ctx, func(tx Tx) error { return tx.InsertBoard(ctx, newBoard("bad\x00name", grid())) })
		if !errors.Is(err, model.ErrInvalidValue) {
			t.Fatalf("NUL in name: got %v, want InvalidValue", err)
		}
		if IsBackendFailure(err) {
			t.Fatal("bad input counted as a backend failure")
		}
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	freshStore(t)
	ctx := context.Background()

	for i := range 2 {
		if err := RunMigrations(ctx, testPool, Options{UniqueCustomShapes: true}); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}

func TestRunMigrations_ShapePolicy(t *testing.T) {
	s := freshStore(t)
	ctx := context.Background()

	if err := RunMigrations(ctx, testPool, Options{}); err != nil {
		t.Fatalf("disable shape index: %v", err)
	}
	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `TRUNCATE boards, buttons, functionalities CASCADE`)
		_ = RunMigrations(ctx, testPool, Options{UniqueCustomShapes: true})
	})

	seedBoard(t, s, newBoard("first", custom(6, 2)))
	seedBoard(t, s, newBoard("second", custom(6, 2)))

	var exists bool
	err := testPool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_boards_custom_shape')`).Scan(&exists)
	if err != nil {
		t.Fatalf("query pg_indexes: %v", err)
	}
	if exists {
		t.Error("uq_boards_custom_shape should be dropped when shapes are not unique")
	}
}
