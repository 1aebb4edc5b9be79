package program

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/platform/tx"
)

// Single-row table: the program state is a singleton keyed by a constant id.
const programStateRowID = 1

// PostgresStore persists the program state in PostgreSQL. Statements run
// against the transaction carried in context when one is present, so Execute
// calls can join an outer unit of work.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, state *State) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO program_state (id, admin, recipient_count, paused, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		programStateRowID, state.Admin.String(), state.RecipientCount, state.Paused,
		state.CreatedAt, state.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create program state: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context) (*State, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanState(q.QueryRowContext(ctx, `
		SELECT admin, recipient_count, paused, created_at, updated_at
		FROM program_state WHERE id = $1`,
		programStateRowID,
	))
}

func (s *PostgresStore) Execute(ctx context.Context, validate func(*State) error, mutate func(*State)) (*State, error) {
	sqlTx, joined := tx.From(ctx)
	if !joined {
		var err error
		sqlTx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin program state tx: %w", err)
		}
		defer func() {
			_ = sqlTx.Rollback()
		}()
	}

	state, err := scanState(sqlTx.QueryRowContext(ctx, `
		SELECT admin, recipient_count, paused, created_at, updated_at
		FROM program_state WHERE id = $1 FOR UPDATE`,
		programStateRowID,
	))
	if err != nil {
		return nil, err
	}
	if err := validate(state); err != nil {
		return nil, err
	}
	mutate(state)

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE program_state
		SET recipient_count = $2, paused = $3, updated_at = $4
		WHERE id = $1`,
		programStateRowID, state.RecipientCount, state.Paused, state.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update program state: %w", err)
	}

	if !joined {
		if err := sqlTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit program state tx: %w", err)
		}
	}
	return state, nil
}

func scanState(row *sql.Row) (*State, error) {
	var (
		state State
		admin string
	)
	err := row.Scan(&admin, &state.RecipientCount, &state.Paused, &state.CreatedAt, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan program state: %w", err)
	}
	parsed, err := id.ParseIdentity(admin)
	if err != nil {
		return nil, fmt.Errorf("scan program state: %w", err)
	}
	state.Admin = parsed
	return &state, nil
}
