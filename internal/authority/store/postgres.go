package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"organmatch/internal/authority"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/platform/tx"
)

// Postgres persists authority records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, a *authority.Authority) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO authorities (id, active, confirmed_matches, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET active = EXCLUDED.active, updated_at = EXCLUDED.updated_at`,
		a.ID.String(), a.Active, a.ConfirmedMatches, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert authority: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, authorityID id.Identity) (*authority.Authority, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanAuthority(q.QueryRowContext(ctx, `
		SELECT id, active, confirmed_matches, created_at, updated_at
		FROM authorities WHERE id = $1`,
		authorityID.String(),
	))
}

func (s *Postgres) Execute(ctx context.Context, authorityID id.Identity, validate func(*authority.Authority) error, mutate func(*authority.Authority)) (*authority.Authority, error) {
	sqlTx, joined := tx.From(ctx)
	if !joined {
		var err error
		sqlTx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin authority tx: %w", err)
		}
		defer func() {
			_ = sqlTx.Rollback()
		}()
	}

	a, err := scanAuthority(sqlTx.QueryRowContext(ctx, `
		SELECT id, active, confirmed_matches, created_at, updated_at
		FROM authorities WHERE id = $1 FOR UPDATE`,
		authorityID.String(),
	))
	if err != nil {
		return nil, err
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE authorities
		SET active = $2, confirmed_matches = $3, updated_at = $4
		WHERE id = $1`,
		a.ID.String(), a.Active, a.ConfirmedMatches, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update authority: %w", err)
	}

	if !joined {
		if err := sqlTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit authority tx: %w", err)
		}
	}
	return a, nil
}

func scanAuthority(row *sql.Row) (*authority.Authority, error) {
	var (
		a   authority.Authority
		raw string
	)
	err := row.Scan(&raw, &a.Active, &a.ConfirmedMatches, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan authority: %w", err)
	}
	parsed, err := id.ParseIdentity(raw)
	if err != nil {
		return nil, fmt.Errorf("scan authority: %w", err)
	}
	a.ID = parsed
	return &a, nil
}
