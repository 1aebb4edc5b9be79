package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"organmatch/internal/match"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/platform/tx"
)

// Postgres persists match proposals in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, p *match.Proposal) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO proposals (id, recipient, donor, score, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID.String(), p.Recipient.String(), p.Donor.String(),
		p.Score, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, proposalID id.ProposalID) (*match.Proposal, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanProposal(q.QueryRowContext(ctx, `
		SELECT id, recipient, donor, score, status, created_at, updated_at
		FROM proposals WHERE id = $1`,
		proposalID.String(),
	))
}

func (s *Postgres) Execute(ctx context.Context, proposalID id.ProposalID, validate func(*match.Proposal) error, mutate func(*match.Proposal)) (*match.Proposal, error) {
	sqlTx, joined := tx.From(ctx)
	if !joined {
		var err error
		sqlTx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin proposal tx: %w", err)
		}
		defer func() {
			_ = sqlTx.Rollback()
		}()
	}

	p, err := scanProposal(sqlTx.QueryRowContext(ctx, `
		SELECT id, recipient, donor, score, status, created_at, updated_at
		FROM proposals WHERE id = $1 FOR UPDATE`,
		proposalID.String(),
	))
	if err != nil {
		return nil, err
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE proposals SET status = $2, updated_at = $3 WHERE id = $1`,
		p.ID.String(), string(p.Status), p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update proposal: %w", err)
	}

	if !joined {
		if err := sqlTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit proposal tx: %w", err)
		}
	}
	return p, nil
}

func scanProposal(row *sql.Row) (*match.Proposal, error) {
	var (
		p         match.Proposal
		proposal  string
		recipient string
		donorID   string
		status    string
	)
	err := row.Scan(&proposal, &recipient, &donorID, &p.Score, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan proposal: %w", err)
	}
	pid, err := id.ParseProposalID(proposal)
	if err != nil {
		return nil, fmt.Errorf("scan proposal: %w", err)
	}
	p.ID = pid
	r, err := id.ParseIdentity(recipient)
	if err != nil {
		return nil, fmt.Errorf("scan proposal: %w", err)
	}
	p.Recipient = r
	d, err := id.ParseIdentity(donorID)
	if err != nil {
		return nil, fmt.Errorf("scan proposal: %w", err)
	}
	p.Donor = d
	p.Status = match.Status(status)
	return &p, nil
}
