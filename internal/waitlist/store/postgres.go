package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/platform/tx"
)

// Postgres persists recipient records in PostgreSQL. Statements run against
// the transaction carried in context when one is present.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, r *waitlist.Recipient) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO recipients
			(owner, urgency, distance, markers, blood_type, organ_type, age, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.Owner.String(), r.Data.Urgency, r.Data.Distance, r.Data.Markers[:],
		r.Data.Blood.String(), r.Data.Organ.String(), r.Data.Age, r.Data.Notes,
		string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create recipient: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOwner(ctx context.Context, owner id.Identity) (*waitlist.Recipient, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanRecipient(q.QueryRowContext(ctx, `
		SELECT owner, urgency, distance, markers, blood_type, organ_type, age, notes, status, created_at, updated_at
		FROM recipients WHERE owner = $1`,
		owner.String(),
	))
}

func (s *Postgres) Update(ctx context.Context, r *waitlist.Recipient) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE recipients
		SET urgency = $2, distance = $3, status = $4, updated_at = $5
		WHERE owner = $1`,
		r.Owner.String(), r.Data.Urgency, r.Data.Distance, string(r.Status), r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recipient: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recipient: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Execute(ctx context.Context, owner id.Identity, validate func(*waitlist.Recipient) error, mutate func(*waitlist.Recipient)) (*waitlist.Recipient, error) {
	sqlTx, joined := tx.From(ctx)
	if !joined {
		var err error
		sqlTx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin recipient tx: %w", err)
		}
		defer func() {
			_ = sqlTx.Rollback()
		}()
	}

	r, err := scanRecipient(sqlTx.QueryRowContext(ctx, `
		SELECT owner, urgency, distance, markers, blood_type, organ_type, age, notes, status, created_at, updated_at
		FROM recipients WHERE owner = $1 FOR UPDATE`,
		owner.String(),
	))
	if err != nil {
		return nil, err
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE recipients
		SET urgency = $2, distance = $3, status = $4, updated_at = $5
		WHERE owner = $1`,
		r.Owner.String(), r.Data.Urgency, r.Data.Distance, string(r.Status), r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipient: %w", err)
	}

	if !joined {
		if err := sqlTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit recipient tx: %w", err)
		}
	}
	return r, nil
}

func scanRecipient(row *sql.Row) (*waitlist.Recipient, error) {
	var (
		r       waitlist.Recipient
		owner   string
		markers []byte
		blood   string
		organ   string
		status  string
	)
	err := row.Scan(&owner, &r.Data.Urgency, &r.Data.Distance, &markers, &blood, &organ,
		&r.Data.Age, &r.Data.Notes, &status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan recipient: %w", err)
	}
	parsed, err := id.ParseIdentity(owner)
	if err != nil {
		return nil, fmt.Errorf("scan recipient: %w", err)
	}
	r.Owner = parsed
	if len(markers) != id.HLAMarkerSlots {
		return nil, fmt.Errorf("scan recipient: marker vector has %d slots", len(markers))
	}
	copy(r.Data.Markers[:], markers)
	r.Data.Blood = id.BloodType(blood)
	r.Data.Organ = id.OrganType(organ)
	r.Status = waitlist.Status(status)
	return &r, nil
}
