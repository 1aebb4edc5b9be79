package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"organmatch/internal/donor"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/platform/tx"
)

// Postgres persists donor records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, d *donor.Donor) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO donors (owner, markers, blood_type, organ_type, notes, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.Owner.String(), d.Data.Markers[:], d.Data.Blood.String(), d.Data.Organ.String(),
		d.Data.Notes, string(d.Status), d.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOwner(ctx context.Context, owner id.Identity) (*donor.Donor, error) {
	q := tx.QuerierFrom(ctx, s.db)
	return scanDonor(q.QueryRowContext(ctx, `
		SELECT owner, markers, blood_type, organ_type, notes, status, created_at
		FROM donors WHERE owner = $1`,
		owner.String(),
	))
}

func (s *Postgres) Execute(ctx context.Context, owner id.Identity, validate func(*donor.Donor) error, mutate func(*donor.Donor)) (*donor.Donor, error) {
	sqlTx, joined := tx.From(ctx)
	if !joined {
		var err error
		sqlTx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin donor tx: %w", err)
		}
		defer func() {
			_ = sqlTx.Rollback()
		}()
	}

	d, err := scanDonor(sqlTx.QueryRowContext(ctx, `
		SELECT owner, markers, blood_type, organ_type, notes, status, created_at
		FROM donors WHERE owner = $1 FOR UPDATE`,
		owner.String(),
	))
	if err != nil {
		return nil, err
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)

	_, err = sqlTx.ExecContext(ctx, `
		UPDATE donors SET status = $2 WHERE owner = $1`,
		d.Owner.String(), string(d.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("update donor: %w", err)
	}

	if !joined {
		if err := sqlTx.Commit(); err != nil {
			return nil, fmt.Errorf("commit donor tx: %w", err)
		}
	}
	return d, nil
}

func scanDonor(row *sql.Row) (*donor.Donor, error) {
	var (
		d       donor.Donor
		owner   string
		markers []byte
		blood   string
		organ   string
		status  string
	)
	err := row.Scan(&owner, &markers, &blood, &organ, &d.Data.Notes, &status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan donor: %w", err)
	}
	parsed, err := id.ParseIdentity(owner)
	if err != nil {
		return nil, fmt.Errorf("scan donor: %w", err)
	}
	d.Owner = parsed
	if len(markers) != id.HLAMarkerSlots {
		return nil, fmt.Errorf("scan donor: marker vector has %d slots", len(markers))
	}
	copy(d.Data.Markers[:], markers)
	d.Data.Blood = id.BloodType(blood)
	d.Data.Organ = id.OrganType(organ)
	d.Status = donor.Status(status)
	return &d, nil
}
