package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const accessCodeColumns = `code, status, claimed_by, claimed_at, expires_at, purge_at, notes, created_at`

const (
	insertAccessCode = `
INSERT INTO access_codes (code, status, notes, created_at)
VALUES ($1, 'AVAILABLE', $2, $3)
ON CONFLICT (code) DO NOTHING`

	claimAccessCode = `
UPDATE access_codes
SET status = 'CLAIMED', claimed_by = $1, claimed_at = $2, expires_at = $3, purge_at = $4
WHERE code = $5 AND status = 'AVAILABLE'
RETURNING ` + accessCodeColumns

	getAccessCode = `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = $1`

	deletePurgeable = `DELETE FROM access_codes WHERE status = 'CLAIMED' AND purge_at <= $1`
)

type accessCodesRepo struct {
	pool *pgxpool.Pool
}

func (r *accessCodesRepo) CreateIfAbsent(ctx context.Context, c domain.AccessCode) error {
	tag, err := r.pool.Exec(ctx, insertAccessCode, c.Code, c.Notes, c.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *accessCodesRepo) TryClaim(ctx context.Context, c domain.Claim) (domain.AccessCode, error) {
	row := r.pool.QueryRow(ctx, claimAccessCode,
		c.Claimant,
		c.ClaimedAt.UTC(),
		c.ExpiresAt.UTC(),
		c.PurgeAt.UTC(),
		c.Code,
	)

	got, err := scanAccessCode(row)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.AccessCode{}, unavailable(err)
	}

	if _, err := r.GetByCode(ctx, c.Code); err != nil {
		return domain.AccessCode{}, err
	}
	return domain.AccessCode{}, store.ErrAlreadyClaimed
}

func (r *accessCodesRepo) GetByCode(ctx context.Context, code string) (domain.AccessCode, error) {
	got, err := scanAccessCode(r.pool.QueryRow(ctx, getAccessCode, code))
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}
	return got, nil
}

func (r *accessCodesRepo) DeletePurgeable(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, deletePurgeable, now.UTC())
	if err != nil {
		return 0, unavailable(err)
	}
	return tag.RowsAffected(), nil
}

func scanAccessCode(row pgx.Row) (domain.AccessCode, error) {
	var (
		c         domain.AccessCode
		status    string
		claimedBy *string
		claimedAt *time.Time
		expiresAt *time.Time
		purgeAt   *time.Time
	)

	if err := row.Scan(&c.Code, &status, &claimedBy, &claimedAt, &expiresAt, &purgeAt, &c.Notes, &c.CreatedAt); err != nil {
		return domain.AccessCode{}, err
	}

	c.Status = domain.Status(status)
	if claimedBy != nil {
		c.ClaimedBy = *claimedBy
	}
	c.ClaimedAt = derefTime(claimedAt)
	c.ExpiresAt = derefTime(expiresAt)
	c.PurgeAt = derefTime(purgeAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
