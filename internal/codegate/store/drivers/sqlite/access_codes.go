package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
)

const accessCodeColumns = `code, status, claimed_by, claimed_at, expires_at, purge_at, notes, created_at`

const (
	insertAccessCode = `
INSERT INTO access_codes (code, status, notes, created_at)
VALUES (?, 'AVAILABLE', ?, ?)
ON CONFLICT (code) DO NOTHING`

	claimAccessCode = `
UPDATE access_codes
SET status = 'CLAIMED', claimed_by = ?, claimed_at = ?, expires_at = ?, purge_at = ?
WHERE code = ? AND status = 'AVAILABLE'
RETURNING ` + accessCodeColumns

	getAccessCode = `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = ?`

	deletePurgeable = `DELETE FROM access_codes WHERE status = 'CLAIMED' AND purge_at <= ?`
)

type accessCodesRepo struct {
	db *sql.DB
}

func (r *accessCodesRepo) CreateIfAbsent(ctx context.Context, c domain.AccessCode) error {
	res, err := r.db.ExecContext(ctx, insertAccessCode, c.Code, c.Notes, epoch(c.CreatedAt))
	if err != nil {
		return unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(err)
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *accessCodesRepo) TryClaim(ctx context.Context, c domain.Claim) (domain.AccessCode, error) {
	row := r.db.QueryRowContext(ctx, claimAccessCode,
		c.Claimant,
		epoch(c.ClaimedAt),
		epoch(c.ExpiresAt),
		epoch(c.PurgeAt),
		c.Code,
	)

	got, err := scanAccessCode(row)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.AccessCode{}, unavailable(err)
	}

	// Nothing matched: either the code never existed or someone got there first.
	if _, err := r.GetByCode(ctx, c.Code); err != nil {
		return domain.AccessCode{}, err
	}
	return domain.AccessCode{}, store.ErrAlreadyClaimed
}

func (r *accessCodesRepo) GetByCode(ctx context.Context, code string) (domain.AccessCode, error) {
	got, err := scanAccessCode(r.db.QueryRowContext(ctx, getAccessCode, code))
	if err != nil {
		return domain.AccessCode{}, mapNotFound(err)
	}
	return got, nil
}

func (r *accessCodesRepo) DeletePurgeable(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deletePurgeable, epoch(now))
	if err != nil {
		return 0, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func scanAccessCode(row *sql.Row) (domain.AccessCode, error) {
	var (
		c         domain.AccessCode
		status    string
		claimedBy sql.NullString
		claimedAt sql.NullInt64
		expiresAt sql.NullInt64
		purgeAt   sql.NullInt64
		createdAt int64
	)

	if err := row.Scan(&c.Code, &status, &claimedBy, &claimedAt, &expiresAt, &purgeAt, &c.Notes, &createdAt); err != nil {
		return domain.AccessCode{}, err
	}

	c.Status = domain.Status(status)
	c.ClaimedBy = mapNullString(claimedBy)
	c.ClaimedAt = mapNullEpoch(claimedAt)
	c.ExpiresAt = mapNullEpoch(expiresAt)
	c.PurgeAt = mapNullEpoch(purgeAt)
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	return c, nil
}
