package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldStatus    = "status"
	fieldClaimedBy = "claimed_by"
	fieldClaimedAt = "claimed_at"
	fieldExpiresAt = "expires_at"
	fieldPurgeAt   = "purge_at"
	fieldNotes     = "notes"
	fieldCreatedAt = "created_at"
)

// KEYS[1] code key; ARGV notes, created_at. Returns 1 if created, 0 if present.
var createIfAbsentScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'status', 'AVAILABLE', 'notes', ARGV[1], 'created_at', ARGV[2])
return 1
`)

// KEYS[1] code key; ARGV claimant, claimed_at, expires_at, purge_at.
// Returns -1 when missing, 0 when not AVAILABLE, otherwise the full hash.
var tryClaimScript = goredis.NewScript(`
local status = redis.call('HGET', KEYS[1], 'status')
if not status then
  return -1
end
if status ~= 'AVAILABLE' then
  return 0
end
redis.call('HSET', KEYS[1],
  'status', 'CLAIMED',
  'claimed_by', ARGV[1],
  'claimed_at', ARGV[2],
  'expires_at', ARGV[3],
  'purge_at', ARGV[4])
redis.call('EXPIREAT', KEYS[1], ARGV[4])
return redis.call('HGETALL', KEYS[1])
`)

type accessCodesRepo struct {
	rdb    goredis.UniversalClient
	prefix string
}

func (r *accessCodesRepo) key(code string) string { return r.prefix + code }

func (r *accessCodesRepo) CreateIfAbsent(ctx context.Context, c domain.AccessCode) error {
	created, err := createIfAbsentScript.Run(ctx, r.rdb,
		[]string{r.key(c.Code)},
		c.Notes,
		c.CreatedAt.Unix(),
	).Int64()
	if err != nil {
		return unavailable(err)
	}
	if created == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *accessCodesRepo) TryClaim(ctx context.Context, c domain.Claim) (domain.AccessCode, error) {
	res, err := tryClaimScript.Run(ctx, r.rdb,
		[]string{r.key(c.Code)},
		c.Claimant,
		c.ClaimedAt.Unix(),
		c.ExpiresAt.Unix(),
		c.PurgeAt.Unix(),
	).Result()
	if err != nil {
		return domain.AccessCode{}, unavailable(err)
	}

	switch v := res.(type) {
	case int64:
		if v < 0 {
			return domain.AccessCode{}, store.ErrNotFound
		}
		return domain.AccessCode{}, store.ErrAlreadyClaimed
	case []any:
		fields, err := pairsToMap(v)
		if err != nil {
			return domain.AccessCode{}, unavailable(err)
		}
		return mapAccessCode(c.Code, fields)
	default:
		return domain.AccessCode{}, unavailable(fmt.Errorf("unexpected script reply %T", res))
	}
}

func (r *accessCodesRepo) GetByCode(ctx context.Context, code string) (domain.AccessCode, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key(code)).Result()
	if err != nil {
		return domain.AccessCode{}, unavailable(err)
	}
	if len(fields) == 0 {
		return domain.AccessCode{}, store.ErrNotFound
	}
	return mapAccessCode(code, fields)
}

// DeletePurgeable is a no-op: claimed keys carry EXPIREAT purge_at.
func (r *accessCodesRepo) DeletePurgeable(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func pairsToMap(flat []any) (map[string]string, error) {
	if len(flat)%2 != 0 {
		return nil, errors.New("odd HGETALL reply")
	}
	m := make(map[string]string, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		k, ok1 := flat[i].(string)
		v, ok2 := flat[i+1].(string)
		if !ok1 || !ok2 {
			return nil, errors.New("non-string HGETALL reply")
		}
		m[k] = v
	}
	return m, nil
}

func mapAccessCode(code string, f map[string]string) (domain.AccessCode, error) {
	c := domain.AccessCode{
		Code:      code,
		Status:    domain.Status(f[fieldStatus]),
		ClaimedBy: f[fieldClaimedBy],
		Notes:     f[fieldNotes],
	}
	if !c.Status.Valid() {
		return domain.AccessCode{}, unavailable(fmt.Errorf("corrupt record: status %q", f[fieldStatus]))
	}

	var err error
	if c.ClaimedAt, err = parseEpoch(f[fieldClaimedAt]); err != nil {
		return domain.AccessCode{}, unavailable(err)
	}
	if c.ExpiresAt, err = parseEpoch(f[fieldExpiresAt]); err != nil {
		return domain.AccessCode{}, unavailable(err)
	}
	if c.PurgeAt, err = parseEpoch(f[fieldPurgeAt]); err != nil {
		return domain.AccessCode{}, unavailable(err)
	}
	if c.CreatedAt, err = parseEpoch(f[fieldCreatedAt]); err != nil {
		return domain.AccessCode{}, unavailable(err)
	}
	return c, nil
}

func parseEpoch(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", s, err)
	}
	return time.Unix(n, 0).UTC(), nil
}
