package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrAlreadyExists  = errors.New("store: already exists")
	ErrAlreadyClaimed = errors.New("store: already claimed")

	// ErrUnavailable wraps driver and network failures so callers can tell
	// "the store said no" from "we could not ask".
	ErrUnavailable = errors.New("store: unavailable")
)

// Store is the root data access interface. Concrete drivers (sqlite, redis,
// postgres) implement this. Every mutation a driver offers is a single atomic
// statement, so there is no transaction API.
type Store interface {
	AccessCodes() AccessCodes

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is still reachable.
	Ping(ctx context.Context) error
}

type AccessCodes interface {
	// CreateIfAbsent inserts an AVAILABLE code. An existing code, in any
	// state, is left untouched and ErrAlreadyExists is returned.
	CreateIfAbsent(ctx context.Context, c domain.AccessCode) error

	// TryClaim is the compare-and-set at the heart of redemption: it moves
	// the code from AVAILABLE to CLAIMED and writes every claim field in one
	// atomic step. At most one caller ever succeeds per code. Losers get
	// ErrAlreadyClaimed, unknown codes ErrNotFound.
	TryClaim(ctx context.Context, c domain.Claim) (domain.AccessCode, error)

	// GetByCode returns the persisted record.
	GetByCode(ctx context.Context, code string) (domain.AccessCode, error)

	// DeletePurgeable removes claimed records whose purge time is at or
	// before now and reports how many went. Drivers with native expiry may
	// return 0.
	DeletePurgeable(ctx context.Context, now time.Time) (int64, error)
}
