package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/metrics"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/codex"
	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

const maxClaimantLength = 128

// TokenIssuer is the part of jwtx.Issuer the claim path needs.
type TokenIssuer interface {
	Mint(ctx context.Context, subject, codeID string, issuedAt, expiresAt time.Time) (string, error)
	Ready(ctx context.Context) error
}

// ClaimService exchanges a code for a session token, exactly once per code.
type ClaimService struct {
	Store        store.Store
	Issuer       TokenIssuer
	Validator    codex.Validator // nil means codex.Shape
	SessionTTL   time.Duration
	Retention    time.Duration
	StoreTimeout time.Duration
	Metrics      metrics.Recorder
	Now          func() time.Time
}

// Redeem validates the input, flips the code to CLAIMED and mints a token
// whose exp equals the record's expiresAt.
//
// Errors: ErrInvalidRequest or ErrInvalidFormat for bad input (no store call
// is made), ErrInvalidOrUsedCode for unknown and already claimed codes alike,
// ErrStoreUnavailable and ErrSecretUnavailable for dependency failures.
func (s *ClaimService) Redeem(ctx context.Context, code, claimant string) (session domain.Session, err error) {
	log := slogx.FromContext(ctx)
	start := time.Now()
	defer func() {
		s.recorder().ClaimResult(claimResult(err), time.Since(start))
	}()

	// 1. Validate input before touching anything.
	code = codex.Normalize(code)
	claimant = strings.TrimSpace(claimant)
	if err := validateClaimant(claimant); err != nil {
		return domain.Session{}, err
	}
	if err := s.validator().Validate(code); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	fp := codex.Fingerprint(code)
	log = log.With(slog.String("code_fp", fp))

	// 2. Make sure we can sign before burning the code.
	if err := s.Issuer.Ready(ctx); err != nil {
		log.Error("signing key unavailable, refusing claim", slog.Any("error", err))
		return domain.Session{}, fmt.Errorf("%w: %w", ErrSecretUnavailable, err)
	}

	// 3. Compare-and-set AVAILABLE -> CLAIMED.
	claim := domain.NewClaim(code, claimant, s.now(), s.SessionTTL, s.Retention)
	record, err := s.tryClaim(ctx, claim)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrAlreadyClaimed):
			log.Info("claim rejected", slog.Any("reason", err))
			return domain.Session{}, fmt.Errorf("%w: %w", ErrInvalidOrUsedCode, err)
		default:
			// The write may or may not have landed. We do not reconcile: a
			// code in this state is treated as burned and the purge sweep
			// will eventually remove it if it did land.
			log.Error("claim outcome unknown, code may be burned",
				slog.String("claimant", claimant),
				slog.Any("error", err),
			)
			return domain.Session{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	expiresAt := record.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = claim.ExpiresAt
	}

	// 4. Mint the token.
	token, err := s.Issuer.Mint(ctx, claimant, code, claim.ClaimedAt, expiresAt)
	if err != nil {
		log.Error("code claimed but token minting failed",
			slog.String("claimant", claimant),
			slog.Any("error", err),
		)
		if errors.Is(err, jwtx.ErrNoKey) {
			return domain.Session{}, fmt.Errorf("%w: %w", ErrSecretUnavailable, err)
		}
		return domain.Session{}, err
	}

	log.Info("code claimed",
		slog.String("claimant", claimant),
		slog.Time("expires_at", expiresAt),
	)

	return domain.Session{
		Token:     token,
		Subject:   claimant,
		CodeID:    code,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *ClaimService) tryClaim(ctx context.Context, c domain.Claim) (domain.AccessCode, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout(s.StoreTimeout))
	defer cancel()
	return s.Store.AccessCodes().TryClaim(ctx, c)
}

func validateClaimant(claimant string) error {
	if claimant == "" {
		return fmt.Errorf("%w: claimant is required", ErrInvalidRequest)
	}
	if !utf8.ValidString(claimant) || utf8.RuneCountInString(claimant) > maxClaimantLength {
		return fmt.Errorf("%w: claimant must be at most %d characters", ErrInvalidRequest, maxClaimantLength)
	}
	if strings.ContainsFunc(claimant, unicode.IsControl) {
		return fmt.Errorf("%w: claimant contains control characters", ErrInvalidRequest)
	}
	return nil
}

func claimResult(err error) string {
	switch {
	case err == nil:
		return metrics.ClaimSuccess
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidFormat):
		return metrics.ClaimInvalidFormat
	case errors.Is(err, ErrInvalidOrUsedCode):
		return metrics.ClaimInvalidOrUsed
	case errors.Is(err, ErrStoreUnavailable):
		return metrics.ClaimStoreUnavailable
	case errors.Is(err, ErrSecretUnavailable):
		return metrics.ClaimKeyUnavailable
	default:
		return metrics.ClaimError
	}
}

// ClaimValidator returns the pre-store check matching what a Generator with
// the same settings can emit: the configured format, or codex.Shape when
// per-batch overrides are allowed.
func ClaimValidator(format codex.Format, allowOverrides bool) codex.Validator {
	if allowOverrides {
		return codex.Shape{}
	}
	return format
}

func (s *ClaimService) validator() codex.Validator {
	if s.Validator == nil {
		return codex.Shape{}
	}
	return s.Validator
}

func (s *ClaimService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.NewNoopMetrics()
	}
	return s.Metrics
}

func (s *ClaimService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
