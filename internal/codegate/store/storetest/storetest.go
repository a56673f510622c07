// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, migrated store for a subtest.
type Factory func(t *testing.T) store.Store

// Run exercises a driver against the AccessCodes contract.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	// Anchored to the wall clock so drivers with native expiry keep the keys.
	base := time.Now().UTC().Truncate(time.Second)

	t.Run("create then get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AccessCodes().CreateIfAbsent(ctx, domain.NewAccessCode("482913", "front desk", base)))

		got, err := s.AccessCodes().GetByCode(ctx, "482913")
		require.NoError(t, err)
		require.Equal(t, "482913", got.Code)
		require.Equal(t, domain.StatusAvailable, got.Status)
		require.Equal(t, "front desk", got.Notes)
		require.Empty(t, got.ClaimedBy)
		require.True(t, got.ClaimedAt.IsZero())
		require.True(t, got.ExpiresAt.IsZero())
		require.Equal(t, base.Unix(), got.CreatedAt.Unix())
	})

	t.Run("create is insert-if-absent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AccessCodes().CreateIfAbsent(ctx, domain.NewAccessCode("111111", "first", base)))
		err := s.AccessCodes().CreateIfAbsent(ctx, domain.NewAccessCode("111111", "second", base))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		got, err := s.AccessCodes().GetByCode(ctx, "111111")
		require.NoError(t, err)
		require.Equal(t, "first", got.Notes)
	})

	t.Run("get unknown", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AccessCodes().GetByCode(context.Background(), "000000")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("claim writes every field and is not repeatable", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.AccessCodes().CreateIfAbsent(ctx, domain.NewAccessCode("482913", "", base)))

		claim := domain.NewClaim("482913", "client-77", base, 48*time.Hour, 24*time.Hour)
		got, err := s.AccessCodes().TryClaim(ctx, claim)
		require.NoError(t, err)
		require.Equal(t, domain.StatusClaimed, got.Status)
		require.Equal(t, "client-77", got.ClaimedBy)
		require.Equal(t, base.Unix(), got.ClaimedAt.Unix())
		require.Equal(t, base.Unix()+172800, got.ExpiresAt.Unix())
		require.Equal(t, base.Unix()+172800+86400, got.PurgeAt.Unix())

		again := domain.NewClaim("482913", "client-78", base.Add(10*time.Second), 48*time.Hour, 24*time.Hour)
		_, err = s.AccessCodes().TryClaim(ctx, again)
		require.ErrorIs(t, err, store.ErrAlreadyClaimed)

		persisted, err := s.AccessCodes().GetByCode(ctx, "482913")
		require.NoError(t, err)
		require.Equal(t, "client-77", persisted.ClaimedBy)
		require.Equal(t, base.Unix(), persisted.ClaimedAt.Unix())
	})

	t.Run("claim unknown", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AccessCodes().TryClaim(context.Background(), domain.NewClaim("999999", "x", base, time.Hour, 0))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("at most one concurrent claim wins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.AccessCodes().CreateIfAbsent(ctx, domain.NewAccessCode("777777", "", base)))

		const n = 16
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				claimant := fmt.Sprintf("client-%d", i)
				_, errs[i] = s.AccessCodes().TryClaim(ctx, domain.NewClaim("777777", claimant, base, time.Hour, time.Hour))
			}()
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			require.ErrorIs(t, err, store.ErrAlreadyClaimed)
		}
		require.Equal(t, 1, wins)
	})

	t.Run("purge removes only expired claimed records", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		codes := s.AccessCodes()

		require.NoError(t, codes.CreateIfAbsent(ctx, domain.NewAccessCode("100001", "", base)))
		require.NoError(t, codes.CreateIfAbsent(ctx, domain.NewAccessCode("100002", "", base)))
		require.NoError(t, codes.CreateIfAbsent(ctx, domain.NewAccessCode("100003", "", base)))

		_, err := codes.TryClaim(ctx, domain.NewClaim("100001", "a", base, time.Hour, time.Hour))
		require.NoError(t, err)
		_, err = codes.TryClaim(ctx, domain.NewClaim("100002", "b", base, 48*time.Hour, time.Hour))
		require.NoError(t, err)

		n, err := codes.DeletePurgeable(ctx, base.Add(2*time.Hour))
		require.NoError(t, err)
		if n == 0 {
			// Driver relies on native expiry.
			return
		}
		require.EqualValues(t, 1, n)

		_, err = codes.GetByCode(ctx, "100001")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = codes.GetByCode(ctx, "100002")
		require.NoError(t, err)
		_, err = codes.GetByCode(ctx, "100003")
		require.NoError(t, err)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}
