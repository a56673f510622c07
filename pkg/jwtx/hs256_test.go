package jwtx_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	testKey  = []byte("0123456789abcdef0123456789abcdef")
	otherKey = []byte("fedcba9876543210fedcba9876543210")
)

func staticKey(k []byte) jwtx.KeySource {
	return jwtx.KeyFunc(func(context.Context) ([]byte, error) { return k, nil })
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestHS256RoundTrip(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Unix(1_700_000_000, 0).UTC()
	expiresAt := issuedAt.Add(jwtx.StandardSessionTTL)

	issuer := jwtx.NewIssuer(staticKey(testKey), "codegate")
	token, err := issuer.Mint(ctx, "client-77", "482913", issuedAt, expiresAt)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	t.Run("valid before exp", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(expiresAt.Add(-time.Second)))
		claims, err := v.Verify(ctx, token)
		require.NoError(t, err)
		require.Equal(t, "client-77", claims.Subject)
		require.Equal(t, "482913", claims.ID)
		require.Equal(t, expiresAt, claims.ExpiresAt.Time.UTC())
		require.Equal(t, issuedAt, claims.IssuedAt.Time.UTC())
	})

	t.Run("expired at exp", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(expiresAt))
		_, err := v.Verify(ctx, token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired after exp", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(expiresAt.Add(time.Hour)))
		_, err := v.Verify(ctx, token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("wrong audience", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(testKey), "storefront").WithClock(fixedClock(issuedAt))
		_, err := v.Verify(ctx, token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("wrong key", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(otherKey), "codegate").WithClock(fixedClock(issuedAt))
		_, err := v.Verify(ctx, token)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		tampered := strings.Replace(string(payload), "client-77", "client-78", 1)
		parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

		v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(issuedAt))
		_, err = v.Verify(ctx, strings.Join(parts, "."))
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate")
		_, err := v.Verify(ctx, "not-a-token")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestMintedClaimSetIsClosed(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	token, err := jwtx.NewIssuer(staticKey(testKey), "codegate").Mint(context.Background(), "client-77", "482913", now, now.Add(time.Hour))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	require.Contains(t, string(header), `"alg":"HS256"`)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	require.ElementsMatch(t, []string{"sub", "jti", "iat", "exp", "aud"}, keys)
}

func TestVerifierRejectsOtherAlgorithms(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	claims := jwtx.NewSessionClaims("client-77", "482913", "codegate", now, now.Add(time.Hour))
	v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(now))

	t.Run("HS512 with the same key", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.Error(t, err)
	})
}

func TestVerifierRequiresIdentityAndExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := jwtx.NewHS256Verifier(staticKey(testKey), "codegate").WithClock(fixedClock(now))

	t.Run("no exp", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("client-77", "482913", "codegate", now, now)
		claims.ExpiresAt = nil
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})

	t.Run("no jti", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("client-77", "", "codegate", now, now.Add(time.Hour))
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, jwtx.ErrInvalidClaim)
	})
}

func TestFailsClosedWithoutKey(t *testing.T) {
	sealed := errors.New("sealed")
	broken := jwtx.KeyFunc(func(context.Context) ([]byte, error) { return nil, sealed })
	empty := staticKey(nil)
	now := time.Now()

	issuer := jwtx.NewIssuer(broken, "codegate")
	_, err := issuer.Mint(context.Background(), "a", "b", now, now.Add(time.Hour))
	require.ErrorIs(t, err, jwtx.ErrNoKey)
	require.ErrorIs(t, err, sealed)
	require.ErrorIs(t, issuer.Ready(context.Background()), jwtx.ErrNoKey)

	_, err = jwtx.NewIssuer(empty, "codegate").Mint(context.Background(), "a", "b", now, now.Add(time.Hour))
	require.ErrorIs(t, err, jwtx.ErrNoKey)

	_, err = jwtx.NewHS256Verifier(broken, "codegate").Verify(context.Background(), "x.y.z")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}
