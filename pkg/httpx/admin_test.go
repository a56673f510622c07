package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func TestAdminGuard(t *testing.T) {
	call := func(h http.Handler, token, otp string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/codes", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if otp != "" {
			req.Header.Set(httpx.AdminOTPHeader, otp)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("token only", func(t *testing.T) {
		h := httpx.AdminGuard("s3cret-admin", "")(okHandler)
		require.Equal(t, http.StatusOK, call(h, "s3cret-admin", ""))
		require.Equal(t, http.StatusUnauthorized, call(h, "s3cret-admin2", ""))
		require.Equal(t, http.StatusUnauthorized, call(h, "", ""))
	})

	t.Run("empty configured token locks the endpoint", func(t *testing.T) {
		h := httpx.AdminGuard("", "")(okHandler)
		require.Equal(t, http.StatusUnauthorized, call(h, "anything", ""))
	})

	t.Run("token and totp", func(t *testing.T) {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "codegate", AccountName: "operator"})
		require.NoError(t, err)
		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)

		h := httpx.AdminGuard("s3cret-admin", key.Secret())(okHandler)
		require.Equal(t, http.StatusOK, call(h, "s3cret-admin", code))
		require.Equal(t, http.StatusUnauthorized, call(h, "s3cret-admin", ""))
		require.Equal(t, http.StatusUnauthorized, call(h, "s3cret-admin", "000000x"))
	})
}
