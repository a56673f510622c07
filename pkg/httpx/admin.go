package httpx

import (
	"crypto/subtle"
	"net/http"

	"github.com/aussiebroadwan/codegate/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

// AdminOTPHeader carries the current TOTP passcode when a second factor is configured.
const AdminOTPHeader = "X-Admin-OTP"

// AdminGuard protects operator endpoints with a static bearer token and, if
// totpSecret is set, a TOTP passcode. An empty token locks the endpoint.
func AdminGuard(token, totpSecret string) Middleware {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			got, ok := ExtractBearer(r)
			if len(want) == 0 || !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				log.Warn("admin guard rejected request", "reason", "bad_token")
				w.Header().Set("WWW-Authenticate", `Bearer realm="codegate-admin"`)
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Admin credentials required.")
				return
			}

			if totpSecret != "" && !totp.Validate(r.Header.Get(AdminOTPHeader), totpSecret) {
				log.Warn("admin guard rejected request", "reason", "bad_otp")
				WriteError(w, http.StatusUnauthorized, "unauthorized", "Admin credentials required.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
