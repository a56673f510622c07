package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

// Verification outcomes, reported to the observer and the server log.
// Clients only ever see one generic 401 for the deny reasons.
const (
	ResultAllowed      = "allowed"
	ResultMissingToken = "missing_token"
	ResultInvalidToken = "invalid_token"
	ResultTokenExpired = "token_expired"
	ResultInvalidApp   = "invalid_app"
	ResultUnavailable  = "unavailable"
)

// VerifyObserver is notified of every verification outcome.
type VerifyObserver func(result string)

// Authorizer gates a handler on a valid session token: Extract the bearer
// token, Verify it, then Authorize by placing the Session in the context.
func Authorizer(v jwtx.Verifier, observe VerifyObserver) Middleware {
	if observe == nil {
		observe = func(string) {}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := ExtractBearer(r)
			if !ok {
				observe(ResultMissingToken)
				log.Info("authorizer denied request", "reason", ResultMissingToken)
				writeUnauthorized(w)
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				result := ClassifyVerifyError(err)
				observe(result)

				if result == ResultUnavailable {
					log.Error("authorizer cannot load signing key", "err", err)
					w.Header().Set("Retry-After", "1")
					WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "Please retry shortly.")
					return
				}

				log.Info("authorizer denied request", "reason", result, "err", err)
				writeUnauthorized(w)
				return
			}

			observe(ResultAllowed)
			ctx = WithSession(ctx, Session{
				Subject:   claims.Subject,
				JTI:       claims.ID,
				ExpiresAt: claims.ExpiresAt.Time.UTC(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func ExtractBearer(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// ClassifyVerifyError maps a verifier error onto a result label.
func ClassifyVerifyError(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrNoKey):
		return ResultUnavailable
	case errors.Is(err, jwtx.ErrExpired):
		return ResultTokenExpired
	case errors.Is(err, jwtx.ErrAudience):
		return ResultInvalidApp
	default:
		return ResultInvalidToken
	}
}

// RFC 6750 style challenge. The body never says why the token was refused.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="codegate", error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", "Missing, invalid or expired token.")
}
