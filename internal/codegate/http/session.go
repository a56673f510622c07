package http

import (
	"net/http"

	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
)

// SessionHandler godoc
//
//	@Summary		Session Endpoint
//	@Description	Return the verified session behind the bearer token.
//	@Tags			Session
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	codesdk.SessionResponse	"subject, jti, exp"
//	@Failure		401	{object}	codesdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	codesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/session [get].
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := httpx.SessionFromContext(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, codesdk.ErrorCodeUnauthorized, "Missing, invalid or expired token.")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, codesdk.SessionResponse{
			Subject:   sess.Subject,
			JTI:       sess.JTI,
			Exp:       sess.ExpiresAt.Unix(),
			ExpiresAt: sess.ExpiresAt,
		})
	}
}
