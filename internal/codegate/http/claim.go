package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/codegate/internal/codegate/service"
	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

type ClaimHandler struct {
	ClaimService *service.ClaimService
}

// ServeHTTP godoc
//
//	@Summary		Claim Code Endpoint
//	@Description	Exchange a single-use access code for a session token.
//	@Description	Unknown and already used codes get the same 401 response.
//	@Tags			Codes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.ClaimRequest	true	"code, claimant"
//	@Success		200		{object}	codesdk.ClaimResponse	"token, token_type, expiresAt"
//	@Failure		400		{object}	codesdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	codesdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	codesdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	codesdk.ErrorResponse	"error, error_description"
//	@Router			/v1/claim [post].
func (h *ClaimHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req codesdk.ClaimRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "Request body must be a JSON object with code and claimant.")
		return
	}

	session, err := h.ClaimService.Redeem(ctx, req.Code, req.Claimant)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidFormat):
			httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "Invalid code or claimant.")
		case errors.Is(err, service.ErrInvalidOrUsedCode):
			httpx.WriteError(w, http.StatusUnauthorized, codesdk.ErrorCodeInvalidCode, "Invalid or already used code.")
		case errors.Is(err, service.ErrStoreUnavailable), errors.Is(err, service.ErrSecretUnavailable):
			w.Header().Set("Retry-After", "1")
			httpx.WriteError(w, http.StatusServiceUnavailable, codesdk.ErrorCodeTemporarilyUnavailable, "Please retry shortly.")
		default:
			log.Error("failed to claim code", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, codesdk.ErrorCodeServerError, "Failed to claim code.")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, codesdk.ClaimResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}
