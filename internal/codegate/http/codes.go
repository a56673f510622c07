package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/domain"
	"github.com/aussiebroadwan/codegate/internal/codegate/service"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/aussiebroadwan/codegate/pkg/codex"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

type CodesHandler struct {
	Generator *service.Generator
	Store     store.Store
}

// HandleGenerate godoc
//
//	@Summary		Generate Codes Endpoint
//	@Description	Create a batch of fresh AVAILABLE codes. Overrides fall back to the configured format.
//	@Tags			Codes
//	@Accept			json
//	@Produce		json
//	@Security		AdminAuth
//	@Param			request	body		codesdk.GenerateRequest		true	"count, prefix, length, alphabet, notes"
//	@Success		201		{object}	codesdk.GenerateResponse	"created, codes"
//	@Failure		400		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Failure		503		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Router			/v1/codes [post].
func (h *CodesHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req codesdk.GenerateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "Request body must be a JSON object.")
		return
	}

	codes, err := h.Generator.Generate(ctx, req.Count, domain.GenerateOptions{
		Prefix:   req.Prefix,
		Length:   req.Length,
		Alphabet: req.Alphabet,
		Notes:    req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, err.Error())
		case errors.Is(err, service.ErrExhaustedKeyspace):
			// Partial batches are still reported so nothing written is lost.
			log.Warn("code keyspace exhausted", "created", len(codes))
			httpx.WriteJSON(w, http.StatusConflict, struct {
				codesdk.ErrorResponse
				codesdk.GenerateResponse
			}{
				codesdk.ErrorResponse{Error: "exhausted_keyspace", ErrorDescription: "Could not find enough unused codes. Use a longer code or a larger alphabet."},
				codesdk.GenerateResponse{Created: len(codes), Codes: nonNil(codes)},
			})
		case errors.Is(err, service.ErrStoreUnavailable):
			w.Header().Set("Retry-After", "1")
			httpx.WriteJSON(w, http.StatusServiceUnavailable, struct {
				codesdk.ErrorResponse
				codesdk.GenerateResponse
			}{
				codesdk.ErrorResponse{Error: codesdk.ErrorCodeTemporarilyUnavailable, ErrorDescription: "Please retry shortly."},
				codesdk.GenerateResponse{Created: len(codes), Codes: nonNil(codes)},
			})
		default:
			log.Error("failed to generate codes", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, codesdk.ErrorCodeServerError, "Failed to generate codes.")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, codesdk.GenerateResponse{
		Created: len(codes),
		Codes:   codes,
	})
}

// HandleGet godoc
//
//	@Summary		Inspect Code Endpoint
//	@Description	Return the stored record for a code.
//	@Tags			Codes
//	@Produce		json
//	@Security		AdminAuth
//	@Param			code	path		string						true	"Access code"
//	@Success		200		{object}	codesdk.AccessCodeResponse	"code record"
//	@Failure		401		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Failure		503		{object}	codesdk.ErrorResponse		"error, error_description"
//	@Router			/v1/codes/{code} [get].
func (h *CodesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code := codex.Normalize(r.PathValue("code"))
	if codex.ValidateShape(code) != nil {
		httpx.WriteError(w, http.StatusNotFound, codesdk.ErrorCodeNotFound, "Code not found.")
		return
	}

	record, err := h.Store.AccessCodes().GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, codesdk.ErrorCodeNotFound, "Code not found.")
			return
		}
		log.Error("failed to load code", "code_fp", codex.Fingerprint(code), "err", err)
		w.Header().Set("Retry-After", "1")
		httpx.WriteError(w, http.StatusServiceUnavailable, codesdk.ErrorCodeTemporarilyUnavailable, "Please retry shortly.")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toAccessCodeResponse(record))
}

func toAccessCodeResponse(c domain.AccessCode) codesdk.AccessCodeResponse {
	timePtr := func(t time.Time) *time.Time {
		if t.IsZero() {
			return nil
		}
		return &t
	}

	return codesdk.AccessCodeResponse{
		Code:      c.Code,
		Status:    string(c.Status),
		ClaimedBy: c.ClaimedBy,
		ClaimedAt: timePtr(c.ClaimedAt),
		ExpiresAt: timePtr(c.ExpiresAt),
		PurgeAt:   timePtr(c.PurgeAt),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

func nonNil(codes []string) []string {
	if codes == nil {
		return []string{}
	}
	return codes
}
