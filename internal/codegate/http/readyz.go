package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"
)

// SignerStatus reports whether the signing key can be loaded.
type SignerStatus interface {
	Ready(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and status of the code store and the signing key
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	codesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	codesdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	signer SignerStatus,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &codesdk.HealthChecks{
			Store:  "ok",
			Signer: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		log := slogx.FromContext(ctx)

		// Error details stay in the server log; probes only need the verdict.
		if err := st.Ping(ctx); err != nil {
			log.Warn("readiness: store ping failed", "err", err)
			checks.Store = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := signer.Ready(ctx); err != nil {
			log.Warn("readiness: signing key unavailable", "err", err)
			checks.Signer = "error: no signing key"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, codesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
