package codegate_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/codegate/internal/codegate/app"
	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/stretchr/testify/require"
)

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	client := startService(t, nil)

	health, err := client.Liveness(t.Context())
	assertHealthy(t, health, err)
	require.NotEmpty(t, health.Version)
}

// TestReadyzEndpoint verifies both dependencies are reported ready.
func TestReadyzEndpoint(t *testing.T) {
	client := startService(t, nil)

	health, err := client.Readiness(t.Context())
	assertHealthy(t, health, err)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Store)
	require.Equal(t, "ok", health.Checks.Signer)
}

// TestReadyzWithoutSigningKey verifies the service starts degraded when the
// secret is missing, and that claims fail without burning the code.
func TestReadyzWithoutSigningKey(t *testing.T) {
	client := startService(t, func(c *app.Config) { c.SigningKeyVar = "CODEGATE_E2E_UNSET_KEY" })

	_, err := client.Readiness(t.Context())
	var apiErr *codesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)

	codes := generate(t, client, codesdk.GenerateRequest{Count: 1})

	_, err = client.Claim(t.Context(), codes[0], "client-77")
	require.True(t, errors.As(err, &apiErr))
	require.True(t, apiErr.Retryable())

	record, err := client.GetCode(t.Context(), codes[0])
	require.NoError(t, err)
	require.Equal(t, "AVAILABLE", record.Status)
}
