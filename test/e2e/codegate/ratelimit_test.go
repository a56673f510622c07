package codegate_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/codegate/pkg/codesdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitClaimEndpoint verifies that /v1/claim is rate limited.
// This endpoint has strict limits (5 req/min) to slow down code guessing.
func TestRateLimitClaimEndpoint(t *testing.T) {
	client := startService(t, nil)

	for i := range 5 {
		_, err := client.Claim(t.Context(), "000000", "guesser")
		require.True(t, codesdk.IsInvalidCode(err), "request %d should be refused, not limited: %v", i+1, err)
	}

	_, err := client.Claim(t.Context(), "000000", "guesser")

	var apiErr *codesdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, codesdk.ErrorCodeRateLimitExceeded, apiErr.Code)
	require.True(t, apiErr.Retryable())
}
