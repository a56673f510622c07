package codesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the "error" field of a response body.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidCode            = "invalid_code"
	ErrorCodeUnauthorized           = "unauthorized"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeRateLimitExceeded      = "rate_limit_exceeded"
	ErrorCodeTemporarilyUnavailable = "temporarily_unavailable"
	ErrorCodeServerError            = "server_error"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("codegate: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("codegate: %d %s: %s", e.StatusCode, e.Code, e.Description)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode == http.StatusTooManyRequests
}

// IsInvalidCode reports whether err is the claim endpoint's answer to an
// unknown or already used code.
func IsInvalidCode(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == ErrorCodeInvalidCode
}

// IsUnauthorized reports whether err is a 401 from a protected endpoint.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        errResp.Error,
		Description: errResp.ErrorDescription,
	}
}
