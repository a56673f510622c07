package codesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// AdminOTPHeader carries the admin TOTP when the server requires one.
const AdminOTPHeader = "X-Admin-OTP"

// Client talks to a codegate service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminToken authorises Generate and GetCode.
	AdminToken string

	// AdminOTP, when set, is called for a fresh TOTP on each admin request.
	AdminOTP func() (string, error)
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Claim exchanges code for a session token on behalf of claimant.
func (c *Client) Claim(ctx context.Context, code, claimant string) (*ClaimResponse, error) {
	var out ClaimResponse
	err := c.do(ctx, http.MethodPost, "/v1/claim", ClaimRequest{Code: code, Claimant: claimant}, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Session returns the verified identity behind token.
func (c *Client) Session(ctx context.Context, token string) (*SessionResponse, error) {
	headers := map[string]string{"Authorization": "Bearer " + token}

	var out SessionResponse
	if err := c.do(ctx, http.MethodGet, "/v1/session", nil, headers, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate creates a batch of codes. Requires AdminToken.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	headers, err := c.adminHeaders()
	if err != nil {
		return nil, err
	}

	var out GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/v1/codes", req, headers, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCode fetches the stored record for code. Requires AdminToken.
func (c *Client) GetCode(ctx context.Context, code string) (*AccessCodeResponse, error) {
	headers, err := c.adminHeaders()
	if err != nil {
		return nil, err
	}

	var out AccessCodeResponse
	if err := c.do(ctx, http.MethodGet, "/v1/codes/"+url.PathEscape(code), nil, headers, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Liveness checks if the service is alive.
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readiness checks if the service can serve claims.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) adminHeaders() (map[string]string, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.AdminToken}
	if c.AdminOTP != nil {
		otp, err := c.AdminOTP()
		if err != nil {
			return nil, fmt.Errorf("failed to produce admin otp: %w", err)
		}
		headers[AdminOTPHeader] = otp
	}
	return headers, nil
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	in any,
	headers map[string]string,
	out any,
	expectedStatus int,
) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, raw)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
