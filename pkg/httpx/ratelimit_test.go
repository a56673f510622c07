package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func hit(h http.Handler, remote string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/claim", nil)
	req.RemoteAddr = remote
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies(" 10.0.0.0/8, 192.168.1.7 ,,")
	require.NoError(t, err)
	require.Len(t, proxies, 2)
	require.Equal(t, "10.0.0.0/8", proxies[0].String())
	require.Equal(t, "192.168.1.7/32", proxies[1].String())

	empty, err := httpx.ParseTrustedProxies("")
	require.NoError(t, err)
	require.Empty(t, empty)

	for _, bad := range []string{"10.0.0.0/33", "proxy.internal", "10.0.0"} {
		_, err := httpx.ParseTrustedProxies(bad)
		require.Error(t, err, bad)
	}
}

func TestTrustedProxiesKeyExtractor(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies("10.0.0.0/8")
	require.NoError(t, err)
	key := proxies.KeyExtractor()

	request := func(remote, xff, xri string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		if xri != "" {
			req.Header.Set("X-Real-IP", xri)
		}
		return req
	}

	tests := []struct {
		name, remote, xff, xri, want string
	}{
		{"untrusted peer keeps its own address", "198.51.100.9:1", "203.0.113.1", "", "198.51.100.9"},
		{"trusted peer reports the client", "10.0.0.2:1", "203.0.113.1", "", "203.0.113.1"},
		{"spoofed left hops are skipped", "10.0.0.2:1", "1.2.3.4, 203.0.113.1", "", "203.0.113.1"},
		{"proxy chain is walked from the right", "10.0.0.2:1", "203.0.113.1, 10.0.0.3", "", "203.0.113.1"},
		{"X-Real-IP without X-Forwarded-For", "10.0.0.2:1", "", "203.0.113.2", "203.0.113.2"},
		{"no headers", "10.0.0.2:1", "", "", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, key(request(tt.remote, tt.xff, tt.xri)))
		})
	}

	require.Equal(t, "10.0.0.2", httpx.TrustedProxies(nil).KeyExtractor()(request("10.0.0.2:1", "203.0.113.1", "")))
}

func TestSubjectKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, httpx.SubjectKeyExtractor(req))

	req = req.WithContext(httpx.WithSession(req.Context(), httpx.Session{Subject: "client-77"}))
	require.Equal(t, "client-77", httpx.SubjectKeyExtractor(req))

	req.RemoteAddr = "192.168.1.1:12345"
	composite := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, httpx.IPKeyExtractor)
	require.Equal(t, "client-77:192.168.1.1", composite(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}, nil)(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, hit(h, "192.168.1.1:12345").Code, "request %d should succeed", i+1)
		}

		rec := hit(h, "192.168.1.1:12345")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, nil)(okHandler)

		require.Equal(t, http.StatusOK, hit(h, "192.168.1.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, hit(h, "192.168.1.1:1").Code)
		require.Equal(t, http.StatusOK, hit(h, "192.168.1.2:1").Code)
	})

	t.Run("rotating X-Forwarded-For does not reset the bucket", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, nil)(okHandler)
		spoof := func(i int) func(*http.Request) {
			return func(r *http.Request) { r.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i)) }
		}

		codes := map[int]int{}
		for i := range 10 {
			codes[hit(h, "198.51.100.9:4000", spoof(i)).Code]++
		}
		require.Equal(t, map[int]int{http.StatusOK: 2, http.StatusTooManyRequests: 8}, codes)
	})

	t.Run("subjects behind one IP get their own bucket", func(t *testing.T) {
		h := httpx.RateLimitBySubject(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, nil)(okHandler)
		as := func(subject string) func(*http.Request) {
			return func(r *http.Request) {
				*r = *r.WithContext(httpx.WithSession(r.Context(), httpx.Session{Subject: subject}))
			}
		}

		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", as("alice")).Code)
		require.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.1:1", as("alice")).Code)
		require.Equal(t, http.StatusOK, hit(h, "10.0.0.1:1", as("bob")).Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(
			httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" },
		)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, hit(h, "").Code)
		}
	})
}

func TestRateLimitProfiles(t *testing.T) {
	profiles := map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	}

	for name, config := range profiles {
		t.Run(name, func(t *testing.T) {
			require.Greater(t, config.RequestsPerWindow, 0)
			require.Greater(t, config.Window, time.Duration(0))
			require.Greater(t, config.Burst, 0)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	t.Run("no env vars uses defaults", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})

	t.Run("overrides all parameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		cfg := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, 200, cfg.RequestsPerWindow)
		require.Equal(t, 30*time.Second, cfg.Window)
		require.Equal(t, 250, cfg.Burst)
	})

	t.Run("invalid or zero values use defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, def, httpx.ParseRateLimitFromEnv("TEST", def))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000}, nil)(okHandler)

	for i := 0; b.Loop(); i++ {
		hit(h, fmt.Sprintf("192.168.%d.%d:12345", i%255, (i/255)%255))
	}
}
