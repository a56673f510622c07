package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/metrics"
	"github.com/aussiebroadwan/codegate/internal/codegate/service"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
	"github.com/aussiebroadwan/codegate/pkg/httpx"
	"github.com/aussiebroadwan/codegate/pkg/jwtx"
	"github.com/aussiebroadwan/codegate/pkg/slogx"

	_ "github.com/aussiebroadwan/codegate/api/codegate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	signer       SignerStatus
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      metrics.Recorder

	ClaimService *service.ClaimService
	Generator    *service.Generator

	// AdminToken enables the operator endpoints. Empty leaves them locked.
	AdminToken      string
	AdminTOTPSecret string

	// TrustedProxies may report the client address in forwarding headers.
	// Empty keys rate limits on the peer address.
	TrustedProxies httpx.TrustedProxies

	// MetricsHandler is mounted on /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(
	verifier jwtx.Verifier,
	signer SignerStatus,
	buildVersion string,
	st store.Store,
	m metrics.Recorder,
	logger *slog.Logger,
) *Router {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// slogx runs first; the metrics middleware sits directly on the mux so
	// it sees the matched route pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMiddleware(r.metrics),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerClaims()
	r.registerCodes()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Codegate Access Code Service API
//	@version		0.1.0
//	@description	Single-use access codes exchanged for HS256 session tokens.
//	@description
//	@description				Each code can be claimed exactly once. The resulting token is bound to the service's app tag (aud).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/codegate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token from /v1/claim. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	AdminAuth
//	@in							header
//	@name						Authorization
//	@description				Operator token. Format: "Bearer {admin token}", plus X-Admin-OTP when configured.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerClaims() {
	h := &ClaimHandler{ClaimService: r.ClaimService}

	// POST /claim - strict rate limit by IP (brute-force target)
	r.Mux.Handle("POST /v1/claim",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit, r.TrustedProxies),
		),
	)
}

func (r *Router) registerCodes() {
	h := &CodesHandler{Generator: r.Generator, Store: r.store}

	// Operator endpoints - moderate rate limit by IP, behind the admin guard
	securedGenerate := httpx.Chain(http.HandlerFunc(h.HandleGenerate),
		httpx.RateLimitByIP(httpx.ModerateLimit, r.TrustedProxies),
		httpx.AdminGuard(r.AdminToken, r.AdminTOTPSecret),
	)
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.RateLimitByIP(httpx.ModerateLimit, r.TrustedProxies),
		httpx.AdminGuard(r.AdminToken, r.AdminTOTPSecret),
	)

	r.Mux.Handle("POST /v1/codes", securedGenerate)
	r.Mux.Handle("GET /v1/codes/{code}", securedGet)
}

func (r *Router) registerSession() {
	// Authenticated endpoint - lenient rate limit by subject
	secured := httpx.Chain(SessionHandler(),
		httpx.Authorizer(r.verifier, r.metrics.TokenVerification),
		httpx.RateLimitBySubject(httpx.LenientLimit, r.TrustedProxies),
	)

	r.Mux.Handle("GET /v1/session", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - public rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit, r.TrustedProxies),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.PublicLimit, r.TrustedProxies),
		),
	)

	if r.MetricsHandler != nil {
		r.Mux.Handle("GET /metrics", r.MetricsHandler)
	}
}
