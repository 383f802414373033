package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cypheracademy/certvault/internal/cert/cache"
	"github.com/cypheracademy/certvault/internal/cert/ledger"
	"github.com/cypheracademy/certvault/internal/cert/service"
	"github.com/cypheracademy/certvault/internal/cert/store"
	"github.com/cypheracademy/certvault/pkg/httpx"
	"github.com/cypheracademy/certvault/pkg/jwtx"
)

// Router wires the HTTP surface: auth, certificate issuance and
// validation, audit, and the health endpoints.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	Users      *service.UserService
	Tokens     *service.TokenService
	Issuance   *service.IssueService
	Validation *service.ValidationService
	Store      store.Store
	Ledger     ledger.Client
	Cache      *cache.Client
	Verifier   jwtx.Verifier
	Denylist   httpx.Denylist
	Version    string

	startTime time.Time
}

// NewRouter builds a Router with the global middleware chain applied
// around the mux. Call ApplyRoutes before serving.
func NewRouter(middlewares ...httpx.Middleware) *Router {
	return &Router{
		Mux:         http.NewServeMux(),
		middlewares: middlewares,
		startTime:   time.Now(),
	}
}

// ApplyRoutes registers every endpoint on the mux.
func (r *Router) ApplyRoutes() *Router {
	r.registerAuthRoutes()
	r.registerCertificateRoutes()
	r.registerValidationRoutes()
	r.registerAuditRoutes()
	r.registerSystemRoutes()
	return r
}

func (r *Router) registerAuthRoutes() {
	registerHandler := &RegisterHandler{Users: r.Users}
	loginHandler := &LoginHandler{Users: r.Users, Tokens: r.Tokens}
	logoutHandler := &LogoutHandler{Tokens: r.Tokens}
	userinfoHandler := &UserInfoHandler{Users: r.Users}
	userinfoUpdateHandler := &UserInfoUpdateHandler{Users: r.Users}

	r.Mux.Handle("POST /v1/auth/register", httpx.Chain(
		registerHandler,
		httpx.RateLimitByIP(httpx.StrictLimit),
	))
	r.Mux.Handle("POST /v1/auth/login", httpx.Chain(
		loginHandler,
		httpx.RateLimitByIP(httpx.StrictLimit),
	))
	r.Mux.Handle("POST /v1/auth/logout", httpx.Chain(
		logoutHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	r.Mux.Handle("GET /v1/userinfo", httpx.Chain(
		userinfoHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	r.Mux.Handle("PATCH /v1/userinfo", httpx.Chain(
		userinfoUpdateHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
}

func (r *Router) registerCertificateRoutes() {
	issueHandler := &IssueCertificateHandler{Issuance: r.Issuance, Users: r.Users}
	listHandler := &ListCertificatesHandler{Issuance: r.Issuance}
	getHandler := &GetCertificateHandler{Issuance: r.Issuance}
	documentHandler := &CertificateDocumentHandler{Issuance: r.Issuance}
	chainHandler := &CertificateChainHandler{Issuance: r.Issuance}

	r.Mux.Handle("POST /v1/certificates", httpx.Chain(
		issueHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("certs:issue"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("GET /v1/certificates", httpx.Chain(
		listHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("certs:read"),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	r.Mux.Handle("GET /v1/certificates/{id}", httpx.Chain(
		getHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("certs:read"),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
	r.Mux.Handle("GET /v1/certificates/{id}/document", httpx.Chain(
		documentHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("certs:read"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("GET /v1/certificates/{id}/chain", httpx.Chain(
		chainHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("certs:read"),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
}

func (r *Router) registerValidationRoutes() {
	validateHandler := &ValidateHandler{Validation: r.Validation}

	// Validation is deliberately public: anyone holding a certificate
	// hash may check it without an account.
	r.Mux.Handle("GET /v1/validate/{hash}", httpx.Chain(
		validateHandler,
		httpx.RateLimitByIP(httpx.PublicLimit),
	))
}

func (r *Router) registerAuditRoutes() {
	auditHandler := &AuditEventsHandler{Store: r.Store}

	r.Mux.Handle("GET /v1/audit", httpx.Chain(
		auditHandler,
		httpx.AuthnMiddleware(r.Verifier, r.Denylist),
		httpx.RequireAnyScope("audit:read"),
		httpx.RateLimitByUser(httpx.LenientLimit),
	))
}

func (r *Router) registerSystemRoutes() {
	r.Mux.Handle("GET /livez", httpx.Chain(
		LivezHandler(r.startTime, r.Version),
		httpx.RateLimitByIP(httpx.LenientLimit),
	))
	r.Mux.Handle("GET /readyz", httpx.Chain(
		ReadyzHandler(r.startTime, r.Version, r.Store, r.Ledger, r.Cache),
		httpx.RateLimitByIP(httpx.LenientLimit),
	))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}

// ServeHTTP applies the global middleware chain around the mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}
