package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shist-app/shist/internal/shist/service"
	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/httpx"
	"github.com/shist-app/shist/pkg/jwtx"
	"github.com/shist-app/shist/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	UserService       *service.UserService
	ListService       *service.ListService
	ItemService       *service.ItemService
	InvitationService *service.InvitationService
	ConnectionService *service.ConnectionService
	AccessService     *service.AccessService
	WS                *WSHandler

	limiters []*httpx.Limiter
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// Limiters returns every rate limiter the router created, so the
// housekeeping service can sweep them.
func (r *Router) Limiters() []*httpx.Limiter {
	return r.limiters
}

// rateLimit builds a rate-limiting middleware whose limiter is tracked for
// housekeeping sweeps.
func (r *Router) rateLimit(config httpx.RateLimitConfig, extractor httpx.KeyExtractor) httpx.Middleware {
	rl := httpx.NewLimiter(config.RequestsPerWindow, config.Window)
	r.limiters = append(r.limiters, rl)
	return httpx.RateLimitWith(rl, config, extractor)
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerLists()
	r.registerItems()
	r.registerInvitations()
	r.registerConnections()
	r.registerWS()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{UserService: r.UserService}

	// POST /auth/register - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			r.rateLimit(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)

	// POST /auth/login - the handler itself throttles per (ip, username)
	// because the username lives in the JSON body.
	loginLimiter := httpx.NewLimiter(httpx.StrictLimit.RequestsPerWindow, httpx.StrictLimit.Window)
	r.limiters = append(r.limiters, loginLimiter)
	loginHandler := &LoginHandler{UserService: r.UserService, Limiter: loginLimiter}
	r.Mux.Handle("POST /v1/auth/login", loginHandler)
}

func (r *Router) registerLists() {
	h := &ListsHandler{ListService: r.ListService, ItemService: r.ItemService}

	authed := func(fn http.HandlerFunc, cfg httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(cfg, httpx.UserIDKeyExtractor),
		)
	}

	r.Mux.Handle("POST /v1/lists", authed(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/lists", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/lists/{id}", authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/lists/{id}", authed(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/lists/{id}", authed(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/lists/{id}/items", authed(h.HandleItems, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/lists/{id}/items", authed(h.HandleAddItem, httpx.LenientLimit))
}

func (r *Router) registerItems() {
	h := &ItemsHandler{ItemService: r.ItemService}

	authed := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.LenientLimit, httpx.UserIDKeyExtractor),
		)
	}

	r.Mux.Handle("PATCH /v1/items/{id}", authed(h.HandleUpdate))
	r.Mux.Handle("DELETE /v1/items/{id}", authed(h.HandleDelete))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	// Creation and listing require a session; moderate per-user limit.
	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.ModerateLimit, httpx.UserIDKeyExtractor),
		),
	)
	r.Mux.Handle("GET /v1/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.LenientLimit, httpx.UserIDKeyExtractor),
		),
	)

	// Redemption is where tokens from outside arrive; strict IP limit to
	// slow down forgery probing.
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("POST /v1/invitations/decline",
		httpx.Chain(http.HandlerFunc(h.HandleDecline),
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.StrictLimit, httpx.IPKeyExtractor),
		),
	)

	r.Mux.Handle("DELETE /v1/invitations/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleCancel),
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.ModerateLimit, httpx.UserIDKeyExtractor),
		),
	)
}

func (r *Router) registerConnections() {
	h := &ConnectionsHandler{ConnectionService: r.ConnectionService}

	authed := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			r.rateLimit(httpx.LenientLimit, httpx.UserIDKeyExtractor),
		)
	}

	r.Mux.Handle("GET /v1/connections", authed(h.HandleList))
	r.Mux.Handle("DELETE /v1/connections/{id}", authed(h.HandleDelete))
}

func (r *Router) registerWS() {
	r.Mux.Handle("GET /v1/ws",
		httpx.Chain(r.WS,
			httpx.AuthnMiddleware(r.verifier),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.rateLimit(httpx.LenientLimit, httpx.IPKeyExtractor),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			r.rateLimit(httpx.LenientLimit, httpx.IPKeyExtractor),
		),
	)
}
