package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Lobby *service.LobbyService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, lobby *service.LobbyService, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Lobby:        lobby,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerRooms()
	r.registerTunnels()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with token verification and a per-user rate limit.
func (r *Router) secured(h http.Handler) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.APILimit),
	)
}

func (r *Router) registerAccount() {
	login := &LoginHandler{Lobby: r.Lobby}
	userInfo := &UserInfoHandler{Lobby: r.Lobby}

	// Limited by IP + username to slow password guessing
	r.Mux.Handle("POST /login",
		httpx.Chain(login,
			httpx.RateLimitByIPAndField(httpx.LoginLimit, "username"),
		),
	)

	sso := &SSOHandler{Lobby: r.Lobby}
	r.Mux.Handle("GET /sso", http.HandlerFunc(sso.HandleGet))
	r.Mux.Handle("POST /sso",
		httpx.Chain(http.HandlerFunc(sso.HandlePost),
			httpx.RateLimitByIP(httpx.LoginLimit),
		),
	)

	r.Mux.Handle("POST /GetUserInfo", r.secured(userInfo))
	r.Mux.Handle("GET /GetUserInfo", r.secured(userInfo))
}

func (r *Router) registerRooms() {
	h := &RoomsHandler{Lobby: r.Lobby}

	r.Mux.Handle("POST /CreateGameRoom", r.secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("POST /JoinGameRoom", r.secured(http.HandlerFunc(h.HandleJoin)))
	r.Mux.Handle("POST /GetGameRooms", r.secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /GetGameRooms", r.secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /DeleteGameRoom", r.secured(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /VerifyRoomPassword", r.secured(http.HandlerFunc(h.HandleVerifyPassword)))
}

func (r *Router) registerTunnels() {
	h := &TunnelsHandler{Lobby: r.Lobby}

	r.Mux.Handle("POST /GetUserTunnel", r.secured(h))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.APILimit),
		),
	)
}
