package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xtding233/sticker-gacha/internal/metrics"
	"github.com/xtding233/sticker-gacha/internal/session"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP API is built on.
type Deps struct {
	Sessions        *session.Manager
	Games           session.GameSource
	StartingBalance int
	Store           Pinger // optional, checked by /readyz
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates the HTTP server listening on addr.
func NewServer(addr string, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the route tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", HandleHealthz())
	r.Get("/readyz", HandleReadyz(deps.Store))
	r.Handle("/metrics", promhttp.Handler())

	h := &handlers{deps: deps}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/packs", h.HandleListPacks)
		r.Get("/shop/quote", h.HandleShopQuote)
		r.Post("/sessions", h.HandleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/packs/{packID}", h.HandleOpenPack)
			r.Get("/pity", h.HandlePityStatus)
			r.Get("/ledger", h.HandleLedger)
			r.Get("/balance", h.HandleBalance)
		})
	})
	return r
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
