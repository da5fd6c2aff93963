package router

import (
	"context"
	"net/http"

	"github.com/georef-lab/backend/config"
	"github.com/georef-lab/backend/internal/model"
	"github.com/georef-lab/backend/pkg/authenticator"
	"github.com/georef-lab/backend/pkg/logger"
	"github.com/georef-lab/backend/pkg/session"
	"github.com/georef-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before a handler. It may derive a new context; returning
// a nil context keeps the current one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written. The handler error, if
// any, is available through Error.
type CloserFunc func(ctx context.Context)

type Router struct {
	mux *http.ServeMux

	cfg    config.Configs
	logger logger.Logger
	db     *gorm.DB

	tokenEngine  authenticator.TokenEngine[model.AccessToken]
	sessionStore *session.Store

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	return &Router{
		mux:          http.NewServeMux(),
		cfg:          cfg,
		logger:       logger,
		db:           db,
		tokenEngine:  authenticator.NewTokenEngine[model.AccessToken](cfg.Auth.AccessToken),
		sessionStore: session.NewCookieStore(cfg.Session.Name, []byte(cfg.Session.Secret)),
	}
}

// Branch returns a router sharing the same mux but with independent middleware
// chains, so that route groups can require different middlewares.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.afters = append([]MiddlewareFunc{}, r.afters...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) After(m MiddlewareFunc) {
	r.afters = append(r.afters, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.Handle(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) baseContext(req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, r.cfg)
	ctx = xcontext.WithLogger(ctx, r.logger)
	ctx = xcontext.WithDB(ctx, r.db)
	ctx = xcontext.WithTokenEngine(ctx, r.tokenEngine)
	ctx = xcontext.WithSessionStore(ctx, r.sessionStore)
	ctx = xcontext.WithHTTPRequest(ctx, req)
	return ctx
}
