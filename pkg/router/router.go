package router

import (
	"context"
	"net/http"

	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc may return a derived context, a nil context keeps the current one.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc always runs after the request is handled, whether an error occurred or not.
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx     context.Context
	mux     *http.ServeMux
	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

// New creates a router whose handlers receive a child of ctx. Configs, logger, database and
// the other services should be set into ctx beforehand.
func New(ctx context.Context) *Router {
	return &Router{
		ctx: ctx,
		mux: http.NewServeMux(),
	}
}

// Branch creates a router sharing the same mux. Middlewares added to the branch do not affect
// the parent.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.afters = append([]MiddlewareFunc{}, r.afters...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(middlewares ...MiddlewareFunc) {
	r.befores = append(r.befores, middlewares...)
}

func (r *Router) After(middlewares ...MiddlewareFunc) {
	r.afters = append(r.afters, middlewares...)
}

func (r *Router) AddCloser(closers ...CloserFunc) {
	r.closers = append(r.closers, closers...)
}

// Handle registers a raw http.Handler, no middleware is applied.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	return r.mux
}

func GET[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(router, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](router *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(router, http.MethodPost, pattern, handler)
}

func route[Request, Response any](
	router *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := router.befores
	afters := router.afters
	closers := append([]CloserFunc{handleResponse()}, router.closers...)

	router.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		ctx := router.ctx
		ctx = xcontext.WithHTTPRequest(ctx, r)
		ctx = xcontext.WithWriter(ctx, w)

		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		if r.Method != method {
			ctx = xcontext.WithError(ctx, errMethodNotAllowed)
			return
		}

		var err error
		ctx, err = runMiddlewares(ctx, befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		var req Request
		if err := parseRequest(r, &req); err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
		ctx, err = runMiddlewares(ctx, afters)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}
	})
}

func runMiddlewares(ctx context.Context, middlewares []MiddlewareFunc) (context.Context, error) {
	for _, middleware := range middlewares {
		newCtx, err := middleware(ctx)
		if err != nil {
			return ctx, err
		}

		if newCtx != nil {
			ctx = newCtx
		}
	}

	return ctx, nil
}
