package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/georef-lab/backend/pkg/errorx"
)

type errorKey struct{}

// Error returns the error produced by the middleware chain or handler of this
// request. It is only set when closers run.
func Error(ctx context.Context) error {
	err, ok := ctx.Value(errorKey{}).(error)
	if !ok {
		return nil
	}

	return err
}

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := router.baseContext(r)

		resp, err := func() (*Response, error) {
			if r.Method != method {
				return nil, errorx.New(errorx.NotImplemented, "Not supported method %s", r.Method)
			}

			var req Request
			switch method {
			case http.MethodGet:
				if err := bindQuery(r.URL.Query(), &req); err != nil {
					return nil, errorx.New(errorx.BadRequest, "Cannot parse query parameters")
				}
			case http.MethodPost:
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					return nil, errorx.New(errorx.BadRequest, "Cannot parse the request body")
				}
			}

			for _, m := range router.befores {
				newCtx, err := m(ctx)
				if err != nil {
					return nil, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return nil, err
			}

			for _, m := range router.afters {
				newCtx, err := m(ctx)
				if err != nil {
					return nil, err
				}

				if newCtx != nil {
					ctx = newCtx
				}
			}

			return resp, nil
		}()

		if err != nil {
			writeJSON(ctx, w, newErrorResponse(err))
		} else {
			writeJSON(ctx, w, newResponse(resp))
		}

		if err != nil {
			ctx = context.WithValue(ctx, errorKey{}, err)
		}

		for _, c := range router.closers {
			c(ctx)
		}
	})
}
