package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/georef-lab/backend/pkg/errorx"
	"github.com/georef-lab/backend/pkg/router"
	"github.com/georef-lab/backend/pkg/xcontext"
)

// Logger logs every finished request with its method, path and error code.
func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		r := xcontext.HTTPRequest(ctx)
		if r == nil {
			return
		}

		info := fmt.Sprintf("%s | %s", r.Method, r.URL.Path)
		if err := router.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
			} else {
				xcontext.Logger(ctx).Errorf("%s | %v", info, err)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
