package mid

import (
	"context"
	"net/http"

	"github.com/bosn/zero-todo/bridge/scaffolding/metrics"
	"github.com/bosn/zero-todo/infrastructure/web"
)

// Metrics counts requests and how many of them errored.
func Metrics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = metrics.Set(ctx)

			resp := next(ctx, r)

			metrics.AddRequests(ctx)

			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			return resp
		}
	}
}
