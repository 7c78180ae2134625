package web

import (
	"context"
	"net/http"
)

type ctxKey int

const writerKey ctxKey = 1

// setWriter stores the response writer so middleware that needs to touch
// headers (CORS) can reach it before the response is encoded.
func setWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, writerKey, w)
}

// GetWriter returns the underlying response writer from the context, or nil
// when the request did not come through the framework.
func GetWriter(ctx context.Context) http.ResponseWriter {
	w, ok := ctx.Value(writerKey).(http.ResponseWriter)
	if !ok {
		return nil
	}
	return w
}
