// Package metrics constructs the counters the todo service tracks. The
// values are published through expvar's /debug/vars endpoint.
package metrics

import (
	"context"
	"expvar"
)

// This holds the single instance of the metrics value needed for collecting
// metrics. The expvar package is already based on a singleton for the
// different metrics that are registered with the package so there isn't
// much choice here.
var m *metrics

func init() {
	m = &metrics{
		requests: expvar.NewInt("requests"),
		errors:   expvar.NewInt("errors"),
		panics:   expvar.NewInt("panics"),
	}
}

type metrics struct {
	requests *expvar.Int
	errors   *expvar.Int
	panics   *expvar.Int
}

type ctxKey int

const key ctxKey = 1

// Set puts the metrics value into the context.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddRequests increments the request counter.
func AddRequests(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if ok {
		v.requests.Add(1)
		return v.requests.Value()
	}
	return 0
}

// AddErrors increments the error counter.
func AddErrors(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if ok {
		v.errors.Add(1)
		return v.errors.Value()
	}
	return 0
}

// AddPanics increments the panic counter.
func AddPanics(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if ok {
		v.panics.Add(1)
		return v.panics.Value()
	}
	return 0
}
