// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"expvar"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The expvar package is already based on a singleton
// for the different metrics that are registered with the package so there
// isn't much choice here.
var m *metrics

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to expvar.
type metrics struct {
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
	admissions *expvar.Int
	rejections *expvar.Int
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of expvar is registered as a singleton.
func init() {
	m = &metrics{
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),
		admissions: expvar.NewInt("tx_admissions"),
		rejections: expvar.NewInt("tx_rejections"),
	}
}

type ctxKey int

const key ctxKey = 1

// Set sets the metrics data into the context.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddRequests increments the request metric by 1.
func AddRequests(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return 0
	}
	v.requests.Add(1)
	return v.requests.Value()
}

// AddErrors increments the errors metric by 1.
func AddErrors(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return 0
	}
	v.errors.Add(1)
	return v.errors.Value()
}

// AddPanics increments the panics metric by 1.
func AddPanics(ctx context.Context) int64 {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return 0
	}
	v.panics.Add(1)
	return v.panics.Value()
}

// AddAdmission records the outcome of a transaction submission.
func AddAdmission(ctx context.Context, admitted bool) {
	v, ok := ctx.Value(key).(*metrics)
	if !ok {
		return
	}
	if admitted {
		v.admissions.Add(1)
		return
	}
	v.rejections.Add(1)
}
