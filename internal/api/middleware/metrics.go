package middleware

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestObserver receives one observation per completed request. route is
// the chi route pattern, so path parameters do not explode label sets.
type RequestObserver interface {
	ObserveRequest(method, route, status string, duration time.Duration)
}

// MetricsCollector counts requests and errors for /stats and forwards each
// request to an optional observer.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64
	observer     RequestObserver
}

func NewMetricsCollector(requestCount, errorCount *atomic.Int64, observer RequestObserver) *MetricsCollector {
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
		observer:     observer,
	}
}

// Middleware returns middleware that counts requests and errors (4xx and 5xx).
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
		if mc.observer == nil {
			return
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		mc.observer.ObserveRequest(r.Method, route, strconv.Itoa(rw.statusCode), time.Since(start))
	})
}
