package middleware

import (
	"gatepass/pkg/metrics"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// RouteLabel maps a request to its registered route pattern so metric label
// cardinality stays bounded. Unknown paths share the "unmatched" label.
func RouteLabel(router *httprouter.Router) func(r *http.Request) string {
	return func(r *http.Request) string {
		handle, params, _ := router.Lookup(r.Method, r.URL.Path)
		if handle == nil {
			return "unmatched"
		}
		path := r.URL.Path
		for _, p := range params {
			path = strings.Replace(path, "/"+p.Value, "/:"+p.Key, 1)
		}
		return path
	}
}

func HTTPMetrics(m *metrics.Metrics, route func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.ObserveHTTP(r.Method, route(r), wrapped.statusCode, time.Since(start))
		})
	}
}
