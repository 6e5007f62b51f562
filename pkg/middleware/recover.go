package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/ruizhu/shopapi/pkg/logger"
	"github.com/ruizhu/shopapi/pkg/metrics"
	"github.com/ruizhu/shopapi/pkg/response"
)

// Recovery turns a handler panic into the 500 envelope, logs it with the
// request id and stack, and counts it per route. http.ErrAbortHandler is
// re-raised so net/http can abort the connection.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			route := metrics.Route(r)
			metrics.PanicsRecovered.WithLabelValues(route).Inc()
			logger.WithCtx(r.Context()).Error("handler panicked",
				"panic", fmt.Sprint(rec),
				"route", route,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
