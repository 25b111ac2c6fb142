package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/handler"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/logging"
)

// Recovery wraps the mux; the mux fills in the matched route on the same
// request, so the panic log names the route and period that failed.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log := logging.FromContext(r.Context())
				log.Error("panic recovered",
					"error", err,
					"route", r.Pattern,
					"period", r.PathValue(periodPathValue),
					"stack", string(debug.Stack()),
				)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
