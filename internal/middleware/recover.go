package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"flibproxy/internal/logger"
)

// Recover turns a handler panic into a 500 JSON response. http.ErrAbortHandler
// is re-raised so the server drops the connection as intended.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.For(r.Context()).WithField("panic", rec).
				WithField("stack", string(debug.Stack())).Error("http.panic")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
		}()
		next.ServeHTTP(w, r)
	})
}
