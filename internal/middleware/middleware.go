package middleware

import (
	"net/http"
	"strings"
)

// corsHeaders open the API to any origin; the frontend reads Content-Disposition
// to name downloads.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":   "*",
	"Access-Control-Allow-Methods":  strings.Join([]string{http.MethodGet, http.MethodHead, http.MethodOptions}, ","),
	"Access-Control-Allow-Headers":  "Content-Type," + RequestIDHeader,
	"Access-Control-Expose-Headers": "Content-Disposition," + RequestIDHeader,
	"Access-Control-Max-Age":        "600",
}

// CORS answers preflight requests itself and decorates every other response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range corsHeaders {
			h.Set(k, v)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Chain wraps h so that the first middleware is the outermost one.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
