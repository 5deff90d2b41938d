package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"flibproxy/internal/logger"
)

// RequestLogger logs completed requests at the INFO level.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		// defer: оборванная отдача (http.ErrAbortHandler) тоже попадает в лог
		defer func() {
			logger.For(r.Context()).WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"query":  r.URL.Query(),
				"status": rec.status,
				"bytes":  rec.bytes,
				"remote": r.RemoteAddr,
				"agent":  r.UserAgent(),
				"took":   time.Since(start),
			}).Info("http.request")
		}()

		next.ServeHTTP(rec, r)
	})
}
