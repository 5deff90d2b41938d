package delivery

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flibproxy/internal/middleware"
)

// RouterOptions что кроме API повесить на основной порт
type RouterOptions struct {
	StaticDir   string // пусто или нет каталога - статику не раздаём
	MetricsPath string // пусто - /metrics живёт на отдельном порту
}

// NewHandler собирает роутер и цепочку middleware вокруг него.
// CORS стоит снаружи роутера: OPTIONS не совпадает ни с одним GET-маршрутом.
func NewHandler(s *Server, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.Search).Methods(http.MethodGet)
	api.HandleFunc("/book/{id}/formats", s.Formats).Methods(http.MethodGet)
	api.HandleFunc("/download", s.Download).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	if opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, promhttp.Handler()).Methods(http.MethodGet)
	}
	if dirExists(opts.StaticDir) {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(opts.StaticDir)))
	}

	return middleware.Chain(r,
		middleware.Recover,
		middleware.RequestID,
		middleware.RequestLogger,
		middleware.CORS,
	)
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
