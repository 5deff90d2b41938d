package delivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"flibproxy/internal/catalog"
	"flibproxy/internal/logger"
)

const (
	msgQueryRequired  = "Query parameter is required"
	msgURLRequired    = "URL parameter is required"
	msgSearchFailed   = "Failed to search books"
	msgFormatsFailed  = "Failed to get book formats"
	msgDownloadFailed = "Failed to download file"

	defaultFilename    = "book"
	defaultContentType = "application/octet-stream"
)

// Catalog то, что HTTP-слой требует от клиента каталога
type Catalog interface {
	Search(ctx context.Context, query string) ([]catalog.BookSummary, error)
	Formats(ctx context.Context, id string) ([]catalog.DownloadFormat, error)
	Open(ctx context.Context, url string) (*catalog.Download, error)
}

// Server HTTP-обработчики API. Логирует через logger.For, чтобы в строках был request_id.
type Server struct {
	Catalog Catalog
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/search?query=...
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		WriteError(w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	books, err := s.Catalog.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err, "Search error", msgSearchFailed)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// GET /api/book/{id}/formats
func (s *Server) Formats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	formats, err := s.Catalog.Formats(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, "Formats error", msgFormatsFailed)
		return
	}
	writeJSON(w, http.StatusOK, formats)
}

// GET /api/download?url=...&filename=...
func (s *Server) Download(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := q.Get("url")
	if target == "" {
		WriteError(w, http.StatusBadRequest, msgURLRequired)
		return
	}
	filename := q.Get("filename")
	if filename == "" {
		filename = defaultFilename
	}

	// Контекст запроса родительский: отключился клиент - обрываем и апстрим.
	dl, err := s.Catalog.Open(r.Context(), target)
	if err != nil {
		s.fail(w, r, err, "Download error", msgDownloadFailed)
		return
	}
	s.relay(w, r, dl, filename)
}

// fail пишет причину в лог, а клиенту отдаёт только общее сообщение.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, what, msg string) {
	status := http.StatusInternalServerError
	if errors.Is(err, catalog.ErrInvalidRequest) {
		status = http.StatusBadRequest
	}
	entry := logger.For(r.Context()).WithError(err)
	var upErr *catalog.UpstreamError
	if errors.As(err, &upErr) {
		entry = entry.WithFields(logrus.Fields{"op": upErr.Op, "upstream": upErr.URL, "upstream_status": upErr.Status})
	}
	entry.Error(what)
	WriteError(w, status, msg)
}
