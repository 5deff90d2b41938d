package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"flibproxy/internal/catalog"
	"flibproxy/internal/logger"
	"flibproxy/internal/metrics"
)

// relay перекачивает тело апстрима клиенту как вложение.
// Заголовки уходят вместе с первым байтом, поэтому ошибка до него ещё превращается в 500.
func (s *Server) relay(w http.ResponseWriter, r *http.Request, dl *catalog.Download, filename string) {
	defer dl.Body.Close()

	metrics.DownloadsInFlight.Inc()
	defer metrics.DownloadsInFlight.Dec()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	aw := &attachmentWriter{w: w, filename: filename, contentType: contentType}

	n, err := io.Copy(aw, dl.Body)
	metrics.DownloadBytesTotal.Add(float64(n))
	if err == nil {
		aw.start()
		return
	}

	entry := logger.For(r.Context()).WithError(err).WithField("bytes", n)
	switch {
	case aw.writeErr != nil || errors.Is(r.Context().Err(), context.Canceled):
		entry.Warn("Download aborted by client")
	case !aw.started:
		entry.Error("Download error")
		WriteError(w, http.StatusInternalServerError, msgDownloadFailed)
	default:
		// часть файла уже у клиента: откатить нельзя, рвём соединение
		entry.Error("Download stream failed")
		panic(http.ErrAbortHandler)
	}
}

// attachmentWriter ставит заголовки вложения перед первой записью
type attachmentWriter struct {
	w           http.ResponseWriter
	filename    string
	contentType string
	started     bool
	writeErr    error
}

func (a *attachmentWriter) start() {
	if a.started {
		return
	}
	a.started = true
	h := a.w.Header()
	h.Set("Content-Disposition", ContentDisposition(a.filename))
	h.Set("Content-Type", a.contentType)
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	a.start()
	n, err := a.w.Write(p)
	if err != nil {
		a.writeErr = err
	}
	return n, err
}

// ContentDisposition значение заголовка для имени файла, закодированного как encodeURIComponent
func ContentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, catalog.EscapeComponent(filename))
}
