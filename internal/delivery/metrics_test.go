package delivery

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"flibproxy/internal/catalog"
	"flibproxy/internal/metrics"
)

func TestDownloadMetrics(t *testing.T) {
	before := testutil.ToFloat64(metrics.DownloadBytesTotal)
	routeBefore := testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues("GET", "/api/download", "200"))

	fc := &fakeCatalog{dl: &catalog.Download{Body: io.NopCloser(strings.NewReader("0123456789"))}}
	rec := serve(t, fc, http.MethodGet, "/api/download?url=http://x")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, before+10, testutil.ToFloat64(metrics.DownloadBytesTotal))
	assert.Equal(t, routeBefore+1, testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues("GET", "/api/download", "200")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.DownloadsInFlight))
}

func TestFormatsRouteLabel(t *testing.T) {
	label := "/api/book/{id}/formats"
	before := testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues("GET", label, "200"))

	serve(t, &fakeCatalog{formats: []catalog.DownloadFormat{}}, http.MethodGet, "/api/book/1/formats")
	serve(t, &fakeCatalog{formats: []catalog.DownloadFormat{}}, http.MethodGet, "/api/book/2/formats")

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.HttpRequestsTotal.WithLabelValues("GET", label, "200")))
}

func TestAbortedDownloadCounted(t *testing.T) {
	counter := metrics.HttpRequestsTotal.WithLabelValues("GET", "/api/download", "200")
	before := testutil.ToFloat64(counter)

	fc := &fakeCatalog{dl: &catalog.Download{Body: io.NopCloser(&failingReader{prefix: "partial"})}}
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		serve(t, fc, http.MethodGet, "/api/download?url=http://x")
	})

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.DownloadsInFlight))
}
