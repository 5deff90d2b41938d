package search

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flibproxy/internal/config"
)

func mockProxy(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default().CLI
	cfg.GatewayURL = srv.URL + "/"
	svc, err := New(cfg)
	require.NoError(t, err)
	return svc
}

func TestSearch(t *testing.T) {
	svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "война и мир", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","title":"Война и мир","author":"Лев Толстой"},
			{"id":"2","title":"Сборник","author":""},
			{"id":"3","title":"Третья","author":"X"}
		]`))
	})

	res, err := svc.Search(context.Background(), "война и мир", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Books, 2)
	assert.Equal(t, "Лев Толстой", res.Books[0].DisplayAuthor())
	assert.Equal(t, "Unknown", res.Books[1].DisplayAuthor())
}

func TestSearchContractViolation(t *testing.T) {
	svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"no id"}]`))
	})
	_, err := svc.Search(context.Background(), "x", 0)
	assert.ErrorIs(t, err, ErrContract)
}

func TestAPIError(t *testing.T) {
	type testCase struct {
		name            string
		status          int
		body            string
		expectedMessage string
	}
	testCases := []testCase{
		{"json_error", http.StatusBadRequest, `{"error":"Query parameter is required"}`, "Query parameter is required"},
		{"plain_text", http.StatusBadGateway, `bad gateway`, "Bad Gateway"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := svc.Formats(context.Background(), "1")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.expectedMessage, apiErr.Message)
		})
	}
}

func TestFormats(t *testing.T) {
	svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/book/123/formats", r.URL.Path)
		w.Write([]byte(`[{"name":"FB2","url":"https://example.org/b/123/fb2","extension":"fb2"}]`))
	})
	formats, err := svc.Formats(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, []FormatDTO{{Name: "FB2", URL: "https://example.org/b/123/fb2", Extension: "fb2"}}, formats)
}

func TestDownload(t *testing.T) {
	svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/download", r.URL.Path)
		assert.Equal(t, "https://example.org/b/1/epub", r.URL.Query().Get("url"))
		assert.Equal(t, "Оно.epub", r.URL.Query().Get("filename"))
		w.Header().Set("Content-Disposition", `attachment; filename="%D0%9E%D0%BD%D0%BE.epub"`)
		w.Write([]byte("epub-bytes"))
	})

	tr, err := svc.Download(context.Background(), FormatDTO{URL: "https://example.org/b/1/epub", Extension: "epub"}, "Оно.epub")
	require.NoError(t, err)
	defer tr.Body.Close()

	data, err := io.ReadAll(tr.Body)
	require.NoError(t, err)
	assert.Equal(t, "epub-bytes", string(data))
	assert.Equal(t, "Оно.epub", tr.Filename)
	assert.EqualValues(t, 10, tr.Size)
}

func TestDownloadError(t *testing.T) {
	svc := mockProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to download file"}`))
	})
	_, err := svc.Download(context.Background(), FormatDTO{URL: "http://x"}, "book")
	assert.EqualError(t, err, "proxy: Failed to download file (status 500)")
}

func TestNewRequiresGateway(t *testing.T) {
	_, err := New(config.CLIConfig{})
	assert.Error(t, err)
}
