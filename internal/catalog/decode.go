package catalog

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"golang.org/x/text/encoding/htmlindex"
)

// Accept-Encoding мы ставим сами, поэтому транспорт ответ не распаковывает.
func decodeBody(res *http.Response) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(res.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
		return res.Body, nil
	case "gzip", "x-gzip":
		gr, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return &decodedBody{Reader: gr, closers: []io.Closer{gr, res.Body}}, nil
	case "deflate":
		return inflate(res.Body)
	case "br":
		return &decodedBody{Reader: brotli.NewReader(res.Body), closers: []io.Closer{res.Body}}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// Сервера шлют под "deflate" и zlib-поток, и голый deflate. Смотрим на заголовок zlib.
func inflate(body io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(body)
	head, _ := br.Peek(2)
	if len(head) == 2 && head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0 {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("deflate body: %w", err)
		}
		return &decodedBody{Reader: zr, closers: []io.Closer{zr, body}}, nil
	}
	fr := flate.NewReader(br)
	return &decodedBody{Reader: fr, closers: []io.Closer{fr, body}}, nil
}

type decodedBody struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedBody) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// toUTF8 перекодирует страницу, если сервер объявил не UTF-8 кодировку.
// Неизвестную кодировку оставляем как есть, goquery считает вход UTF-8.
func toUTF8(body io.ReadCloser, contentType string) io.ReadCloser {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return body
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return body
	}
	return &decodedBody{Reader: enc.NewDecoder().Reader(body), closers: []io.Closer{body}}
}
