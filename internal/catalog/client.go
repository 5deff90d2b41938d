package catalog

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"flibproxy/internal/logger"
	"flibproxy/internal/metrics"
)

// сколько тела ошибочного ответа попадает в debug-лог
const errorBodyPeek = 2048

// Client ходит на сайт каталога. Состояния между запросами нет, ретраев нет.
type Client struct {
	opts   Options
	client *http.Client
	logger *logrus.Logger
	strip  *bluemonday.Policy
}

func New(opts Options, logger *logrus.Logger) *Client {
	if opts.Headers == nil {
		opts.Headers = DefaultHeaders()
	}
	if opts.FormatPriority == nil {
		opts.FormatPriority = DefaultFormatPriority()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		opts:   opts,
		logger: logger,
		client: newHTTPClient(opts),
		strip:  bluemonday.StrictPolicy(),
	}
}

// Общего Client.Timeout нет: он оборвал бы длинную отдачу файла.
// Страницы ограничиваются контекстом, скачивание - ожиданием заголовков.
func newHTTPClient(opts Options) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   opts.Timeout,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: t}
}

func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Open начинает скачивание по произвольному URL и отдаёт поток, не читая его.
// Адрес не проверяется: сервис проксирует всё, что ему передали.
func (c *Client) Open(ctx context.Context, rawURL string) (*Download, error) {
	if rawURL == "" {
		return nil, invalid("url is required")
	}
	res, err := c.do(ctx, "download", rawURL)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(res)
	if err != nil {
		res.Body.Close()
		return nil, &UpstreamError{Op: "download", URL: rawURL, Err: err}
	}
	return &Download{Body: body, ContentType: res.Header.Get("Content-Type")}, nil
}

// page загружает HTML-страницу и возвращает тело, уже распакованное и в UTF-8.
func (c *Client) page(ctx context.Context, op, target string) (io.ReadCloser, error) {
	res, err := c.do(ctx, op, target)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(res)
	if err != nil {
		res.Body.Close()
		return nil, &UpstreamError{Op: op, URL: target, Err: err}
	}
	return toUTF8(body, res.Header.Get("Content-Type")), nil
}

func (c *Client) do(ctx context.Context, op, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, &UpstreamError{Op: op, URL: target, Err: err}
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.entry(ctx).WithFields(logrus.Fields{"op": op, "url": target}).Debug("upstream.request")
	}

	start := time.Now()
	res, err := c.client.Do(req)
	metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "error").Inc()
		return nil, &UpstreamError{Op: op, URL: target, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		metrics.UpstreamRequestsTotal.WithLabelValues(op, "status").Inc()
		if c.logger.IsLevelEnabled(logrus.DebugLevel) {
			c.entry(ctx).WithFields(logrus.Fields{
				"op":     op,
				"status": res.StatusCode,
				"body":   c.peekText(res),
			}).Debug("upstream.response")
		}
		res.Body.Close()
		return nil, &UpstreamError{Op: op, URL: target, Status: res.StatusCode, Err: ErrUnexpectedStatus}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(op, "ok").Inc()
	return res, nil
}

// entry пишет в логгер клиента, request_id берем из контекста
func (c *Client) entry(ctx context.Context) *logrus.Entry {
	if id := logger.IDFrom(ctx); id != "" {
		return c.logger.WithField("request_id", id)
	}
	return logrus.NewEntry(c.logger)
}

// peekText читает начало тела ошибки и вычищает разметку, чтобы в логе был только текст.
func (c *Client) peekText(res *http.Response) string {
	body, err := decodeBody(res)
	if err != nil {
		return ""
	}
	raw, _ := io.ReadAll(io.LimitReader(body, errorBodyPeek))
	return strings.Join(strings.Fields(c.strip.Sanitize(string(raw))), " ")
}
