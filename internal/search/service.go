package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"flibproxy/internal/config"
)

const maxResponse = 1 << 20

// ErrContract ответ прокси не совпал с ожидаемой схемой
var ErrContract = errors.New("response does not match schema")

// APIError прокси ответил ошибкой
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proxy: %s (status %d)", e.Message, e.Status)
}

// Service инкапсулирует общение CLI с HTTP API прокси
type Service struct {
	baseURL string
	client  *http.Client
	schemas *schemas
}

// New создает сервис поиска для адреса из секции cli
func New(cfg config.CLIConfig) (*Service, error) {
	if cfg.GatewayURL == "" {
		return nil, config.ErrInvalid("cli.gateway_url is required")
	}
	sc, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Service{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		client:  &http.Client{Timeout: timeout},
		schemas: sc,
	}, nil
}

// Search выполняет запрос к прокси и мапит результат в DTO. limit <= 0 - без обрезки.
func (s *Service) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	var books []BookDTO
	endpoint := s.baseURL + "/api/search?query=" + url.QueryEscape(query)
	if err := s.getJSON(ctx, endpoint, &books, s.schemas.books); err != nil {
		return nil, err
	}

	res := &SearchResult{Query: query, Total: len(books), Books: books}
	if limit > 0 && len(res.Books) > limit {
		res.Books = res.Books[:limit]
	}
	return res, nil
}

// Formats возвращает форматы в порядке, который выбрал прокси
func (s *Service) Formats(ctx context.Context, id string) ([]FormatDTO, error) {
	var formats []FormatDTO
	endpoint := s.baseURL + "/api/book/" + url.PathEscape(id) + "/formats"
	if err := s.getJSON(ctx, endpoint, &formats, s.schemas.formats); err != nil {
		return nil, err
	}
	return formats, nil
}

// Download открывает скачивание формата через прокси
func (s *Service) Download(ctx context.Context, f FormatDTO, filename string) (*Transfer, error) {
	q := url.Values{}
	q.Set("url", f.URL)
	q.Set("filename", filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/download?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, s.apiError(resp)
	}

	name := filename
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if decoded, err := url.PathUnescape(params["filename"]); err == nil && decoded != "" {
			name = decoded
		}
	}
	return &Transfer{Body: resp.Body, Size: resp.ContentLength, Filename: name}, nil
}

func (s *Service) getJSON(ctx context.Context, endpoint string, out any, schema *gojsonschema.Schema) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.apiError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := validate(schema, data); err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// apiError достает сообщение из {"error": "..."}; если тело другое, сообщение - статус
func (s *Service) apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil || validate(s.schemas.failure, data) != nil {
		return apiErr
	}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}
