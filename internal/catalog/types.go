package catalog

import (
	"io"
	"time"
)

const (
	DefaultBaseURL  = "https://a.flibusta.is"
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBooks = 10
)

// BookSummary одна строка выдачи поиска. ID непрозрачен и передаётся дальше как есть.
type BookSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// DownloadFormat ссылка на скачивание книги в одном формате
type DownloadFormat struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Extension string `json:"extension"`
}

// Download открытый поток от апстрима. Body закрывает вызывающий.
type Download struct {
	Body        io.ReadCloser
	ContentType string
}

// Options неизменяемые настройки клиента каталога, собираются один раз при старте
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	MaxBooks       int
	FormatPriority []string
	Headers        map[string]string
}

// DefaultFormatPriority порядок форматов в ответе /formats
func DefaultFormatPriority() []string {
	return []string{"fb2", "epub", "mobi", "pdf", "txt"}
}

// DefaultHeaders заголовки, под которые сайт отдаёт обычную HTML-выдачу
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		"Accept-Encoding":           "gzip, deflate",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
}

// DefaultOptions настройки, совпадающие с боевыми константами
func DefaultOptions() Options {
	return Options{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		MaxBooks:       DefaultMaxBooks,
		FormatPriority: DefaultFormatPriority(),
		Headers:        DefaultHeaders(),
	}
}
