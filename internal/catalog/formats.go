package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"flibproxy/internal/logger"
)

// Formats возвращает ссылки на скачивание книги id, отсортированные по FormatPriority.
func (c *Client) Formats(ctx context.Context, id string) ([]DownloadFormat, error) {
	if id == "" {
		return nil, invalid("book id is required")
	}
	defer logger.Track(ctx, "catalog: formats")()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	target := c.opts.BaseURL + bookPrefix + id
	body, err := c.page(ctx, "formats", target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	formats, err := ParseFormats(body, c.opts.BaseURL, id)
	if err != nil {
		return nil, &UpstreamError{Op: "formats", URL: target, Err: err}
	}
	return RankFormats(formats, c.opts.FormatPriority), nil
}

// ParseFormats собирает все ссылки вида /b/<id>/<format> в порядке документа.
func ParseFormats(r io.Reader, baseURL, id string) ([]DownloadFormat, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse book page: %w", err)
	}

	// id приходит от клиента, поэтому префикс проверяем руками, а не через селектор a[href^=...]
	prefix := bookPrefix + id + "/"
	formats := make([]DownloadFormat, 0)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, prefix) {
			return
		}
		token := href[strings.LastIndex(href, "/")+1:]
		if token == "" {
			return
		}
		formats = append(formats, DownloadFormat{
			Name:      strings.ToUpper(token),
			URL:       baseURL + href,
			Extension: strings.ToLower(token),
		})
	})
	return formats, nil
}

// RankFormats стабильно сортирует форматы по таблице priority.
// Неизвестные расширения уходят в конец и сохраняют исходный порядок между собой.
func RankFormats(formats []DownloadFormat, priority []string) []DownloadFormat {
	rank := make(map[string]int, len(priority))
	for i, ext := range priority {
		ext = strings.ToLower(ext)
		if _, seen := rank[ext]; !seen {
			rank[ext] = i
		}
	}
	rankOf := func(f DownloadFormat) int {
		if r, ok := rank[strings.ToLower(f.Extension)]; ok {
			return r
		}
		return len(priority)
	}

	ranked := make([]DownloadFormat, len(formats))
	copy(ranked, formats)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankOf(ranked[i]) < rankOf(ranked[j])
	})
	return ranked
}
