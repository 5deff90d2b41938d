package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"flibproxy/internal/logger"
)

const (
	resultsHeading = "Найденные книги"
	bookPrefix     = "/b/"
)

// Search ищет книги по строке запроса и возвращает не больше MaxBooks результатов.
func (c *Client) Search(ctx context.Context, query string) ([]BookSummary, error) {
	if query == "" {
		return nil, invalid("query is required")
	}
	defer logger.Track(ctx, "catalog: search")()

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	target := c.searchURL(query)
	c.entry(ctx).WithField("url", target).Info("catalog.search")

	body, err := c.page(ctx, "search", target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	books, err := ParseSearch(body, c.opts.MaxBooks)
	if err != nil {
		return nil, &UpstreamError{Op: "search", URL: target, Err: err}
	}
	return books, nil
}

func (c *Client) searchURL(query string) string {
	return fmt.Sprintf("%s/booksearch?ask=%s&chs=on&cha=on&chb=on", c.opts.BaseURL, EscapeComponent(query))
}

// ParseSearch разбирает страницу выдачи. Нет заголовка или списка после него -
// пустой результат, а не ошибка.
func ParseSearch(r io.Reader, limit int) ([]BookSummary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return extractBooks(doc, limit), nil
}

func extractBooks(doc *goquery.Document, limit int) []BookSummary {
	books := make([]BookSummary, 0)

	headings := doc.Find("h3").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return strings.Contains(h.Text(), resultsHeading)
	})
	items := headings.NextFiltered("ul").Find("li")

	// limit считается по пунктам списка, включая пропущенные
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		links := item.Find("a")
		if links.Length() < 2 {
			return true
		}

		// Первая ссылка - книга, последняя - автор. Средние (переводчики, серии) не смотрим.
		bookLink, authorLink := links.First(), links.Last()
		href, _ := bookLink.Attr("href")
		if !strings.HasPrefix(href, bookPrefix) {
			return true
		}

		books = append(books, BookSummary{
			ID:     strings.TrimPrefix(href, bookPrefix),
			Title:  strings.TrimSpace(bookLink.Text()),
			Author: strings.TrimSpace(authorLink.Text()),
		})
		return true
	})
	return books
}
