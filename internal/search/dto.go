package search

import "io"

// BookDTO представляет данные книги, оптимизированные для отображения
type BookDTO struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// DisplayAuthor автор для вывода; у сборников его может не быть
func (b BookDTO) DisplayAuthor() string {
	if b.Author == "" {
		return "Unknown"
	}
	return b.Author
}

// SearchResult содержит результат поиска
type SearchResult struct {
	Query string
	Total int
	Books []BookDTO
}

// FormatDTO один вариант скачивания
type FormatDTO struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Extension string `json:"extension"`
}

// Transfer открытое скачивание. Size -1, если прокси не знает длину.
type Transfer struct {
	Body     io.ReadCloser
	Size     int64
	Filename string
}
