package search

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const booksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "author"],
    "properties": {
      "id":     {"type": "string", "minLength": 1},
      "title":  {"type": "string"},
      "author": {"type": "string"}
    }
  }
}`

const formatsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "url", "extension"],
    "properties": {
      "name":      {"type": "string", "minLength": 1},
      "url":       {"type": "string", "minLength": 1},
      "extension": {"type": "string", "minLength": 1}
    }
  }
}`

const errorSchema = `{
  "type": "object",
  "required": ["error"],
  "properties": {"error": {"type": "string"}}
}`

type schemas struct {
	books   *gojsonschema.Schema
	formats *gojsonschema.Schema
	failure *gojsonschema.Schema
}

func loadSchemas() (*schemas, error) {
	compile := func(name, src string) (*gojsonschema.Schema, error) {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		return s, nil
	}
	books, err := compile("books", booksSchema)
	if err != nil {
		return nil, err
	}
	formats, err := compile("formats", formatsSchema)
	if err != nil {
		return nil, err
	}
	failure, err := compile("error", errorSchema)
	if err != nil {
		return nil, err
	}
	return &schemas{books: books, formats: formats, failure: failure}, nil
}

// validate проверяет ответ прокси до разбора, чтобы поломка контракта была видна сразу
func validate(s *gojsonschema.Schema, data []byte) error {
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrContract, strings.Join(msgs, "; "))
}
