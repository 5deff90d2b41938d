package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest не хватает обязательного параметра
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnexpectedStatus апстрим ответил не 2xx
var ErrUnexpectedStatus = errors.New("unexpected status")

// UpstreamError любая ошибка обращения к сайту каталога: сеть, таймаут, статус, битое тело.
type UpstreamError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %v %d", e.Op, e.URL, e.Err, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}
