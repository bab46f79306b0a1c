package imagecache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImage means the response was not an image.
	ErrNotImage = errors.New("response is not an image")
	// ErrEmptyBody means the response had no content.
	ErrEmptyBody = errors.New("response body is empty")
	// ErrTooLarge means the response exceeded the configured size limit.
	ErrTooLarge = errors.New("response body exceeds size limit")
	// ErrUnsupportedURL means the source is not an http(s) URL.
	ErrUnsupportedURL = errors.New("unsupported image url")
	// ErrInvalidName means a requested file is not a cache entry name.
	ErrInvalidName = errors.New("invalid cache file name")
	// ErrInvalidWidth means a resize width is out of range.
	ErrInvalidWidth = errors.New("invalid thumbnail width")
)

// StatusError is returned when the image server answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// failureReason maps a fetch error to its metric label.
func failureReason(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return "status"
	case errors.Is(err, ErrNotImage):
		return "not_image"
	case errors.Is(err, ErrEmptyBody):
		return "empty_body"
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.Is(err, errWrite):
		return "write"
	default:
		return "transport"
	}
}

var errWrite = errors.New("writing cache file")
