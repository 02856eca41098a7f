package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrIncompleteRecord = errors.New("incomplete record")
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnknownLayout means none of an adapter's known page structures matched.
	ErrUnknownLayout = errors.New("unknown page layout")
)

// FetchError is returned by extractors when a page could not be fetched or parsed.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s (%s): status %d: %v", e.URL, e.Source, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s (%s): status %d", e.URL, e.Source, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Source, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could plausibly succeed.
func (e *FetchError) Retryable() bool {
	if errors.Is(e.Err, ErrUnknownLayout) || errors.Is(e.Err, context.Canceled) {
		return false
	}
	if e.StatusCode != 0 {
		return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
	}
	var ne net.Error
	if errors.As(e.Err, &ne) {
		return true
	}
	return e.Err != nil
}

func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func Incompletef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompleteRecord, fmt.Sprintf(format, args...))
}
