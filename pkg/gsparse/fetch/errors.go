package fetch

import (
	"errors"
	"fmt"
)

// ErrFetch is matched by every retrieval failure.
var ErrFetch = errors.New("fetch failed")

var (
	errNotSheetsURL  = errors.New("not a Google Sheets URL")
	errNotPublic     = errors.New("received an HTML page instead of an export; is the sheet shared publicly?")
	errTooLarge      = errors.New("response exceeds size limit")
	errUnsupported   = errors.New("unsupported export format")
	errUnexpectedRes = errors.New("unexpected response status")
)

// FetchError describes a failed retrieval.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
