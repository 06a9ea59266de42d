package embed

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Matched by errors.Is for any *PayloadTooLargeError.
var ErrPayloadTooLarge = errors.New("payload too large")

type PayloadTooLargeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("image too large: %s is %s (%d bytes), %s maximum", e.Name, humanize.Bytes(uint64(e.Size)), e.Size, humanize.Bytes(uint64(e.Limit)))
}

func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

// Failure to retrieve a link target or its preview image. StatusCode is zero when no HTTP response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
