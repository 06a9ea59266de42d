package poster

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mostlysecurity/chapterpost/xrpc"
)

var ErrTooManyImages = fmt.Errorf("at most %d images per post", MaxImages)

var ErrLinkWithImages = errors.New("a post can embed a link card or images, not both")

// Failure to create a session. Always fatal for the run.
type AuthError struct {
	Host   string
	Handle string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login as %s at %s failed: %v", e.Handle, e.Host, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Failure of com.atproto.repo.createRecord.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("creating post record: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// HTTP status returned by the PDS, or zero if no response was received.
func (e *SubmitError) StatusCode() int {
	var xe *xrpc.Error
	if errors.As(e.Err, &xe) {
		return xe.StatusCode
	}
	return 0
}

// Rate limit state sent with a 429 response. Nil when the PDS did not
// throttle the request or sent no ratelimit headers.
func (e *SubmitError) Ratelimit() *xrpc.RatelimitInfo {
	var xe *xrpc.Error
	if errors.As(e.Err, &xe) && xe.IsThrottled() {
		return xe.Ratelimit
	}
	return nil
}

// Whether resubmitting a degraded (plain-text link) record could plausibly
// succeed. Transport failures and auth rejections are not retried.
func (e *SubmitError) retryable() bool {
	switch e.StatusCode() {
	case 0, http.StatusUnauthorized, http.StatusForbidden:
		return false
	default:
		return true
	}
}
