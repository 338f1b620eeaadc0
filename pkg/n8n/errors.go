package n8n

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// UpstreamError reports a failed or rejected call to the engine. Status is
// zero when the request never produced an HTTP response.
type UpstreamError struct {
	URL     string
	Status  int
	Body    string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("engine call to %s timed out", e.URL)
	case e.Status != 0:
		return fmt.Sprintf("engine call to %s rejected with status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("engine call to %s failed: %v", e.URL, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError checks whether err originated from an engine call, and
// returns the typed error when it did.
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}

	return nil, false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
