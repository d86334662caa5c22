package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrUnexpectedStatus is wrapped by TransportError for non-2xx responses
var ErrUnexpectedStatus = errors.New("unexpected status")

// TransportError describes a request that did not produce usable markup:
// a timeout, a connection failure or a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int  // Zero when no response was received
	Timeout    bool // The request hit its deadline
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
	case e.Timeout:
		return fmt.Sprintf("failed to fetch %s: timed out: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// statusError reports a non-2xx response
func statusError(link string, code int) *TransportError {
	return &TransportError{URL: link, StatusCode: code, Err: ErrUnexpectedStatus}
}

// requestError wraps a transport-level failure
func requestError(link string, err error) *TransportError {
	return &TransportError{URL: link, Timeout: isTimeout(err), Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
