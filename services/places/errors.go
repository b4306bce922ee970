package places

import "fmt"

// UpstreamError reports a provider failure (network, rate limit, or a
// malformed/denied response). Status carries the provider's status string or
// the HTTP status when no body was decoded.
type UpstreamError struct {
	Status string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("places upstream error (%s): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("places upstream error (%s)", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
