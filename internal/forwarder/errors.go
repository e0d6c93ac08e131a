package forwarder

import "errors"

var (
	// ErrUpstream wraps transport failures reaching the rule's destination
	ErrUpstream = errors.New("upstream request failed")

	// ErrUpstreamTimeout wraps failures caused by the forward timeout
	ErrUpstreamTimeout = errors.New("upstream request timed out")
)
