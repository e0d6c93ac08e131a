package decoder

import "errors"

var (
	// ErrDecode wraps every failure to turn a body into a record
	ErrDecode = errors.New("invalid record payload")

	// ErrEmptyBody is returned for a zero-length body
	ErrEmptyBody = errors.New("empty body")
)
