package routing

import "errors"

var (
	// ErrMalformedCondition is returned when a condition has no recognised
	// operator, an empty field, or repeats its operator
	ErrMalformedCondition = errors.New("malformed condition")

	// ErrNotNumeric is returned when an ordering comparison meets a value that
	// does not read as a number
	ErrNotNumeric = errors.New("value is not numeric")

	// ErrUnknownField is returned when the record has no value for the field
	ErrUnknownField = errors.New("unknown or absent field")

	// ErrEmptyRule is returned when a rule has no conditions
	ErrEmptyRule = errors.New("rule has no conditions")
)
