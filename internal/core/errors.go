package core

import "errors"

var (
	// ErrStoreUnavailable means the database could not be opened or migrated.
	ErrStoreUnavailable = errors.New("memory store unavailable")
	// ErrDimensionMismatch means a vector length differs from the store dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrMalformedOutput means the model output could not be parsed.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrEmptyResponse means the model returned no usable text.
	ErrEmptyResponse = errors.New("empty model response")
)
