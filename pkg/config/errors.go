package config

import "errors"

var (
	// ErrParsing indicates the environment could not be parsed into the
	// config struct, usually a malformed value or a missing required var.
	ErrParsing = errors.New("parsing environment configuration")

	// ErrNilPointer indicates Load was called with a nil destination.
	ErrNilPointer = errors.New("nil config destination")
)
