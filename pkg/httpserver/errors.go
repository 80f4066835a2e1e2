package httpserver

import "errors"

var (
	// ErrServe indicates the listener failed while serving.
	ErrServe = errors.New("http server failed")
	// ErrShutdown indicates graceful shutdown did not complete in time.
	ErrShutdown = errors.New("http server shutdown failed")
)
