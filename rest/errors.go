package rest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication indicates the server rejected the supplied
	// credentials or the token lacks the required scope (401 or 403).
	ErrAuthentication = errors.New("authentication rejected")
	// ErrNotFound indicates the addressed resource does not exist on the
	// server (404).
	ErrNotFound = errors.New("resource not found")
	// ErrServer indicates an unexpected non-2xx status outside the
	// authentication and not-found cases.
	ErrServer = errors.New("server error")
)

// Error is the typed error returned for any non-2xx response. It carries the
// HTTP status and the server-provided message alongside the request that
// failed. Error matches the taxonomy sentinels via errors.Is:
//
//	if errors.Is(err, rest.ErrNotFound) { ... }
type Error struct {
	// StatusCode is the HTTP status returned by the server.
	StatusCode int
	// Message is the server-provided error message, or the HTTP status text
	// when the body carried none.
	Message string
	// Method and Path identify the request that failed.
	Method string
	Path   string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap maps the status code onto one of the taxonomy sentinels so callers
// can match with errors.Is without inspecting status codes themselves.
func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuthentication
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrServer
	}
}
