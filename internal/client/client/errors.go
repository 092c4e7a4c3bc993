package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable matches every TransportError: no response was received.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches a StatusError carrying HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired is logged when the session cannot be recovered by a refresh.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoCredential is returned by TokenSource when no access token is stored.
	ErrNoCredential = errors.New("no access credential")
)

// TransportError reports a call that never produced a response: network
// failure, timeout, or a body that could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// Timeout reports whether the call hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// StatusError is a non-2xx response passed through to the caller.
// Message holds the human-readable text found in the JSON body, if any.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// checkStatus turns non-2xx responses into a *StatusError.
func checkStatus(resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    extractMessage(resp.Body),
		Body:       resp.Body,
	}
}

// extractMessage reads {"message": "..."} (or {"error": "..."}) from body.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	return strings.TrimSpace(payload.Error)
}

// MessageOf returns the server-provided message carried by err, or "".
func MessageOf(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
