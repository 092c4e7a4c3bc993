package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Call describes one originating request to the remote service.
//
// Anonymous calls (login, register, refresh) never carry a credential and
// never start the refresh protocol on their own failure.
type Call struct {
	Method    string
	Path      string
	Body      any
	Anonymous bool
}

// Get is shorthand for an authenticated GET.
func Get(path string) *Call {
	return &Call{Method: http.MethodGet, Path: path}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// exchange is the pipeline's private per-call state. It is created by Do and
// never shared, so concurrent calls keep independent retry accounting.
type exchange struct {
	call      Call
	body      []byte
	requestID string
	retried   bool
}

func newExchange(call Call, requestID string) (*exchange, error) {
	x := &exchange{call: call, requestID: requestID}
	if call.Body != nil {
		b, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		x.body = b
	}
	return x, nil
}

func (x *exchange) op() string {
	return x.call.Method + " " + x.call.Path
}
