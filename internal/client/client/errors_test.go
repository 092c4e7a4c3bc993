package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		resp    *Response
		wantErr bool
		wantMsg string
		unauth  bool
	}{
		{"ok", &Response{StatusCode: http.StatusOK}, false, "", false},
		{"no content", &Response{StatusCode: http.StatusNoContent}, false, "", false},
		{"message field", &Response{StatusCode: 400, Body: []byte(`{"message":" bad input "}`)}, true, "bad input", false},
		{"error field", &Response{StatusCode: 500, Body: []byte(`{"error":"oops"}`)}, true, "oops", false},
		{"plain body", &Response{StatusCode: 502, Body: []byte(`Bad Gateway`)}, true, "", false},
		{"unauthorized", &Response{StatusCode: 401, Body: []byte(`{"message":"expired"}`)}, true, "expired", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkStatus(tt.resp)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, MessageOf(err))
			assert.Equal(t, tt.unauth, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "401 Unauthorized: expired", (&StatusError{StatusCode: 401, Message: "expired"}).Error())
	assert.Equal(t, "503 Service Unavailable", (&StatusError{StatusCode: 503}).Error())
}

func TestTransportError(t *testing.T) {
	err := fmt.Errorf("verify: %w", &TransportError{Op: "GET /auth/verify", Err: context.DeadlineExceeded})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout())
	assert.False(t, (&TransportError{Err: errors.New("connection refused")}).Timeout())
}

func TestMessageOf_NonStatusError(t *testing.T) {
	assert.Empty(t, MessageOf(errors.New("x")))
	assert.Empty(t, MessageOf(nil))
}
