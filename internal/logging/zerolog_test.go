package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZerologConsole_WritesLevelMessageAndFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZerologConsole(&buf, "debug")
	require.NoError(t, err)

	log.With("component", "pipeline").Warn(context.Background(), "refresh failed", "status", 401, "error", errors.New("boom"))

	out := buf.String()
	require.Contains(t, out, "WRN")
	require.Contains(t, out, "refresh failed")
	require.Contains(t, out, "component=pipeline")
	require.Contains(t, out, "status=401")
	require.Contains(t, out, "boom")
}

func TestZerologConsole_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewZerologConsole(&buf, "error")
	require.NoError(t, err)

	log.Info(context.Background(), "quiet")
	require.Empty(t, buf.String())
}

func TestNew_SelectsBackend(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&buf, "info", "json")
	require.NoError(t, err)
	require.IsType(t, &SlogLogger{}, l)
	l.Info(context.Background(), "json-line")
	require.Contains(t, buf.String(), `"msg":"json-line"`)

	l, err = New(&buf, "info", "console")
	require.NoError(t, err)
	require.IsType(t, &ZerologLogger{}, l)

	l, err = New(&buf, "info", "")
	require.NoError(t, err)
	require.IsType(t, &SlogLogger{}, l)

	_, err = New(&buf, "info", "xml")
	require.ErrorContains(t, err, "unknown log format")

	_, err = New(&buf, "loud", "text")
	require.Error(t, err)
}
