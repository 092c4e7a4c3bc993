package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSource(t *testing.T) {
	p, store := newTestPipeline(t, "http://unused")
	ts := p.TokenSource(context.Background())

	_, err := ts.Token()
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, store.Save(context.Background(), "A1", "R1"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "A1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())

	// Follows later saves without caching.
	require.NoError(t, store.Save(context.Background(), "A2", "R2"))
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "A2", tok.AccessToken)
}
