package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUser_DisplayName(t *testing.T) {
	require.Equal(t, "Alice", (&User{Name: "Alice", Username: "alice"}).DisplayName())
	require.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
}

func TestProfileUpdate_OmitsUnsetFields(t *testing.T) {
	name := "Alice"
	b, err := json.Marshal(ProfileUpdate{Name: &name})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Alice"}`, string(b))
}

func TestUser_DecodesServerPayload(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":"7","name":"Bob","username":"bob","is_admin":true,"is_active":true,"created_at":"2026-01-02T03:04:05Z"}`), &u)
	require.NoError(t, err)
	require.Equal(t, "7", u.ID)
	require.True(t, u.IsAdmin)
	require.Equal(t, 2026, u.CreatedAt.Year())
}
