package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("store-secret")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(secret, salt)
	key2 := DeriveKey(secret, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("store-secret")

	if bytes.Equal(DeriveKey(secret, []byte("salt-1")), DeriveKey(secret, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("k"), []byte("s"))

	sealed, err := Seal([]byte("access-token"), key)
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "access-token")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "access-token", string(plain))
}

func TestSeal_NoncesDiffer(t *testing.T) {
	key := DeriveKey([]byte("k"), []byte("s"))

	a, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	b, err := Seal([]byte("same"), key)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOpen_Errors(t *testing.T) {
	key := DeriveKey([]byte("k"), []byte("s"))
	other := DeriveKey([]byte("other"), []byte("s"))

	sealed, err := Seal([]byte("secret"), key)
	require.NoError(t, err)

	_, err = Open(sealed, other)
	require.Error(t, err, "wrong key must fail")

	_, err = Open([]byte{1, 2}, key)
	require.ErrorIs(t, err, ErrCiphertextTooShort)

	_, err = Seal([]byte("x"), []byte("short-key"))
	require.Error(t, err, "invalid AES key length")
}
