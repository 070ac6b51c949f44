package jecna

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthEncryption(t *testing.T) {
	auth := Auth{Username: "novak", Password: "heslo:ř123"}
	encrypted := auth.Encrypt()
	require.NotContains(t, string(encrypted), "heslo")

	decrypted, err := DecryptAuth(encrypted)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, auth, decrypted)

	_, err = DecryptAuth([]byte("no separator"))
	require.Error(t, err)
}
