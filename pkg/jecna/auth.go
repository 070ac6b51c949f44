package jecna

import (
	"bytes"
	"errors"
)

// Auth is a pair of portal credentials.
type Auth struct {
	Username string
	Password string
}

const authShift = 10

// Encrypt obfuscates the credentials so they are not stored as plain text,
// it is not meant to resist someone who has read this function.
func (a Auth) Encrypt() []byte {
	plain := []byte(a.Username + "\n" + a.Password)
	out := make([]byte, len(plain))
	for i, b := range plain {
		out[i] = b + authShift
	}
	return out
}

// DecryptAuth reverses Encrypt.
func DecryptAuth(data []byte) (Auth, error) {
	plain := make([]byte, len(data))
	for i, b := range data {
		plain[i] = b - authShift
	}
	username, password, found := bytes.Cut(plain, []byte("\n"))
	if !found {
		return Auth{}, errors.New("decrypt auth: missing separator")
	}
	return Auth{Username: string(username), Password: string(password)}, nil
}
