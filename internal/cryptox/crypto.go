// Package cryptox holds the key-derivation helpers used by the login flow.
// The server never sees the password: the client derives a master key with
// argon2id and sends only a SHA-256 verifier of that key.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

// MakeVerifier returns the value the server stores and compares on login.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with salt using argon2id
// (1 pass, 64 MiB, 4 lanes, 32-byte key).
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
