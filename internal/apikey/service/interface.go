// Package service provides the secret generation and hashing primitives used by the
// API key lifecycle.
package service

import "github.com/allisson/apikeys/internal/apikey/domain"

// SecretGenerator produces plaintext API key secrets.
type SecretGenerator interface {
	// Generate returns "<scope prefix><random base62 characters>".
	Generate(scope domain.Scope) (string, error)

	// ValidateFormat reports whether plaintext looks like a secret this generator produced.
	ValidateFormat(plaintext string) bool

	// Prefix returns the display-safe leading characters stored alongside the hash.
	Prefix(plaintext string) string
}

// SecretHasher hashes secrets with a salted, work-factor-tunable algorithm.
type SecretHasher interface {
	// Hash returns an encoded hash that embeds its own salt and parameters.
	Hash(plaintext string) (string, error)

	// Verify compares in constant time. Malformed hashes verify as false.
	Verify(plaintext, hash string) bool
}
