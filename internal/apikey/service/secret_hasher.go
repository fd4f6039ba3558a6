package service

import (
	"fmt"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/allisson/apikeys/internal/errors"
)

// Supported hashing algorithms.
const (
	HashAlgorithmBcrypt   = "bcrypt"
	HashAlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost is the work factor applied when none is configured.
const DefaultBcryptCost = 12

// BcryptMaxInputLength is the number of bytes bcrypt hashes; anything after it is ignored.
const BcryptMaxInputLength = 72

// NewSecretHasher selects the hasher named by algorithm. bcryptCost is only
// used by the bcrypt hasher.
func NewSecretHasher(algorithm string, bcryptCost int) (SecretHasher, error) {
	switch algorithm {
	case "", HashAlgorithmBcrypt:
		return NewBcryptHasher(bcryptCost)
	case HashAlgorithmArgon2id:
		return NewArgon2idHasher()
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt SecretHasher. Zero cost means DefaultBcryptCost.
func NewBcryptHasher(cost int) (SecretHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &bcryptHasher{cost: cost}, nil
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

type argon2idHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewArgon2idHasher creates an Argon2id SecretHasher with the moderate policy.
func NewArgon2idHasher() (SecretHasher, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, fmt.Errorf("failed to create argon2id hasher: %w", err)
	}
	return &argon2idHasher{hasher: hasher}, nil
}

func (h *argon2idHasher) Hash(plaintext string) (string, error) {
	hash, err := h.hasher.Hash([]byte(plaintext))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hash, nil
}

func (h *argon2idHasher) Verify(plaintext, hash string) bool {
	ok, err := h.hasher.Verify([]byte(plaintext), hash)
	if err != nil {
		return false
	}
	return ok
}
