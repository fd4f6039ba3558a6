package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

const base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Scope prefixes prepended to generated secrets.
const (
	UserKeyPrefix   = "idp_user_"
	SystemKeyPrefix = "idp_system_"
)

// DefaultSecretLength is the number of random characters after the scope prefix.
const DefaultSecretLength = 32

type secretGenerator struct {
	length int
	format *regexp.Regexp
}

// NewSecretGenerator creates a SecretGenerator emitting length random characters.
// Non-positive lengths fall back to DefaultSecretLength.
func NewSecretGenerator(length int) SecretGenerator {
	if length <= 0 {
		length = DefaultSecretLength
	}
	return &secretGenerator{
		length: length,
		format: regexp.MustCompile(fmt.Sprintf(`^idp_(user|system)_[A-Za-z0-9]{%d}$`, length)),
	}
}

func (g *secretGenerator) Generate(scope domain.Scope) (string, error) {
	var prefix string
	switch scope {
	case domain.ScopeUser:
		prefix = UserKeyPrefix
	case domain.ScopeSystem:
		prefix = SystemKeyPrefix
	default:
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("unknown api key scope %q", scope))
	}

	charsLen := big.NewInt(int64(len(base62Chars)))
	result := make([]byte, len(prefix)+g.length)
	copy(result, prefix)
	for i := len(prefix); i < len(result); i++ {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", apperrors.Wrap(err, "failed to generate random secret")
		}
		result[i] = base62Chars[n.Int64()]
	}

	return string(result), nil
}

func (g *secretGenerator) ValidateFormat(plaintext string) bool {
	return g.format.MatchString(plaintext)
}

func (g *secretGenerator) Prefix(plaintext string) string {
	if len(plaintext) <= domain.SecretPrefixLength {
		return plaintext
	}
	return plaintext[:domain.SecretPrefixLength]
}
