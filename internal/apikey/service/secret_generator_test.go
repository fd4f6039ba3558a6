package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/apikeys/internal/apikey/domain"
	apperrors "github.com/allisson/apikeys/internal/errors"
)

func TestSecretGenerator_Generate(t *testing.T) {
	gen := NewSecretGenerator(DefaultSecretLength)

	t.Run("Success_UserScope", func(t *testing.T) {
		secret, err := gen.Generate(domain.ScopeUser)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(secret, UserKeyPrefix))
		assert.Len(t, secret, len(UserKeyPrefix)+DefaultSecretLength)
		assert.True(t, gen.ValidateFormat(secret))
	})

	t.Run("Success_SystemScope", func(t *testing.T) {
		secret, err := gen.Generate(domain.ScopeSystem)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(secret, SystemKeyPrefix))
		assert.Len(t, secret, len(SystemKeyPrefix)+DefaultSecretLength)
		assert.True(t, gen.ValidateFormat(secret))
	})

	t.Run("Success_OnlyBase62AfterPrefix", func(t *testing.T) {
		secret, err := gen.Generate(domain.ScopeUser)
		require.NoError(t, err)

		for _, c := range strings.TrimPrefix(secret, UserKeyPrefix) {
			assert.Contains(t, base62Chars, string(c))
		}
	})

	t.Run("Success_Unique", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for i := 0; i < 100; i++ {
			secret, err := gen.Generate(domain.ScopeUser)
			require.NoError(t, err)
			_, dup := seen[secret]
			assert.False(t, dup)
			seen[secret] = struct{}{}
		}
	})

	t.Run("Success_CustomLength", func(t *testing.T) {
		custom := NewSecretGenerator(48)
		secret, err := custom.Generate(domain.ScopeUser)
		require.NoError(t, err)

		assert.Len(t, secret, len(UserKeyPrefix)+48)
		assert.True(t, custom.ValidateFormat(secret))
		assert.False(t, gen.ValidateFormat(secret))
	})

	t.Run("Error_UnknownScope", func(t *testing.T) {
		_, err := gen.Generate(domain.Scope("TEAM"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestSecretGenerator_ValidateFormat(t *testing.T) {
	gen := NewSecretGenerator(0)
	body := strings.Repeat("aB3", 10) + "xY"

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "user key", input: "idp_user_" + body, expected: true},
		{name: "system key", input: "idp_system_" + body, expected: true},
		{name: "unknown scope", input: "idp_team_" + body, expected: false},
		{name: "too short", input: "idp_user_" + body[:31], expected: false},
		{name: "too long", input: "idp_user_" + body + "z", expected: false},
		{name: "illegal char", input: "idp_user_" + body[:31] + "-", expected: false},
		{name: "empty", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, gen.ValidateFormat(tt.input))
		})
	}
}

func TestSecretGenerator_Prefix(t *testing.T) {
	gen := NewSecretGenerator(DefaultSecretLength)

	secret, err := gen.Generate(domain.ScopeUser)
	require.NoError(t, err)

	prefix := gen.Prefix(secret)
	assert.Len(t, prefix, domain.SecretPrefixLength)
	assert.True(t, strings.HasPrefix(secret, prefix))
	assert.Equal(t, "short", gen.Prefix("short"))
}
