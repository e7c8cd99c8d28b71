package crypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObfuscatorRoundTrip(t *testing.T) {
	obf, err := New("unit-test-secret")
	require.NoError(t, err)

	token, err := obf.Obfuscate("user@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "obf1:"))
	assert.NotContains(t, token, "user@example.com")

	plain, err := obf.Reveal(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", plain)
}

func TestObfuscatorTokensDiffer(t *testing.T) {
	obf, err := New("unit-test-secret")
	require.NoError(t, err)

	first, err := obf.Obfuscate("user@example.com")
	require.NoError(t, err)
	second, err := obf.Obfuscate("user@example.com")
	require.NoError(t, err)

	// Random nonces make repeated tokens distinct even for equal inputs.
	assert.NotEqual(t, first, second)
}

func TestObfuscatorRejectsWrongKey(t *testing.T) {
	obf, err := New("unit-test-secret")
	require.NoError(t, err)
	other, err := New("a-different-secret")
	require.NoError(t, err)

	token, err := obf.Obfuscate("user@example.com")
	require.NoError(t, err)

	_, err = other.Reveal(token)
	assert.Error(t, err)
}

func TestObfuscatorRejectsMalformedTokens(t *testing.T) {
	obf, err := New("unit-test-secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"no prefix", "dXNlckBleGFtcGxlLmNvbQ"},
		{"bad base64", "obf1:@@@@"},
		{"too short", "obf1:aGk"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := obf.Reveal(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
