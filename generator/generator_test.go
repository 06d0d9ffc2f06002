package generator

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateSecureTokenIsURLSafe(t *testing.T) {
	gen := New()
	token := string(gen.CreateSecureToken())
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	raw, err := base64.RawURLEncoding.DecodeString(token)
	assert.NoError(t, err)
	assert.Len(t, raw, DefaultTokenSize)
}

func TestCreateSecureTokenIsUnique(t *testing.T) {
	gen := New()
	seen := make(map[RandomTokenType]struct{})
	for i := 0; i < 1000; i++ {
		token := gen.CreateSecureToken()
		_, dup := seen[token]
		assert.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestNewWithSizeEnforcesMinimum(t *testing.T) {
	gen := NewWithSize(4)
	raw, err := base64.RawURLEncoding.DecodeString(string(gen.CreateSecureToken()))
	assert.NoError(t, err)
	assert.Len(t, raw, 16)
}
