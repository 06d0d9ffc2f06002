package generator

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
)

// DefaultTokenSize is the amount of random bytes behind every code and token
const DefaultTokenSize = 32

type RandomTokenType string

func tokenTypeFromString(token string) RandomTokenType {
	if token == "" {
		panic("zero length token issued, this is probably the only reason to ever panic")
	}
	return RandomTokenType(token)
}

// RandomTokenGenerator produces url safe opaque tokens from crypto/rand
type RandomTokenGenerator struct {
	size int
}

// thanks for the gotrue authors for this, i just bluntly took it (https://github.com/netlify/gotrue/blob/master/crypto/crypto.go)

// CreateSecureToken returns a unpadded base64url token of the configured size
func (g *RandomTokenGenerator) CreateSecureToken() RandomTokenType {
	return g.CreateSecureTokenWithSize(g.size)
}

// CreateSecureTokenWithSize returns a unpadded base64url token backed by size random bytes
func (*RandomTokenGenerator) CreateSecureTokenWithSize(size int) RandomTokenType {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err.Error()) // rand should never fail
	}
	return tokenTypeFromString(removePadding(base64.URLEncoding.EncodeToString(b)))
}

func removePadding(token string) string {
	return strings.TrimRight(token, "=")
}

// New returns a generator using DefaultTokenSize
func New() *RandomTokenGenerator {
	return &RandomTokenGenerator{size: DefaultTokenSize}
}

// NewWithSize returns a generator for a custom size, sizes below 16 bytes are raised to 16
func NewWithSize(size int) *RandomTokenGenerator {
	if size < 16 {
		size = 16
	}
	return &RandomTokenGenerator{size: size}
}
