package otp

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-totp/internal/secretcodec"
)

// SecretSize is the number of random bytes in a generated secret (160 bits).
const SecretSize = 20

// RandomSource returns n random bytes or an error. Implementations used in
// production must be cryptographically secure.
type RandomSource func(n int) ([]byte, error)

// CryptoRandom reads n bytes from crypto/rand.
func CryptoRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SecretGenerator produces base32-encoded shared secrets.
// It is safe for concurrent use if its RandomSource is.
type SecretGenerator struct {
	source RandomSource
}

// NewSecretGenerator returns a generator drawing from source.
// A nil source selects CryptoRandom.
func NewSecretGenerator(source RandomSource) *SecretGenerator {
	if source == nil {
		source = CryptoRandom
	}
	return &SecretGenerator{source: source}
}

// Generate draws SecretSize bytes and returns them base32-encoded
// without padding. The result is always 32 characters long.
func (g *SecretGenerator) Generate() (string, error) {
	source := CryptoRandom
	if g != nil && g.source != nil {
		source = g.source
	}

	b, err := source(SecretSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomSource, err)
	}
	if len(b) != SecretSize {
		return "", fmt.Errorf("%w: short read of %d bytes", ErrRandomSource, len(b))
	}

	return secretcodec.Encoding.EncodeToString(b), nil
}

// GenerateSecret generates a cryptographically random secret key.
// The secret is returned as a base32-encoded string suitable for use
// in the Config.Secret field.
func GenerateSecret() (string, error) {
	return NewSecretGenerator(nil).Generate()
}

// EncodeSecret encodes raw key bytes as unpadded base32.
func EncodeSecret(key []byte) string {
	return secretcodec.Encoding.EncodeToString(key)
}

// DecodeSecret decodes an RFC 4648 base32 secret. Lowercase letters and
// trailing padding are accepted. Embedded line breaks and a final group
// that cannot hold whole bytes are rejected.
func DecodeSecret(secret string) ([]byte, error) {
	key, err := secretcodec.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretEncoding, err)
	}
	return key, nil
}

// NormalizeSecret validates secret and returns it upper-cased without
// padding, the form used in provisioning URIs.
func NormalizeSecret(secret string) (string, error) {
	canonical, err := secretcodec.Canonical(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSecretEncoding, err)
	}
	return canonical, nil
}
