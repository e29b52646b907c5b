package otp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	// Digits is the number of decimal digits in a code.
	Digits = 6
	// Period is the TOTP time step in seconds.
	Period = 30

	modulus = 1_000_000
)

// Clock abstracts time so callers can replace real time in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the current system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Token is a generated code together with its remaining validity.
type Token struct {
	Code        string
	ExpiresIn   time.Duration
	GeneratedAt time.Time
}

// Counter returns the RFC 6238 time-step counter for at.
func Counter(at time.Time) (uint64, error) {
	unix := at.Unix()
	if unix < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTime, at.UTC().Format(time.RFC3339))
	}
	return uint64(unix) / Period, nil
}

// TimeRemaining returns how long the code for at stays current.
// The result is in (0, Period] seconds.
func TimeRemaining(at time.Time) time.Duration {
	unix := at.Unix()
	rem := unix % Period
	if rem < 0 {
		rem += Period
	}
	return time.Duration(Period-rem) * time.Second
}

// GenerateToken derives the 6-digit code for a base32 secret at the given
// time using HMAC-SHA1 and RFC 4226 dynamic truncation.
func GenerateToken(secret string, at time.Time) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return GenerateTokenFromKey(key, at)
}

// GenerateTokenFromKey is GenerateToken for an already decoded key.
func GenerateTokenFromKey(key []byte, at time.Time) (string, error) {
	counter, err := Counter(at)
	if err != nil {
		return "", err
	}
	return hotpCode(key, counter)
}

// NewToken generates the code for at along with its expiry information.
func NewToken(secret string, at time.Time) (*Token, error) {
	code, err := GenerateToken(secret, at)
	if err != nil {
		return nil, err
	}
	return &Token{
		Code:        code,
		ExpiresIn:   TimeRemaining(at),
		GeneratedAt: at,
	}, nil
}

func hotpCode(key []byte, counter uint64) (string, error) {
	// crypto/hmac accepts any key length; an empty key is refused here.
	if len(key) == 0 {
		return "", fmt.Errorf("%w: key must not be empty", ErrInvalidKeyLength)
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	return fmt.Sprintf("%0*d", Digits, truncate(sum)%modulus), nil
}

// truncate implements RFC 4226 section 5.3.
func truncate(sum []byte) uint32 {
	offset := sum[len(sum)-1] & 0x0f
	return binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
}
