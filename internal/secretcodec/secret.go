// Package secretcodec holds the base32 form shared secrets travel in.
package secretcodec

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
)

// Encoding is RFC 4648 base32 without padding.
var Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

var (
	errEmpty      = errors.New("secret must not be empty")
	errLineBreaks = errors.New("secret contains line breaks")
)

// Normalize upper-cases s and strips trailing padding.
func Normalize(s string) string {
	return strings.TrimRight(strings.ToUpper(s), "=")
}

// Canonical validates s and returns its normalized form.
func Canonical(s string) (string, error) {
	if _, err := Decode(s); err != nil {
		return "", err
	}
	return Normalize(s), nil
}

// Decode normalizes s and decodes it strictly. Trailing characters that do
// not complete a byte are rejected instead of being dropped.
func Decode(s string) ([]byte, error) {
	// The stdlib decoder silently skips CR and LF.
	if strings.ContainsAny(s, "\r\n") {
		return nil, errLineBreaks
	}

	s = Normalize(s)
	if s == "" {
		return nil, errEmpty
	}

	// A final quantum of 1, 3 or 6 characters cannot carry whole bytes.
	switch n := len(s) % 8; n {
	case 1, 3, 6:
		return nil, fmt.Errorf("invalid grouping: %d trailing characters", n)
	}

	return Encoding.DecodeString(s)
}
