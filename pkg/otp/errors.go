package otp

import "errors"

var (
	// ErrRandomSource indicates the entropy source failed or returned too few bytes.
	ErrRandomSource = errors.New("otp: random source unavailable")

	// ErrInvalidSecretEncoding indicates the secret is not unpadded RFC 4648 base32.
	ErrInvalidSecretEncoding = errors.New("otp: invalid secret encoding")

	// ErrInvalidKeyLength indicates the HMAC construction rejected the decoded key.
	ErrInvalidKeyLength = errors.New("otp: invalid key length")

	// ErrInvalidTime indicates a timestamp before the Unix epoch.
	ErrInvalidTime = errors.New("otp: time precedes unix epoch")

	// ErrInvalidCode indicates the provided OTP code is invalid.
	ErrInvalidCode = errors.New("otp: invalid code")

	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("otp: invalid configuration")

	// ErrNilAuthenticator indicates a nil authenticator was used.
	ErrNilAuthenticator = errors.New("otp: authenticator is nil")
)
