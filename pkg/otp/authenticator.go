package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeremyhahn/go-totp/pkg/provision"
)

// Config holds OTP authenticator configuration.
type Config struct {
	// Secret is the base32-encoded shared secret key (required).
	Secret string
	// Issuer is the name of the issuing organization (e.g., "MyApp").
	Issuer string
	// AccountName is the account identifier (e.g., "user@example.com").
	AccountName string
	// Clock supplies the current time.
	// Default: SystemClock
	Clock Clock
}

// validate checks that the configuration is valid.
func (c Config) validate() error {
	if strings.TrimSpace(c.Secret) == "" {
		return fmt.Errorf("%w: secret must not be empty", ErrInvalidConfig)
	}

	if _, err := DecodeSecret(c.Secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// validateOpts pins pquerna/otp to the fixed SHA1, 6 digit, 30 second
// parameters with no skew window.
var validateOpts = totp.ValidateOpts{
	Period:    Period,
	Skew:      0,
	Digits:    pqotp.DigitsSix,
	Algorithm: pqotp.AlgorithmSHA1,
}

// Authenticator generates and validates TOTP codes for a single secret.
// It is safe for concurrent use.
type Authenticator struct {
	cfg Config
}

// NewAuthenticator creates a new OTP authenticator.
// The configuration is validated and an error is returned if invalid.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	// validate has already decoded the secret.
	cfg.Secret, _ = NormalizeSecret(cfg.Secret)

	return &Authenticator{cfg: cfg}, nil
}

// Authenticate validates a code against the current time step only.
// Codes from neighbouring steps are rejected.
func (a *Authenticator) Authenticate(ctx context.Context, code string) error {
	if a == nil {
		return ErrNilAuthenticator
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code must not be empty", ErrInvalidCode)
	}

	now := a.cfg.Clock.Now()
	if _, err := Counter(now); err != nil {
		return err
	}

	valid, err := totp.ValidateCustom(code, a.cfg.Secret, now.UTC(), validateOpts)
	if errors.Is(err, pqotp.ErrValidateSecretInvalidBase32) {
		return fmt.Errorf("%w: %v", ErrInvalidSecretEncoding, err)
	}
	if err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidCode, err)
	}
	if !valid {
		return ErrInvalidCode
	}

	return nil
}

// Generate generates the code for the current time.
func (a *Authenticator) Generate() (string, error) {
	if a == nil {
		return "", ErrNilAuthenticator
	}

	code, err := GenerateToken(a.cfg.Secret, a.cfg.Clock.Now())
	if err != nil {
		return "", fmt.Errorf("otp: failed to generate TOTP code: %w", err)
	}
	return code, nil
}

// Token generates the current code together with its remaining lifetime.
func (a *Authenticator) Token() (*Token, error) {
	if a == nil {
		return nil, ErrNilAuthenticator
	}
	return NewToken(a.cfg.Secret, a.cfg.Clock.Now())
}

// GetProvisioningURI returns the otpauth:// URI for QR code generation.
// This URI can be encoded as a QR code and scanned by authenticator apps.
func (a *Authenticator) GetProvisioningURI() string {
	if a == nil {
		return ""
	}
	return provision.BuildURI(a.cfg.Secret, a.cfg.AccountName, a.cfg.Issuer)
}
