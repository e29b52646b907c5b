package provision

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pquerna/otp"

	"github.com/jeremyhahn/go-totp/internal/secretcodec"
)

// Provisioning is the content of a decoded otpauth TOTP URI.
type Provisioning struct {
	// Secret is the base32 secret, upper-cased with padding stripped.
	Secret string
	// Label is the account part of the URI path.
	Label string
	// Issuer comes from the issuer parameter, or the "Issuer:" label prefix
	// when the parameter is absent.
	Issuer string
}

// URI rebuilds the provisioning URI in canonical form.
func (p *Provisioning) URI() string {
	return BuildURI(p.Secret, p.Label, p.Issuer)
}

// ParseURI decodes a provisioning URI such as one produced by BuildURI or
// scanned from another service's enrollment QR code. Only 6-digit, 30
// second, SHA1 entries are accepted.
func ParseURI(uri string) (*Provisioning, error) {
	if !strings.HasPrefix(strings.TrimSpace(uri), "otpauth://") {
		return nil, fmt.Errorf("%w: scheme must be otpauth", ErrInvalidURI)
	}

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		// url.Error repeats the whole URI, secret included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}

	if key.Type() != "totp" {
		return nil, fmt.Errorf("%w: type %q is not totp", ErrInvalidURI, key.Type())
	}

	raw := strings.TrimSpace(key.Secret())
	if raw == "" {
		return nil, fmt.Errorf("%w: secret parameter is missing", ErrInvalidURI)
	}
	secret, err := secretcodec.Canonical(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: secret: %v", ErrInvalidURI, err)
	}

	if key.Digits() != otp.DigitsSix {
		return nil, fmt.Errorf("%w: digits=%d", ErrUnsupportedParameters, key.Digits())
	}
	if key.Period() != 30 {
		return nil, fmt.Errorf("%w: period=%d", ErrUnsupportedParameters, key.Period())
	}
	if key.Algorithm() != otp.AlgorithmSHA1 {
		return nil, fmt.Errorf("%w: algorithm=%s", ErrUnsupportedParameters, key.Algorithm())
	}

	return &Provisioning{
		Secret: secret,
		Label:  key.AccountName(),
		Issuer: key.Issuer(),
	}, nil
}
