package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-totp/pkg/otp"
	"github.com/jeremyhahn/go-totp/pkg/provision"
)

// DefaultIssuer is used by Enroll when no issuer is given.
const DefaultIssuer = "TOTP Store"

var (
	// ErrNilService indicates a nil service was used.
	ErrNilService = errors.New("api: service is nil")
	// ErrMissingSecret indicates an operation requires a secret but none was provided.
	ErrMissingSecret = errors.New("api: secret required")
	// ErrMissingURI indicates an import was attempted without a URI.
	ErrMissingURI = errors.New("api: uri required")
)

// Config contains the collaborators used by the Service. Every field is
// optional.
type Config struct {
	// Random is the entropy source for new secrets.
	// Default: otp.CryptoRandom
	Random otp.RandomSource
	// Clock supplies the current time for token generation.
	// Default: otp.SystemClock
	Clock otp.Clock
	// Logger receives operational events. Secrets and codes are never logged.
	// Default: a logger that discards everything
	Logger *slog.Logger
	// QR controls QR rendering.
	QR provision.Options
	// DefaultIssuer is used by Enroll when the request has no issuer.
	// Default: DefaultIssuer
	DefaultIssuer string
}

// Service exposes the enrollment operations under stable names so that
// bindings (CLI, FFI, WebAssembly) can wrap them one to one.
// It is safe for concurrent use.
type Service struct {
	secrets *otp.SecretGenerator
	clock   otp.Clock
	logger  *slog.Logger
	qr      *provision.Encoder
	issuer  string
}

// NewService builds a Service from the supplied configuration.
func NewService(cfg Config) (*Service, error) {
	qr, err := provision.NewEncoder(cfg.QR)
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	if cfg.Clock == nil {
		cfg.Clock = otp.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if strings.TrimSpace(cfg.DefaultIssuer) == "" {
		cfg.DefaultIssuer = DefaultIssuer
	}

	return &Service{
		secrets: otp.NewSecretGenerator(cfg.Random),
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		qr:      qr,
		issuer:  cfg.DefaultIssuer,
	}, nil
}

// GenerateSecret returns a new random base32 secret.
func (s *Service) GenerateSecret() (string, error) {
	if s == nil {
		return "", ErrNilService
	}
	secret, err := s.secrets.Generate()
	if err != nil {
		s.logger.Error("failed to generate secret", "error", err)
		return "", err
	}
	return secret, nil
}

// GenerateToken returns the current 6-digit code for secret.
func (s *Service) GenerateToken(secret string) (string, error) {
	tok, err := s.Token(secret)
	if err != nil {
		return "", err
	}
	return tok.Code, nil
}

// Token returns the current code together with its remaining lifetime.
func (s *Service) Token(secret string) (*otp.Token, error) {
	if s == nil {
		return nil, ErrNilService
	}
	if secret == "" {
		return nil, ErrMissingSecret
	}
	tok, err := otp.NewToken(secret, s.clock.Now())
	if err != nil {
		s.logger.Warn("failed to generate token", "error", err)
		return nil, err
	}
	return tok, nil
}

// GenerateQRCodeBase64 renders data as a QR code PNG data URL.
func (s *Service) GenerateQRCodeBase64(data string) (string, error) {
	if s == nil {
		return "", ErrNilService
	}
	dataURL, err := s.qr.RenderDataURL(data)
	if err != nil {
		s.logger.Warn("failed to render qr code", "input_len", len(data), "error", err)
		return "", err
	}
	return dataURL, nil
}

// GenerateQRCodePNG renders data as raw QR code PNG bytes.
func (s *Service) GenerateQRCodePNG(data string) ([]byte, error) {
	if s == nil {
		return nil, ErrNilService
	}
	img, err := s.qr.RenderPNG(data)
	if err != nil {
		s.logger.Warn("failed to render qr code", "input_len", len(data), "error", err)
		return nil, err
	}
	return img, nil
}

// GenerateTOTPURI builds the otpauth provisioning URI.
func (s *Service) GenerateTOTPURI(secret, label, issuer string) string {
	return provision.BuildURI(secret, label, issuer)
}

// EnrollOptions describes a new enrollment. Empty fields are filled in.
type EnrollOptions struct {
	// Secret reuses an existing secret instead of generating one.
	Secret string
	// Label is the account shown in the authenticator app.
	// Default: "Account <id>"
	Label string
	// Issuer is the service name shown in the authenticator app.
	// Default: Config.DefaultIssuer
	Issuer string
}

// Enrollment is everything a client needs to present a new TOTP entry.
type Enrollment struct {
	ID            string
	Secret        string
	Issuer        string
	Label         string
	URI           string
	QRCodeDataURL string
	CreatedAt     time.Time
}

// Enroll creates (or reuses) a secret and produces the provisioning URI
// and QR code for it. Nothing is stored.
func (s *Service) Enroll(ctx context.Context, opts EnrollOptions) (*Enrollment, error) {
	if s == nil {
		return nil, ErrNilService
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	secret := strings.TrimSpace(opts.Secret)
	if secret == "" {
		generated, err := s.secrets.Generate()
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to generate enrollment secret", "enrollment_id", id, "error", err)
			return nil, err
		}
		secret = generated
	} else {
		canonical, err := otp.NormalizeSecret(secret)
		if err != nil {
			s.logger.WarnContext(ctx, "rejected enrollment secret", "enrollment_id", id, "error", err)
			return nil, err
		}
		secret = canonical
	}

	issuer := strings.TrimSpace(opts.Issuer)
	if issuer == "" {
		issuer = s.issuer
	}
	label := strings.TrimSpace(opts.Label)
	if label == "" {
		label = "Account " + id[:8]
	}

	uri := provision.BuildURI(secret, label, issuer)
	dataURL, err := s.qr.RenderDataURL(uri)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render enrollment qr code", "enrollment_id", id, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "totp enrollment created", "enrollment_id", id, "issuer", issuer)

	return &Enrollment{
		ID:            id,
		Secret:        secret,
		Issuer:        issuer,
		Label:         label,
		URI:           uri,
		QRCodeDataURL: dataURL,
		CreatedAt:     s.clock.Now(),
	}, nil
}

// Import decodes a provisioning URI obtained from another issuer. A PNG
// data URL is decoded as a QR code first, so an exported enrollment image
// can be passed as is.
func (s *Service) Import(uri string) (*provision.Provisioning, error) {
	if s == nil {
		return nil, ErrNilService
	}
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, ErrMissingURI
	}
	if strings.HasPrefix(uri, provision.DataURLPrefix) {
		text, err := provision.DecodeQRCode(uri)
		if err != nil {
			s.logger.Warn("failed to decode provisioning qr code", "error", err)
			return nil, err
		}
		uri = text
	}
	return s.importURI(uri)
}

// ImportQRCode decodes a PNG image of a provisioning QR code and imports
// the URI it carries.
func (s *Service) ImportQRCode(png []byte) (*provision.Provisioning, error) {
	if s == nil {
		return nil, ErrNilService
	}
	text, err := provision.DecodeQRCodePNG(png)
	if err != nil {
		s.logger.Warn("failed to decode provisioning qr code", "error", err)
		return nil, err
	}
	return s.importURI(text)
}

func (s *Service) importURI(uri string) (*provision.Provisioning, error) {
	p, err := provision.ParseURI(uri)
	if err != nil {
		s.logger.Warn("failed to import provisioning uri", "error", err)
		return nil, err
	}
	return p, nil
}

// Verify checks code against secret for the current time step.
func (s *Service) Verify(ctx context.Context, secret, code string) error {
	if s == nil {
		return ErrNilService
	}
	if secret == "" {
		return ErrMissingSecret
	}
	auth, err := otp.NewAuthenticator(otp.Config{Secret: secret, Clock: s.clock})
	if err != nil {
		return err
	}
	return auth.Authenticate(ctx, code)
}
