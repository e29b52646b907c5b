package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/jeremyhahn/go-totp/pkg/api"
	"github.com/jeremyhahn/go-totp/pkg/provision"
)

type secretCmd struct{}

type tokenCmd struct {
	Secret string `arg:"positional,required" help:"base32 secret"`
	At     *int64 `arg:"--at" help:"unix time to generate the code for instead of now"`
}

type uriCmd struct {
	Secret string `arg:"positional,required" help:"base32 secret"`
	Label  string `arg:"-l,--label" help:"account label"`
	Issuer string `arg:"-i,--issuer" help:"issuer name (defaults to the configured issuer)"`
}

type qrCmd struct {
	Data string `arg:"positional,required" help:"text to encode"`
	Out  string `arg:"-o,--out" help:"write a PNG file instead of printing a data URL"`
}

type enrollCmd struct {
	Secret string `arg:"-s,--secret" help:"reuse an existing secret"`
	Label  string `arg:"-l,--label" help:"account label"`
	Issuer string `arg:"-i,--issuer" help:"issuer name"`
	Out    string `arg:"-o,--out" help:"also write the QR code to this PNG file"`
}

type importCmd struct {
	URI   string `arg:"positional" help:"otpauth:// provisioning URI or PNG data URL"`
	Image string `arg:"--image" help:"PNG file holding a provisioning QR code"`
}

type verifyCmd struct {
	Secret string `arg:"positional,required" help:"base32 secret"`
	Code   string `arg:"positional,required" help:"6-digit code"`
}

type args struct {
	Config  string `arg:"-c,--config,env:TOTP_CONFIG" help:"config file"`
	Verbose bool   `arg:"-v,--verbose" help:"debug logging"`

	Secret *secretCmd `arg:"subcommand:secret" help:"generate a new secret"`
	Token  *tokenCmd  `arg:"subcommand:token" help:"print the current code for a secret"`
	URI    *uriCmd    `arg:"subcommand:uri" help:"print the provisioning URI"`
	QR     *qrCmd     `arg:"subcommand:qr" help:"render text as a QR code"`
	Enroll *enrollCmd `arg:"subcommand:enroll" help:"create an enrollment"`
	Import *importCmd `arg:"subcommand:import" help:"decode a provisioning URI"`
	Verify *verifyCmd `arg:"subcommand:verify" help:"check a code for the current time step"`
}

func (args) Description() string {
	return "totp issues TOTP secrets and codes and renders provisioning QR codes"
}

var (
	errNoCommand   = errors.New("no command given")
	errImportInput = errors.New("import needs exactly one of a URI or --image")
)

// fixedClock pins token generation to a user supplied instant.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing command")
	}

	level := slog.LevelInfo
	if a.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	s, err := loadSettings(a.Config)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), &a, s, logger, os.Stdout); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *args, s *settings, logger *slog.Logger, out io.Writer) error {
	cfg := api.Config{
		Logger:        logger,
		QR:            s.qrOptions(),
		DefaultIssuer: s.Issuer,
	}
	if a.Token != nil && a.Token.At != nil {
		cfg.Clock = fixedClock(time.Unix(*a.Token.At, 0))
	}

	svc, err := api.NewService(cfg)
	if err != nil {
		return err
	}

	switch {
	case a.Secret != nil:
		secret, err := svc.GenerateSecret()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, secret)
		return err

	case a.Token != nil:
		tok, err := svc.Token(a.Token.Secret)
		if err != nil {
			return err
		}
		logger.Debug("token generated", "expires_in", tok.ExpiresIn)
		_, err = fmt.Fprintln(out, tok.Code)
		return err

	case a.URI != nil:
		issuer := a.URI.Issuer
		if issuer == "" {
			issuer = s.Issuer
		}
		_, err := fmt.Fprintln(out, svc.GenerateTOTPURI(a.URI.Secret, a.URI.Label, issuer))
		return err

	case a.QR != nil:
		if a.QR.Out != "" {
			return writePNG(svc, a.QR.Data, a.QR.Out, logger)
		}
		dataURL, err := svc.GenerateQRCodeBase64(a.QR.Data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, dataURL)
		return err

	case a.Enroll != nil:
		e, err := svc.Enroll(ctx, api.EnrollOptions{
			Secret: a.Enroll.Secret,
			Label:  a.Enroll.Label,
			Issuer: a.Enroll.Issuer,
		})
		if err != nil {
			return err
		}
		if a.Enroll.Out != "" {
			if err := writePNG(svc, e.URI, a.Enroll.Out, logger); err != nil {
				return err
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(e)

	case a.Import != nil:
		p, err := importProvisioning(svc, a.Import)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)

	case a.Verify != nil:
		if err := svc.Verify(ctx, a.Verify.Secret, a.Verify.Code); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "ok")
		return err
	}

	return errNoCommand
}

func importProvisioning(svc *api.Service, c *importCmd) (*provision.Provisioning, error) {
	switch {
	case c.Image != "" && c.URI == "":
		data, err := os.ReadFile(c.Image)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c.Image, err)
		}
		return svc.ImportQRCode(data)
	case c.Image == "" && c.URI != "":
		return svc.Import(c.URI)
	}
	return nil, errImportInput
}

func writePNG(svc *api.Service, data, path string, logger *slog.Logger) error {
	img, err := svc.GenerateQRCodePNG(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug("qr code written", "path", path, "bytes", len(img))
	return nil
}
