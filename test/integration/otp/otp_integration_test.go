//go:build integration

package otp_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeremyhahn/go-totp/pkg/api"
	"github.com/jeremyhahn/go-totp/pkg/otp"
	"github.com/jeremyhahn/go-totp/pkg/provision"
)

func TestIntegration_Enrollment_EndToEnd(t *testing.T) {
	// Complete workflow: secret generation → provisioning URI → QR → import → code validation
	svc, err := api.NewService(api.Config{})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	e, err := svc.Enroll(context.Background(), api.EnrollOptions{
		Label:  "test@example.com",
		Issuer: "IntegrationTest",
	})
	if err != nil {
		t.Fatalf("Failed to enroll: %v", err)
	}

	// The URI must be readable by pquerna/otp the same way an authenticator app reads it
	key, err := pqotp.NewKeyFromURL(e.URI)
	if err != nil {
		t.Fatalf("pquerna/otp rejected URI %s: %v", e.URI, err)
	}
	if key.Secret() != e.Secret {
		t.Errorf("Expected secret %s, got %s", e.Secret, key.Secret())
	}
	if key.AccountName() != "test@example.com" {
		t.Errorf("Expected account test@example.com, got %s", key.AccountName())
	}
	if key.Issuer() != "IntegrationTest" {
		t.Errorf("Expected issuer IntegrationTest, got %s", key.Issuer())
	}

	// The QR payload is a grayscale PNG
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(e.QRCodeDataURL, provision.DataURLPrefix))
	if err != nil {
		t.Fatalf("Invalid base64 payload: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("Expected grayscale image, got %T", img)
	}

	// Import round trip
	p, err := svc.Import(e.URI)
	if err != nil {
		t.Fatalf("Failed to import URI: %v", err)
	}
	if p.Secret != e.Secret || p.Label != e.Label || p.Issuer != e.Issuer {
		t.Errorf("Import mismatch: %+v vs %+v", p, e)
	}

	// Codes from the service validate with pquerna/otp and vice versa
	code, err := svc.GenerateToken(e.Secret)
	if err != nil {
		t.Fatalf("Failed to generate code: %v", err)
	}
	if !totp.Validate(code, e.Secret) {
		// Crossed a step boundary; regenerate once
		code, _ = svc.GenerateToken(e.Secret)
		if !totp.Validate(code, e.Secret) {
			t.Errorf("pquerna/otp rejected code %s", code)
		}
	}
}

func TestIntegration_MatchesReferenceImplementation(t *testing.T) {
	opts := totp.ValidateOpts{
		Period:    otp.Period,
		Digits:    pqotp.DigitsSix,
		Algorithm: pqotp.AlgorithmSHA1,
	}

	for i := 0; i < 100; i++ {
		secret, err := otp.GenerateSecret()
		if err != nil {
			t.Fatalf("Failed to generate secret: %v", err)
		}
		at := time.Unix(int64(i)*104729, 0)

		got, err := otp.GenerateToken(secret, at)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		want, err := totp.GenerateCodeCustom(secret, at, opts)
		if err != nil {
			t.Fatalf("GenerateCodeCustom: %v", err)
		}
		if got != want {
			t.Errorf("secret %s at %d: expected %s, got %s", secret, at.Unix(), want, got)
		}
	}
}

func TestIntegration_MultiUser(t *testing.T) {
	const numUsers = 10
	svc, err := api.NewService(api.Config{})
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	secrets := make(map[string]string, numUsers)
	for i := 0; i < numUsers; i++ {
		e, err := svc.Enroll(context.Background(), api.EnrollOptions{Label: fmt.Sprintf("user%d@example.com", i)})
		if err != nil {
			t.Fatalf("Failed to enroll user %d: %v", i, err)
		}
		if _, dup := secrets[e.Secret]; dup {
			t.Fatalf("Duplicate secret generated for user %d", i)
		}
		secrets[e.Secret] = e.Label
	}

	// Each user's code must not validate for another user (with overwhelming probability)
	at := time.Unix(1_700_000_000, 0)
	for secret, label := range secrets {
		code, err := otp.GenerateToken(secret, at)
		if err != nil {
			t.Fatalf("%s: %v", label, err)
		}
		matches := 0
		for other := range secrets {
			c, _ := otp.GenerateToken(other, at)
			if c == code {
				matches++
			}
		}
		if matches > 1 {
			t.Logf("%s: code %s collides with another user (1 in 10^6 chance)", label, code)
		}
	}
}

func TestIntegration_ConcurrentAuthentication(t *testing.T) {
	secret, err := otp.GenerateSecret()
	if err != nil {
		t.Fatalf("Failed to generate secret: %v", err)
	}

	clock := fixedClock(time.Unix(1_700_000_000, 0))
	auth, err := otp.NewAuthenticator(otp.Config{
		Secret:      secret,
		Issuer:      "ConcurrentTest",
		AccountName: "concurrent@example.com",
		Clock:       clock,
	})
	if err != nil {
		t.Fatalf("Failed to create authenticator: %v", err)
	}

	code, err := auth.Generate()
	if err != nil {
		t.Fatalf("Failed to generate code: %v", err)
	}

	const numGoroutines = 50
	var wg sync.WaitGroup
	var successCount, failCount atomic.Int32

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := auth.Authenticate(context.Background(), code); err != nil {
				failCount.Add(1)
			} else {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// All validations should succeed (TOTP is stateless)
	if successCount.Load() != numGoroutines {
		t.Errorf("Expected %d successes, got %d (failures: %d)",
			numGoroutines, successCount.Load(), failCount.Load())
	}
}

func TestIntegration_ConcurrentQRRendering(t *testing.T) {
	const numGoroutines = 20
	var wg sync.WaitGroup
	results := make([]string, numGoroutines)
	errs := make([]error, numGoroutines)

	uri := provision.BuildURI("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "alice", "Concurrent")
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = provision.RenderQRCode(uri)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("goroutine %d produced a different image", i)
		}
	}
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }
