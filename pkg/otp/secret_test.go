package otp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	first, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error: %v", err)
	}
	second, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct secrets, got %s twice", first)
	}

	for _, s := range []string{first, second} {
		if len(s) != 32 {
			t.Errorf("expected 32 characters, got %d: %s", len(s), s)
		}
		if strings.Contains(s, "=") {
			t.Errorf("secret must not be padded: %s", s)
		}
		key, err := DecodeSecret(s)
		if err != nil {
			t.Errorf("DecodeSecret(%s) error: %v", s, err)
		}
		if len(key) != SecretSize {
			t.Errorf("expected %d decoded bytes, got %d", SecretSize, len(key))
		}
	}
}

func TestSecretGeneratorDeterministicSource(t *testing.T) {
	gen := NewSecretGenerator(func(n int) ([]byte, error) {
		return make([]byte, n), nil
	})

	secret, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if want := strings.Repeat("A", 32); secret != want {
		t.Errorf("expected %s, got %s", want, secret)
	}
}

func TestSecretGeneratorRequestsSecretSize(t *testing.T) {
	var requested int
	gen := NewSecretGenerator(func(n int) ([]byte, error) {
		requested = n
		return bytes.Repeat([]byte{0xff}, n), nil
	})

	if _, err := gen.Generate(); err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if requested != SecretSize {
		t.Errorf("expected request for %d bytes, got %d", SecretSize, requested)
	}
}

func TestSecretGeneratorSourceFailure(t *testing.T) {
	tests := []struct {
		name   string
		source RandomSource
	}{
		{
			name: "source error",
			source: func(int) ([]byte, error) {
				return nil, errors.New("entropy pool exhausted")
			},
		},
		{
			name: "short read",
			source: func(n int) ([]byte, error) {
				return make([]byte, n-1), nil
			},
		},
		{
			name: "empty read",
			source: func(int) ([]byte, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := NewSecretGenerator(tt.source).Generate()
			if !errors.Is(err, ErrRandomSource) {
				t.Fatalf("expected ErrRandomSource, got %v", err)
			}
			if secret != "" {
				t.Errorf("expected no partial result, got %q", secret)
			}
		})
	}
}

func TestNilSecretGeneratorUsesCryptoRandom(t *testing.T) {
	var gen *SecretGenerator
	secret, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(secret) != 32 {
		t.Errorf("expected 32 characters, got %d", len(secret))
	}
}

func TestSecretRoundTrip(t *testing.T) {
	inputs := [][]byte{
		[]byte("12345678901234567890"),
		make([]byte, SecretSize),
		bytes.Repeat([]byte{0xff}, SecretSize),
		{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
			0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f},
	}

	for _, in := range inputs {
		encoded := EncodeSecret(in)
		out, err := DecodeSecret(encoded)
		if err != nil {
			t.Fatalf("DecodeSecret(%s) error: %v", encoded, err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("round trip mismatch: %x != %x", in, out)
		}
	}

	if got := EncodeSecret([]byte("12345678901234567890")); got != "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ" {
		t.Errorf("unexpected encoding of RFC test key: %s", got)
	}
}

func TestNormalizeSecret(t *testing.T) {
	got, err := NormalizeSecret("jbswy3dpehpk3pxp===")
	if err != nil {
		t.Fatalf("NormalizeSecret error: %v", err)
	}
	if got != "JBSWY3DPEHPK3PXP" {
		t.Errorf("expected JBSWY3DPEHPK3PXP, got %s", got)
	}

	if _, err := NormalizeSecret("MZX"); !errors.Is(err, ErrInvalidSecretEncoding) {
		t.Errorf("expected ErrInvalidSecretEncoding, got %v", err)
	}
}

func TestDecodeSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		want    []byte
		wantErr error
	}{
		{name: "rfc key", secret: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", want: []byte("12345678901234567890")},
		{name: "partial quantum", secret: "MY", want: []byte("f")},
		{name: "sixteen chars", secret: "JBSWY3DPEHPK3PXP", want: []byte{0x48, 0x65, 0x6c, 0x6c, 0x6f, 0x21, 0xde, 0xad, 0xbe, 0xef}},
		{name: "empty", secret: "", wantErr: ErrInvalidSecretEncoding},
		{name: "digit outside alphabet", secret: "ABC123", wantErr: ErrInvalidSecretEncoding},
		{name: "lowercase", secret: "jbswy3dpehpk3pxp", want: []byte{0x48, 0x65, 0x6c, 0x6c, 0x6f, 0x21, 0xde, 0xad, 0xbe, 0xef}},
		{name: "padding", secret: "MY======", want: []byte("f")},
		{name: "invalid grouping", secret: "M", wantErr: ErrInvalidSecretEncoding},
		{name: "three character group", secret: "MZX", wantErr: ErrInvalidSecretEncoding},
		{name: "six character group", secret: "MZXW6Y", wantErr: ErrInvalidSecretEncoding},
		{name: "extra trailing character", secret: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQA", wantErr: ErrInvalidSecretEncoding},
		{name: "only padding", secret: "====", wantErr: ErrInvalidSecretEncoding},
		{name: "symbols", secret: "invalid@secret!", wantErr: ErrInvalidSecretEncoding},
		{name: "line break", secret: "GEZDGNBV\nGY3TQOJQ", wantErr: ErrInvalidSecretEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSecret(tt.secret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("expected %x, got %x", tt.want, got)
			}
		})
	}
}
