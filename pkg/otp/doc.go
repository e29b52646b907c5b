// Package otp implements TOTP (RFC 6238) secret generation, code derivation
// and verification with the parameters every authenticator app supports:
// HMAC-SHA1, 6 digits and a 30 second time step.
//
// # Secret Generation
//
// Generate a cryptographically random secret:
//
//	secret, err := otp.GenerateSecret()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// 32 base32 characters, no padding
//
// A SecretGenerator accepts any RandomSource, which makes deterministic
// tests possible:
//
//	gen := otp.NewSecretGenerator(func(n int) ([]byte, error) {
//	    return bytes.Repeat([]byte{0x42}, n), nil
//	})
//
// # Code Generation
//
// The time is always supplied by the caller:
//
//	code, err := otp.GenerateToken(secret, time.Now())
//
// # Verification
//
// An Authenticator validates codes against the current time step only.
// There is no skew window; a code from the previous step is rejected.
//
//	auth, err := otp.NewAuthenticator(otp.Config{
//	    Secret:      secret,
//	    Issuer:      "MyApp",
//	    AccountName: "user@example.com",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := auth.Authenticate(ctx, "123456"); err != nil {
//	    log.Printf("Authentication failed: %v", err)
//	}
//
// # Thread Safety
//
// All functions and the Authenticator type are safe for concurrent use.
package otp
