// Package provision builds otpauth:// provisioning URIs and renders them
// (or any other text) as QR codes for authenticator app enrollment.
//
// # Provisioning URI
//
// The URI follows the Key Uri Format understood by Google Authenticator,
// Authy and most other apps:
//
//	uri := provision.BuildURI("JBSWY3DPEHPK3PXP", "alice@example.com", "MyApp")
//	// otpauth://totp/alice%40example.com?secret=JBSWY3DPEHPK3PXP&issuer=MyApp
//
// Label and issuer are percent-encoded; the base32 secret is not.
//
// # QR Codes
//
// RenderQRCode returns an inline data URL that can be placed directly in an
// <img> tag:
//
//	dataURL, err := provision.RenderQRCode(uri)
//	if errors.Is(err, provision.ErrQREncoding) {
//	    // input too long for a QR symbol
//	}
//
// The image is an 8-bit grayscale PNG with 8 pixel modules and a four module
// quiet zone. Use NewEncoder to change the error-correction level or sizing.
//
// # Importing
//
// ParseURI is the inverse of BuildURI and accepts URIs produced by other
// issuers, provided they use the default SHA1, 6 digit, 30 second parameters.
package provision
