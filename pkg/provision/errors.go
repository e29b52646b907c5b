package provision

import "errors"

var (
	// ErrQREncoding indicates the input cannot be represented as a QR symbol.
	ErrQREncoding = errors.New("provision: qr encoding failed")

	// ErrImageEncoding indicates the QR raster could not be encoded as PNG.
	ErrImageEncoding = errors.New("provision: image encoding failed")

	// ErrQRDecoding indicates an image is not a PNG data URL or holds no
	// readable QR symbol.
	ErrQRDecoding = errors.New("provision: qr decoding failed")

	// ErrInvalidOptions indicates the rendering options are invalid.
	ErrInvalidOptions = errors.New("provision: invalid options")

	// ErrInvalidURI indicates a provisioning URI is malformed or not a TOTP URI.
	ErrInvalidURI = errors.New("provision: invalid provisioning uri")

	// ErrUnsupportedParameters indicates a provisioning URI requests digits,
	// period or algorithm other than 6, 30 and SHA1.
	ErrUnsupportedParameters = errors.New("provision: unsupported otp parameters")
)
