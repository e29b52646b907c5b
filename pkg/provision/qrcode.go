package provision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DataURLPrefix precedes the base64 PNG payload returned by RenderQRCode.
const DataURLPrefix = "data:image/png;base64,"

const (
	// DefaultModuleSize is the edge length of one QR module in pixels.
	DefaultModuleSize = 8
	// DefaultQuietZone is the width of the white border in modules.
	DefaultQuietZone = 4
)

// Level is a QR error-correction level.
type Level int

const (
	// LevelDefault selects LevelM.
	LevelDefault Level = iota
	// LevelL recovers about 7% of the symbol.
	LevelL
	// LevelM recovers about 15% of the symbol.
	LevelM
	// LevelQ recovers about 25% of the symbol.
	LevelQ
	// LevelH recovers about 30% of the symbol.
	LevelH
)

var qrLevels = map[Level]qr.ErrorCorrectionLevel{
	LevelL: qr.L,
	LevelM: qr.M,
	LevelQ: qr.Q,
	LevelH: qr.H,
}

// ParseLevel converts "L", "M", "Q" or "H" (any case) to a Level.
// The empty string yields LevelDefault.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return LevelDefault, nil
	case "L":
		return LevelL, nil
	case "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return LevelDefault, fmt.Errorf("%w: unknown error correction level %q", ErrInvalidOptions, s)
}

// Options controls QR rendering. The zero value selects error-correction
// level M, 8 pixel modules and a 4 module quiet zone.
type Options struct {
	// Level is the QR error-correction level. Default: LevelM
	Level Level
	// ModuleSize is the size of one module in pixels. Default: 8
	ModuleSize int
	// QuietZone is the border width in modules. Default: 4
	QuietZone int
	// NoQuietZone disables the border regardless of QuietZone.
	NoQuietZone bool
}

func (o Options) validate() error {
	if o.Level < LevelDefault || o.Level > LevelH {
		return fmt.Errorf("%w: unknown error correction level %d", ErrInvalidOptions, o.Level)
	}
	if o.ModuleSize < 0 {
		return fmt.Errorf("%w: module size must not be negative", ErrInvalidOptions)
	}
	if o.QuietZone < 0 {
		return fmt.Errorf("%w: quiet zone must not be negative", ErrInvalidOptions)
	}
	return nil
}

// Encoder renders arbitrary text as QR code PNG images.
// It is safe for concurrent use.
type Encoder struct {
	opts Options
}

// NewEncoder creates an Encoder. The options are validated and defaults
// applied for zero fields.
func NewEncoder(opts Options) (*Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Level == LevelDefault {
		opts.Level = LevelM
	}
	if opts.ModuleSize == 0 {
		opts.ModuleSize = DefaultModuleSize
	}
	if opts.QuietZone == 0 {
		opts.QuietZone = DefaultQuietZone
	}
	if opts.NoQuietZone {
		opts.QuietZone = 0
	}
	return &Encoder{opts: opts}, nil
}

var defaultEncoder = &Encoder{opts: Options{
	Level:      LevelM,
	ModuleSize: DefaultModuleSize,
	QuietZone:  DefaultQuietZone,
}}

// RenderQRCode renders text with the default options and returns a
// data:image/png;base64 URL.
func RenderQRCode(text string) (string, error) {
	return defaultEncoder.RenderDataURL(text)
}

// RenderDataURL renders text and wraps the PNG as a base64 data URL.
func (e *Encoder) RenderDataURL(text string) (string, error) {
	data, err := e.RenderPNG(text)
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// RenderPNG renders text as an 8-bit grayscale PNG.
func (e *Encoder) RenderPNG(text string) ([]byte, error) {
	img, err := e.Render(text)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEncoding, err)
	}
	return buf.Bytes(), nil
}

// Render builds the QR symbol for text and rasterizes it, quiet zone
// included, into a grayscale image.
func (e *Encoder) Render(text string) (*image.Gray, error) {
	if e == nil {
		e = defaultEncoder
	}

	code, err := qr.Encode(text, qrLevels[e.opts.Level], qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQREncoding, err)
	}

	modules := code.Bounds().Dx()
	side := modules * e.opts.ModuleSize
	scaled, err := barcode.Scale(code, side, side)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEncoding, err)
	}

	border := e.opts.QuietZone * e.opts.ModuleSize
	full := side + 2*border
	img := image.NewGray(image.Rect(0, 0, full, full))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(border, border, border+side, border+side), scaled, scaled.Bounds().Min, draw.Src)

	return img, nil
}
