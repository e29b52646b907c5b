package provision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// DecodeQRCode reads the text held by a QR code in a PNG data URL, the
// inverse of RenderQRCode.
func DecodeQRCode(dataURL string) (string, error) {
	payload, ok := strings.CutPrefix(strings.TrimSpace(dataURL), DataURLPrefix)
	if !ok {
		return "", fmt.Errorf("%w: expected a %s data url", ErrQRDecoding, strings.TrimSuffix(DataURLPrefix, ","))
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrQRDecoding, err)
	}
	return DecodeQRCodePNG(raw)
}

// DecodeQRCodePNG reads the text held by a QR code in a PNG image.
func DecodeQRCodePNG(data []byte) (string, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: png: %v", ErrQRDecoding, err)
	}
	return DecodeQRCodeImage(img)
}

// DecodeQRCodeImage locates and reads a QR code in img. Images rendered
// without a quiet zone are retried as a pure barcode.
func DecodeQRCodeImage(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrQRDecoding, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER:    true,
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		hints[gozxing.DecodeHintType_PURE_BARCODE] = true
		var perr error
		result, perr = qrcode.NewQRCodeReader().Decode(bmp, hints)
		if perr != nil {
			return "", fmt.Errorf("%w: %v", ErrQRDecoding, err)
		}
	}
	return result.GetText(), nil
}
