package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoCode means the frame contained no decodable QR pattern. This is the
// normal case for most camera frames and is never surfaced as a scan error.
var ErrNoCode = errors.New("no qr code found in frame")

// Decoder extracts QR payload text from image frames.
type Decoder struct {
	reader gozxing.Reader
}

func NewDecoder() *Decoder {
	return &Decoder{reader: zxqrcode.NewQRCodeReader()}
}

// DecodeFrame scans one frame for a QR pattern and returns its text
// payload. Returns ErrNoCode when the frame simply has no code in it.
func (d *Decoder) DecodeFrame(img image.Image) (string, error) {
	src := gozxing.NewLuminanceSourceFromImage(img)
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
	if err != nil {
		return "", fmt.Errorf("binarize frame: %w", err)
	}

	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		if _, ok := err.(gozxing.NotFoundException); ok {
			return "", ErrNoCode
		}
		return "", fmt.Errorf("decode qr: %w", err)
	}
	return result.GetText(), nil
}

// DecodePNG parses PNG bytes into a frame image.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png frame: %w", err)
	}
	return img, nil
}
