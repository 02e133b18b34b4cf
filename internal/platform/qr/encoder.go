package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/frontdesk/gatepass/internal/domain"
)

const pngDataURLPrefix = "data:image/png;base64,"

// Encoder renders visitor records into scannable PNG images. Deterministic
// given identical input and configuration.
type Encoder struct {
	size    int
	level   qrcode.RecoveryLevel
	fore    color.Color
	back    color.Color
}

func NewEncoder(size int, recoveryLevel string) *Encoder {
	return &Encoder{
		size:  size,
		level: parseRecoveryLevel(recoveryLevel),
		fore:  color.Black,
		back:  color.White,
	}
}

func parseRecoveryLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return qrcode.Low
	case "M":
		return qrcode.Medium
	case "Q":
		return qrcode.High
	default:
		return qrcode.Highest
	}
}

// Encode serializes the record to JSON and renders it as a PNG. An
// oversized payload or encoder fault surfaces as an error; no retry is
// automatic.
func (e *Encoder) Encode(rec *domain.VisitorRecord) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal qr payload: %w", err)
	}

	q, err := qrcode.New(string(payload), e.level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.ForegroundColor = e.fore
	q.BackgroundColor = e.back

	png, err := q.PNG(e.size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

// DataURL wraps PNG bytes as a base64 PNG data URL, the transport format
// used in email bodies and the qr-code-send endpoint.
func DataURL(png []byte) string {
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// ParseDataURL extracts PNG bytes from a base64 PNG data URL.
func ParseDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, pngDataURLPrefix) {
		return nil, fmt.Errorf("not a base64 PNG data URL")
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, pngDataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return png, nil
}

// Base64Content returns the raw base64 part of a data URL, the form the
// email attachment API expects.
func Base64Content(dataURL string) string {
	if i := strings.IndexByte(dataURL, ','); i >= 0 {
		return dataURL[i+1:]
	}
	return dataURL
}
