package scan

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/pkg/logger"
)

// FrameSource is the camera device collaborator. The device is exclusively
// owned between Open and Close; Close must stop the underlying stream.
type FrameSource interface {
	Open(ctx context.Context) error
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}

// FrameDecoder extracts QR payload text from a single frame.
type FrameDecoder interface {
	DecodeFrame(img image.Image) (string, error)
}

const (
	// ~10 frames per second, matching typical camera scanner rates.
	defaultInterval = 100 * time.Millisecond
	// Bounded detection window per activation.
	defaultWindow = 2 * time.Minute
)

// Scanner samples camera frames looking for a decodable visitor QR code.
// Single-shot: one successful scan per activation.
type Scanner struct {
	source  FrameSource
	decoder FrameDecoder

	Interval time.Duration
	Window   time.Duration
}

func New(source FrameSource, decoder FrameDecoder) *Scanner {
	return &Scanner{
		source:   source,
		decoder:  decoder,
		Interval: defaultInterval,
		Window:   defaultWindow,
	}
}

// Run acquires the frame source, samples frames until the first valid
// decode, and yields the visitor record. The source is released on every
// exit: success, error, or cancellation. Frames with no code in them are
// skipped silently; only a terminal decode failure (unparseable JSON or
// missing required fields) is reported, as a ScanError.
func (s *Scanner) Run(ctx context.Context) (*domain.VisitorRecord, error) {
	if err := s.source.Open(ctx); err != nil {
		return nil, &domain.PermissionError{Reason: err.Error()}
	}
	defer func() {
		if err := s.source.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to release camera source", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.Window)
	defer cancel()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			img, err := s.source.Frame(ctx)
			if err != nil {
				return nil, err
			}

			text, err := s.decoder.DecodeFrame(img)
			if errors.Is(err, qr.ErrNoCode) {
				continue
			}
			if err != nil {
				// A garbled frame reads the same as no code: not terminal.
				logger.DebugContext(ctx, "Frame decode fault", "error", err)
				continue
			}

			rec, err := domain.ParseQRPayload([]byte(text))
			if err != nil {
				return nil, err
			}
			return rec, nil
		}
	}
}
