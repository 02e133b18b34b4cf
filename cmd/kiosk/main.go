package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/internal/scan"
	"github.com/frontdesk/gatepass/pkg/logger"
)

// Checkpoint kiosk: consumes camera frames dropped into a spool directory
// by an external capture tool, runs the single-shot scanner, and posts the
// check-in to the API. One visitor per scanner activation.
func main() {
	apiURL := flag.String("api", "http://localhost:8080", "gatepass API base URL")
	framesDir := flag.String("frames", "/var/spool/gatepass/frames", "camera frame spool directory")
	location := flag.String("location", "", "location note attached to every check-in")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	decoder := qr.NewDecoder()
	client := &http.Client{Timeout: 15 * time.Second}

	logger.Info("Kiosk started", "api", *apiURL, "frames", *framesDir)

	for ctx.Err() == nil {
		source := newDirFrameSource(*framesDir)
		scanner := scan.New(source, decoder)

		rec, err := scanner.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			// Scan errors are per-activation: report and rearm.
			logger.Error("Scan failed", "error", err)
			continue
		}

		logger.Info("Visitor scanned", "visitor_id", rec.ID, "visitor_name", rec.VisitorName)

		if err := postCheckIn(ctx, client, *apiURL, rec, *location); err != nil {
			logger.Error("Check-in dispatch failed", "visitor_id", rec.ID, "error", err)
			continue
		}

		logger.Info("Check-in complete", "visitor_id", rec.ID)
	}

	logger.Info("Kiosk stopped")
}

func postCheckIn(ctx context.Context, client *http.Client, apiURL string, rec *domain.VisitorRecord, location string) error {
	body, err := json.Marshal(map[string]interface{}{
		"visitor":       rec,
		"locationNotes": location,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/v1/checkins", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("check-in rejected with status %d", res.StatusCode)
	}
	return nil
}

// dirFrameSource treats a spool directory as the camera device: each PNG
// file is one frame, consumed oldest-first and removed after reading.
type dirFrameSource struct {
	dir string
}

func newDirFrameSource(dir string) *dirFrameSource {
	return &dirFrameSource{dir: dir}
}

func (s *dirFrameSource) Open(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("camera spool unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("camera spool %s is not a directory", s.dir)
	}
	return nil
}

// Frame blocks until a frame file appears, like a camera read would.
func (s *dirFrameSource) Frame(ctx context.Context) (image.Image, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, ok, err := s.nextFramePath()
		if err != nil {
			return nil, err
		}
		if !ok {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(50 * time.Millisecond):
				continue
			}
		}

		data, err := os.ReadFile(path)
		// Consume the frame regardless of its validity.
		_ = os.Remove(path)
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", path, err)
		}
		return qr.DecodePNG(data)
	}
}

func (s *dirFrameSource) nextFramePath() (string, bool, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false, fmt.Errorf("list frames: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".png" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sort.Strings(names)
	return filepath.Join(s.dir, names[0]), true, nil
}

func (s *dirFrameSource) Close() error { return nil }
