package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/http/response"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/pkg/logger"
)

type scanRequest struct {
	// Frame is a base64 PNG data URL of one camera frame.
	Frame string `json:"frame,omitempty"`
	// Text is a payload already decoded by a client-side scanner.
	Text string `json:"text,omitempty"`
}

type scanResponse struct {
	Found   bool                  `json:"found"`
	Visitor *domain.VisitorRecord `json:"visitor,omitempty"`
}

// ScanFrame inspects one checkpoint frame (or a client-decoded payload) for
// a visitor QR code. A frame with no code is a normal outcome, not an
// error; only a malformed payload is reported as a scan error.
func (h *Handlers) ScanFrame(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	payload := req.Text
	if payload == "" {
		if req.Frame == "" {
			response.BadRequest(w, "A frame or decoded text is required")
			return
		}

		png, err := qr.ParseDataURL(req.Frame)
		if err != nil {
			response.BadRequest(w, "Frame must be a base64 PNG data URL")
			return
		}
		img, err := qr.DecodePNG(png)
		if err != nil {
			response.BadRequest(w, "Frame is not a valid PNG image")
			return
		}

		payload, err = h.decoder.DecodeFrame(img)
		if errors.Is(err, qr.ErrNoCode) {
			writeJSON(w, http.StatusOK, scanResponse{Found: false})
			return
		}
		if err != nil {
			// A garbled frame reads the same as no code.
			logger.DebugContext(r.Context(), "Frame decode fault", "error", err)
			writeJSON(w, http.StatusOK, scanResponse{Found: false})
			return
		}
	}

	rec, err := domain.ParseQRPayload([]byte(payload))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "QR code scanned", "visitor_id", rec.ID)
	writeJSON(w, http.StatusOK, scanResponse{Found: true, Visitor: rec})
}

type checkInRequest struct {
	Visitor             *domain.VisitorRecord `json:"visitor"`
	IdentificationNotes string                `json:"identificationNotes"`
	LocationNotes       string                `json:"locationNotes"`
}

// CreateCheckIn finalizes a scanned visitor: builds the check-in event and
// notifies the host through exactly one collaborator. A failed dispatch
// keeps the record in hand; re-POSTing the identical payload is the retry.
func (h *Handlers) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if req.Visitor == nil {
		response.BadRequest(w, "Visitor record is required")
		return
	}

	result, err := h.checkins.Finalize(r.Context(), *req.Visitor, req.IdentificationNotes, req.LocationNotes)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "Visitor checked in",
		"visitor_id", req.Visitor.ID,
		"host_email", req.Visitor.HostEmail,
		"channel", result.Delivery.Channel,
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"checkedInAt": result.Event.CheckedInAt,
		"delivery":    result.Delivery,
	})
}
