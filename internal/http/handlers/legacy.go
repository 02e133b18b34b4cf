package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/pkg/logger"
)

type sendQRCodeRequest struct {
	VisitorData   *domain.VisitorRecord `json:"visitorData"`
	QRCodeDataURL string                `json:"qrCodeDataUrl"`
}

// SendQRCode emails an already-rendered QR image to the visitor. Kept on
// the original wire contract: the image travels as a base64 PNG data URL
// and a suppressed duplicate is reported as success with duplicate:true.
func (h *Handlers) SendQRCode(w http.ResponseWriter, r *http.Request) {
	var req sendQRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON format"})
		return
	}

	if req.VisitorData == nil || req.VisitorData.ID == "" || req.VisitorData.VisitorEmail == "" || req.QRCodeDataURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Visitor data and QR code are required"})
		return
	}

	if !strings.HasPrefix(req.QRCodeDataURL, "data:image/png;base64,") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid QR code format"})
		return
	}

	result, err := h.invitations.Send(r.Context(), req.VisitorData, req.QRCodeDataURL)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Email service not configured"})
			return
		}
		logger.ErrorContext(r.Context(), "Failed to send QR code email",
			"visitor_email", req.VisitorData.VisitorEmail, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send QR code email",
			"details": err.Error(),
		})
		return
	}

	if result.Duplicate {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"message":   "Email already sent recently",
			"duplicate": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"messageId": result.MessageID,
		"message":   "QR code sent successfully to visitor",
	})
}

type sendConfirmationRequest struct {
	HostEmail           string `json:"hostEmail"`
	VisitorName         string `json:"visitorName"`
	VisitorCompany      string `json:"visitorCompany"`
	Purpose             string `json:"purpose"`
	CheckedInAt         string `json:"checkedInAt"`
	IdentificationNotes string `json:"identificationNotes"`
	LocationNotes       string `json:"locationNotes"`
}

// SendConfirmation emails the host a check-in notification, on the
// original flat-body wire contract.
func (h *Handlers) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req sendConfirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON format"})
		return
	}

	if req.HostEmail == "" || req.VisitorName == "" || req.VisitorCompany == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}

	checkedInAt := time.Now().UTC()
	if req.CheckedInAt != "" {
		if t, err := time.Parse(time.RFC3339, req.CheckedInAt); err == nil {
			checkedInAt = t
		}
	}

	ev := &domain.CheckInEvent{
		Visitor: domain.VisitorRecord{
			VisitorName:    req.VisitorName,
			VisitorCompany: req.VisitorCompany,
			Purpose:        req.Purpose,
			HostEmail:      req.HostEmail,
		},
		CheckedInAt:         checkedInAt,
		IdentificationNotes: req.IdentificationNotes,
		LocationNotes:       req.LocationNotes,
	}

	result, err := h.checkins.NotifyHostEmail(r.Context(), ev)
	if err != nil {
		var cfgErr *domain.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Email service not configured"})
			return
		}
		logger.ErrorContext(r.Context(), "Failed to send confirmation email",
			"host_email", req.HostEmail, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to send confirmation email",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Confirmation email sent successfully",
		"emailId": result.MessageID,
	})
}
