package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/http/response"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/internal/service"
)

type Handlers struct {
	invitations service.InvitationService
	checkins    service.CheckInService
	decoder     *qr.Decoder
}

func New(invitations service.InvitationService, checkins service.CheckInService, decoder *qr.Decoder) *Handlers {
	return &Handlers{
		invitations: invitations,
		checkins:    checkins,
		decoder:     decoder,
	}
}

func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Post("/invitations", h.CreateInvitation)
		r.Post("/checkpoint/scan", h.ScanFrame)
		r.Post("/checkins", h.CreateCheckIn)
	})

	// Original API routes, kept byte-compatible for existing clients.
	r.Route("/api", func(r chi.Router) {
		r.Post("/send-qr-code", h.SendQRCode)
		r.Post("/send-confirmation", h.SendConfirmation)
	})

	return r
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeDomainError converts a service failure into the structured response
// for its error class. All collaborator failures are caught here; the
// client never receives an unhandled failure.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "Invalid input",
			"code":   response.CodeInvalidInput,
			"fields": verr.Fields,
		})
		return
	}

	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		response.NotConfigured(w, "Email service not configured")
		return
	}

	var collabErr *domain.CollaboratorError
	if errors.As(err, &collabErr) {
		response.CollaboratorFailure(w, "Failed to deliver notification", collabErr.Error())
		return
	}

	var scanErr *domain.ScanError
	if errors.As(err, &scanErr) {
		response.ScanFailure(w, scanErr.Error())
		return
	}

	response.InternalError(w, "Internal error")
}
