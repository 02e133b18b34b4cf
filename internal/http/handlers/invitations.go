package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/http/response"
	"github.com/frontdesk/gatepass/pkg/logger"
)

// CreateInvitation composes a visitor record from the invitation form,
// encodes the QR image and dispatches it. Validation failures return
// field-level errors without any collaborator call; a delivery failure
// still returns the composed record and QR for a manual retry.
func (h *Handlers) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var in domain.VisitorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	result, err := h.invitations.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	logger.InfoContext(r.Context(), "Invitation created",
		"visitor_id", result.Visitor.ID,
		"visitor_email", result.Visitor.VisitorEmail,
		"sent", result.Delivery.Sent,
		"duplicate", result.Delivery.Duplicate,
	)

	writeJSON(w, http.StatusCreated, result)
}
