package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/frontdesk/gatepass/internal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// VisitorRecord is the canonical invitation payload. It is the only entity
// serialized across a trust boundary: it travels inside the QR code from
// creation time to check-in time, with no server-side state linking the two.
type VisitorRecord struct {
	ID             string `json:"id"`
	VisitorName    string `json:"visitorName"`
	VisitorCompany string `json:"visitorCompany"`
	VisitorEmail   string `json:"visitorEmail"`
	Purpose        string `json:"purpose"`
	HostEmail      string `json:"hostEmail"`
	CreatedAt      string `json:"createdAt"`

	// Optional fields from the meeting-aware invitation variant. Decoded
	// when present, required nowhere.
	HostName    string `json:"hostName,omitempty"`
	MeetingDate string `json:"meetingDate,omitempty"`
	MeetingTime string `json:"meetingTime,omitempty"`
}

// VisitorInput is the invitation form payload, validated declaratively
// before a record is composed.
type VisitorInput struct {
	VisitorName    string `json:"visitorName" validate:"required,min=2"`
	VisitorCompany string `json:"visitorCompany" validate:"required,min=2"`
	VisitorEmail   string `json:"visitorEmail" validate:"required,email"`
	Purpose        string `json:"purpose" validate:"required,min=3"`
	HostEmail      string `json:"hostEmail" validate:"required,email"`
	HostName       string `json:"hostName" validate:"omitempty,min=2"`
	MeetingDate    string `json:"meetingDate" validate:"omitempty,datetime=2006-01-02"`
	MeetingTime    string `json:"meetingTime" validate:"omitempty,datetime=15:04"`
}

var fieldMessages = map[string]string{
	"VisitorName":    "visitor name must be at least 2 characters",
	"VisitorCompany": "company name must be at least 2 characters",
	"VisitorEmail":   "please enter a valid visitor email address",
	"Purpose":        "purpose of visit must be at least 3 characters",
	"HostEmail":      "please enter a valid host email address",
	"HostName":       "host name must be at least 2 characters",
	"MeetingDate":    "meeting date must be formatted YYYY-MM-DD",
	"MeetingTime":    "meeting time must be formatted HH:MM",
}

// NewVisitorRecord validates the form input and, on success, composes a
// record with a freshly generated id and creation timestamp. It has no side
// effects until validation passes.
func NewVisitorRecord(in VisitorInput) (*VisitorRecord, error) {
	in.VisitorName = utils.NormalizeString(in.VisitorName)
	in.VisitorCompany = utils.NormalizeString(in.VisitorCompany)
	in.VisitorEmail = utils.NormalizeEmail(in.VisitorEmail)
	in.Purpose = utils.NormalizeString(in.Purpose)
	in.HostEmail = utils.NormalizeEmail(in.HostEmail)
	in.HostName = utils.NormalizeString(in.HostName)

	if err := validate.Struct(in); err != nil {
		fields := map[string]string{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				name := jsonFieldName(fe.Field())
				if msg, ok := fieldMessages[fe.Field()]; ok {
					fields[name] = msg
				} else {
					fields[name] = "invalid value"
				}
			}
		}
		return nil, &ValidationError{Fields: fields}
	}

	return &VisitorRecord{
		ID:             NewVisitorID(),
		VisitorName:    in.VisitorName,
		VisitorCompany: in.VisitorCompany,
		VisitorEmail:   in.VisitorEmail,
		Purpose:        in.Purpose,
		HostEmail:      in.HostEmail,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		HostName:       in.HostName,
		MeetingDate:    in.MeetingDate,
		MeetingTime:    in.MeetingTime,
	}, nil
}

// NewVisitorID generates the invitation id: millisecond timestamp plus a
// random suffix. Unique per invitation with overwhelming probability; no
// global registry exists or is required.
func NewVisitorID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("visitor-%d-%s", time.Now().UnixMilli(), suffix)
}

func jsonFieldName(structField string) string {
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// DedupKey is half timestamp-unique id, half visitor email: the key the
// duplicate-suppression cache is keyed on.
func (v *VisitorRecord) DedupKey() string {
	return v.VisitorEmail + "_" + v.ID
}

// ValidateScanned applies the minimal-shape contract for payloads crossing
// the QR trust boundary: id, visitorName and hostEmail must all be present.
func (v *VisitorRecord) ValidateScanned() error {
	switch {
	case strings.TrimSpace(v.ID) == "":
		return &ScanError{Reason: "missing id"}
	case strings.TrimSpace(v.VisitorName) == "":
		return &ScanError{Reason: "missing visitorName"}
	case strings.TrimSpace(v.HostEmail) == "":
		return &ScanError{Reason: "missing hostEmail"}
	}
	return nil
}

// ParseQRPayload strictly validates a decoded QR payload. The payload shape
// is never trusted: anything not matching the minimal required field set is
// rejected as a ScanError, not silently accepted.
func ParseQRPayload(data []byte) (*VisitorRecord, error) {
	var rec VisitorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &ScanError{Reason: "not valid JSON"}
	}
	if err := rec.ValidateScanned(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CheckInEvent is the ephemeral record of a completed check-in. It
// references the visitor by value, exists only in memory and in the
// outbound notification, and is never persisted.
type CheckInEvent struct {
	Visitor             VisitorRecord `json:"visitor"`
	CheckedInAt         time.Time     `json:"checkedInAt"`
	IdentificationNotes string        `json:"identificationNotes,omitempty"`
	LocationNotes       string        `json:"locationNotes,omitempty"`
}

// NewCheckInEvent attaches operator-entered notes and the check-in time to
// a scanned record.
func NewCheckInEvent(visitor VisitorRecord, identificationNotes, locationNotes string) *CheckInEvent {
	return &CheckInEvent{
		Visitor:             visitor,
		CheckedInAt:         time.Now().UTC(),
		IdentificationNotes: utils.NormalizeString(identificationNotes),
		LocationNotes:       utils.NormalizeString(locationNotes),
	}
}
