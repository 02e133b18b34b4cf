package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/http/handlers"
	"github.com/frontdesk/gatepass/internal/platform/dedup"
	"github.com/frontdesk/gatepass/internal/platform/mailer"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/internal/service"
	"github.com/frontdesk/gatepass/pkg/config"
	"github.com/frontdesk/gatepass/pkg/events"
)

type stubMailer struct {
	enabled bool
	sends   int
	lastTo  string
}

func (m *stubMailer) Enabled() bool { return m.enabled }

func (m *stubMailer) Send(toEmail, _, _, _, _ string, _ ...mailer.Attachment) (string, error) {
	m.sends++
	m.lastTo = toEmail
	return "msg-123", nil
}

type stubHooks struct {
	calls int
}

func (h *stubHooks) PostJSON(context.Context, string, interface{}) error {
	h.calls++
	return nil
}

func (h *stubHooks) PostForm(context.Context, string, interface{}) error {
	h.calls++
	return nil
}

type fixture struct {
	server *httptest.Server
	mail   *stubMailer
	hooks  *stubHooks
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		QR:    config.QRConfig{Size: 300, RecoveryLevel: "H"},
		Dedup: config.DedupConfig{TTL: 60 * time.Second},
	}

	mail := &stubMailer{enabled: true}
	hooks := &stubHooks{}
	encoder := qr.NewEncoder(cfg.QR.Size, cfg.QR.RecoveryLevel)
	cache := dedup.NewMemory(cfg.Dedup.TTL)

	invitations := service.NewInvitationService(encoder, mail, hooks, cache, events.Noop{}, cfg)
	checkins := service.NewCheckInService(mail, hooks, events.Noop{}, cfg)
	h := handlers.New(invitations, checkins, qr.NewDecoder())

	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)

	return &fixture{server: server, mail: mail, hooks: hooks}
}

func (f *fixture) postJSON(t *testing.T, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(f.server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return resp, decoded
}

func validInvitation() map[string]string {
	return map[string]string{
		"visitorName":    "Jane Doe",
		"visitorCompany": "Acme",
		"visitorEmail":   "jane@acme.com",
		"purpose":        "Quarterly review",
		"hostEmail":      "host@co.com",
	}
}

// ---------- POST /v1/invitations ----------

func TestCreateInvitation_Success(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/v1/invitations", validInvitation())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, body)
	}

	visitor, ok := body["visitor"].(map[string]interface{})
	if !ok || visitor["id"] == "" {
		t.Fatalf("expected composed visitor record, got %v", body)
	}
	if dataURL, _ := body["qrCodeDataUrl"].(string); dataURL == "" {
		t.Fatal("expected QR code data URL in response")
	}

	delivery, _ := body["delivery"].(map[string]interface{})
	if sent, _ := delivery["sent"].(bool); !sent {
		t.Fatalf("expected delivery.sent true, got %v", delivery)
	}
	if f.mail.sends != 1 || f.mail.lastTo != "jane@acme.com" {
		t.Fatalf("expected one email to the visitor, got %d to %s", f.mail.sends, f.mail.lastTo)
	}
}

func TestCreateInvitation_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	in := validInvitation()
	in["hostEmail"] = "not-an-email"
	in["visitorName"] = "J"

	resp, body := f.postJSON(t, "/v1/invitations", in)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	fields, ok := body["fields"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected field-level errors, got %v", body)
	}
	if _, found := fields["hostEmail"]; !found {
		t.Fatalf("expected hostEmail error, got %v", fields)
	}
	if _, found := fields["visitorName"]; !found {
		t.Fatalf("expected visitorName error, got %v", fields)
	}
	if f.mail.sends != 0 || f.hooks.calls != 0 {
		t.Fatal("validation failure must not contact any collaborator")
	}
}

func TestCreateInvitation_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/v1/invitations", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---------- POST /api/send-qr-code ----------

func TestSendQRCode_SuccessAndDuplicate(t *testing.T) {
	f := newFixture(t)

	req := map[string]interface{}{
		"visitorData": map[string]string{
			"id":           "visitor-1700000000000-abc123def",
			"visitorName":  "Jane Doe",
			"visitorEmail": "jane@acme.com",
			"hostEmail":    "host@co.com",
		},
		"qrCodeDataUrl": "data:image/png;base64,aGVsbG8=",
	}

	resp, body := f.postJSON(t, "/api/send-qr-code", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success, got %v", body)
	}
	if body["messageId"] != "msg-123" {
		t.Fatalf("expected message id in response, got %v", body)
	}

	// Same visitor again inside the suppression window.
	resp, body = f.postJSON(t, "/api/send-qr-code", req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", resp.StatusCode)
	}
	if dup, _ := body["duplicate"].(bool); !dup {
		t.Fatalf("expected duplicate:true, got %v", body)
	}
	if f.mail.sends != 1 {
		t.Fatalf("expected exactly one underlying email call, got %d", f.mail.sends)
	}
}

func TestSendQRCode_MissingData(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/send-qr-code", map[string]interface{}{
		"qrCodeDataUrl": "data:image/png;base64,aGVsbG8=",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "Visitor data and QR code are required" {
		t.Fatalf("unexpected error message: %v", body)
	}
}

func TestSendQRCode_InvalidDataURL(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/send-qr-code", map[string]interface{}{
		"visitorData": map[string]string{
			"id":           "visitor-1700000000000-abc123def",
			"visitorEmail": "jane@acme.com",
		},
		"qrCodeDataUrl": "data:image/jpeg;base64,aGVsbG8=",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "Invalid QR code format" {
		t.Fatalf("unexpected error message: %v", body)
	}
	if f.mail.sends != 0 {
		t.Fatal("no email may be sent for a malformed data URL")
	}
}

func TestSendQRCode_NotConfigured(t *testing.T) {
	f := newFixture(t)
	f.mail.enabled = false

	resp, body := f.postJSON(t, "/api/send-qr-code", map[string]interface{}{
		"visitorData": map[string]string{
			"id":           "visitor-1700000000000-abc123def",
			"visitorEmail": "jane@acme.com",
		},
		"qrCodeDataUrl": "data:image/png;base64,aGVsbG8=",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body["error"] != "Email service not configured" {
		t.Fatalf("unexpected error message: %v", body)
	}
}

// ---------- POST /api/send-confirmation ----------

func TestSendConfirmation_Success(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/send-confirmation", map[string]string{
		"hostEmail":      "host@co.com",
		"visitorName":    "Jane Doe",
		"visitorCompany": "Acme",
		"purpose":        "Quarterly review",
		"checkedInAt":    "2026-08-28T10:00:00Z",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["message"] != "Confirmation email sent successfully" {
		t.Fatalf("unexpected message: %v", body)
	}
	if body["emailId"] != "msg-123" {
		t.Fatalf("expected email id, got %v", body)
	}
	if f.mail.lastTo != "host@co.com" {
		t.Fatalf("confirmation must go to the host, got %s", f.mail.lastTo)
	}
}

func TestSendConfirmation_MissingHostEmail(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/api/send-confirmation", map[string]string{
		"visitorName":    "Jane Doe",
		"visitorCompany": "Acme",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body["error"] != "Missing required fields" {
		t.Fatalf("unexpected error message: %v", body)
	}
	if f.mail.sends != 0 {
		t.Fatal("no email may be sent when required fields are missing")
	}
}

// ---------- POST /v1/checkpoint/scan ----------

func scanPayloadJSON(t *testing.T) string {
	t.Helper()
	rec, err := domain.NewVisitorRecord(domain.VisitorInput{
		VisitorName:    "Jane Doe",
		VisitorCompany: "Acme",
		VisitorEmail:   "jane@acme.com",
		Purpose:        "Quarterly review",
		HostEmail:      "host@co.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestScanFrame_DecodedText(t *testing.T) {
	f := newFixture(t)

	resp, body := f.postJSON(t, "/v1/checkpoint/scan", map[string]string{
		"text": scanPayloadJSON(t),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if found, _ := body["found"].(bool); !found {
		t.Fatalf("expected found:true, got %v", body)
	}
	visitor, _ := body["visitor"].(map[string]interface{})
	if visitor["visitorName"] != "Jane Doe" {
		t.Fatalf("unexpected visitor payload: %v", visitor)
	}
}

func TestScanFrame_EncodedFrame(t *testing.T) {
	f := newFixture(t)

	rec, err := domain.NewVisitorRecord(domain.VisitorInput{
		VisitorName:    "Jane Doe",
		VisitorCompany: "Acme",
		VisitorEmail:   "jane@acme.com",
		Purpose:        "Quarterly review",
		HostEmail:      "host@co.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	png, err := qr.NewEncoder(300, "H").Encode(rec)
	if err != nil {
		t.Fatal(err)
	}

	resp, body := f.postJSON(t, "/v1/checkpoint/scan", map[string]string{
		"frame": qr.DataURL(png),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if found, _ := body["found"].(bool); !found {
		t.Fatalf("expected found:true from a rendered frame, got %v", body)
	}
	visitor, _ := body["visitor"].(map[string]interface{})
	if visitor["id"] != rec.ID {
		t.Fatalf("expected round-tripped visitor id %s, got %v", rec.ID, visitor["id"])
	}
}

func TestScanFrame_IncompletePayloadRejected(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.postJSON(t, "/v1/checkpoint/scan", map[string]string{
		"text": `{"id":"visitor-1-x","visitorName":"Jane Doe"}`,
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for incomplete payload, got %d", resp.StatusCode)
	}
}

func TestScanFrame_NoInput(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.postJSON(t, "/v1/checkpoint/scan", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestScanFrame_BadDataURL(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.postJSON(t, "/v1/checkpoint/scan", map[string]string{
		"frame": "data:image/jpeg;base64,aGVsbG8=",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---------- POST /v1/checkins ----------

func TestCreateCheckIn_Success(t *testing.T) {
	f := newFixture(t)

	var visitor map[string]interface{}
	if err := json.Unmarshal([]byte(scanPayloadJSON(t)), &visitor); err != nil {
		t.Fatal(err)
	}

	resp, body := f.postJSON(t, "/v1/checkins", map[string]interface{}{
		"visitor":             visitor,
		"identificationNotes": "badge checked",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, body)
	}
	if success, _ := body["success"].(bool); !success {
		t.Fatalf("expected success, got %v", body)
	}
	delivery, _ := body["delivery"].(map[string]interface{})
	if delivery["channel"] != service.ChannelEmail {
		t.Fatalf("expected email channel without a webhook configured, got %v", delivery)
	}
	if f.mail.lastTo != "host@co.com" {
		t.Fatalf("notification must go to the host, got %s", f.mail.lastTo)
	}
}

func TestCreateCheckIn_MissingVisitor(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.postJSON(t, "/v1/checkins", map[string]string{
		"locationNotes": "front desk",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateCheckIn_UnscannableVisitor(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.postJSON(t, "/v1/checkins", map[string]interface{}{
		"visitor": map[string]string{
			"id":          "visitor-1700000000000-abc123def",
			"visitorName": "Jane Doe",
		},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a record missing hostEmail, got %d", resp.StatusCode)
	}
	if f.mail.sends != 0 {
		t.Fatal("invalid record must not trigger a notification")
	}
}
