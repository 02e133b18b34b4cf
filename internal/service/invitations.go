package service

import (
	"context"
	"fmt"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/platform/dedup"
	"github.com/frontdesk/gatepass/internal/platform/mailer"
	"github.com/frontdesk/gatepass/internal/platform/qr"
	"github.com/frontdesk/gatepass/pkg/config"
	"github.com/frontdesk/gatepass/pkg/events"
	"github.com/frontdesk/gatepass/pkg/logger"
)

type InvitationService interface {
	// Create composes a validated visitor record, encodes its QR image and
	// dispatches the invitation. Delivery failure does not discard the
	// record: the result still carries the QR so the caller can retry the
	// send with an identical payload.
	Create(ctx context.Context, in domain.VisitorInput) (*InvitationResult, error)
	// Send performs at most one collaborator call for the given record and
	// QR image, consulting the duplicate-suppression cache first.
	Send(ctx context.Context, rec *domain.VisitorRecord, qrCodeDataURL string) (*DispatchResult, error)
}

type InvitationResult struct {
	Visitor       *domain.VisitorRecord `json:"visitor"`
	QRCodeDataURL string                `json:"qrCodeDataUrl"`
	Delivery      DeliveryStatus        `json:"delivery"`
}

// DeliveryStatus embeds the dispatch outcome in the composer response so a
// failed send still hands the QR back for a manual retry.
type DeliveryStatus struct {
	Sent      bool   `json:"sent"`
	Duplicate bool   `json:"duplicate,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Error     string `json:"error,omitempty"`
}

type invitationService struct {
	encoder *qr.Encoder
	mail    mailer.Service
	hooks   WebhookSender
	cache   dedup.Cache
	bus     events.Publisher
	cfg     *config.Config
}

func NewInvitationService(
	encoder *qr.Encoder,
	mail mailer.Service,
	hooks WebhookSender,
	cache dedup.Cache,
	bus events.Publisher,
	cfg *config.Config,
) InvitationService {
	return &invitationService{
		encoder: encoder,
		mail:    mail,
		hooks:   hooks,
		cache:   cache,
		bus:     bus,
		cfg:     cfg,
	}
}

func (s *invitationService) Create(ctx context.Context, in domain.VisitorInput) (*InvitationResult, error) {
	rec, err := domain.NewVisitorRecord(in)
	if err != nil {
		return nil, err
	}

	png, err := s.encoder.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	dataURL := qr.DataURL(png)

	result := &InvitationResult{
		Visitor:       rec,
		QRCodeDataURL: dataURL,
	}

	delivery, err := s.Send(ctx, rec, dataURL)
	if err != nil {
		logger.ErrorContext(ctx, "Invitation dispatch failed",
			"visitor_id", rec.ID, "error", err)
		result.Delivery = DeliveryStatus{Error: err.Error()}
		return result, nil
	}

	result.Delivery = DeliveryStatus{
		Sent:      true,
		Duplicate: delivery.Duplicate,
		MessageID: delivery.MessageID,
		Channel:   delivery.Channel,
	}
	return result, nil
}

func (s *invitationService) Send(ctx context.Context, rec *domain.VisitorRecord, qrCodeDataURL string) (*DispatchResult, error) {
	useWebhook := s.cfg.Webhook.QRIssueURL != ""
	if !useWebhook && !s.mail.Enabled() {
		return nil, &domain.ConfigurationError{Setting: "MAILERSEND_API_KEY / FROM_EMAIL"}
	}

	key := rec.DedupKey()
	now := time.Now()
	if last, seen, err := s.cache.LastSent(ctx, key); err != nil {
		// Advisory guard only: a cache fault never blocks the dispatch.
		logger.WarnContext(ctx, "Dedup lookup failed", "key", key, "error", err)
	} else if seen {
		logger.InfoContext(ctx, "Duplicate invitation suppressed",
			"visitor_email", rec.VisitorEmail,
			"sent_ago_s", int(now.Sub(last).Seconds()),
		)
		return &DispatchResult{Duplicate: true}, nil
	}

	if err := s.cache.MarkSent(ctx, key, now); err != nil {
		logger.WarnContext(ctx, "Dedup mark failed", "key", key, "error", err)
	}

	var result *DispatchResult
	if useWebhook {
		payload := qrIssuePayload{
			VisitorID:      rec.ID,
			VisitorName:    rec.VisitorName,
			VisitorCompany: rec.VisitorCompany,
			VisitorEmail:   rec.VisitorEmail,
			Purpose:        rec.Purpose,
			HostEmail:      rec.HostEmail,
			CreatedAt:      rec.CreatedAt,
			QRCodeDataURL:  qrCodeDataURL,
			Action:         "visitor_invited",
		}
		if err := s.hooks.PostForm(ctx, s.cfg.Webhook.QRIssueURL, payload); err != nil {
			return nil, &domain.CollaboratorError{Collaborator: "qr issuance webhook", Err: err}
		}
		result = &DispatchResult{Channel: ChannelWebhook}
	} else {
		subject, html, text, err := renderInviteEmail(rec, qrCodeDataURL)
		if err != nil {
			return nil, err
		}
		id, err := s.mail.Send(rec.VisitorEmail, rec.VisitorName, subject, text, html, mailer.Attachment{
			Filename: "visitor-qr-code.png",
			Content:  qr.Base64Content(qrCodeDataURL),
		})
		if err != nil {
			return nil, &domain.CollaboratorError{Collaborator: "email delivery", Err: err}
		}
		result = &DispatchResult{MessageID: id, Channel: ChannelEmail}
	}

	if err := s.bus.Publish(ctx, events.VisitorInvited, events.VisitorInvitedEvent{
		VisitorID:    rec.ID,
		VisitorEmail: rec.VisitorEmail,
		HostEmail:    rec.HostEmail,
		Purpose:      rec.Purpose,
		InvitedAt:    now.UTC(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish invited event", "visitor_id", rec.ID, "error", err)
	}

	return result, nil
}

// qrIssuePayload is form-encoded for the issuance automation endpoint.
type qrIssuePayload struct {
	VisitorID      string `url:"visitorId"`
	VisitorName    string `url:"visitorName"`
	VisitorCompany string `url:"visitorCompany"`
	VisitorEmail   string `url:"visitorEmail"`
	Purpose        string `url:"purpose"`
	HostEmail      string `url:"hostEmail"`
	CreatedAt      string `url:"createdAt"`
	QRCodeDataURL  string `url:"qrCodeDataUrl"`
	Action         string `url:"action"`
}
