package service

import (
	"context"
	"time"

	"github.com/frontdesk/gatepass/internal/domain"
	"github.com/frontdesk/gatepass/internal/platform/mailer"
	"github.com/frontdesk/gatepass/pkg/config"
	"github.com/frontdesk/gatepass/pkg/events"
	"github.com/frontdesk/gatepass/pkg/logger"
)

type CheckInService interface {
	// Finalize attaches operator notes and the check-in time to a scanned
	// record and notifies the host through exactly one collaborator.
	// Re-invoking with the same record is safe.
	Finalize(ctx context.Context, visitor domain.VisitorRecord, identificationNotes, locationNotes string) (*CheckInResult, error)
	// NotifyHost dispatches an already-built check-in event, preferring
	// the automation webhook when one is configured.
	NotifyHost(ctx context.Context, ev *domain.CheckInEvent) (*DispatchResult, error)
	// NotifyHostEmail dispatches by direct host email regardless of
	// webhook configuration.
	NotifyHostEmail(ctx context.Context, ev *domain.CheckInEvent) (*DispatchResult, error)
}

type CheckInResult struct {
	Event    *domain.CheckInEvent `json:"event"`
	Delivery DispatchResult       `json:"delivery"`
}

type checkInService struct {
	mail  mailer.Service
	hooks WebhookSender
	bus   events.Publisher
	cfg   *config.Config
}

func NewCheckInService(mail mailer.Service, hooks WebhookSender, bus events.Publisher, cfg *config.Config) CheckInService {
	return &checkInService{
		mail:  mail,
		hooks: hooks,
		bus:   bus,
		cfg:   cfg,
	}
}

func (s *checkInService) Finalize(ctx context.Context, visitor domain.VisitorRecord, identificationNotes, locationNotes string) (*CheckInResult, error) {
	if err := visitor.ValidateScanned(); err != nil {
		return nil, err
	}

	ev := domain.NewCheckInEvent(visitor, identificationNotes, locationNotes)

	delivery, err := s.NotifyHost(ctx, ev)
	if err != nil {
		return nil, err
	}

	return &CheckInResult{Event: ev, Delivery: *delivery}, nil
}

func (s *checkInService) NotifyHost(ctx context.Context, ev *domain.CheckInEvent) (*DispatchResult, error) {
	if s.cfg.Webhook.CheckInURL != "" {
		return s.notify(ctx, ev, ChannelWebhook)
	}
	return s.notify(ctx, ev, ChannelEmail)
}

func (s *checkInService) NotifyHostEmail(ctx context.Context, ev *domain.CheckInEvent) (*DispatchResult, error) {
	return s.notify(ctx, ev, ChannelEmail)
}

func (s *checkInService) notify(ctx context.Context, ev *domain.CheckInEvent, channel string) (*DispatchResult, error) {
	var result *DispatchResult

	if channel == ChannelWebhook {
		payload := checkInWebhookPayload{
			VisitorName:         ev.Visitor.VisitorName,
			VisitorCompany:      ev.Visitor.VisitorCompany,
			VisitorEmail:        ev.Visitor.VisitorEmail,
			Purpose:             ev.Visitor.Purpose,
			HostEmail:           ev.Visitor.HostEmail,
			VisitorID:           ev.Visitor.ID,
			CheckedInAt:         ev.CheckedInAt.Format(time.RFC3339),
			CheckedInTime:       ev.CheckedInAt.Local().Format(time.RFC1123),
			IdentificationNotes: ev.IdentificationNotes,
			LocationNotes:       ev.LocationNotes,
			Action:              "visitor_checked_in",
			Timestamp:           time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.hooks.PostJSON(ctx, s.cfg.Webhook.CheckInURL, payload); err != nil {
			return nil, &domain.CollaboratorError{Collaborator: "check-in webhook", Err: err}
		}
		result = &DispatchResult{Channel: ChannelWebhook}
	} else {
		if !s.mail.Enabled() {
			return nil, &domain.ConfigurationError{Setting: "MAILERSEND_API_KEY / FROM_EMAIL"}
		}
		subject, html, text, err := renderCheckInEmail(ev)
		if err != nil {
			return nil, err
		}
		id, err := s.mail.Send(ev.Visitor.HostEmail, ev.Visitor.HostName, subject, text, html)
		if err != nil {
			return nil, &domain.CollaboratorError{Collaborator: "email delivery", Err: err}
		}
		result = &DispatchResult{MessageID: id, Channel: ChannelEmail}
	}

	if err := s.bus.Publish(ctx, events.VisitorCheckedIn, events.VisitorCheckedInEvent{
		VisitorID:   ev.Visitor.ID,
		VisitorName: ev.Visitor.VisitorName,
		HostEmail:   ev.Visitor.HostEmail,
		Channel:     result.Channel,
		CheckedInAt: ev.CheckedInAt,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish checked-in event", "visitor_id", ev.Visitor.ID, "error", err)
	}

	return result, nil
}

// checkInWebhookPayload mirrors the automation endpoint's expected JSON
// body, flat visitor fields plus check-in metadata.
type checkInWebhookPayload struct {
	VisitorName         string `json:"visitorName"`
	VisitorCompany      string `json:"visitorCompany"`
	VisitorEmail        string `json:"visitorEmail"`
	Purpose             string `json:"purpose"`
	HostEmail           string `json:"hostEmail"`
	VisitorID           string `json:"visitorId"`
	CheckedInAt         string `json:"checkedInAt"`
	CheckedInTime       string `json:"checkedInTime"`
	IdentificationNotes string `json:"identificationNotes,omitempty"`
	LocationNotes       string `json:"locationNotes,omitempty"`
	Action              string `json:"action"`
	Timestamp           string `json:"timestamp"`
}
