package service

import "context"

// WebhookSender delivers payloads to an operator-configured automation URL.
type WebhookSender interface {
	PostJSON(ctx context.Context, url string, payload interface{}) error
	PostForm(ctx context.Context, url string, payload interface{}) error
}

// DispatchResult is the outcome of a single outbound notification call.
// Duplicate marks a suppressed send: a successful no-op, reported
// distinctly from a fresh send.
type DispatchResult struct {
	MessageID string `json:"messageId,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Channel   string `json:"channel"`
}

const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)
