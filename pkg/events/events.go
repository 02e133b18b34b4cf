package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/frontdesk/gatepass/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// Noop is used when no event bus is configured. Lifecycle events are
// best-effort and the rest of the system never depends on them.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) error { return nil }
func (Noop) Close() error                                       { return nil }

// Event subjects
const (
	VisitorInvited   = "visitor.invited"
	VisitorCheckedIn = "visitor.checked_in"
)

// Event payloads
type VisitorInvitedEvent struct {
	VisitorID    string    `json:"visitor_id"`
	VisitorEmail string    `json:"visitor_email"`
	HostEmail    string    `json:"host_email"`
	Purpose      string    `json:"purpose"`
	Duplicate    bool      `json:"duplicate"`
	InvitedAt    time.Time `json:"invited_at"`
}

type VisitorCheckedInEvent struct {
	VisitorID   string    `json:"visitor_id"`
	VisitorName string    `json:"visitor_name"`
	HostEmail   string    `json:"host_email"`
	Channel     string    `json:"channel"` // email or webhook
	CheckedInAt time.Time `json:"checked_in_at"`
}
