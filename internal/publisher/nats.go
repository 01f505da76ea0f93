// Package publisher emits row-appended events to NATS.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blockedby/tg-grabber/internal/grabber"
	"github.com/nats-io/nats.go"
)

// SubjectRowAppended is the subject row events are published on.
const SubjectRowAppended = "grabber.rows.appended"

// NATSClient is the connection surface used, narrowed to allow mocking.
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements grabber.EventPublisher over a NATS connection.
type NATSPublisher struct {
	conn NATSClient
}

// New connects to NATS and returns a publisher.
func New(natsURL string) (*NATSPublisher, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// NewWithConn wraps an existing connection.
func NewWithConn(conn NATSClient) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// PublishRowAppended publishes one row event as JSON.
func (p *NATSPublisher) PublishRowAppended(_ context.Context, event grabber.RowEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.conn.Publish(SubjectRowAppended, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}
