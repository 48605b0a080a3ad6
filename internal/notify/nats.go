// Package notify publishes resolution outcomes to NATS so downstream
// consumers (feed rebuilds, alerting) can react without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/blockhistory/chronicle/internal/resolver"
)

// SubjectResolutionCompleted carries every terminal resolution outcome.
const SubjectResolutionCompleted = "chronicle.resolution.completed"

// Config holds NATS publisher configuration.
type Config struct {
	URL           string
	Name          string
	MaxReconnects int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "chronicle",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Publisher publishes resolution events to NATS. It satisfies
// resolver.Notifier.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS with the given configuration.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{conn: conn}, nil
}

type resolutionMessage struct {
	*resolver.Resolution
	CompletedAt time.Time `json:"completed_at"`
}

// ResolutionCompleted publishes a terminal resolution outcome.
func (p *Publisher) ResolutionCompleted(ctx context.Context, res *resolver.Resolution) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(resolutionMessage{Resolution: res, CompletedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal resolution message: %w", err)
	}

	if err := p.conn.Publish(SubjectResolutionCompleted, data); err != nil {
		return fmt.Errorf("publish resolution message: %w", err)
	}
	return nil
}

// Close drains the connection, allowing in-flight messages to complete.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return err
	}
	return nil
}

// IsConnected returns true if connected to NATS.
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
