package events

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"firewatch-backend/internal/config"
)

// NatsPublisher is the production MessagePublisher backed by a NATS connection
type NatsPublisher struct {
	conn *nats.Conn
	cfg  *config.Config
}

func NewNatsPublisher(cfg *config.Config) (*NatsPublisher, error) {
	opts := []nats.Option{
		nats.Name("firewatch-backend"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &NatsPublisher{
		conn: conn,
		cfg:  cfg,
	}, nil
}

func (p *NatsPublisher) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return p.conn.Publish(subject, payload)
}

func (p *NatsPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

func (p *NatsPublisher) Shutdown(ctx context.Context) error {
	if p.conn != nil {
		// Try graceful drain with timeout, fallback to immediate close
		if err := p.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			p.conn.Close()
		}
	}
	return nil
}
