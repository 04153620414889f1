package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/notionsync/internal/config"
	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATS connects and makes sure the stream capturing <subject>.> exists.
func NewNATS(ctx context.Context, cfg config.NATSConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("notionsync"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.EventsError("failed to connect to NATS").WithCause(err).WithContext("url", cfg.URL).Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.EventsError("failed to create JetStream context").WithCause(err).Build()
	}

	if cfg.Stream != "" {
		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_, err = js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
			Name:        cfg.Stream,
			Description: "notionsync page events",
			Subjects:    []string{cfg.Subject + ".>"},
			MaxAge:      30 * 24 * time.Hour,
		})
		if err != nil {
			conn.Close()
			return nil, errors.EventsError("failed to ensure JetStream stream").
				WithCause(err).
				WithContext("stream", cfg.Stream).
				Build()
		}
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject, "stream", cfg.Stream)
	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// Publish sends one event and waits for the stream acknowledgement.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	data, err := encode(e)
	if err != nil {
		return errors.EventsError("failed to marshal event").WithCause(err).Build()
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	subject := Subject(p.subject, e.Type)
	if _, err := p.js.Publish(pctx, subject, data); err != nil {
		return errors.EventsError("failed to publish event").WithCause(err).WithContext("subject", subject).Build()
	}
	slog.Debug("Published event", "subject", subject, "notion_id", e.NotionID)
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
