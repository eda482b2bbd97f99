package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type recorder struct {
	nc    adapter.NatsConn
	js    adapter.JetStream
	clock adapter.Clock
}

// NewRecorder creates a new NATS JetStream activity recorder
func NewRecorder(cfg Config, natsJS adapter.NatsJetStream, clock adapter.Clock) (messaging.Recorder, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &recorder{
		nc:    nc,
		js:    js,
		clock: clock,
	}, nil
}

// Record publishes an activity event to NATS JetStream. The event ID and
// timestamp are assigned here so callers only describe what happened.
func (r *recorder) Record(ctx context.Context, event *domain.ActivityEvent) error {
	if event.EventID == "" {
		event.EventID = ulid.Make().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.clock.Now().UTC()
	}

	logger.Debug("Publishing activity event", zap.Any("event", event))

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := buildSubject(event)

	if _, err := r.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// buildSubject constructs the NATS subject based on the event
// Format: activity.{media_type}.{event_type}
// e.g., activity.song.request.approved, activity.book.source.blacklisted
func buildSubject(event *domain.ActivityEvent) string {
	mediaType := string(event.MediaType)
	if mediaType == "" {
		mediaType = "all"
	}

	return fmt.Sprintf("activity.%s.%s", mediaType, event.EventType)
}

// Close closes the NATS connection
func (r *recorder) Close() {
	if r.nc == nil {
		return
	}

	r.nc.Close()
}
