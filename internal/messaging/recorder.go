package messaging

import (
	"context"

	"github.com/shelftunes/st-requests/internal/domain"
)

// Recorder defines the interface for recording lifecycle activity events.
// Recording is best-effort: implementations must never let a publish failure
// affect the request transition that triggered it.
//
//go:generate mockgen -source=recorder.go -destination=../mocks/recorder.go -package=mocks -mock_names=Recorder=MockRecorder
type Recorder interface {
	// Record publishes an activity event to the message broker
	Record(ctx context.Context, event *domain.ActivityEvent) error
	// Close closes the connection
	Close()
}

// NoopRecorder discards all events. Used when no broker is configured.
type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, event *domain.ActivityEvent) error {
	return nil
}

func (NoopRecorder) Close() {}
