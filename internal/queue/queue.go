package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/messaging"
	"github.com/shelftunes/st-requests/internal/store"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// Service accepts media requests into the pipeline and lists queued work
type Service struct {
	store    store.Store
	recorder messaging.Recorder
	clock    adapter.Clock
}

// NewService creates a new request queue service
func NewService(s store.Store, recorder messaging.Recorder, clock adapter.Clock) *Service {
	return &Service{
		store:    s,
		recorder: recorder,
		clock:    clock,
	}
}

// SubmitParams holds the caller-supplied fields of a new request
type SubmitParams struct {
	RequesterID string
	MediaType   domain.MediaType
	ExternalID  domain.ExternalID
	CoverRef    string
	Payload     datatypes.JSON
}

// Submit validates and enqueues a new media request. The request enters
// pending, or approved directly when the requester is exempt from the
// approval gate. Returns domain.ErrDuplicatePendingRequest when the same
// (requester, media type, external ID) is already live.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*schema.Request, error) {
	if !domain.IsValidMediaType(params.MediaType) {
		return nil, fmt.Errorf("unsupported media type %q", params.MediaType)
	}

	source, _, err := params.ExternalID.Parse()
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, params.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	status := domain.RequestStatusPending
	if !user.RequiresApproval {
		// Trusted requesters skip the approval gate; approver stays unset
		status = domain.RequestStatusApproved
	}

	request := &schema.Request{
		ID:            uuid.NewString(),
		MediaType:     params.MediaType,
		ExternalID:    params.ExternalID,
		Source:        source,
		CoverRef:      params.CoverRef,
		Payload:       params.Payload,
		RequesterID:   params.RequesterID,
		Status:        status,
		NextAttemptAt: s.clock.Now().UTC(),
	}

	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestSubmitted,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		ActorID:    request.RequesterID,
		Status:     request.Status,
	})
	if status == domain.RequestStatusApproved {
		s.record(ctx, &domain.ActivityEvent{
			EventType:  domain.EventTypeRequestApproved,
			RequestID:  request.ID,
			MediaType:  request.MediaType,
			ExternalID: request.ExternalID,
			ActorID:    request.RequesterID,
			Status:     request.Status,
		})
	}

	return request, nil
}

// ListPending lists pending requests in submission order
func (s *Service) ListPending(ctx context.Context, limit int, offset uint64) ([]*schema.Request, uint64, error) {
	return s.store.ListRequestsByStatus(ctx, domain.RequestStatusPending, limit, offset)
}

// ListApproved lists approved requests in submission order
func (s *Service) ListApproved(ctx context.Context, limit int, offset uint64) ([]*schema.Request, uint64, error) {
	return s.store.ListRequestsByStatus(ctx, domain.RequestStatusApproved, limit, offset)
}

// record publishes an activity event. Recording is best-effort: failures are
// logged and swallowed so the triggering operation is never affected.
func (s *Service) record(ctx context.Context, event *domain.ActivityEvent) {
	if err := s.recorder.Record(ctx, event); err != nil {
		logger.WarnCtx(ctx, "failed to record activity event",
			zap.Error(err),
			zap.String("event_type", string(event.EventType)),
			zap.String("request_id", event.RequestID))
	}
}
