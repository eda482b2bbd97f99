package approval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/messaging"
	"github.com/shelftunes/st-requests/internal/store"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// Service gates pending requests into (or out of) the fulfillment pipeline
type Service struct {
	store    store.Store
	recorder messaging.Recorder
}

// NewService creates a new approval gate service
func NewService(s store.Store, recorder messaging.Recorder) *Service {
	return &Service{
		store:    s,
		recorder: recorder,
	}
}

// Approve moves a pending request to approved, recording the approver.
// Returns domain.ErrNotAuthorized unless the acting user is an approver or
// admin, domain.ErrInvalidTransition when the request is not pending.
func (s *Service) Approve(ctx context.Context, requestID, approverID string) (*schema.Request, error) {
	approver, err := s.requireApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}

	request, err := s.store.TransitionRequest(ctx, requestID,
		domain.RequestStatusPending, domain.RequestStatusApproved,
		store.RequestUpdates{ApproverID: &approver.ID})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestApproved,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		ActorID:    approver.ID,
		Status:     request.Status,
	})

	return request, nil
}

// Reject moves a pending request to the terminal rejected status. The
// request row and its payload are retained for audit. The rejecting actor is
// carried on the activity event only; approver_id marks requests that
// entered the pipeline, not ones turned away.
func (s *Service) Reject(ctx context.Context, requestID, approverID, reason string) (*schema.Request, error) {
	approver, err := s.requireApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}

	request, err := s.store.TransitionRequest(ctx, requestID,
		domain.RequestStatusPending, domain.RequestStatusRejected,
		store.RequestUpdates{
			RejectReason: &reason,
		})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestRejected,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		ActorID:    approver.ID,
		Reason:     reason,
		Status:     request.Status,
	})

	return request, nil
}

// ForceFail moves an approved request straight to failed. Admin-only escape
// hatch for stuck requests; racing an in-flight worker is safe because the
// loser's compare-and-swap fails.
func (s *Service) ForceFail(ctx context.Context, requestID, adminID, reason string) (*schema.Request, error) {
	admin, err := s.store.GetUserByID(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrUserNotFound
	}
	if !admin.IsAdmin {
		return nil, domain.ErrNotAuthorized
	}

	failureReason := domain.FailureReasonForcedByAdmin
	request, err := s.store.TransitionRequest(ctx, requestID,
		domain.RequestStatusApproved, domain.RequestStatusFailed,
		store.RequestUpdates{FailureReason: &failureReason})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestFailed,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		ActorID:    admin.ID,
		Reason:     reason,
		Status:     request.Status,
	})

	return request, nil
}

// requireApprover loads the acting user and checks approval privileges
func (s *Service) requireApprover(ctx context.Context, userID string) (*schema.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsApprover && !user.IsAdmin {
		return nil, domain.ErrNotAuthorized
	}
	return user, nil
}

func (s *Service) record(ctx context.Context, event *domain.ActivityEvent) {
	if err := s.recorder.Record(ctx, event); err != nil {
		logger.WarnCtx(ctx, "failed to record activity event",
			zap.Error(err),
			zap.String("event_type", string(event.EventType)),
			zap.String("request_id", event.RequestID))
	}
}
