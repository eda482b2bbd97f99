package approval_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftunes/st-requests/internal/approval"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/mocks"
	"github.com/shelftunes/st-requests/internal/store"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// testApprovalMocks contains all the mocks needed for testing the approval gate
type testApprovalMocks struct {
	ctrl     *gomock.Controller
	store    *mocks.MockStore
	recorder *mocks.MockRecorder
	service  *approval.Service
}

func setupTestApproval(t *testing.T) *testApprovalMocks {
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)

	tm := &testApprovalMocks{
		ctrl:     ctrl,
		store:    mocks.NewMockStore(ctrl),
		recorder: mocks.NewMockRecorder(ctrl),
	}
	tm.service = approval.NewService(tm.store, tm.recorder)

	return tm
}

func pendingRequest() *schema.Request {
	return &schema.Request{
		ID:          uuid.NewString(),
		MediaType:   domain.MediaTypeBook,
		ExternalID:  "openlibrary:OL7353617M",
		Source:      "openlibrary",
		RequesterID: uuid.NewString(),
		Status:      domain.RequestStatusPending,
	}
}

func TestApprove(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	request := pendingRequest()
	approverID := uuid.NewString()
	approver := &schema.User{ID: approverID, IsApprover: true}

	tm.store.EXPECT().GetUserByID(gomock.Any(), approverID).Return(approver, nil)
	tm.store.EXPECT().
		TransitionRequest(gomock.Any(), request.ID,
			domain.RequestStatusPending, domain.RequestStatusApproved, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ domain.RequestStatus, updates store.RequestUpdates) (*schema.Request, error) {
			require.NotNil(t, updates.ApproverID)
			assert.Equal(t, approverID, *updates.ApproverID)

			approved := *request
			approved.Status = domain.RequestStatusApproved
			approved.ApproverID = &approverID
			return &approved, nil
		})
	tm.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ActivityEvent) error {
			assert.Equal(t, domain.EventTypeRequestApproved, event.EventType)
			assert.Equal(t, approverID, event.ActorID)
			return nil
		})

	approved, err := tm.service.Approve(context.Background(), request.ID, approverID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, approved.Status)
}

func TestApprove_NotAuthorized(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	actorID := uuid.NewString()
	tm.store.EXPECT().
		GetUserByID(gomock.Any(), actorID).
		Return(&schema.User{ID: actorID}, nil)

	_, err := tm.service.Approve(context.Background(), uuid.NewString(), actorID)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestApprove_UnknownActor(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	actorID := uuid.NewString()
	tm.store.EXPECT().GetUserByID(gomock.Any(), actorID).Return(nil, nil)

	_, err := tm.service.Approve(context.Background(), uuid.NewString(), actorID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	requestID := uuid.NewString()
	approverID := uuid.NewString()
	tm.store.EXPECT().
		GetUserByID(gomock.Any(), approverID).
		Return(&schema.User{ID: approverID, IsAdmin: true}, nil)
	tm.store.EXPECT().
		TransitionRequest(gomock.Any(), requestID,
			domain.RequestStatusPending, domain.RequestStatusApproved, gomock.Any()).
		Return(nil, domain.ErrInvalidTransition)

	_, err := tm.service.Approve(context.Background(), requestID, approverID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	request := pendingRequest()
	approverID := uuid.NewString()
	tm.store.EXPECT().
		GetUserByID(gomock.Any(), approverID).
		Return(&schema.User{ID: approverID, IsApprover: true}, nil)
	tm.store.EXPECT().
		TransitionRequest(gomock.Any(), request.ID,
			domain.RequestStatusPending, domain.RequestStatusRejected, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ domain.RequestStatus, updates store.RequestUpdates) (*schema.Request, error) {
			require.NotNil(t, updates.RejectReason)
			assert.Equal(t, "not in scope", *updates.RejectReason)
			// Rejected requests never entered the pipeline; the actor lives
			// on the activity event, not the row
			assert.Nil(t, updates.ApproverID)

			rejected := *request
			rejected.Status = domain.RequestStatusRejected
			rejected.RejectReason = *updates.RejectReason
			return &rejected, nil
		})
	tm.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ActivityEvent) error {
			assert.Equal(t, domain.EventTypeRequestRejected, event.EventType)
			assert.Equal(t, "not in scope", event.Reason)
			return nil
		})

	rejected, err := tm.service.Reject(context.Background(), request.ID, approverID, "not in scope")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, rejected.Status)
}

func TestForceFail(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	request := pendingRequest()
	request.Status = domain.RequestStatusApproved
	adminID := uuid.NewString()
	tm.store.EXPECT().
		GetUserByID(gomock.Any(), adminID).
		Return(&schema.User{ID: adminID, IsAdmin: true}, nil)
	tm.store.EXPECT().
		TransitionRequest(gomock.Any(), request.ID,
			domain.RequestStatusApproved, domain.RequestStatusFailed, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _ domain.RequestStatus, updates store.RequestUpdates) (*schema.Request, error) {
			require.NotNil(t, updates.FailureReason)
			assert.Equal(t, domain.FailureReasonForcedByAdmin, *updates.FailureReason)

			failed := *request
			failed.Status = domain.RequestStatusFailed
			return &failed, nil
		})
	tm.recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event *domain.ActivityEvent) error {
			assert.Equal(t, domain.EventTypeRequestFailed, event.EventType)
			assert.Equal(t, adminID, event.ActorID)
			return nil
		})

	failed, err := tm.service.ForceFail(context.Background(), request.ID, adminID, "stuck on dead source")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFailed, failed.Status)
}

func TestForceFail_ApproverIsNotEnough(t *testing.T) {
	tm := setupTestApproval(t)
	defer tm.ctrl.Finish()

	actorID := uuid.NewString()
	tm.store.EXPECT().
		GetUserByID(gomock.Any(), actorID).
		Return(&schema.User{ID: actorID, IsApprover: true}, nil)

	_, err := tm.service.ForceFail(context.Background(), uuid.NewString(), actorID, "because")
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}
