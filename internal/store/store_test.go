package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// RunStoreTests runs the store contract tests against any Store implementation
func RunStoreTests(t *testing.T, initStore func(t *testing.T) Store) {
	t.Run("CreateRequest", func(t *testing.T) { testCreateRequest(t, initStore) })
	t.Run("TransitionRequest", func(t *testing.T) { testTransitionRequest(t, initStore) })
	t.Run("ListApprovedDue", func(t *testing.T) { testListApprovedDue(t, initStore) })
	t.Run("ListRequestsByStatus", func(t *testing.T) { testListRequestsByStatus(t, initStore) })
	t.Run("CatalogEntryDedup", func(t *testing.T) { testCatalogEntryDedup(t, initStore) })
	t.Run("CatalogEntryDedupConcurrent", func(t *testing.T) { testCatalogEntryDedupConcurrent(t, initStore) })
	t.Run("Blacklist", func(t *testing.T) { testBlacklist(t, initStore) })
	t.Run("SourceFailures", func(t *testing.T) { testSourceFailures(t, initStore) })
	t.Run("Users", func(t *testing.T) { testUsers(t, initStore) })
}

func createTestUser(t *testing.T, s Store, mutate func(*schema.User)) *schema.User {
	t.Helper()
	user := &schema.User{
		ID:               uuid.NewString(),
		Email:            uuid.NewString() + "@example.com",
		DisplayName:      "Test User",
		RequiresApproval: true,
	}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func newTestRequest(requesterID string, status domain.RequestStatus) *schema.Request {
	externalID := domain.ExternalID("openlibrary:" + uuid.NewString())
	return &schema.Request{
		ID:            uuid.NewString(),
		MediaType:     domain.MediaTypeBook,
		ExternalID:    externalID,
		Source:        externalID.Source(),
		RequesterID:   requesterID,
		Status:        status,
		NextAttemptAt: time.Now().Add(-time.Minute),
	}
}

func testCreateRequest(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	requester := createTestUser(t, s, nil)

	request := newTestRequest(requester.ID, domain.RequestStatusPending)
	require.NoError(t, s.CreateRequest(ctx, request))

	stored, err := s.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.RequestStatusPending, stored.Status)
	assert.Equal(t, 0, stored.Attempts)
	assert.Nil(t, stored.ApproverID)

	// Identical live submission is rejected
	dupe := newTestRequest(requester.ID, domain.RequestStatusPending)
	dupe.MediaType = request.MediaType
	dupe.ExternalID = request.ExternalID
	dupe.Source = request.Source
	err = s.CreateRequest(ctx, dupe)
	assert.ErrorIs(t, err, domain.ErrDuplicatePendingRequest)

	// Another user may request the same item
	other := createTestUser(t, s, nil)
	theirs := newTestRequest(other.ID, domain.RequestStatusPending)
	theirs.ExternalID = request.ExternalID
	theirs.Source = request.Source
	assert.NoError(t, s.CreateRequest(ctx, theirs))

	// A terminal row does not block resubmission
	_, err = s.TransitionRequest(ctx, request.ID, domain.RequestStatusPending, domain.RequestStatusRejected, RequestUpdates{})
	require.NoError(t, err)

	again := newTestRequest(requester.ID, domain.RequestStatusPending)
	again.ExternalID = request.ExternalID
	again.Source = request.Source
	assert.NoError(t, s.CreateRequest(ctx, again))
}

func testTransitionRequest(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	requester := createTestUser(t, s, nil)
	approver := createTestUser(t, s, func(u *schema.User) { u.IsApprover = true })

	request := newTestRequest(requester.ID, domain.RequestStatusPending)
	require.NoError(t, s.CreateRequest(ctx, request))

	// pending -> approved sets the approver
	updated, err := s.TransitionRequest(ctx, request.ID,
		domain.RequestStatusPending, domain.RequestStatusApproved,
		RequestUpdates{ApproverID: &approver.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, updated.Status)
	require.NotNil(t, updated.ApproverID)
	assert.Equal(t, approver.ID, *updated.ApproverID)

	// The same CAS again loses: the request is no longer pending
	_, err = s.TransitionRequest(ctx, request.ID,
		domain.RequestStatusPending, domain.RequestStatusApproved, RequestUpdates{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Attempts increment atomically with a retry reschedule; the guard covers
	// the observed counter since the status does not change
	later := time.Now().Add(time.Hour).UTC()
	zero := 0
	updated, err = s.TransitionRequest(ctx, request.ID,
		domain.RequestStatusApproved, domain.RequestStatusApproved,
		RequestUpdates{IncrementAttempts: true, NextAttemptAt: &later, ExpectedAttempts: &zero})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Attempts)
	assert.WithinDuration(t, later, updated.NextAttemptAt, time.Second)

	// A second worker holding the attempts=0 snapshot loses the retry CAS
	// and must not consume another attempt
	_, err = s.TransitionRequest(ctx, request.ID,
		domain.RequestStatusApproved, domain.RequestStatusApproved,
		RequestUpdates{IncrementAttempts: true, NextAttemptAt: &later, ExpectedAttempts: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stale, err := s.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stale.Attempts)

	// Terminal failure records the reason
	reason := domain.FailureReasonRetriesExhausted
	updated, err = s.TransitionRequest(ctx, request.ID,
		domain.RequestStatusApproved, domain.RequestStatusFailed,
		RequestUpdates{FailureReason: &reason, IncrementAttempts: true})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusFailed, updated.Status)
	assert.Equal(t, 2, updated.Attempts)
	require.NotNil(t, updated.FailureReason)
	assert.Equal(t, domain.FailureReasonRetriesExhausted, *updated.FailureReason)

	// Unknown request
	_, err = s.TransitionRequest(ctx, uuid.NewString(),
		domain.RequestStatusPending, domain.RequestStatusApproved, RequestUpdates{})
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)
}

func testListApprovedDue(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	requester := createTestUser(t, s, nil)

	// Oldest first
	first := newTestRequest(requester.ID, domain.RequestStatusApproved)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.CreateRequest(ctx, first))

	second := newTestRequest(requester.ID, domain.RequestStatusApproved)
	second.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.CreateRequest(ctx, second))

	// Backing off: not yet visible
	backingOff := newTestRequest(requester.ID, domain.RequestStatusApproved)
	backingOff.NextAttemptAt = time.Now().Add(time.Hour)
	require.NoError(t, s.CreateRequest(ctx, backingOff))

	// Pending: not eligible
	pending := newTestRequest(requester.ID, domain.RequestStatusPending)
	require.NoError(t, s.CreateRequest(ctx, pending))

	due, err := s.ListApprovedDue(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, first.ID, due[0].ID)
	assert.Equal(t, second.ID, due[1].ID)
}

func testListRequestsByStatus(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	requester := createTestUser(t, s, nil)

	for i := 0; i < 3; i++ {
		req := newTestRequest(requester.ID, domain.RequestStatusPending)
		req.CreatedAt = time.Now().Add(time.Duration(i-10) * time.Minute)
		require.NoError(t, s.CreateRequest(ctx, req))
	}

	requests, total, err := s.ListRequestsByStatus(ctx, domain.RequestStatusPending, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, requests, 2)
	assert.True(t, requests[0].CreatedAt.Before(requests[1].CreatedAt))

	rest, _, err := s.ListRequestsByStatus(ctx, domain.RequestStatusPending, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func testCatalogEntryDedup(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, nil)

	externalID := domain.ExternalID("musicbrainz:" + uuid.NewString())
	cacheKey := domain.DeriveCacheKey(domain.MediaTypeSong, externalID)

	entry := &schema.CatalogEntry{
		ID:          uuid.NewString(),
		MediaType:   domain.MediaTypeSong,
		ExternalID:  externalID,
		CacheKey:    cacheKey,
		Title:       "Harvest Moon",
		Artist:      "Neil Young",
		ContentRef:  "library://songs/harvest-moon",
		OwnerUserID: owner.ID,
	}
	stored, created, err := s.CreateCatalogEntry(ctx, entry)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entry.ID, stored.ID)

	// A racing duplicate binds to the winner instead of erroring
	loser := &schema.CatalogEntry{
		ID:          uuid.NewString(),
		MediaType:   domain.MediaTypeSong,
		ExternalID:  externalID,
		CacheKey:    cacheKey,
		Title:       "Harvest Moon",
		Artist:      "Neil Young",
		ContentRef:  "library://songs/harvest-moon-dupe",
		OwnerUserID: owner.ID,
	}
	stored, created, err = s.CreateCatalogEntry(ctx, loser)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, entry.ID, stored.ID)
	assert.Equal(t, "library://songs/harvest-moon", stored.ContentRef)

	// Lookup by key
	found, err := s.GetCatalogEntryByCacheKey(ctx, domain.MediaTypeSong, cacheKey)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, entry.ID, found.ID)

	// Same external ID under another media type is a distinct entry
	missing, err := s.GetCatalogEntryByCacheKey(ctx, domain.MediaTypeBook,
		domain.DeriveCacheKey(domain.MediaTypeBook, externalID))
	require.NoError(t, err)
	assert.Nil(t, missing)

	entries, total, err := s.ListCatalogEntries(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	assert.Len(t, entries, 1)
}

func testCatalogEntryDedupConcurrent(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, nil)

	externalID := domain.ExternalID("musicbrainz:" + uuid.NewString())
	cacheKey := domain.DeriveCacheKey(domain.MediaTypeSong, externalID)

	// All racers target the same cache key; exactly one insert may win
	const racers = 8
	var created int64
	ids := make(chan string, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry := &schema.CatalogEntry{
				ID:          uuid.NewString(),
				MediaType:   domain.MediaTypeSong,
				ExternalID:  externalID,
				CacheKey:    cacheKey,
				Title:       "Harvest Moon",
				ContentRef:  "library://songs/harvest-moon",
				OwnerUserID: owner.ID,
			}
			stored, wasCreated, err := s.CreateCatalogEntry(ctx, entry)
			if !assert.NoError(t, err) {
				return
			}
			if wasCreated {
				atomic.AddInt64(&created, 1)
			}
			ids <- stored.ID
		}()
	}
	wg.Wait()
	close(ids)

	assert.Equal(t, int64(1), created)

	// Every racer bound to the same winning entry
	winner := ""
	for id := range ids {
		if winner == "" {
			winner = id
		}
		assert.Equal(t, winner, id)
	}

	_, total, err := s.ListCatalogEntries(ctx, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
}

func testBlacklist(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()

	blacklisted, err := s.IsSourceBlacklisted(ctx, "flaky.example")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	created, err := s.BlacklistSource(ctx, "flaky.example", "5 failures in 24h")
	require.NoError(t, err)
	assert.True(t, created)

	// Duplicate insert is a no-op, not an error
	created, err = s.BlacklistSource(ctx, "flaky.example", "again")
	require.NoError(t, err)
	assert.False(t, created)

	blacklisted, err = s.IsSourceBlacklisted(ctx, "flaky.example")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	sources, err := s.ListBlacklistedSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "flaky.example", sources[0].Source)
	assert.Equal(t, "5 failures in 24h", sources[0].Reason)

	require.NoError(t, s.RemoveBlacklistedSource(ctx, "flaky.example"))
	blacklisted, err = s.IsSourceBlacklisted(ctx, "flaky.example")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func testSourceFailures(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.RecordSourceFailure(ctx, "flaky.example", "retries_exhausted", now.Add(-2*time.Hour)))
	require.NoError(t, s.RecordSourceFailure(ctx, "flaky.example", "source_rejected", now.Add(-30*time.Minute)))
	require.NoError(t, s.RecordSourceFailure(ctx, "flaky.example", "retries_exhausted", now))
	require.NoError(t, s.RecordSourceFailure(ctx, "other.example", "retries_exhausted", now))

	count, err := s.CountSourceFailuresSince(ctx, "flaky.example", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = s.CountSourceFailuresSince(ctx, "flaky.example", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = s.CountSourceFailuresSince(ctx, "quiet.example", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func testUsers(t *testing.T, initStore func(t *testing.T) Store) {
	s := initStore(t)
	ctx := context.Background()

	admin := createTestUser(t, s, func(u *schema.User) {
		u.IsAdmin = true
		u.RequiresApproval = false
	})

	stored, err := s.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.IsAdmin)
	assert.False(t, stored.RequiresApproval)

	missing, err := s.GetUserByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
