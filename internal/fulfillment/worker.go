package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelftunes/st-requests/internal/adapter"
	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/logger"
	"github.com/shelftunes/st-requests/internal/messaging"
	"github.com/shelftunes/st-requests/internal/source"
	"github.com/shelftunes/st-requests/internal/store"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// collisionHoldDelay pushes a cache-key collision out of worker visibility
// until an operator has looked at it
const collisionHoldDelay = 30 * 24 * time.Hour

// Config holds configuration for the fulfillment worker
type Config struct {
	PoolSize     int           // Concurrent workers
	QueueSize    int           // Pool queue capacity
	BatchSize    int           // Requests dequeued per cycle
	PollInterval time.Duration // Idle sleep between cycles
	MaxAttempts  int           // Attempt budget for transient failures
	BackoffBase  time.Duration // Seed of the exponential retry delay
	BackoffCap   time.Duration // Upper bound on the retry delay
	FetchTimeout time.Duration // Budget for a single adapter fetch

	BlacklistThreshold int           // Terminal failures within the window that blacklist a source
	BlacklistWindow    time.Duration // Rolling window for the failure tally
}

// Worker runs the fulfillment state machine over due approved requests
type Worker struct {
	config   *Config
	store    store.Store
	adapter  source.Adapter
	recorder messaging.Recorder
	clock    adapter.Clock
	pool     pond.Pool
	running  atomic.Bool
	stopChan chan struct{}
	stopped  chan struct{}

	// keyLocks serializes catalog entry creation per cache key within this
	// process; the unique index is the cross-process guarantee
	keyLocks sync.Map
}

// NewWorker creates a new fulfillment worker
func NewWorker(
	config *Config,
	st store.Store,
	sourceAdapter source.Adapter,
	recorder messaging.Recorder,
	clock adapter.Clock,
) *Worker {
	return &Worker{
		config:   config,
		store:    st,
		adapter:  sourceAdapter,
		recorder: recorder,
		clock:    clock,
		stopChan: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins the worker's main loop - continuously dequeues due requests
func (w *Worker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("fulfillment worker already running")
	}
	defer func() {
		w.running.Store(false)
		close(w.stopped)
	}()

	logger.InfoCtx(ctx, "Starting fulfillment worker",
		zap.Int("pool_size", w.config.PoolSize),
		zap.Int("batch_size", w.config.BatchSize),
		zap.Int("max_attempts", w.config.MaxAttempts),
		zap.Duration("poll_interval", w.config.PollInterval),
	)

	w.pool = pond.NewPool(
		w.config.PoolSize,
		pond.WithQueueSize(w.config.QueueSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Fulfillment worker stopping due to context cancellation", zap.Error(ctx.Err()))
			w.cleanup()
			return nil
		case <-w.stopChan:
			logger.InfoCtx(ctx, "Fulfillment worker stop requested")
			w.cleanup()
			return nil
		default:
			if err := w.runCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for in-flight requests to finish
func (w *Worker) cleanup() {
	if w.pool != nil {
		w.pool.StopAndWait()
	}
}

// Stop gracefully stops the worker with timeout support
func (w *Worker) Stop(ctx context.Context) error {
	if !w.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping fulfillment worker")
	close(w.stopChan)

	select {
	case <-w.stopped:
		logger.InfoCtx(ctx, "Fulfillment worker stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Fulfillment worker stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runCycle dequeues one batch of due requests and processes it on the pool
func (w *Worker) runCycle(ctx context.Context) error {
	now := w.clock.Now().UTC()

	requests, err := w.store.ListApprovedDue(ctx, now, w.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due requests: %w", err)
	}

	if len(requests) == 0 {
		if !w.sleep(ctx, w.config.PollInterval) {
			return ctx.Err()
		}
		return nil
	}

	logger.InfoCtx(ctx, "Dequeued due requests", zap.Int("count", len(requests)))

	for _, request := range requests {
		w.pool.Submit(func() {
			w.Process(ctx, request)
		})
	}

	w.pool.StopAndWait()

	// Recreate pool for next cycle
	w.pool = pond.NewPool(
		w.config.PoolSize,
		pond.WithQueueSize(w.config.QueueSize),
		pond.WithContext(ctx),
	)

	if !w.sleep(ctx, w.config.PollInterval) {
		return ctx.Err()
	}

	return nil
}

// sleep sleeps for the given duration but can be interrupted by context
// cancellation or a stop request. Returns false when interrupted.
func (w *Worker) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-w.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}

// Process runs the fulfillment state machine on a single approved request.
// Every status change is a compare-and-swap from approved; losing a race to
// another worker or an admin is not an error, the request is simply skipped.
func (w *Worker) Process(ctx context.Context, request *schema.Request) {
	// Blacklisted sources fail without ever touching the adapter
	blacklisted, err := w.store.IsSourceBlacklisted(ctx, request.Source)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("request_id", request.ID))
		return
	}
	if blacklisted {
		w.failRequest(ctx, request, domain.FailureReasonSourceBlacklisted, false,
			fmt.Sprintf("source %q is blacklisted", request.Source))
		return
	}

	cacheKey := domain.DeriveCacheKey(request.MediaType, request.ExternalID)

	// An existing catalog entry short-circuits the fetch
	entry, err := w.store.GetCatalogEntryByCacheKey(ctx, request.MediaType, cacheKey)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("request_id", request.ID))
		return
	}
	if entry != nil {
		if entry.ExternalID == request.ExternalID {
			w.fulfill(ctx, request, entry)
		} else {
			w.holdCollision(ctx, request, entry)
		}
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, w.config.FetchTimeout)
	result, err := w.adapter.Fetch(fetchCtx, request.MediaType, request.ExternalID)
	cancel()
	if err != nil {
		// The adapter could not run the attempt; indistinguishable from a
		// transient source failure for scheduling purposes
		result = &source.FetchResult{
			Outcome: source.OutcomeTransient,
			Reason:  err.Error(),
		}
	}

	switch result.Outcome {
	case source.OutcomeSuccess:
		w.createEntryAndFulfill(ctx, request, cacheKey, result)
	case source.OutcomeTransient:
		w.retryOrFail(ctx, request, result.Reason)
	case source.OutcomePermanent:
		w.failRequest(ctx, request, domain.FailureReasonSourceRejected, true, result.Reason)
	default:
		// Unrecognized outcomes are treated as transient so nothing is fatal
		w.retryOrFail(ctx, request, fmt.Sprintf("unrecognized outcome %q", result.Outcome))
	}
}

// createEntryAndFulfill inserts the catalog entry (first creator wins) and
// binds the request to it
func (w *Worker) createEntryAndFulfill(ctx context.Context, request *schema.Request, cacheKey domain.CacheKey, result *source.FetchResult) {
	unlock := w.lockKey(cacheKey)
	defer unlock()

	entry := &schema.CatalogEntry{
		ID:          uuid.NewString(),
		MediaType:   request.MediaType,
		ExternalID:  request.ExternalID,
		CacheKey:    cacheKey,
		Title:       result.Title,
		Artist:      result.Artist,
		Author:      result.Author,
		ContentRef:  result.ContentRef,
		Metadata:    result.Metadata,
		OwnerUserID: request.RequesterID,
	}

	stored, created, err := w.store.CreateCatalogEntry(ctx, entry)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("request_id", request.ID))
		return
	}
	if !created && stored.ExternalID != request.ExternalID {
		// Lost the insert race to a different item with the same key
		w.holdCollision(ctx, request, stored)
		return
	}

	w.fulfill(ctx, request, stored)
}

// fulfill binds the request to its catalog entry and marks it fulfilled
func (w *Worker) fulfill(ctx context.Context, request *schema.Request, entry *schema.CatalogEntry) {
	updated, err := w.store.TransitionRequest(ctx, request.ID,
		domain.RequestStatusApproved, domain.RequestStatusFulfilled,
		store.RequestUpdates{CatalogEntryID: &entry.ID})
	if err != nil {
		w.logTransitionError(ctx, request, err)
		return
	}

	logger.InfoCtx(ctx, "Request fulfilled",
		zap.String("request_id", request.ID),
		zap.String("catalog_entry_id", entry.ID))

	w.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestFulfilled,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		Attempts:   updated.Attempts,
		Status:     updated.Status,
	})
}

// holdCollision parks a request whose cache key maps to a different item.
// The request stays approved but invisible to workers; entries are never
// silently merged.
func (w *Worker) holdCollision(ctx context.Context, request *schema.Request, entry *schema.CatalogEntry) {
	logger.WarnCtx(ctx, "Cache key collision, holding request for inspection",
		zap.String("request_id", request.ID),
		zap.String("request_external_id", string(request.ExternalID)),
		zap.String("entry_external_id", string(entry.ExternalID)),
		zap.String("cache_key", string(entry.CacheKey)))

	holdUntil := w.clock.Now().UTC().Add(collisionHoldDelay)
	if err := w.store.RescheduleRequest(ctx, request.ID, holdUntil); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("request_id", request.ID))
	}
}

// retryOrFail reschedules a transient failure, or fails the request once the
// attempt budget is spent
func (w *Worker) retryOrFail(ctx context.Context, request *schema.Request, reason string) {
	attempts := request.Attempts + 1

	if attempts < w.config.MaxAttempts {
		nextAttemptAt := w.clock.Now().UTC().Add(w.backoffDelay(attempts))
		// The status alone cannot guard this CAS (approved stays approved),
		// so the observed attempt counter is part of the guard: two workers
		// holding the same snapshot never both consume the attempt
		_, err := w.store.TransitionRequest(ctx, request.ID,
			domain.RequestStatusApproved, domain.RequestStatusApproved,
			store.RequestUpdates{
				IncrementAttempts: true,
				NextAttemptAt:     &nextAttemptAt,
				ExpectedAttempts:  &request.Attempts,
			})
		if err != nil {
			w.logTransitionError(ctx, request, err)
			return
		}

		logger.InfoCtx(ctx, "Transient failure, retrying later",
			zap.String("request_id", request.ID),
			zap.Int("attempts", attempts),
			zap.Time("next_attempt_at", nextAttemptAt),
			zap.String("reason", reason))
		return
	}

	w.failRequest(ctx, request, domain.FailureReasonRetriesExhausted, true, reason)
}

// backoffDelay computes the visibility delay after the given attempt count:
// base * 2^attempts, capped
func (w *Worker) backoffDelay(attempts int) time.Duration {
	delay := w.config.BackoffBase
	for i := 0; i < attempts; i++ {
		delay *= 2
		if delay >= w.config.BackoffCap {
			return w.config.BackoffCap
		}
	}
	return delay
}

// failRequest moves the request to the terminal failed status, optionally
// feeding the source failure tally
func (w *Worker) failRequest(ctx context.Context, request *schema.Request, reason domain.FailureReason, tally bool, detail string) {
	updates := store.RequestUpdates{FailureReason: &reason}
	if tally {
		// Failures that consumed a fetch attempt also count it
		updates.IncrementAttempts = true
	}

	updated, err := w.store.TransitionRequest(ctx, request.ID,
		domain.RequestStatusApproved, domain.RequestStatusFailed, updates)
	if err != nil {
		w.logTransitionError(ctx, request, err)
		return
	}

	logger.WarnCtx(ctx, "Request failed",
		zap.String("request_id", request.ID),
		zap.String("failure_reason", string(reason)),
		zap.String("detail", detail))

	w.record(ctx, &domain.ActivityEvent{
		EventType:  domain.EventTypeRequestFailed,
		RequestID:  request.ID,
		MediaType:  request.MediaType,
		ExternalID: request.ExternalID,
		Reason:     string(reason),
		Attempts:   updated.Attempts,
		Status:     updated.Status,
	})

	if tally {
		w.recordSourceFailure(ctx, request, string(reason)+": "+detail)
	}
}

// recordSourceFailure appends to the source failure tally and blacklists the
// source once it crosses the windowed threshold
func (w *Worker) recordSourceFailure(ctx context.Context, request *schema.Request, reason string) {
	now := w.clock.Now().UTC()

	if err := w.store.RecordSourceFailure(ctx, request.Source, reason, now); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("source", request.Source))
		return
	}

	count, err := w.store.CountSourceFailuresSince(ctx, request.Source, now.Add(-w.config.BlacklistWindow))
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("source", request.Source))
		return
	}
	if count < int64(w.config.BlacklistThreshold) {
		return
	}

	created, err := w.store.BlacklistSource(ctx, request.Source,
		fmt.Sprintf("%d failures within %s", count, w.config.BlacklistWindow))
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("source", request.Source))
		return
	}
	if !created {
		return // Already blacklisted by a concurrent worker
	}

	logger.WarnCtx(ctx, "Source blacklisted",
		zap.String("source", request.Source),
		zap.Int64("failures", count),
		zap.Duration("window", w.config.BlacklistWindow))

	w.record(ctx, &domain.ActivityEvent{
		EventType: domain.EventTypeSourceBlacklisted,
		MediaType: request.MediaType,
		Source:    request.Source,
		Reason:    fmt.Sprintf("%d failures within %s", count, w.config.BlacklistWindow),
	})
}

// lockKey acquires the per-cache-key mutex and returns its release func
func (w *Worker) lockKey(key domain.CacheKey) func() {
	muAny, _ := w.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// logTransitionError reports a failed status transition. Losing a
// compare-and-swap race is expected and only logged at debug level.
func (w *Worker) logTransitionError(ctx context.Context, request *schema.Request, err error) {
	if errors.Is(err, domain.ErrInvalidTransition) {
		logger.DebugCtx(ctx, "Skipping request, status changed concurrently",
			zap.String("request_id", request.ID))
		return
	}
	logger.ErrorCtx(ctx, err, zap.String("request_id", request.ID))
}

func (w *Worker) record(ctx context.Context, event *domain.ActivityEvent) {
	if err := w.recorder.Record(ctx, event); err != nil {
		logger.WarnCtx(ctx, "failed to record activity event",
			zap.Error(err),
			zap.String("event_type", string(event.EventType)),
			zap.String("request_id", event.RequestID))
	}
}
