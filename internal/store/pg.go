package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	// database/sql treats MaxIdleConns above MaxOpenConns as wasted slots
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// GetUserByID retrieves a user by ID
func (s *pgStore) GetUserByID(ctx context.Context, userID string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateUser creates a new user
func (s *pgStore) CreateUser(ctx context.Context, user *schema.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// CreateRequest inserts a new request. The partial unique index on
// (requester_id, media_type, external_id) over pending/approved rows turns a
// duplicate submission into a conflict no-op, which is reported as
// domain.ErrDuplicatePendingRequest. Terminal rows never block resubmission.
func (s *pgStore) CreateRequest(ctx context.Context, request *schema.Request) error {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "requester_id"}, {Name: "media_type"}, {Name: "external_id"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "status IN ('pending','approved')"},
		}},
		DoNothing: true,
	}).Create(request)
	if tx.Error != nil {
		return fmt.Errorf("failed to create request: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.ErrDuplicatePendingRequest
	}
	return nil
}

// GetRequestByID retrieves a request by ID
func (s *pgStore) GetRequestByID(ctx context.Context, requestID string) (*schema.Request, error) {
	var request schema.Request
	err := s.db.WithContext(ctx).Where("id = ?", requestID).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &request, nil
}

// ListRequestsByStatus retrieves requests in ascending created_at order (FIFO fairness)
func (s *pgStore) ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset uint64) ([]*schema.Request, uint64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&schema.Request{}).
		Where("status = ?", status).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	var requests []*schema.Request
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&requests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	return requests, uint64(total), nil //nolint:gosec,G115
}

// ListApprovedDue retrieves approved requests visible for processing, oldest first
func (s *pgStore) ListApprovedDue(ctx context.Context, now time.Time, limit int) ([]*schema.Request, error) {
	var requests []*schema.Request
	err := s.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.RequestStatusApproved, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list approved requests: %w", err)
	}
	return requests, nil
}

// TransitionRequest atomically moves a request between statuses using
// compare-and-swap semantics: the UPDATE is guarded by the expected current
// status (and, when set, the expected attempt counter), so two racing workers
// never both succeed. The loser observes domain.ErrInvalidTransition and is
// expected to skip the request.
func (s *pgStore) TransitionRequest(ctx context.Context, requestID string, from, to domain.RequestStatus, updates RequestUpdates) (*schema.Request, error) {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": gorm.Expr("now()"),
	}
	if updates.ApproverID != nil {
		values["approver_id"] = *updates.ApproverID
	}
	if updates.FailureReason != nil {
		values["failure_reason"] = *updates.FailureReason
	}
	if updates.RejectReason != nil {
		values["reject_reason"] = *updates.RejectReason
	}
	if updates.CatalogEntryID != nil {
		values["catalog_entry_id"] = *updates.CatalogEntryID
	}
	if updates.IncrementAttempts {
		values["attempts"] = gorm.Expr("attempts + 1")
	}
	if updates.NextAttemptAt != nil {
		values["next_attempt_at"] = *updates.NextAttemptAt
	}

	query := s.db.WithContext(ctx).Model(&schema.Request{}).
		Where("id = ? AND status = ?", requestID, from)
	if updates.ExpectedAttempts != nil {
		query = query.Where("attempts = ?", *updates.ExpectedAttempts)
	}

	tx := query.Updates(values)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to transition request: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		// Distinguish a missing row from a concurrent transition
		existing, err := s.GetRequestByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("%w: request %s is %s attempts=%d, expected %s",
			domain.ErrInvalidTransition, requestID, existing.Status, existing.Attempts, from)
	}

	return s.GetRequestByID(ctx, requestID)
}

// RescheduleRequest pushes an approved request's visibility time forward without
// touching status or attempts
func (s *pgStore) RescheduleRequest(ctx context.Context, requestID string, nextAttemptAt time.Time) error {
	tx := s.db.WithContext(ctx).Model(&schema.Request{}).
		Where("id = ? AND status = ?", requestID, domain.RequestStatusApproved).
		Updates(map[string]interface{}{
			"next_attempt_at": nextAttemptAt,
			"updated_at":      gorm.Expr("now()"),
		})
	if tx.Error != nil {
		return fmt.Errorf("failed to reschedule request: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%w: request %s is no longer approved", domain.ErrInvalidTransition, requestID)
	}
	return nil
}

// GetCatalogEntryByCacheKey retrieves a catalog entry by its dedup key
func (s *pgStore) GetCatalogEntryByCacheKey(ctx context.Context, mediaType domain.MediaType, cacheKey domain.CacheKey) (*schema.CatalogEntry, error) {
	var entry schema.CatalogEntry
	err := s.db.WithContext(ctx).
		Where("media_type = ? AND cache_key = ?", mediaType, cacheKey).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return &entry, nil
}

// CreateCatalogEntry inserts a catalog entry unless one already exists for its
// (media_type, cache_key). The unique index makes the first creator win; a
// loser's insert is a conflict no-op and the winner's row is returned instead.
func (s *pgStore) CreateCatalogEntry(ctx context.Context, entry *schema.CatalogEntry) (*schema.CatalogEntry, bool, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "media_type"}, {Name: "cache_key"}},
		DoNothing: true,
	}).Create(entry)
	if tx.Error != nil {
		return nil, false, fmt.Errorf("failed to create catalog entry: %w", tx.Error)
	}
	if tx.RowsAffected > 0 {
		return entry, true, nil
	}

	winner, err := s.GetCatalogEntryByCacheKey(ctx, entry.MediaType, entry.CacheKey)
	if err != nil {
		return nil, false, err
	}
	if winner == nil {
		return nil, false, fmt.Errorf("catalog entry conflict but winner not found for cache key %s", entry.CacheKey)
	}
	return winner, false, nil
}

// ListCatalogEntries retrieves catalog entries, newest first
func (s *pgStore) ListCatalogEntries(ctx context.Context, mediaType *domain.MediaType, limit int, offset uint64) ([]*schema.CatalogEntry, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.CatalogEntry{})
	if mediaType != nil {
		query = query.Where("media_type = ?", *mediaType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog entries: %w", err)
	}

	var entries []*schema.CatalogEntry
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list catalog entries: %w", err)
	}

	return entries, uint64(total), nil //nolint:gosec,G115
}

// IsSourceBlacklisted checks whether a source is permanently excluded
func (s *pgStore) IsSourceBlacklisted(ctx context.Context, source string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.BlacklistedSource{}).
		Where("source = ?", source).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return count > 0, nil
}

// BlacklistSource inserts a source into the blacklist. A duplicate insert is a
// no-op, not an error.
func (s *pgStore) BlacklistSource(ctx context.Context, source, reason string) (bool, error) {
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}},
		DoNothing: true,
	}).Create(&schema.BlacklistedSource{
		Source: source,
		Reason: reason,
	})
	if tx.Error != nil {
		return false, fmt.Errorf("failed to blacklist source: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// ListBlacklistedSources retrieves all blacklisted sources
func (s *pgStore) ListBlacklistedSources(ctx context.Context) ([]*schema.BlacklistedSource, error) {
	var sources []*schema.BlacklistedSource
	err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklisted sources: %w", err)
	}
	return sources, nil
}

// RemoveBlacklistedSource removes a source from the blacklist
func (s *pgStore) RemoveBlacklistedSource(ctx context.Context, source string) error {
	err := s.db.WithContext(ctx).
		Where("source = ?", source).
		Delete(&schema.BlacklistedSource{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove blacklisted source: %w", err)
	}
	return nil
}

// RecordSourceFailure appends a terminal failure to the per-source tally
func (s *pgStore) RecordSourceFailure(ctx context.Context, source, reason string, occurredAt time.Time) error {
	err := s.db.WithContext(ctx).Create(&schema.SourceFailure{
		Source:     source,
		Reason:     reason,
		OccurredAt: occurredAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record source failure: %w", err)
	}
	return nil
}

// CountSourceFailuresSince counts tallied failures for a source within the window
func (s *pgStore) CountSourceFailuresSince(ctx context.Context, source string, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&schema.SourceFailure{}).
		Where("source = ? AND occurred_at >= ?", source, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count source failures: %w", err)
	}
	return count, nil
}
