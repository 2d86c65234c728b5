package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service stores and queries the audit trail
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithTx records inside the caller's transaction, so an entry only exists
// when the change it describes was committed.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx}
}

// Record stores one entry
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.Actor == "" {
		e.Actor = ActorUser
	}

	entry := &AuditLog{
		UserID:      e.UserID,
		Actor:       e.Actor,
		Action:      e.Action,
		Entity:      e.Entity,
		EntityID:    e.EntityID,
		OldValue:    toJSON(e.OldValue),
		NewValue:    toJSON(e.NewValue),
		Description: e.Description,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// GetLogs returns a page of the user's trail, newest first.
func (s *Service) GetLogs(ctx context.Context, filter AuditFilter) (*AuditLogResponse, error) {
	query := s.db.WithContext(ctx).Model(&AuditLog{}).Where("user_id = ?", filter.UserID)

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize

	var logs []AuditLog
	if err := query.
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}

	totalPages := int(totalCount) / filter.PageSize
	if int(totalCount)%filter.PageSize > 0 {
		totalPages++
	}

	return &AuditLogResponse{
		Logs:       logs,
		TotalCount: totalCount,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetEntityHistory returns every change of one entity in the order it happened.
func (s *Service) GetEntityHistory(ctx context.Context, userID, entity, entityID string) ([]AuditLog, error) {
	var logs []AuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entity = ? AND entity_id = ?", userID, entity, entityID).
		Order("created_at ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get entity history: %w", err)
	}
	return logs, nil
}

// DeleteOldLogs drops entries older than daysToKeep and reports how many went.
func (s *Service) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep < 1 {
		return 0, fmt.Errorf("daysToKeep must be at least 1")
	}

	cutoff := time.Now().AddDate(0, 0, -daysToKeep)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old audit logs: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		log.Printf("🧹 Deleted %d audit logs older than %d days", result.RowsAffected, daysToKeep)
	}
	return result.RowsAffected, nil
}

// Cleanup is the scheduler job form of DeleteOldLogs.
func (s *Service) Cleanup(daysToKeep int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.DeleteOldLogs(ctx, daysToKeep)
		return err
	}
}

func toJSON(value interface{}) datatypes.JSON {
	if value == nil {
		return nil
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		log.Printf("⚠️  Failed to serialize audit value: %v", err)
		return nil
	}
	return datatypes.JSON(bytes)
}
