// internal/domain/audit/service.go
package audit

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service writes activity log rows. Logging happens after the business
// transaction commits and never fails the operation it describes: a failed
// insert is logged and dropped.
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new activity logging service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Entry describes one action to record
type Entry struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   *uint
	Detail     string
	RequestID  string
}

// Log records an entry in the background
func (s *Service) Log(e Entry) {
	go func() {
		row := &ActivityLog{
			Actor:      e.Actor,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Detail:     e.Detail,
			RequestID:  e.RequestID,
		}
		if err := s.db.Create(row).Error; err != nil {
			s.logger.WithFields(logrus.Fields{
				"action": e.Action,
				"entity": e.EntityType,
			}).Warn(fmt.Sprintf("failed to write activity log: %v", err))
		}
	}()
}

// GetRecent lists the newest entries, capped at limit
func (s *Service) GetRecent(limit int) ([]ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []ActivityLog
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve activity logs: %w", err)
	}
	return logs, nil
}

// GetByEntity lists entries for one entity newest first
func (s *Service) GetByEntity(entityType string, entityID uint) ([]ActivityLog, error) {
	var logs []ActivityLog
	err := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activity logs: %w", err)
	}
	return logs, nil
}

// GetByDateRange lists entries created inside the range
func (s *Service) GetByDateRange(start, end time.Time) ([]ActivityLog, error) {
	var logs []ActivityLog
	err := s.db.Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve activity logs: %w", err)
	}
	return logs, nil
}
