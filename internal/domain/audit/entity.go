// internal/domain/audit/entity.go
package audit

import "time"

// ActivityLog is one recorded user/system action. It is an operational
// trail, not part of stock accounting; the movement ledger alone is
// authoritative for balances.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Actor      string    `gorm:"size:100;index" json:"actor"`
	Action     string    `gorm:"not null;size:50;index" json:"action"`
	EntityType string    `gorm:"size:50;index" json:"entity_type"`
	EntityID   *uint     `gorm:"index" json:"entity_id,omitempty"`
	Detail     string    `gorm:"size:500" json:"detail"`
	RequestID  string    `gorm:"size:64" json:"request_id,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (ActivityLog) TableName() string { return "activity_logs" }
