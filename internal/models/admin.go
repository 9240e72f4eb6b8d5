package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONB stores free-form JSON details
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// GormDataType is the generic type gorm needs to parse the field
func (JSONB) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect
func (JSONB) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	}
	return "TEXT"
}

// Roles
const (
	RoleAdmin = "admin"
)

// UserRole grants a privileged role to an account. It is the only source
// of truth for authorization and is re-read on every admin request.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;uniqueIndex:idx_user_roles_account_role" json:"account_id"`
	Role      string    `gorm:"size:20;not null;uniqueIndex:idx_user_roles_account_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// AdminLog records admin actions for audit trail
type AdminLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminID      uint      `gorm:"not null;index" json:"admin_id"`
	Action       string    `gorm:"size:100;not null" json:"action"`
	ResourceType string    `gorm:"size:50" json:"resource_type"`
	ResourceID   *uint     `json:"resource_id"`
	Details      JSONB     `json:"details"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}

// DashboardStats is the admin overview
type DashboardStats struct {
	TotalUsers         int64  `json:"total_users"`
	NewUsersToday      int64  `json:"new_users_today"`
	PendingWithdrawals int64  `json:"pending_withdrawals"`
	PendingRecharges   int64  `json:"pending_recharges"`
	ActiveOwnerships   int64  `json:"active_ownerships"`
	RechargedToday     string `json:"recharged_today"`
	WithdrawnToday     string `json:"withdrawn_today"`
}

// OutboxMessage is an event stored in the same database transaction as the
// change it describes and published later by the outbox sender.
type OutboxMessage struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	EventID    string     `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	Topic      string     `gorm:"size:100;not null" json:"topic"`
	Key        string     `gorm:"size:64" json:"key"`
	Payload    string     `gorm:"type:text;not null" json:"payload"`
	Status     string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	RetryCount int        `gorm:"not null;default:0" json:"retry_count"`
	LastError  string     `gorm:"type:text" json:"last_error,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)
