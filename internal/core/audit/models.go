package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded by the finance module
const (
	ActionCreate          = "create"
	ActionConfirm         = "confirm"
	ActionApprove         = "approve"
	ActionReject          = "reject"
	ActionResend          = "resend"
	ActionRegenerateToken = "regenerate_token"
	ActionDelete          = "delete"
	ActionPlanChange      = "plan_change"
	ActionPlanExpire      = "plan_expire"
)

// Actors other than the owning user
const (
	ActorUser   = "user"
	ActorClient = "client"
	ActorAdmin  = "admin"
	ActorSystem = "system"
)

// AuditLog is one state change of an entity owned by UserID.
type AuditLog struct {
	ID uuid.UUID `json:"id" gorm:"type:varchar(36);primaryKey"`

	// Owner of the entity
	UserID uuid.UUID `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Actor  string    `json:"actor" gorm:"type:varchar(20);not null"`

	Action   string `json:"action" gorm:"type:varchar(30);not null;index"`
	Entity   string `json:"entity" gorm:"type:varchar(40);not null;index:idx_audit_entity"`
	EntityID string `json:"entity_id" gorm:"type:varchar(36);index:idx_audit_entity"`

	OldValue datatypes.JSON `json:"old_value,omitempty"`
	NewValue datatypes.JSON `json:"new_value,omitempty"`

	Description string `json:"description,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Entry describes a change before it is stored.
type Entry struct {
	UserID      uuid.UUID
	Actor       string
	Action      string
	Entity      string
	EntityID    string
	OldValue    interface{}
	NewValue    interface{}
	Description string
}

// AuditFilter narrows GetLogs to one user's trail.
type AuditFilter struct {
	UserID    string
	Action    string
	Entity    string
	EntityID  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

type AuditLogResponse struct {
	Logs       []AuditLog `json:"logs"`
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
