package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	InsightCashFlow   = "cash_flow"
	InsightClientRisk = "client_risk"
	InsightBusiness   = "business"
)

// AIInsight stores one generated analysis
type AIInsight struct {
	Base
	UserID   uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Kind     string         `gorm:"type:varchar(30);not null" json:"kind"`
	Model    string         `gorm:"type:varchar(50)" json:"model"`
	Summary  string         `gorm:"type:text" json:"summary"`
	Payload  datatypes.JSON `json:"payload"`
	Snapshot datatypes.JSON `json:"snapshot,omitempty"` // figures sent to the model

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AIInsight) TableName() string {
	return "ai_insights"
}
