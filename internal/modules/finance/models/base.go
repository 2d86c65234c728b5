package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
)

// Base carries the UUID primary key shared by every finance table.
// IDs are stored as 36-char strings so the same schema works on
// PostgreSQL, MySQL and SQLite.
type Base struct {
	ID uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"id"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// All lists the finance tables for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&UserPlan{},
		&Client{},
		&Supplier{},
		&InstallmentSale{},
		&Receivable{},
		&Payable{},
		&WhatsAppInstance{},
		&WhatsAppMessage{},
		&PaymentReminder{},
		&AutoReminderConfig{},
		&AIInsight{},
		&audit.AuditLog{},
	}
}
