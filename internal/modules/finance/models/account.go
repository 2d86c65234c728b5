package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account statuses, shared by receivables and payables
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Creation types
const (
	TypeSimple      = "simple"
	TypeInstallment = "installment"
	TypeRecurring   = "recurring"
)

// Receivable is money a client owes the user
type Receivable struct {
	Base
	UserID      uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ClientID    uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"client_id"`
	Description string          `gorm:"type:varchar(200);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Type        string          `gorm:"type:varchar(20);not null;default:'simple'" json:"type"`

	InstallmentNumber *int       `json:"installment_number,omitempty"`
	TotalInstallments *int       `json:"total_installments,omitempty"`
	ParentID          *uuid.UUID `gorm:"type:varchar(36);index" json:"parent_id,omitempty"` // installment sale
	PaidAt            *time.Time `json:"paid_at,omitempty"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Receivable) TableName() string {
	return "receivables"
}

// Payable is money the user owes
type Payable struct {
	Base
	UserID      uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	SupplierID  *uuid.UUID      `gorm:"type:varchar(36);index" json:"supplier_id,omitempty"`
	Description string          `gorm:"type:varchar(200);not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Category    string          `gorm:"type:varchar(50)" json:"category"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payable) TableName() string {
	return "payables"
}
