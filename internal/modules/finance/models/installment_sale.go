package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is the lifecycle state of an installment sale
type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SaleConfirmed SaleStatus = "confirmed"
	SaleApproved  SaleStatus = "approved"
	SaleRejected  SaleStatus = "rejected"
)

// InstallmentSale is a multi-payment sale the client confirms through a
// public link before the merchant approves it and receivables are generated.
type InstallmentSale struct {
	Base
	UserID            uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ClientID          uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"client_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Installments      int             `gorm:"not null" json:"installments"`
	Description       string          `gorm:"type:varchar(200);not null" json:"description"`
	Status            SaleStatus      `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ConfirmationToken string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"confirmation_token"`
	DocumentURL       string          `gorm:"type:varchar(500)" json:"document_url,omitempty"`
	DocumentKey       string          `gorm:"type:varchar(300)" json:"-"`
	ApprovalNotes     string          `gorm:"type:text" json:"approval_notes,omitempty"`
	ConfirmedAt       *time.Time      `json:"confirmed_at,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (InstallmentSale) TableName() string {
	return "installment_sales"
}
