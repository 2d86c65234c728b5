package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is someone who owes the user money
type Client struct {
	Base
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name     string    `gorm:"type:varchar(120);not null" json:"name"`
	WhatsApp string    `gorm:"column:whatsapp;type:varchar(20)" json:"whatsapp"`
	Document string    `gorm:"type:varchar(20)" json:"document"` // CPF or CNPJ
	Email    string    `gorm:"type:varchar(120)" json:"email"`
	Address  string    `gorm:"type:text" json:"address"`
	ZipCode  string    `gorm:"type:varchar(10)" json:"zip_code"`
	City     string    `gorm:"type:varchar(80)" json:"city"`
	State    string    `gorm:"type:varchar(2)" json:"state"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Supplier is someone the user owes money to
type Supplier struct {
	Base
	UserID   uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name     string    `gorm:"type:varchar(120);not null" json:"name"`
	Document string    `gorm:"type:varchar(20)" json:"document"`
	Email    string    `gorm:"type:varchar(120)" json:"email"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone"`
	Address  string    `gorm:"type:text" json:"address"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
