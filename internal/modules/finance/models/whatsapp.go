package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InstanceDisconnected = "disconnected"
	InstanceConnecting   = "connecting"
	InstanceConnected    = "connected"
)

// WhatsAppInstance is a gateway session owned by a user
type WhatsAppInstance struct {
	Base
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	InstanceName string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"instance_name"`
	PhoneNumber  string    `gorm:"type:varchar(20)" json:"phone_number"`
	Status       string    `gorm:"type:varchar(20);not null;default:'disconnected'" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhatsAppInstance) TableName() string {
	return "whatsapp_instances"
}

// WhatsAppMessage is the append-only log of send attempts
type WhatsAppMessage struct {
	Base
	UserID       uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ClientID     *uuid.UUID `gorm:"type:varchar(36);index" json:"client_id,omitempty"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`
	MessageType  string     `gorm:"type:varchar(50);not null" json:"message_type"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	Status       string     `gorm:"type:varchar(20);not null" json:"status"` // sent, failed
	TemplateType string     `gorm:"type:varchar(50)" json:"template_type,omitempty"`
	Error        string     `gorm:"type:text" json:"error,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WhatsAppMessage) TableName() string {
	return "whatsapp_messages"
}
