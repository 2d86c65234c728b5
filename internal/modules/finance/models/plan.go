package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PlanFree    = "Free"
	PlanPremium = "Premium"

	// Unlimited is how Premium spells "no cap"
	Unlimited = 999999
)

// PlanSpec is a catalog entry
type PlanSpec struct {
	Name           string          `json:"name"`
	MaxClients     int             `json:"max_clients"`
	MaxReceivables int             `json:"max_receivables"`
	MaxPayables    int             `json:"max_payables"`
	Price          decimal.Decimal `json:"price"`
	AIInsights     bool            `json:"ai_insights"`
	Duration       time.Duration   `json:"-"` // 0 never expires
}

var FreeSpec = PlanSpec{
	Name:           PlanFree,
	MaxClients:     5,
	MaxReceivables: 20,
	MaxPayables:    20,
	Price:          decimal.Zero,
}

// PremiumSpec is priced at runtime from configuration.
func PremiumSpec(price decimal.Decimal) PlanSpec {
	return PlanSpec{
		Name:           PlanPremium,
		MaxClients:     Unlimited,
		MaxReceivables: Unlimited,
		MaxPayables:    Unlimited,
		Price:          price,
		AIInsights:     true,
		Duration:       30 * 24 * time.Hour,
	}
}

// UserPlan is the plan a user is on. One row per user.
type UserPlan struct {
	Base
	UserID         uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	PlanName       string     `gorm:"type:varchar(50);not null;default:'Free'" json:"plan_name"`
	MaxClients     int        `gorm:"not null" json:"max_clients"`
	MaxReceivables int        `gorm:"not null" json:"max_receivables"`
	MaxPayables    int        `gorm:"not null" json:"max_payables"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserPlan) TableName() string {
	return "user_plans"
}

// Expired reports whether the plan's paid period ended before now.
func (p *UserPlan) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && p.ExpiresAt.Before(now)
}

// Apply copies a catalog entry onto the plan.
func (p *UserPlan) Apply(spec PlanSpec, now time.Time) {
	p.PlanName = spec.Name
	p.MaxClients = spec.MaxClients
	p.MaxReceivables = spec.MaxReceivables
	p.MaxPayables = spec.MaxPayables
	p.IsActive = true
	p.ExpiresAt = nil
	if spec.Duration > 0 {
		expires := now.Add(spec.Duration)
		p.ExpiresAt = &expires
	}
}

// IsPremium is true for a Premium plan that has not expired.
func (p *UserPlan) IsPremium(now time.Time) bool {
	return p.PlanName == PlanPremium && p.IsActive && !p.Expired(now)
}
