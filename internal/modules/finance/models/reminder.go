package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ReminderDueDate  = "due_date"
	ReminderOverdue  = "overdue"
	ReminderFollowUp = "follow_up"
)

// PaymentReminder is a user-written message template
type PaymentReminder struct {
	Base
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	Days         int       `gorm:"not null" json:"days"`
	ReminderType string    `gorm:"type:varchar(20);not null;default:'due_date'" json:"reminder_type"`
	IsActive     bool      `gorm:"not null" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentReminder) TableName() string {
	return "payment_reminders"
}

// AutoReminderConfig controls the hourly reminder job for one user
type AutoReminderConfig struct {
	Base
	UserID                 uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	EnableDueReminders     bool      `gorm:"not null" json:"enable_due_reminders"`
	EnableOverdueReminders bool      `gorm:"not null" json:"enable_overdue_reminders"`
	IsActive               bool      `gorm:"not null" json:"is_active"`
	DaysBeforeDue          string    `gorm:"type:varchar(50);not null;default:'1,3,7'" json:"days_before_due"`
	DaysAfterDue           string    `gorm:"type:varchar(50);not null;default:'1,3,7,15,30'" json:"days_after_due"`
	PreferredHour          int       `gorm:"not null" json:"preferred_hour"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AutoReminderConfig) TableName() string {
	return "auto_reminder_configs"
}

// DefaultReminderConfig is used for users that never saved one.
func DefaultReminderConfig(userID uuid.UUID) AutoReminderConfig {
	return AutoReminderConfig{
		UserID:                 userID,
		EnableDueReminders:     true,
		EnableOverdueReminders: true,
		IsActive:               true,
		DaysBeforeDue:          "1,3,7",
		DaysAfterDue:           "1,3,7,15,30",
		PreferredHour:          9,
	}
}

// ParseDays turns "1, 3,7" into [1 3 7], skipping junk and non-positive values.
func ParseDays(s string) []int {
	var days []int
	seen := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	return days
}
