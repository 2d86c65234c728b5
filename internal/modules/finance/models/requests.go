package models

import "github.com/shopspring/decimal"

// Dates travel as YYYY-MM-DD strings.

type ClientRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	WhatsApp string `json:"whatsapp" validate:"omitempty,max=20"`
	Document string `json:"document" validate:"omitempty,cpfcnpj"`
	Email    string `json:"email" validate:"omitempty,email,max=120"`
	Address  string `json:"address"`
	ZipCode  string `json:"zip_code" validate:"omitempty,max=10"`
	City     string `json:"city" validate:"omitempty,max=80"`
	State    string `json:"state" validate:"omitempty,len=2"`
}

type SupplierRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Document string `json:"document" validate:"omitempty,cpfcnpj"`
	Email    string `json:"email" validate:"omitempty,email,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address"`
}

// CreateReceivableRequest covers every creation type. An installment
// receivable with NeedsConfirmation becomes an InstallmentSale instead.
type CreateReceivableRequest struct {
	ClientID          string          `json:"client_id" validate:"required,uuid"`
	Description       string          `json:"description" validate:"required,max=200"`
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	DueDate           string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Type              string          `json:"type" validate:"omitempty,oneof=simple installment recurring"`
	Installments      int             `json:"installments" validate:"omitempty,min=1,max=120"`
	NeedsConfirmation bool            `json:"needs_confirmation"`
	RecurrenceMonths  int             `json:"recurrence_months" validate:"omitempty,min=1,max=60"`
}

type CreatePayableRequest struct {
	SupplierID       string          `json:"supplier_id" validate:"omitempty,uuid"`
	Description      string          `json:"description" validate:"required,max=200"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	DueDate          string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	Category         string          `json:"category" validate:"omitempty,max=50"`
	Type             string          `json:"type" validate:"omitempty,oneof=simple installment recurring"`
	Installments     int             `json:"installments" validate:"omitempty,min=1,max=120"`
	RecurrenceMonths int             `json:"recurrence_months" validate:"omitempty,min=1,max=60"`
}

// UpdateAccountRequest edits one receivable or payable. Empty fields are kept.
type UpdateAccountRequest struct {
	Description string           `json:"description" validate:"omitempty,max=200"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     string           `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string           `json:"status" validate:"omitempty,oneof=pending paid overdue cancelled"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
}

type CreateSaleRequest struct {
	ClientID     string          `json:"client_id" validate:"required,uuid"`
	TotalAmount  decimal.Decimal `json:"total_amount" validate:"gt=0"`
	Installments int             `json:"installments" validate:"required,min=1,max=120"`
	Description  string          `json:"description" validate:"required,max=200"`
	Notify       *bool           `json:"notify"` // default true
}

type ApproveSaleRequest struct {
	Notes string `json:"notes"`
}

type RejectSaleRequest struct {
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
	Resend bool   `json:"resend"`
}

type ReminderRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Message      string `json:"message" validate:"required"`
	Days         int    `json:"days" validate:"min=0,max=365"`
	ReminderType string `json:"reminder_type" validate:"omitempty,oneof=due_date overdue follow_up"`
	IsActive     *bool  `json:"is_active"`
}

type ReminderConfigRequest struct {
	EnableDueReminders     *bool  `json:"enable_due_reminders"`
	EnableOverdueReminders *bool  `json:"enable_overdue_reminders"`
	IsActive               *bool  `json:"is_active"`
	DaysBeforeDue          string `json:"days_before_due" validate:"omitempty,max=50"`
	DaysAfterDue           string `json:"days_after_due" validate:"omitempty,max=50"`
	PreferredHour          *int   `json:"preferred_hour" validate:"omitempty,min=0,max=23"`
}

type CreateInstanceRequest struct {
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
}

type SendMessageRequest struct {
	ClientID string `json:"client_id" validate:"required,uuid"`
	Message  string `json:"message" validate:"required,max=4000"`
}

type SetPlanRequest struct {
	PlanName string `json:"plan_name" validate:"required,oneof=Free Premium"`
}
