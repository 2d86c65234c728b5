package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

type OverdueResult struct {
	Receivables int64 `json:"receivables_updated"`
	Payables    int64 `json:"payables_updated"`
}

// DueSoon lists open accounts due between today and today+Days
type DueSoon struct {
	Days        int                 `json:"days"`
	Receivables []models.Receivable `json:"receivables"`
	Payables    []models.Payable    `json:"payables"`
}

// OverdueService flips pending accounts past their due date to overdue.
type OverdueService struct {
	receivables repositories.ReceivableRepo
	payables    repositories.PayableRepo
	location    *time.Location
	now         func() time.Time
}

// NewOverdueService decides what "today" is in loc, UTC when nil.
func NewOverdueService(db *gorm.DB, loc *time.Location) *OverdueService {
	if loc == nil {
		loc = time.UTC
	}
	return &OverdueService{
		receivables: repositories.NewReceivableRepo(db),
		payables:    repositories.NewPayableRepo(db),
		location:    loc,
		now:         time.Now,
	}
}

func (s *OverdueService) today() time.Time {
	return money.DateOnly(s.now().In(s.location))
}

// MarkOverdue updates one user's accounts, or everybody's when userID is
// empty. Running it twice changes nothing the second time.
func (s *OverdueService) MarkOverdue(ctx context.Context, userID string) (*OverdueResult, error) {
	today := s.today()

	receivables, err := s.receivables.MarkOverdue(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to mark receivables overdue: %w", err)
	}
	payables, err := s.payables.MarkOverdue(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to mark payables overdue: %w", err)
	}
	return &OverdueResult{Receivables: receivables, Payables: payables}, nil
}

// Run is the daily job over all users.
func (s *OverdueService) Run(ctx context.Context) error {
	result, err := s.MarkOverdue(ctx, "")
	if err != nil {
		return err
	}
	log.Printf("⏰ Overdue job: %d receivables, %d payables marked overdue", result.Receivables, result.Payables)
	return nil
}

func (s *OverdueService) DueSoon(ctx context.Context, userID string, days int) (*DueSoon, error) {
	if days <= 0 {
		days = 3
	}
	from := s.today()
	to := from.AddDate(0, 0, days)

	filter := repositories.AccountFilter{
		UserID:   userID,
		Statuses: []string{models.StatusPending},
		DueFrom:  &from,
		DueTo:    &to,
	}
	receivables, err := s.receivables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	payables, err := s.payables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	return &DueSoon{Days: days, Receivables: receivables, Payables: payables}, nil
}
