package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// CreateReceivableResult holds the generated rows, or the installment sale
// when the client has to confirm first.
type CreateReceivableResult struct {
	Receivables []models.Receivable `json:"receivables,omitempty"`
	Sale        *SaleResult         `json:"installment_sale,omitempty"`
}

type ReceivableService struct {
	receivables repositories.ReceivableRepo
	clients     repositories.ClientRepo
	plans       *PlanService
	sales       *SaleService
	overdue     *OverdueService
	now         func() time.Time
}

func NewReceivableService(db *gorm.DB, plans *PlanService, sales *SaleService, overdue *OverdueService) *ReceivableService {
	return &ReceivableService{
		receivables: repositories.NewReceivableRepo(db),
		clients:     repositories.NewClientRepo(db),
		plans:       plans,
		sales:       sales,
		overdue:     overdue,
		now:         time.Now,
	}
}

// Create builds the rows for the requested type and stores them only if
// the whole batch fits in the user's plan.
func (s *ReceivableService) Create(ctx context.Context, userID string, req *models.CreateReceivableRequest) (*CreateReceivableResult, error) {
	if req.Type == models.TypeInstallment && req.NeedsConfirmation {
		sale, err := s.sales.Create(ctx, userID, &models.CreateSaleRequest{
			ClientID:     req.ClientID,
			TotalAmount:  req.Amount,
			Installments: req.Installments,
			Description:  req.Description,
		})
		if err != nil {
			return nil, err
		}
		return &CreateReceivableResult{Sale: sale}, nil
	}

	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(req.ClientID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount must be positive")
	}
	due, err := money.ParseDate(req.DueDate)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if _, err := s.clients.GetByID(ctx, userID, req.ClientID); err != nil {
		return nil, notFound("client", err)
	}

	kind := req.Type
	if kind == "" {
		kind = models.TypeSimple
	}
	lines, err := accountSchedule(kind, strings.TrimSpace(req.Description), req.Amount, req.Installments, req.RecurrenceMonths, due)
	if err != nil {
		return nil, err
	}

	receivables := make([]models.Receivable, len(lines))
	for i, line := range lines {
		receivables[i] = models.Receivable{
			UserID:      uid,
			ClientID:    clientID,
			Description: line.Description,
			Amount:      line.Amount,
			DueDate:     line.DueDate,
			Status:      models.StatusPending,
			Type:        kind,
		}
		if line.Total > 0 {
			receivables[i].InstallmentNumber = intPtr(line.Number)
			receivables[i].TotalInstallments = intPtr(line.Total)
		}
	}

	err = s.plans.WithinLimit(ctx, userID, ResourceReceivables, len(receivables), func(tx *gorm.DB) error {
		return s.receivables.WithTx(tx).CreateBatch(ctx, receivables)
	})
	if err != nil {
		return nil, err
	}
	return &CreateReceivableResult{Receivables: receivables}, nil
}

func (s *ReceivableService) Get(ctx context.Context, userID, id string) (*models.Receivable, error) {
	receivable, err := s.receivables.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("receivable", err)
	}
	return receivable, nil
}

// List refreshes overdue statuses before reading.
func (s *ReceivableService) List(ctx context.Context, userID, status, clientID string) ([]models.Receivable, error) {
	if _, err := s.overdue.MarkOverdue(ctx, userID); err != nil {
		return nil, err
	}

	filter := repositories.AccountFilter{UserID: userID, ClientID: clientID}
	if status != "" {
		filter.Statuses = []string{status}
	}
	receivables, err := s.receivables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	return receivables, nil
}

func (s *ReceivableService) Update(ctx context.Context, userID, id string, req *models.UpdateAccountRequest) (*models.Receivable, error) {
	fields, err := accountUpdates(req, s.now())
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.receivables.Updates(ctx, userID, id, fields); err != nil {
			return nil, notFound("receivable", err)
		}
	}
	return s.Get(ctx, userID, id)
}

func (s *ReceivableService) MarkPaid(ctx context.Context, userID, id string) (*models.Receivable, error) {
	return s.Update(ctx, userID, id, &models.UpdateAccountRequest{Status: models.StatusPaid})
}

func (s *ReceivableService) Delete(ctx context.Context, userID, id string) error {
	if err := s.receivables.Delete(ctx, userID, id); err != nil {
		return notFound("receivable", err)
	}
	return nil
}

// accountUpdates turns an edit request into column updates. Paying stamps
// paid_at; any other status clears it.
func accountUpdates(req *models.UpdateAccountRequest, now time.Time) (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if d := strings.TrimSpace(req.Description); d != "" {
		fields["description"] = d
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, invalid("amount must be positive")
		}
		fields["amount"] = req.Amount.Round(2)
	}
	if req.DueDate != "" {
		due, err := money.ParseDate(req.DueDate)
		if err != nil {
			return nil, invalid("%v", err)
		}
		fields["due_date"] = due
	}
	switch req.Status {
	case "":
	case models.StatusPaid:
		fields["status"] = req.Status
		fields["paid_at"] = now
	case models.StatusPending, models.StatusOverdue, models.StatusCancelled:
		fields["status"] = req.Status
		fields["paid_at"] = nil
	default:
		return nil, invalid("unknown status %q", req.Status)
	}
	return fields, nil
}

type PayableService struct {
	payables  repositories.PayableRepo
	suppliers repositories.SupplierRepo
	plans     *PlanService
	overdue   *OverdueService
	now       func() time.Time
}

func NewPayableService(db *gorm.DB, plans *PlanService, overdue *OverdueService) *PayableService {
	return &PayableService{
		payables:  repositories.NewPayableRepo(db),
		suppliers: repositories.NewSupplierRepo(db),
		plans:     plans,
		overdue:   overdue,
		now:       time.Now,
	}
}

func (s *PayableService) Create(ctx context.Context, userID string, req *models.CreatePayableRequest) ([]models.Payable, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount must be positive")
	}
	due, err := money.ParseDate(req.DueDate)
	if err != nil {
		return nil, invalid("%v", err)
	}

	var supplierID *uuid.UUID
	if req.SupplierID != "" {
		supplier, err := s.suppliers.GetByID(ctx, userID, req.SupplierID)
		if err != nil {
			return nil, notFound("supplier", err)
		}
		supplierID = &supplier.ID
	}

	kind := req.Type
	if kind == "" {
		kind = models.TypeSimple
	}
	lines, err := accountSchedule(kind, strings.TrimSpace(req.Description), req.Amount, req.Installments, req.RecurrenceMonths, due)
	if err != nil {
		return nil, err
	}

	payables := make([]models.Payable, len(lines))
	for i, line := range lines {
		payables[i] = models.Payable{
			UserID:      uid,
			SupplierID:  supplierID,
			Description: line.Description,
			Amount:      line.Amount,
			DueDate:     line.DueDate,
			Status:      models.StatusPending,
			Category:    strings.TrimSpace(req.Category),
		}
	}

	err = s.plans.WithinLimit(ctx, userID, ResourcePayables, len(payables), func(tx *gorm.DB) error {
		return s.payables.WithTx(tx).CreateBatch(ctx, payables)
	})
	if err != nil {
		return nil, err
	}
	return payables, nil
}

func (s *PayableService) Get(ctx context.Context, userID, id string) (*models.Payable, error) {
	payable, err := s.payables.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("payable", err)
	}
	return payable, nil
}

func (s *PayableService) List(ctx context.Context, userID, status, supplierID string) ([]models.Payable, error) {
	if _, err := s.overdue.MarkOverdue(ctx, userID); err != nil {
		return nil, err
	}

	filter := repositories.AccountFilter{UserID: userID, SupplierID: supplierID}
	if status != "" {
		filter.Statuses = []string{status}
	}
	payables, err := s.payables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}
	return payables, nil
}

func (s *PayableService) Update(ctx context.Context, userID, id string, req *models.UpdateAccountRequest) (*models.Payable, error) {
	fields, err := accountUpdates(req, s.now())
	if err != nil {
		return nil, err
	}
	if req.Category != nil {
		fields["category"] = strings.TrimSpace(*req.Category)
	}
	if len(fields) > 0 {
		if err := s.payables.Updates(ctx, userID, id, fields); err != nil {
			return nil, notFound("payable", err)
		}
	}
	return s.Get(ctx, userID, id)
}

func (s *PayableService) MarkPaid(ctx context.Context, userID, id string) (*models.Payable, error) {
	return s.Update(ctx, userID, id, &models.UpdateAccountRequest{Status: models.StatusPaid})
}

func (s *PayableService) Delete(ctx context.Context, userID, id string) error {
	if err := s.payables.Delete(ctx, userID, id); err != nil {
		return notFound("payable", err)
	}
	return nil
}
