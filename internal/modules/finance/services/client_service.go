package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/shared/validation"
)

type ClientService struct {
	clients     repositories.ClientRepo
	receivables repositories.ReceivableRepo
	sales       repositories.SaleRepo
	plans       *PlanService
}

func NewClientService(db *gorm.DB, plans *PlanService) *ClientService {
	return &ClientService{
		clients:     repositories.NewClientRepo(db),
		receivables: repositories.NewReceivableRepo(db),
		sales:       repositories.NewSaleRepo(db),
		plans:       plans,
	}
}

// Create adds a client if the user's plan has room for one more.
func (s *ClientService) Create(ctx context.Context, userID string, req *models.ClientRequest) (*models.Client, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	client := &models.Client{UserID: uid}
	applyClient(client, req)

	err = s.plans.WithinLimit(ctx, userID, ResourceClients, 1, func(tx *gorm.DB) error {
		return s.clients.WithTx(tx).Create(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, userID, id string) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("client", err)
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, userID, search string) ([]models.Client, error) {
	clients, err := s.clients.List(ctx, userID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, userID, id string, req *models.ClientRequest) (*models.Client, error) {
	client, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyClient(client, req)
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// Delete refuses clients that still have receivables or installment sales.
func (s *ClientService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	receivables, err := s.receivables.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count receivables: %w", err)
	}
	sales, err := s.sales.CountByClient(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count sales: %w", err)
	}
	if receivables > 0 || sales > 0 {
		return fmt.Errorf("%w: client has %d receivables and %d installment sales", ErrInUse, receivables, sales)
	}

	if err := s.clients.Delete(ctx, userID, id); err != nil {
		return notFound("client", err)
	}
	return nil
}

func applyClient(client *models.Client, req *models.ClientRequest) {
	client.Name = strings.TrimSpace(req.Name)
	client.WhatsApp = strings.TrimSpace(req.WhatsApp)
	client.Document = validation.FormatDocument(req.Document)
	client.Email = strings.ToLower(strings.TrimSpace(req.Email))
	client.Address = strings.TrimSpace(req.Address)
	client.ZipCode = strings.TrimSpace(req.ZipCode)
	client.City = strings.TrimSpace(req.City)
	client.State = strings.ToUpper(strings.TrimSpace(req.State))
}

type SupplierService struct {
	suppliers repositories.SupplierRepo
}

func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{suppliers: repositories.NewSupplierRepo(db)}
}

func (s *SupplierService) Create(ctx context.Context, userID string, req *models.SupplierRequest) (*models.Supplier, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	supplier := &models.Supplier{UserID: uid}
	applySupplier(supplier, req)
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

func (s *SupplierService) Get(ctx context.Context, userID, id string) (*models.Supplier, error) {
	supplier, err := s.suppliers.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("supplier", err)
	}
	return supplier, nil
}

func (s *SupplierService) List(ctx context.Context, userID string) ([]models.Supplier, error) {
	suppliers, err := s.suppliers.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierService) Update(ctx context.Context, userID, id string, req *models.SupplierRequest) (*models.Supplier, error) {
	supplier, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applySupplier(supplier, req)
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

// Delete removes the supplier and detaches its payables.
func (s *SupplierService) Delete(ctx context.Context, userID, id string) error {
	if err := s.suppliers.Delete(ctx, userID, id); err != nil {
		return notFound("supplier", err)
	}
	return nil
}

func applySupplier(supplier *models.Supplier, req *models.SupplierRequest) {
	supplier.Name = strings.TrimSpace(req.Name)
	supplier.Document = validation.FormatDocument(req.Document)
	supplier.Email = strings.ToLower(strings.TrimSpace(req.Email))
	supplier.Phone = strings.TrimSpace(req.Phone)
	supplier.Address = strings.TrimSpace(req.Address)
}
