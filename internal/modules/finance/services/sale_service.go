package services

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/upload"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// SaleResult is a sale after a mutation, with the outcome of the WhatsApp
// notification that followed it.
type SaleResult struct {
	Sale            *models.InstallmentSale `json:"sale"`
	ConfirmationURL string                  `json:"confirmation_url,omitempty"`
	Receivables     []models.Receivable     `json:"receivables,omitempty"`
	WhatsAppSent    bool                    `json:"whatsapp_sent"`
}

// SaleService runs the installment sale workflow:
// pending -> confirmed -> approved | rejected.
type SaleService struct {
	db          *gorm.DB
	sales       repositories.SaleRepo
	receivables repositories.ReceivableRepo
	clients     repositories.ClientRepo
	plans       *PlanService
	notifier    *notification.Service
	uploads     *upload.Service
	audit       *audit.Service
	domain      string
	location    *time.Location
	now         func() time.Time
}

// NewSaleService dates approvals in loc, UTC when nil.
func NewSaleService(db *gorm.DB, plans *PlanService, notifier *notification.Service, uploads *upload.Service, domain string, loc *time.Location) *SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &SaleService{
		db:          db,
		sales:       repositories.NewSaleRepo(db),
		receivables: repositories.NewReceivableRepo(db),
		clients:     repositories.NewClientRepo(db),
		plans:       plans,
		notifier:    notifier,
		uploads:     uploads,
		audit:       audit.NewService(db),
		domain:      strings.TrimRight(domain, "/"),
		location:    loc,
		now:         time.Now,
	}
}

func (s *SaleService) today() time.Time {
	return money.DateOnly(s.now().In(s.location))
}

// ConfirmationURL is the public page a client opens to confirm a sale.
func (s *SaleService) ConfirmationURL(token string) string {
	return s.domain + "/public/sales/" + token
}

func newToken() string {
	return uuid.NewString()
}

// Create stores a pending sale with a fresh token and, unless told not to,
// sends the client the confirmation link.
func (s *SaleService) Create(ctx context.Context, userID string, req *models.CreateSaleRequest) (*SaleResult, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(req.ClientID)
	if err != nil {
		return nil, err
	}
	if req.Installments < 1 {
		return nil, invalid("installments must be at least 1")
	}
	if !req.TotalAmount.IsPositive() {
		return nil, invalid("total_amount must be positive")
	}

	client, err := s.clients.GetByID(ctx, userID, req.ClientID)
	if err != nil {
		return nil, notFound("client", err)
	}

	sale := &models.InstallmentSale{
		UserID:            uid,
		ClientID:          clientID,
		TotalAmount:       req.TotalAmount.Round(2),
		Installments:      req.Installments,
		Description:       strings.TrimSpace(req.Description),
		Status:            models.SalePending,
		ConfirmationToken: newToken(),
	}

	// refuse early when the installments could never be approved
	err = s.plans.WithinLimit(ctx, userID, ResourceReceivables, req.Installments, func(tx *gorm.DB) error {
		if err := s.sales.WithTx(tx).Create(ctx, sale); err != nil {
			return err
		}
		return s.record(ctx, tx, sale, audit.ActorUser, audit.ActionCreate, "", sale.Description)
	})
	if err != nil {
		return nil, err
	}
	sale.Client = client
	log.Printf("🧾 Installment sale %s created for client %s", sale.ID, client.Name)

	result := &SaleResult{Sale: sale, ConfirmationURL: s.ConfirmationURL(sale.ConfirmationToken)}
	if req.Notify == nil || *req.Notify {
		result.WhatsAppSent = s.notify(ctx, sale, notification.KindConfirmation,
			notification.SaleConfirmationText(client.Name, sale.Description, sale.TotalAmount, sale.Installments, result.ConfirmationURL))
	}
	return result, nil
}

func (s *SaleService) Get(ctx context.Context, userID, id string) (*SaleResult, error) {
	sale, err := s.sales.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	receivables, err := s.receivables.List(ctx, repositories.AccountFilter{UserID: userID, ParentID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return &SaleResult{
		Sale:            sale,
		ConfirmationURL: s.ConfirmationURL(sale.ConfirmationToken),
		Receivables:     receivables,
	}, nil
}

func (s *SaleService) List(ctx context.Context, userID string, statuses ...models.SaleStatus) ([]models.InstallmentSale, error) {
	sales, err := s.sales.List(ctx, userID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("failed to list installment sales: %w", err)
	}
	return sales, nil
}

// PublicView returns the sale behind a confirmation token.
func (s *SaleService) PublicView(ctx context.Context, token string) (*models.InstallmentSale, error) {
	sale, err := s.sales.GetByToken(ctx, token)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	return sale, nil
}

// Confirm is the client's answer on the public page. Only a pending sale
// can be confirmed; anything else is left untouched.
func (s *SaleService) Confirm(ctx context.Context, token string, document *multipart.FileHeader) (*models.InstallmentSale, error) {
	sale, err := s.sales.GetByToken(ctx, token)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	if sale.Status != models.SalePending {
		return nil, fmt.Errorf("%w: sale is %s", ErrAlreadyProcessed, sale.Status)
	}

	var stored *upload.UploadResult
	if document != nil {
		if s.uploads == nil {
			return nil, fmt.Errorf("%w: document storage", ErrUnavailable)
		}
		stored, err = s.uploads.UploadMultipart(ctx, document, &upload.UploadOptions{Folder: "sales/" + sale.ID.String()})
		if err != nil {
			return nil, invalid("%v", err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		locked, err := repo.GetByTokenForUpdate(ctx, token)
		if err != nil {
			return notFound("installment sale", err)
		}
		from := locked.Status
		if err := transition(locked, models.SaleConfirmed, ErrAlreadyProcessed); err != nil {
			return err
		}

		now := s.now()
		locked.ConfirmedAt = &now
		if stored != nil {
			locked.DocumentURL = stored.URL
			locked.DocumentKey = stored.Key
		}
		if err := repo.Save(ctx, locked); err != nil {
			return fmt.Errorf("failed to confirm sale: %w", err)
		}
		note := "confirmed without document"
		if stored != nil {
			note = "confirmed with document " + stored.FileName
		}
		if err := s.record(ctx, tx, locked, audit.ActorClient, audit.ActionConfirm, from, note); err != nil {
			return err
		}
		sale = locked
		return nil
	})
	if err != nil {
		if stored != nil {
			s.deleteDocument(ctx, stored.Key)
		}
		return nil, err
	}

	log.Printf("✅ Installment sale %s confirmed by client", sale.ID)
	return sale, nil
}

// Approve generates one receivable per installment, due every 30 days
// starting 30 days after approval, and notifies the client. Every
// installment must fit under the plan's receivable limit.
func (s *SaleService) Approve(ctx context.Context, userID, id, notes string) (*SaleResult, error) {
	current, err := s.sales.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	if !canTransition(current.Status, models.SaleApproved) {
		return nil, fmt.Errorf("%w: sale is %s, cannot move to %s", ErrInvalidState, current.Status, models.SaleApproved)
	}

	var (
		sale        *models.InstallmentSale
		receivables []models.Receivable
	)

	err = s.plans.WithinLimit(ctx, userID, ResourceReceivables, current.Installments, func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		var err error
		sale, err = repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return notFound("installment sale", err)
		}
		from := sale.Status
		if err := transition(sale, models.SaleApproved, ErrInvalidState); err != nil {
			return err
		}

		now := s.now()
		lines, err := installmentSchedule(sale.Description, sale.TotalAmount, sale.Installments,
			s.today().AddDate(0, 0, installmentInterval))
		if err != nil {
			return err
		}

		parentID := sale.ID
		receivables = make([]models.Receivable, len(lines))
		for i, line := range lines {
			receivables[i] = models.Receivable{
				UserID:            sale.UserID,
				ClientID:          sale.ClientID,
				Description:       line.Description,
				Amount:            line.Amount,
				DueDate:           line.DueDate,
				Status:            models.StatusPending,
				Type:              models.TypeInstallment,
				InstallmentNumber: intPtr(line.Number),
				TotalInstallments: intPtr(line.Total),
				ParentID:          &parentID,
			}
		}
		if err := s.receivables.WithTx(tx).CreateBatch(ctx, receivables); err != nil {
			return fmt.Errorf("failed to create installments: %w", err)
		}

		sale.ApprovedAt = &now
		sale.ApprovalNotes = strings.TrimSpace(notes)
		if err := repo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to approve sale: %w", err)
		}
		return s.record(ctx, tx, sale, audit.ActorUser, audit.ActionApprove, from,
			fmt.Sprintf("%d receivables generated", len(receivables)))
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Installment sale %s approved, %d receivables generated", sale.ID, len(receivables))
	result := &SaleResult{Sale: sale, Receivables: receivables}
	result.WhatsAppSent = s.notify(ctx, sale, notification.KindApproval,
		notification.SaleApprovedText(clientName(sale)))
	return result, nil
}

// Reject closes a confirmed sale, or with resend sends it back to pending
// under a new token so the client can confirm again. Notes are optional.
func (s *SaleService) Reject(ctx context.Context, userID, id, notes string, resend bool) (*SaleResult, error) {
	notes = strings.TrimSpace(notes)

	var (
		sale      *models.InstallmentSale
		oldDocKey string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		var err error
		sale, err = repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return notFound("installment sale", err)
		}
		if sale.Status != models.SaleConfirmed {
			return fmt.Errorf("%w: sale is %s, only confirmed sales can be rejected", ErrInvalidState, sale.Status)
		}

		from := sale.Status
		target, action := models.SaleRejected, audit.ActionReject
		if resend {
			target, action = models.SalePending, audit.ActionResend
		}
		if err := transition(sale, target, ErrInvalidState); err != nil {
			return err
		}

		sale.ApprovalNotes = notes
		if resend {
			oldDocKey = resetConfirmation(sale)
		}
		if err := repo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to reject sale: %w", err)
		}
		return s.record(ctx, tx, sale, audit.ActorUser, action, from, notes)
	})
	if err != nil {
		return nil, err
	}
	s.deleteDocument(ctx, oldDocKey)

	result := &SaleResult{Sale: sale}
	if resend {
		log.Printf("🔁 Installment sale %s sent back to the client", sale.ID)
		result.ConfirmationURL = s.ConfirmationURL(sale.ConfirmationToken)
		result.WhatsAppSent = s.notify(ctx, sale, notification.KindConfirmation,
			notification.SaleResendText(clientName(sale), rejectionReason(notes), result.ConfirmationURL))
		return result, nil
	}

	log.Printf("❌ Installment sale %s rejected", sale.ID)
	result.WhatsAppSent = s.notify(ctx, sale, notification.KindRejection,
		notification.SaleRejectedText(clientName(sale), rejectionReason(notes)))
	return result, nil
}

// RegenerateToken reopens a sale under a new token. Approved sales already
// produced receivables and stay closed.
func (s *SaleService) RegenerateToken(ctx context.Context, userID, id string) (*SaleResult, error) {
	var (
		sale      *models.InstallmentSale
		oldDocKey string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.sales.WithTx(tx)
		var err error
		sale, err = repo.GetForUpdate(ctx, userID, id)
		if err != nil {
			return notFound("installment sale", err)
		}
		from := sale.Status
		if err := transition(sale, models.SalePending, ErrInvalidState); err != nil {
			return err
		}
		oldDocKey = resetConfirmation(sale)
		if err := repo.Save(ctx, sale); err != nil {
			return fmt.Errorf("failed to regenerate token: %w", err)
		}
		return s.record(ctx, tx, sale, audit.ActorUser, audit.ActionRegenerateToken, from, "")
	})
	if err != nil {
		return nil, err
	}
	s.deleteDocument(ctx, oldDocKey)

	log.Printf("🔑 New confirmation token for installment sale %s", sale.ID)
	return &SaleResult{Sale: sale, ConfirmationURL: s.ConfirmationURL(sale.ConfirmationToken)}, nil
}

// Resend sends the confirmation link of a pending sale again.
func (s *SaleService) Resend(ctx context.Context, userID, id string) (*SaleResult, error) {
	sale, err := s.sales.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	if sale.Status != models.SalePending {
		return nil, fmt.Errorf("%w: sale is %s", ErrInvalidState, sale.Status)
	}

	result := &SaleResult{Sale: sale, ConfirmationURL: s.ConfirmationURL(sale.ConfirmationToken)}
	result.WhatsAppSent = s.notify(ctx, sale, notification.KindConfirmation,
		notification.SaleConfirmationText(clientName(sale), sale.Description, sale.TotalAmount, sale.Installments, result.ConfirmationURL))
	return result, nil
}

// Delete removes the sale together with the receivables it generated.
func (s *SaleService) Delete(ctx context.Context, userID, id string) error {
	var docKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := s.sales.WithTx(tx).GetForUpdate(ctx, userID, id)
		if err != nil {
			return notFound("installment sale", err)
		}
		docKey = sale.DocumentKey

		removed, err := s.receivables.WithTx(tx).DeleteByParent(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete installments: %w", err)
		}
		if err := s.sales.WithTx(tx).Delete(ctx, userID, id); err != nil {
			return notFound("installment sale", err)
		}
		log.Printf("🗑️  Installment sale %s deleted with %d receivables", id, removed)
		return s.audit.WithTx(tx).Record(ctx, audit.Entry{
			UserID:      sale.UserID,
			Action:      audit.ActionDelete,
			Entity:      EntitySale,
			EntityID:    id,
			OldValue:    statusValue(sale.Status),
			Description: fmt.Sprintf("%d receivables removed", removed),
		})
	})
	if err != nil {
		return err
	}
	s.deleteDocument(ctx, docKey)
	return nil
}

// History lists the recorded transitions of a sale, oldest first.
func (s *SaleService) History(ctx context.Context, userID, id string) ([]audit.AuditLog, error) {
	if _, err := s.sales.GetByID(ctx, userID, id); err != nil {
		return nil, notFound("installment sale", err)
	}
	return s.audit.GetEntityHistory(ctx, userID, EntitySale, id)
}

// QRCode renders the confirmation link as a PNG.
func (s *SaleService) QRCode(ctx context.Context, userID, id string, size int) ([]byte, error) {
	sale, err := s.sales.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("installment sale", err)
	}
	if size <= 0 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(s.ConfirmationURL(sale.ConfirmationToken), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// resetConfirmation puts the sale back to an unconfirmed state under a
// new token and returns the key of the document it dropped.
func resetConfirmation(sale *models.InstallmentSale) string {
	oldKey := sale.DocumentKey
	sale.Status = models.SalePending
	sale.ConfirmationToken = newToken()
	sale.ConfirmedAt = nil
	sale.DocumentURL = ""
	sale.DocumentKey = ""
	return oldKey
}

func (s *SaleService) deleteDocument(ctx context.Context, key string) {
	if key == "" || s.uploads == nil {
		return
	}
	if err := s.uploads.Delete(ctx, key); err != nil {
		log.Printf("⚠️  Failed to delete document %s: %v", key, err)
	}
}

func (s *SaleService) notify(ctx context.Context, sale *models.InstallmentSale, kind notification.Kind, text string) bool {
	if s.notifier == nil {
		return false
	}
	phone := ""
	if sale.Client != nil {
		phone = sale.Client.WhatsApp
	}
	return s.notifier.Notify(ctx, notification.Message{
		UserID:   sale.UserID.String(),
		ClientID: sale.ClientID.String(),
		Phone:    phone,
		Text:     text,
		Kind:     kind,
	})
}

// EntitySale names installment sales in the audit trail
const EntitySale = "installment_sale"

func (s *SaleService) record(ctx context.Context, tx *gorm.DB, sale *models.InstallmentSale, actor, action string, from models.SaleStatus, description string) error {
	return s.audit.WithTx(tx).Record(ctx, audit.Entry{
		UserID:      sale.UserID,
		Actor:       actor,
		Action:      action,
		Entity:      EntitySale,
		EntityID:    sale.ID.String(),
		OldValue:    statusValue(from),
		NewValue:    statusValue(sale.Status),
		Description: description,
	})
}

func statusValue(status models.SaleStatus) interface{} {
	if status == "" {
		return nil
	}
	return map[string]string{"status": string(status)}
}

func rejectionReason(notes string) string {
	if notes == "" {
		return "não informado"
	}
	return notes
}

func clientName(sale *models.InstallmentSale) string {
	if sale.Client == nil {
		return ""
	}
	return sale.Client.Name
}
