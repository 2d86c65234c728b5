package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/export"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

var statusLabels = map[string]string{
	models.StatusPending:   "Pendente",
	models.StatusPaid:      "Pago",
	models.StatusOverdue:   "Vencido",
	models.StatusCancelled: "Cancelado",
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// ExportFile is a rendered report ready to download
type ExportFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

type ExportService struct {
	exporter    *export.Service
	receivables repositories.ReceivableRepo
	payables    repositories.PayableRepo
	overdue     *OverdueService
	now         func() time.Time
}

func NewExportService(db *gorm.DB, exporter *export.Service, overdue *OverdueService) *ExportService {
	return &ExportService{
		exporter:    exporter,
		receivables: repositories.NewReceivableRepo(db),
		payables:    repositories.NewPayableRepo(db),
		overdue:     overdue,
		now:         time.Now,
	}
}

func (s *ExportService) filter(ctx context.Context, userID, status string) (repositories.AccountFilter, error) {
	if status != "" {
		if _, ok := statusLabels[status]; !ok {
			return repositories.AccountFilter{}, invalid("unknown status %q", status)
		}
	}
	if _, err := s.overdue.MarkOverdue(ctx, userID); err != nil {
		return repositories.AccountFilter{}, err
	}
	filter := repositories.AccountFilter{UserID: userID}
	if status != "" {
		filter.Statuses = []string{status}
	}
	return filter, nil
}

func (s *ExportService) Receivables(ctx context.Context, userID, status, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, invalid("%v", err)
	}
	filter, err := s.filter(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	receivables, err := s.receivables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}

	report := &export.Report{
		Title:       "Contas a Receber",
		Subtitle:    subtitle(status),
		GeneratedAt: s.now(),
		Columns: []export.Column{
			{Title: "Descrição", Width: 3},
			{Title: "Cliente", Width: 2},
			{Title: "Vencimento", Width: 1, Align: export.AlignCenter},
			{Title: "Valor", Width: 1, Align: export.AlignRight, Money: true},
			{Title: "Status", Width: 1, Align: export.AlignCenter},
			{Title: "Pago em", Width: 1, Align: export.AlignCenter},
		},
		Style: export.DefaultStyle(),
	}

	var total, paid decimal.Decimal
	for _, r := range receivables {
		client := ""
		if r.Client != nil {
			client = r.Client.Name
		}
		report.Rows = append(report.Rows, []any{r.Description, client, r.DueDate, r.Amount, statusLabel(r.Status), r.PaidAt})
		total = total.Add(r.Amount)
		if r.Status == models.StatusPaid {
			paid = paid.Add(r.Amount)
		}
	}
	report.Totals = []export.Total{
		{Label: "Total", Amount: total},
		{Label: "Recebido", Amount: paid},
		{Label: "Em aberto", Amount: total.Sub(paid)},
	}
	return s.render(report, f, "contas_a_receber")
}

func (s *ExportService) Payables(ctx context.Context, userID, status, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, invalid("%v", err)
	}
	filter, err := s.filter(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	payables, err := s.payables.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}

	report := &export.Report{
		Title:       "Contas a Pagar",
		Subtitle:    subtitle(status),
		GeneratedAt: s.now(),
		Columns: []export.Column{
			{Title: "Descrição", Width: 3},
			{Title: "Fornecedor", Width: 2},
			{Title: "Categoria", Width: 1},
			{Title: "Vencimento", Width: 1, Align: export.AlignCenter},
			{Title: "Valor", Width: 1, Align: export.AlignRight, Money: true},
			{Title: "Status", Width: 1, Align: export.AlignCenter},
		},
		Style: export.DefaultStyle(),
	}

	var total, paid decimal.Decimal
	for _, p := range payables {
		supplier := ""
		if p.Supplier != nil {
			supplier = p.Supplier.Name
		}
		report.Rows = append(report.Rows, []any{p.Description, supplier, p.Category, p.DueDate, p.Amount, statusLabel(p.Status)})
		total = total.Add(p.Amount)
		if p.Status == models.StatusPaid {
			paid = paid.Add(p.Amount)
		}
	}
	report.Totals = []export.Total{
		{Label: "Total", Amount: total},
		{Label: "Pago", Amount: paid},
		{Label: "A pagar", Amount: total.Sub(paid)},
	}
	return s.render(report, f, "contas_a_pagar")
}

func (s *ExportService) render(report *export.Report, format export.Format, name string) (*ExportFile, error) {
	data, contentType, ext, err := s.exporter.Export(report, format)
	if err != nil {
		return nil, fmt.Errorf("failed to export %s: %w", name, err)
	}
	return &ExportFile{
		Data:        data,
		ContentType: contentType,
		Filename:    fmt.Sprintf("%s_%s%s", name, s.now().Format("20060102"), ext),
	}, nil
}

func subtitle(status string) string {
	if status == "" {
		return "Todos os status"
	}
	return "Status: " + statusLabel(status)
}
