package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// Structured replies requested from the model. Every field is required by
// the JSON schema, so none of them use omitempty.

type CashFlowPrediction struct {
	Summary string `json:"summary" description:"Resumo da previsão em português"`
	Months  []struct {
		Month           string  `json:"month" description:"YYYY-MM"`
		ExpectedInflow  float64 `json:"expected_inflow"`
		ExpectedOutflow float64 `json:"expected_outflow"`
		Balance         float64 `json:"balance"`
	} `json:"months"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

type ClientRiskAnalysis struct {
	Summary string `json:"summary"`
	Clients []struct {
		Name      string `json:"name"`
		RiskLevel string `json:"risk_level" description:"baixo, medio ou alto"`
		Reason    string `json:"reason"`
		Action    string `json:"action"`
	} `json:"clients"`
}

type BusinessInsights struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	Opportunities []string `json:"opportunities"`
	Actions       []string `json:"actions"`
}

// AccountTotals sums one side of the books by status
type AccountTotals struct {
	Pending      decimal.Decimal `json:"pending"`
	Overdue      decimal.Decimal `json:"overdue"`
	Paid         decimal.Decimal `json:"paid"`
	OverdueCount int             `json:"overdue_count"`
	Count        int             `json:"count"`
}

func (t *AccountTotals) add(status string, amount decimal.Decimal) {
	t.Count++
	switch status {
	case models.StatusPending:
		t.Pending = t.Pending.Add(amount)
	case models.StatusOverdue:
		t.Overdue = t.Overdue.Add(amount)
		t.OverdueCount++
	case models.StatusPaid:
		t.Paid = t.Paid.Add(amount)
	}
}

type ClientExposure struct {
	Name         string          `json:"name"`
	Open         decimal.Decimal `json:"open"`
	Overdue      decimal.Decimal `json:"overdue"`
	OverdueCount int             `json:"overdue_count"`
	PaidCount    int             `json:"paid_count"`
}

// FinancialSnapshot is the data the model sees
type FinancialSnapshot struct {
	Date            string           `json:"date"`
	Receivables     AccountTotals    `json:"receivables"`
	Payables        AccountTotals    `json:"payables"`
	InflowNext30    decimal.Decimal  `json:"inflow_next_30_days"`
	OutflowNext30   decimal.Decimal  `json:"outflow_next_30_days"`
	MonthlyRevenue  []MonthTotal     `json:"monthly_revenue"`
	MonthlyExpenses []MonthTotal     `json:"monthly_expenses"`
	Clients         []ClientExposure `json:"clients"`
}

const insightSystemPrompt = "Você é um consultor financeiro de pequenas empresas brasileiras. " +
	"Analise os dados em JSON e responda em português, com valores em reais. Seja objetivo e prático."

var insightPrompts = map[string]struct {
	schema string
	task   string
}{
	models.InsightCashFlow: {
		schema: "cash_flow_prediction",
		task:   "Preveja o fluxo de caixa dos próximos 3 meses, aponte riscos e recomende ações.",
	},
	models.InsightClientRisk: {
		schema: "client_risk_analysis",
		task:   "Classifique o risco de inadimplência de cada cliente e sugira uma ação para cada um.",
	},
	models.InsightBusiness: {
		schema: "business_insights",
		task:   "Avalie a saúde financeira do negócio: pontos fortes, fracos, oportunidades e ações.",
	},
}

// InsightService generates AI analyses for Premium users.
type InsightService struct {
	llm         *llm.Service
	model       string
	plans       *PlanService
	overdue     *OverdueService
	receivables repositories.ReceivableRepo
	payables    repositories.PayableRepo
	insights    repositories.InsightRepo
	now         func() time.Time
}

// NewInsightService takes a nil llm when no API key is configured.
func NewInsightService(db *gorm.DB, llmService *llm.Service, model string, plans *PlanService, overdue *OverdueService) *InsightService {
	return &InsightService{
		llm:         llmService,
		model:       model,
		plans:       plans,
		overdue:     overdue,
		receivables: repositories.NewReceivableRepo(db),
		payables:    repositories.NewPayableRepo(db),
		insights:    repositories.NewInsightRepo(db),
		now:         time.Now,
	}
}

// Generate runs one analysis kind and stores the result.
func (s *InsightService) Generate(ctx context.Context, userID, kind string) (*models.AIInsight, error) {
	prompt, ok := insightPrompts[kind]
	if !ok {
		return nil, invalid("unknown insight kind %q", kind)
	}
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}

	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, userID, kind, prompt.schema, prompt.task, snapshot)
}

// Report runs every analysis kind on one snapshot.
func (s *InsightService) Report(ctx context.Context, userID string) ([]*models.AIInsight, error) {
	if err := s.requirePremium(ctx, userID); err != nil {
		return nil, err
	}
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	var insights []*models.AIInsight
	for _, kind := range []string{models.InsightCashFlow, models.InsightClientRisk, models.InsightBusiness} {
		prompt := insightPrompts[kind]
		insight, err := s.generate(ctx, userID, kind, prompt.schema, prompt.task, snapshot)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}
	return insights, nil
}

func (s *InsightService) List(ctx context.Context, userID, kind string) ([]models.AIInsight, error) {
	insights, err := s.insights.List(ctx, userID, kind, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	return insights, nil
}

func (s *InsightService) requirePremium(ctx context.Context, userID string) error {
	premium, err := s.plans.IsPremium(ctx, userID)
	if err != nil {
		return err
	}
	if !premium {
		return ErrPremiumRequired
	}
	if s.llm == nil {
		return fmt.Errorf("%w: AI provider", ErrUnavailable)
	}
	return nil
}

func (s *InsightService) generate(ctx context.Context, userID, kind, schema, task string, snapshot *FinancialSnapshot) (*models.AIInsight, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	userMessage := task + "\n\nDados:\n" + string(data)

	var (
		summary string
		raw     string
	)
	switch kind {
	case models.InsightCashFlow:
		var out *CashFlowPrediction
		out, raw, err = llm.GenerateStructured[CashFlowPrediction](ctx, s.llm, schema, insightSystemPrompt, userMessage)
		if out != nil {
			summary = out.Summary
		}
	case models.InsightClientRisk:
		var out *ClientRiskAnalysis
		out, raw, err = llm.GenerateStructured[ClientRiskAnalysis](ctx, s.llm, schema, insightSystemPrompt, userMessage)
		if out != nil {
			summary = out.Summary
		}
	default:
		var out *BusinessInsights
		out, raw, err = llm.GenerateStructured[BusinessInsights](ctx, s.llm, schema, insightSystemPrompt, userMessage)
		if out != nil {
			summary = out.Summary
		}
	}
	if err != nil {
		log.Printf("❌ AI %s insight for user %s failed: %v", kind, userID, err)
		return nil, fmt.Errorf("failed to generate %s insight: %w", kind, err)
	}

	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	insight := &models.AIInsight{
		UserID:   uid,
		Kind:     kind,
		Model:    s.model,
		Summary:  summary,
		Payload:  datatypes.JSON(raw),
		Snapshot: datatypes.JSON(data),
	}
	if err := s.insights.Create(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to save insight: %w", err)
	}

	log.Printf("🤖 AI %s insight generated for user %s", kind, userID)
	return insight, nil
}

// Snapshot summarises the user's books for the model.
func (s *InsightService) Snapshot(ctx context.Context, userID string) (*FinancialSnapshot, error) {
	if _, err := s.overdue.MarkOverdue(ctx, userID); err != nil {
		return nil, err
	}
	receivables, err := s.receivables.List(ctx, repositories.AccountFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables: %w", err)
	}
	payables, err := s.payables.List(ctx, repositories.AccountFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list payables: %w", err)
	}

	now := s.now()
	today := money.DateOnly(now)
	horizon := today.AddDate(0, 0, 30)
	snap := &FinancialSnapshot{Date: today.Format("2006-01-02")}

	clients := map[string]*ClientExposure{}
	for _, r := range receivables {
		snap.Receivables.add(r.Status, r.Amount)
		open := r.Status == models.StatusPending || r.Status == models.StatusOverdue
		if open && !r.DueDate.After(horizon) {
			snap.InflowNext30 = snap.InflowNext30.Add(r.Amount)
		}

		key := r.ClientID.String()
		c, ok := clients[key]
		if !ok {
			c = &ClientExposure{}
			if r.Client != nil {
				c.Name = r.Client.Name
			}
			clients[key] = c
		}
		switch {
		case r.Status == models.StatusOverdue:
			c.Overdue = c.Overdue.Add(r.Amount)
			c.Open = c.Open.Add(r.Amount)
			c.OverdueCount++
		case r.Status == models.StatusPending:
			c.Open = c.Open.Add(r.Amount)
		case r.Status == models.StatusPaid:
			c.PaidCount++
		}
	}
	for _, p := range payables {
		snap.Payables.add(p.Status, p.Amount)
		open := p.Status == models.StatusPending || p.Status == models.StatusOverdue
		if open && !p.DueDate.After(horizon) {
			snap.OutflowNext30 = snap.OutflowNext30.Add(p.Amount)
		}
	}

	for _, c := range clients {
		snap.Clients = append(snap.Clients, *c)
	}
	sort.Slice(snap.Clients, func(i, j int) bool {
		if !snap.Clients[i].Overdue.Equal(snap.Clients[j].Overdue) {
			return snap.Clients[i].Overdue.GreaterThan(snap.Clients[j].Overdue)
		}
		return snap.Clients[i].Name < snap.Clients[j].Name
	})
	if len(snap.Clients) > 20 {
		snap.Clients = snap.Clients[:20]
	}

	snap.MonthlyRevenue = monthlyTotals(paidReceivables(receivables), now, 6)
	snap.MonthlyExpenses = monthlyTotals(paidPayables(payables), now, 6)
	return snap, nil
}
