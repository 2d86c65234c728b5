package notification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
)

// Texts are Portuguese because they go to Brazilian customers.

func SaleConfirmationText(clientName, description string, total decimal.Decimal, installments int, url string) string {
	return fmt.Sprintf(
		"Olá %s! Você tem uma venda parcelada para confirmar.\n\n"+
			"📋 *Descrição:* %s\n"+
			"💰 *Valor:* %s em %dx\n\n"+
			"Acesse: %s",
		clientName, description, money.FormatBRL(total), installments, url,
	)
}

func SaleApprovedText(clientName string) string {
	return fmt.Sprintf("Olá %s! Sua venda parcelada foi APROVADA. As parcelas foram geradas no sistema.", clientName)
}

func SaleRejectedText(clientName, reason string) string {
	return fmt.Sprintf("Olá %s! Infelizmente sua venda parcelada foi REJEITADA. Motivo: %s", clientName, reason)
}

// SaleResendText asks the client to confirm again with a new link.
func SaleResendText(clientName, reason, url string) string {
	return fmt.Sprintf(
		"Olá %s! Precisamos que você confirme novamente sua venda parcelada.\n\n"+
			"Motivo: %s\n\n"+
			"Novo link: %s",
		clientName, reason, url,
	)
}

func DueReminderText(clientName, description string, amount decimal.Decimal, due time.Time, daysAhead int) string {
	plural := ""
	if daysAhead > 1 {
		plural = "s"
	}
	return fmt.Sprintf(
		"⏰ *LEMBRETE DE VENCIMENTO* ⏰\n\n"+
			"Olá %s!\n\n"+
			"Sua conta vence em %d dia%s:\n\n"+
			"📋 *Descrição:* %s\n"+
			"💰 *Valor:* %s\n"+
			"📅 *Vencimento:* %s\n\n"+
			"Para evitar juros, efetue o pagamento até a data de vencimento.\n\n"+
			"Obrigado!",
		clientName, daysAhead, plural, description, money.FormatBRL(amount), money.FormatDate(due),
	)
}

func OverdueReminderText(clientName, description string, amount decimal.Decimal, due time.Time, daysOverdue int) string {
	return fmt.Sprintf(
		"🔴 *CONTA EM ATRASO* 🔴\n\n"+
			"Olá %s!\n\n"+
			"Temos uma conta em aberto em seu nome:\n\n"+
			"📋 *Descrição:* %s\n"+
			"💰 *Valor:* %s\n"+
			"📅 *Vencimento:* %s\n"+
			"⚠️ *Atraso:* %d dias\n\n"+
			"Por favor, entre em contato urgentemente para regularização.\n\n"+
			"Obrigado!",
		clientName, description, money.FormatBRL(amount), money.FormatDate(due), daysOverdue,
	)
}

// TemplateVars fills the placeholders users may put in reminder templates
type TemplateVars struct {
	Client      string
	Description string
	Amount      decimal.Decimal
	DueDate     time.Time
	Days        int
}

// RenderTemplate replaces {cliente}, {descricao}, {valor}, {vencimento}
// and {dias}. Unknown placeholders are left as written.
func RenderTemplate(template string, v TemplateVars) string {
	return strings.NewReplacer(
		"{cliente}", v.Client,
		"{descricao}", v.Description,
		"{valor}", money.FormatBRL(v.Amount),
		"{vencimento}", money.FormatDate(v.DueDate),
		"{dias}", strconv.Itoa(v.Days),
	).Replace(template)
}
