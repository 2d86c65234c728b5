package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentText struct{ instance, phone, text string }

type fakeSender struct {
	sent []sentText
	err  error
}

func (f *fakeSender) SendText(_ context.Context, instance, phone, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentText{instance, phone, text})
	return nil
}

type fakeRecorder struct{ records []*Record }

func (f *fakeRecorder) RecordMessage(_ context.Context, rec *Record) error {
	f.records = append(f.records, rec)
	return nil
}

type staticResolver string

func (r staticResolver) ActiveInstance(context.Context, string) (string, error) {
	return string(r), nil
}

func TestService_Notify(t *testing.T) {
	tests := []struct {
		name       string
		senderErr  error
		phone      string
		wantOK     bool
		wantStatus string
	}{
		{"sent", nil, "11999998888", true, StatusSent},
		{"gateway error", errors.New("503"), "11999998888", false, StatusFailed},
		{"no phone", nil, "", false, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{err: tt.senderErr}
			recorder := &fakeRecorder{}
			svc := NewService(sender, WithRecorder(recorder), WithInstanceResolver(staticResolver("loja-1")))

			ok := svc.Notify(context.Background(), Message{
				UserID: "u1", ClientID: "c1", Phone: tt.phone, Text: "oi", Kind: KindApproval,
			})
			assert.Equal(t, tt.wantOK, ok)

			require.Len(t, recorder.records, 1)
			rec := recorder.records[0]
			assert.Equal(t, tt.wantStatus, rec.Status)
			assert.Equal(t, KindApproval, rec.Kind)
			if tt.wantOK {
				require.Len(t, sender.sent, 1)
				assert.Equal(t, "loja-1", sender.sent[0].instance)
				assert.NotNil(t, rec.SentAt)
			} else {
				assert.NotEmpty(t, rec.Error)
				assert.Nil(t, rec.SentAt)
			}
		})
	}
}

func TestService_NotifyAdmin(t *testing.T) {
	sender := &fakeSender{}
	assert.False(t, NewService(sender).NotifyAdmin(context.Background(), "x"))

	svc := NewService(sender, WithAdminPhone("5511999990000"))
	assert.True(t, svc.NotifyAdmin(context.Background(), "upgrade"))
	assert.Equal(t, "5511999990000", sender.sent[0].phone)
}

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("Oi {cliente}, {descricao} de {valor} vence {vencimento} ({dias} dias) {x}", TemplateVars{
		Client:      "Maria",
		Description: "Aluguel",
		Amount:      decimal.RequireFromString("1500"),
		DueDate:     time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Days:        3,
	})
	assert.Equal(t, "Oi Maria, Aluguel de R$ 1.500,00 vence 05/04/2025 (3 dias) {x}", got)
}

func TestReminderTexts(t *testing.T) {
	due := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	one := DueReminderText("Maria", "Aluguel", decimal.NewFromInt(10), due, 1)
	assert.Contains(t, one, "vence em 1 dia:")
	three := DueReminderText("Maria", "Aluguel", decimal.NewFromInt(10), due, 3)
	assert.Contains(t, three, "vence em 3 dias:")
	assert.Contains(t, three, "R$ 10,00")

	late := OverdueReminderText("Maria", "Aluguel", decimal.NewFromInt(10), due, 7)
	assert.Contains(t, late, "*Atraso:* 7 dias")
}
