package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// newGatewayEnv wires the WhatsApp service and notifier to a mocked gateway.
func newGatewayEnv(t *testing.T) (*testEnv, *WhatsAppService, *whatsapp.MockProvider) {
	t.Helper()
	env := newTestEnv(t)
	provider := whatsapp.NewMockProvider(gomock.NewController(t))
	gateway := whatsapp.NewServiceWithProvider(provider, "")

	msgLog := NewMessageLog(env.db)
	notifier := notification.NewService(gateway,
		notification.WithInstanceResolver(msgLog),
		notification.WithRecorder(msgLog),
	)
	return env, NewWhatsAppService(env.db, gateway, notifier), provider
}

func TestWhatsAppService_InstanceLifecycle(t *testing.T) {
	env, svc, provider := newGatewayEnv(t)
	ctx := context.Background()

	var name string
	provider.EXPECT().CreateInstance(gomock.Any(), gomock.Any(), "5511955554444").
		DoAndReturn(func(_ context.Context, instance, _ string) (*whatsapp.InstanceInfo, error) {
			name = instance
			return &whatsapp.InstanceInfo{Name: instance, QRCode: []byte("png")}, nil
		})

	created, err := svc.CreateInstance(ctx, env.userID, &models.CreateInstanceRequest{PhoneNumber: "(11) 95555-4444"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "fm_"+strings.ReplaceAll(env.userID, "-", "")[:8]+"_"))
	assert.Equal(t, name, created.Instance.InstanceName)
	assert.Equal(t, models.InstanceConnecting, created.Instance.Status)
	assert.Equal(t, "5511955554444", created.Instance.PhoneNumber)
	assert.Equal(t, []byte("png"), created.QRCode)
	id := created.Instance.ID.String()

	provider.EXPECT().ConnectionState(gomock.Any(), name).Return(whatsapp.StateOpen, nil)
	refreshed, err := svc.RefreshStatus(ctx, env.userID, id)
	require.NoError(t, err)
	assert.Equal(t, models.InstanceConnected, refreshed.Status)

	provider.EXPECT().QRCode(gomock.Any(), name).Return([]byte("qr"), nil)
	qr, err := svc.QRCode(ctx, env.userID, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("qr"), qr)

	list, err := svc.ListInstances(ctx, env.userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.InstanceConnected, list[0].Status)

	provider.EXPECT().DeleteInstance(gomock.Any(), name).Return(errors.New("gateway down"))
	require.NoError(t, svc.DeleteInstance(ctx, env.userID, id))
	list, err = svc.ListInstances(ctx, env.userID)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, svc.DeleteInstance(ctx, env.userID, id), ErrNotFound)
}

func TestWhatsAppService_SendUsesConnectedInstance(t *testing.T) {
	env, svc, provider := newGatewayEnv(t)
	ctx := context.Background()
	client := env.client(t, "Maria", "11999998888")

	provider.EXPECT().CreateInstance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, instance, _ string) (*whatsapp.InstanceInfo, error) {
			return &whatsapp.InstanceInfo{Name: instance}, nil
		})
	created, err := svc.CreateInstance(ctx, env.userID, &models.CreateInstanceRequest{})
	require.NoError(t, err)
	name := created.Instance.InstanceName

	provider.EXPECT().ConnectionState(gomock.Any(), name).Return(whatsapp.StateOpen, nil)
	_, err = svc.RefreshStatus(ctx, env.userID, created.Instance.ID.String())
	require.NoError(t, err)

	provider.EXPECT().SendText(gomock.Any(), name, "5511999998888", "Olá Maria").Return(nil)
	sent, err := svc.Send(ctx, env.userID, &models.SendMessageRequest{ClientID: client.ID.String(), Message: "Olá Maria"})
	require.NoError(t, err)
	assert.True(t, sent)

	provider.EXPECT().SendText(gomock.Any(), name, gomock.Any(), gomock.Any()).Return(errors.New("not connected"))
	sent, err = svc.Send(ctx, env.userID, &models.SendMessageRequest{ClientID: client.ID.String(), Message: "de novo"})
	require.NoError(t, err)
	assert.False(t, sent)

	failed, err := svc.Messages(ctx, repositories.MessageFilter{UserID: env.userID, Status: notification.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "de novo", failed[0].Content)
	assert.Equal(t, string(notification.KindManual), failed[0].MessageType)
	require.NotNil(t, failed[0].ClientID)
	assert.Equal(t, client.ID, *failed[0].ClientID)

	all, err := svc.Messages(ctx, repositories.MessageFilter{UserID: env.userID, ClientID: client.ID.String()})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestWhatsAppService_NoInstanceFailsSend(t *testing.T) {
	env, svc, _ := newGatewayEnv(t)
	client := env.client(t, "Maria", "11999998888")

	sent, err := svc.Send(context.Background(), env.userID, &models.SendMessageRequest{ClientID: client.ID.String(), Message: "oi"})
	require.NoError(t, err)
	assert.False(t, sent)

	messages := env.messages(t)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Error, whatsapp.ErrNoInstance.Error())
}

func TestWhatsAppService_WithoutGateway(t *testing.T) {
	env := newTestEnv(t)
	svc := NewWhatsAppService(env.db, nil, env.notifier)
	ctx := context.Background()

	_, err := svc.CreateInstance(ctx, env.userID, &models.CreateInstanceRequest{})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = svc.RefreshStatus(ctx, env.userID, "0b9f6a43-7d0e-4d43-9a51-5f1f0a9b7c11")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = svc.Send(ctx, env.userID, &models.SendMessageRequest{ClientID: "0b9f6a43-7d0e-4d43-9a51-5f1f0a9b7c11", Message: "oi"})
	assert.ErrorIs(t, err, ErrNotFound)
}
