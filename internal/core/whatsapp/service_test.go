package whatsapp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestService_SendText(t *testing.T) {
	type testCase struct {
		name      string
		instance  string
		phone     string
		fallback  string
		setupMock func(m *MockProvider)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "uses given instance and normalises phone",
			instance: "loja",
			phone:    "(11) 98888-7777",
			setupMock: func(m *MockProvider) {
				m.EXPECT().SendText(gomock.Any(), "loja", "5511988887777", "oi").Return(nil)
			},
		},
		{
			name:     "falls back to default instance",
			phone:    "11988887777",
			fallback: "default",
			setupMock: func(m *MockProvider) {
				m.EXPECT().SendText(gomock.Any(), "default", "5511988887777", "oi").Return(nil)
			},
		},
		{
			name:    "no instance at all",
			phone:   "11988887777",
			wantErr: ErrNoInstance,
		},
		{
			name:     "empty phone",
			instance: "loja",
			phone:    " - ",
			wantErr:  ErrInvalidPhone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			provider := NewMockProvider(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(provider)
			}

			svc := NewServiceWithProvider(provider, tt.fallback)
			err := svc.SendText(context.Background(), tt.instance, tt.phone, "oi")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(&ProviderConfig{Type: ProviderEvolution, EvolutionURL: "http://evo"})
	assert.NoError(t, err)
	assert.Equal(t, "EvolutionAPI", p.GetProviderName())

	_, err = NewProvider(&ProviderConfig{Type: ProviderEvolution})
	assert.Error(t, err)

	p, err = NewProvider(&ProviderConfig{Type: ProviderWhatsmeow})
	assert.NoError(t, err)
	assert.Equal(t, "Whatsmeow", p.GetProviderName())

	_, err = NewProvider(&ProviderConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}
