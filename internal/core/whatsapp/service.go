// internal/core/whatsapp/service.go
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	ErrNoInstance   = errors.New("no whatsapp instance available")
	ErrInvalidPhone = errors.New("invalid phone number")
)

// Service is the layer the application uses: it normalises numbers and
// falls back to the default instance.
type Service struct {
	provider        Provider
	defaultInstance string
}

// NewService builds the provider described by cfg
func NewService(cfg *ProviderConfig) (*Service, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	log.Printf("✅ Using WhatsApp provider: %s", provider.GetProviderName())
	return NewServiceWithProvider(provider, cfg.DefaultInstance), nil
}

// NewServiceWithProvider wraps an existing provider (used by tests)
func NewServiceWithProvider(provider Provider, defaultInstance string) *Service {
	return &Service{
		provider:        provider,
		defaultInstance: defaultInstance,
	}
}

// SendText sends through instance, or the default instance when empty.
func (s *Service) SendText(ctx context.Context, instance, phone, text string) error {
	number := NormalizePhone(phone)
	if number == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}
	if instance == "" {
		instance = s.defaultInstance
	}
	if instance == "" {
		return ErrNoInstance
	}
	return s.provider.SendText(ctx, instance, number, text)
}

func (s *Service) CreateInstance(ctx context.Context, instance, phone string) (*InstanceInfo, error) {
	return s.provider.CreateInstance(ctx, instance, NormalizePhone(phone))
}

func (s *Service) ConnectionState(ctx context.Context, instance string) (InstanceState, error) {
	return s.provider.ConnectionState(ctx, instance)
}

func (s *Service) QRCode(ctx context.Context, instance string) ([]byte, error) {
	return s.provider.QRCode(ctx, instance)
}

func (s *Service) DeleteInstance(ctx context.Context, instance string) error {
	return s.provider.DeleteInstance(ctx, instance)
}

func (s *Service) DefaultInstance() string {
	return s.defaultInstance
}

func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
