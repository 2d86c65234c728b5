// internal/core/whatsapp/provider.go
package whatsapp

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

//go:generate mockgen -source=provider.go -destination=provider_mock.go -package=whatsapp

// Provider is implemented by every WhatsApp gateway the app can talk to.
// An instance is one connected WhatsApp number on the gateway.
type Provider interface {
	// SendText delivers a plain text message through the given instance.
	SendText(ctx context.Context, instance, phone, text string) error

	// CreateInstance registers a new instance and returns its pairing QR when available.
	CreateInstance(ctx context.Context, instance, phone string) (*InstanceInfo, error)

	// ConnectionState reports whether the instance is paired and online.
	ConnectionState(ctx context.Context, instance string) (InstanceState, error)

	// QRCode returns a PNG to pair the instance.
	QRCode(ctx context.Context, instance string) ([]byte, error)

	DeleteInstance(ctx context.Context, instance string) error

	GetProviderName() string
}

type InstanceState string

const (
	StateOpen       InstanceState = "open"
	StateConnecting InstanceState = "connecting"
	StateClose      InstanceState = "close"
)

// InstanceInfo is what a gateway returns after creating an instance
type InstanceInfo struct {
	Name   string
	Status string
	QRCode []byte // PNG, may be empty
}

type ProviderType string

const (
	ProviderEvolution ProviderType = "evolution"
	ProviderWhatsmeow ProviderType = "whatsmeow"
)

type ProviderConfig struct {
	Type ProviderType

	// Evolution API
	EvolutionURL    string
	EvolutionKey    string
	DefaultInstance string
	Timeout         time.Duration

	// Whatsmeow device store; empty means local sqlite file
	StoreURL string
}

// NewProvider builds the provider selected by cfg.Type
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderEvolution, "":
		if cfg.EvolutionURL == "" {
			return nil, fmt.Errorf("EVOLUTION_API_URL is required")
		}
		return NewEvolutionProvider(cfg.EvolutionURL, cfg.EvolutionKey, cfg.Timeout), nil

	case ProviderWhatsmeow:
		return NewWhatsmeowProvider(cfg.StoreURL), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone keeps digits only and adds the Brazilian country code
// when it is missing. Returns "" when nothing usable is left.
func NormalizePhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 10 || len(digits) == 11:
		// DDD + number, never carries the country code
		return "55" + digits
	case !strings.HasPrefix(digits, "55"):
		return "55" + digits
	}
	return digits
}
