package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Service wraps the LLM provider for dependency injection
type Service struct {
	provider LLMProvider
}

// NewService creates the service with the provider described by cfg
func NewService(cfg *ProviderConfig) (*Service, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	log.Printf("🤖 Using LLM provider: %s", provider.GetProviderName())
	return &Service{provider: provider}, nil
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

func (s *Service) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	return s.provider.GenerateResponse(ctx, systemPrompt, userMessage)
}

func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}

// GenerateStructured asks the model for a T, using T's JSON schema as the
// response format, and decodes the reply into out.
func GenerateStructured[T any](ctx context.Context, s *Service, name, systemPrompt, userMessage string) (*T, string, error) {
	var out T
	definition, err := jsonschema.GenerateSchemaForType(out)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build schema for %s: %w", name, err)
	}

	raw, err := s.provider.GenerateJSON(ctx, systemPrompt, userMessage, Schema{Name: name, Definition: definition})
	if err != nil {
		return nil, "", err
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, raw, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return &out, raw, nil
}
