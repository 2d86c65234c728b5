package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockgen -source=provider.go -destination=provider_mock.go -package=llm

// LLMProvider is a chat-completion backend.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)

	// GenerateJSON asks for a reply constrained to the given JSON schema and
	// returns the raw JSON document.
	GenerateJSON(ctx context.Context, systemPrompt, userMessage string, schema Schema) (string, error)

	GetProviderName() string
}

// Schema names a JSON schema for structured responses.
type Schema struct {
	Name       string
	Definition json.Marshaler
}

// ProviderType selects an OpenAI-compatible endpoint
type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
)

var baseURLs = map[ProviderType]string{
	ProviderGroq:     "https://api.groq.com/openai/v1",
	ProviderDeepSeek: "https://api.deepseek.com/v1",
}

var defaultModels = map[ProviderType]string{
	ProviderOpenAI:   "gpt-4o",
	ProviderGroq:     "llama-3.1-70b-versatile",
	ProviderDeepSeek: "deepseek-chat",
}

type ProviderConfig struct {
	Type        ProviderType
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
}

// NewProvider creates the provider described by cfg
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	typ := cfg.Type
	if typ == "" {
		typ = ProviderOpenAI
	}

	if _, ok := defaultModels[typ]; !ok {
		return nil, fmt.Errorf("unknown LLM provider type: %s", typ)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key for %s is required", typ)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModels[typ]
	}

	return NewOpenAIProvider(string(typ), cfg.APIKey, baseURLs[typ], model, cfg.Temperature, cfg.MaxTokens), nil
}
