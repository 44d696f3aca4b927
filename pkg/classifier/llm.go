package classifier

import (
	"context"

	"productivity-pal-be/internal/model"
	"productivity-pal-be/pkg/llm"
)

// LLMClassifier classifies through any llm.LLMProvider (Ollama today).
// modelName overrides the provider's default model per call; empty keeps it.
type LLMClassifier struct {
	provider  llm.LLMProvider
	modelName string
}

func NewLLMClassifier(provider llm.LLMProvider, modelName string) *LLMClassifier {
	return &LLMClassifier{provider: provider, modelName: modelName}
}

func (c *LLMClassifier) Classify(ctx context.Context, domain string) (model.Category, error) {
	opts := []llm.Option{llm.WithTemperature(0), llm.WithMaxTokens(8)}
	if c.modelName != "" {
		opts = append(opts, llm.WithModel(c.modelName))
	}
	text, err := c.provider.Generate(ctx, BuildPrompt(domain), opts...)
	if err != nil {
		return "", err
	}
	return ParseResponse(text)
}
