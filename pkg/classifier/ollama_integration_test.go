package classifier

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"productivity-pal-be/pkg/llm/factory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama when one is reachable.
func TestLLMClassifierAgainstOllama(t *testing.T) {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	modelName := os.Getenv("LLM_MODEL")
	if modelName == "" {
		modelName = "gemma:2b"
	}

	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		t.Skipf("Skipping integration test: Ollama not reachable at %s", baseURL)
	}
	resp.Body.Close()

	provider, err := factory.NewLLMProvider("ollama", modelName, baseURL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	category, err := NewLLMClassifier(provider, "").Classify(ctx, "github.com")
	if err != nil {
		t.Logf("model answered with something unparseable: %v", err)
		return
	}
	assert.True(t, category.Valid())
}
