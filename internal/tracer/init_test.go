package tracer

import (
	"context"
	"testing"

	"productivity-pal-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Environment: "staging"},
		Storage: config.StorageConfig{Driver: "sqlite"},
		Ai:      config.AIConfig{Provider: "ollama"},
		Otel: config.TelemetryConfig{
			ServiceName:    "productivity-pal-backend",
			ServiceVersion: "1.4.0",
			Endpoint:       "localhost:4318",
			SampleRatio:    1,
		},
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown := Init(context.Background(), testConfig())
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestResourceAttributes(t *testing.T) {
	res := Resource(testConfig())

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "productivity-pal-backend", got["service.name"])
	assert.Equal(t, "1.4.0", got["service.version"])
	assert.Equal(t, "staging", got["deployment.environment"])
	assert.Equal(t, "sqlite", got["tracker.blob_store"])
	assert.Equal(t, "ollama", got["tracker.ai_provider"])
}
