package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetEnv blanks every variable Load reads so host environment cannot leak in.
func resetEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"LLM_BASE_URL", "LLM_MODEL", "LLM_API_KEY", "LLM_TIMEOUT_SECONDS",
		"LLM_MAX_RETRIES", "LLM_TEMPERATURE", "LLM_INSECURE_SKIP_VERIFY",
		"EXTRACTOR_ENGINE", "GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
		"DOCUMENT_AI_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_VERSION",
		"VALIDATION_REQUIRE_SIGNATURE",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	resetEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://llm-platform.gosi.ins/api", cfg.LLMBaseURL)
	assert.Equal(t, "qwen3-30b", cfg.LLMModel)
	assert.Empty(t, cfg.LLMAPIKey)
	assert.Equal(t, 120, cfg.LLMTimeoutSeconds)
	assert.Equal(t, 3, cfg.LLMMaxRetries)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 0.001)
	assert.False(t, cfg.LLMInsecureSkipVerify)
	assert.Equal(t, EngineVision, cfg.ExtractorEngine)
	assert.Equal(t, "us", cfg.GoogleCloudLocation)
	assert.False(t, cfg.RequireSignature)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadEnvOverrides(t *testing.T) {
	resetEnv(t)
	t.Setenv("LLM_BASE_URL", "https://llm.internal/api")
	t.Setenv("LLM_MODEL", "qwen3-235b")
	t.Setenv("LLM_TIMEOUT_SECONDS", "30")
	t.Setenv("LLM_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("EXTRACTOR_ENGINE", EngineDocumentAI)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "docs-prod")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "eu")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "abc123")
	t.Setenv("VALIDATION_REQUIRE_SIGNATURE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://llm.internal/api", cfg.LLMBaseURL)
	assert.Equal(t, "qwen3-235b", cfg.LLMModel)
	assert.Equal(t, 30, cfg.LLMTimeoutSeconds)
	assert.True(t, cfg.LLMInsecureSkipVerify)
	assert.Equal(t, EngineDocumentAI, cfg.ExtractorEngine)
	assert.Equal(t, "eu", cfg.GoogleCloudLocation)
	assert.True(t, cfg.RequireSignature)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadUnparsableNumbersFallBack(t *testing.T) {
	resetEnv(t)
	t.Setenv("LLM_TIMEOUT_SECONDS", "soon")
	t.Setenv("LLM_MAX_RETRIES", "many")
	t.Setenv("LLM_TEMPERATURE", "warm")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.LLMTimeoutSeconds)
	assert.Equal(t, 3, cfg.LLMMaxRetries)
	assert.InDelta(t, 0.1, cfg.LLMTemperature, 0.001)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown extractor engine",
			env:     map[string]string{"EXTRACTOR_ENGINE": "tesseract"},
			wantErr: "EXTRACTOR_ENGINE",
		},
		{
			name:    "documentai without project",
			env:     map[string]string{"EXTRACTOR_ENGINE": EngineDocumentAI, "DOCUMENT_AI_PROCESSOR_ID": "abc123"},
			wantErr: "GOOGLE_CLOUD_PROJECT",
		},
		{
			name:    "documentai without processor",
			env:     map[string]string{"EXTRACTOR_ENGINE": EngineDocumentAI, "GOOGLE_CLOUD_PROJECT": "docs-prod"},
			wantErr: "DOCUMENT_AI_PROCESSOR_ID",
		},
		{
			name:    "zero timeout",
			env:     map[string]string{"LLM_TIMEOUT_SECONDS": "0"},
			wantErr: "LLM_TIMEOUT_SECONDS",
		},
		{
			name:    "zero retries",
			env:     map[string]string{"LLM_MAX_RETRIES": "0"},
			wantErr: "LLM_MAX_RETRIES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
