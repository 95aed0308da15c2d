package config

import (
	"fmt"
	"os"
	"strconv"

	"docverify/internal/logger"
)

// Extractor engine names accepted by EXTRACTOR_ENGINE.
const (
	EngineVision     = "vision"
	EngineDocumentAI = "documentai"
)

type Config struct {
	// LLM Gateway Configuration
	LLMBaseURL            string
	LLMModel              string
	LLMAPIKey             string
	LLMTimeoutSeconds     int
	LLMMaxRetries         int
	LLMTemperature        float32
	LLMInsecureSkipVerify bool

	// Text Extraction Configuration
	ExtractorEngine            string
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Authenticity Validation Configuration
	RequireSignature bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		LLMBaseURL:            getEnv("LLM_BASE_URL", "https://llm-platform.gosi.ins/api"),
		LLMModel:              getEnv("LLM_MODEL", "qwen3-30b"),
		LLMAPIKey:             getEnv("LLM_API_KEY", ""),
		LLMTimeoutSeconds:     parseIntEnv("LLM_TIMEOUT_SECONDS", 120),
		LLMMaxRetries:         parseIntEnv("LLM_MAX_RETRIES", 3),
		LLMTemperature:        parseFloatEnv("LLM_TEMPERATURE", 0.1),
		LLMInsecureSkipVerify: parseBoolEnv("LLM_INSECURE_SKIP_VERIFY", false),

		ExtractorEngine:            getEnv("EXTRACTOR_ENGINE", EngineVision),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),

		RequireSignature: parseBoolEnv("VALIDATION_REQUIRE_SIGNATURE", false),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.LLMTimeoutSeconds <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	if c.LLMMaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be at least 1")
	}
	if c.ExtractorEngine != EngineVision && c.ExtractorEngine != EngineDocumentAI {
		return fmt.Errorf("EXTRACTOR_ENGINE must be %q or %q, got %q", EngineVision, EngineDocumentAI, c.ExtractorEngine)
	}
	if c.ExtractorEngine == EngineDocumentAI {
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when EXTRACTOR_ENGINE=%s", EngineDocumentAI)
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required when EXTRACTOR_ENGINE=%s", EngineDocumentAI)
		}
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseFloatEnv(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
