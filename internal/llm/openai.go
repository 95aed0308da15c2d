package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"docverify/internal/logger"
)

// Config carries the connection settings for the chat-completion gateway.
type Config struct {
	BaseURL            string        // OpenAI-compatible API root, e.g. "https://llm-platform.gosi.ins/api"
	Model              string        // Model name, e.g. "qwen3-30b"
	APIKey             string        // Bearer token
	Timeout            time.Duration // Per-request HTTP timeout
	MaxRetries         int           // Chat-completion retry attempts
	Temperature        float32       // Sampling temperature
	InsecureSkipVerify bool          // Skip TLS verification (self-signed gateway certificates)
}

// OpenAIClient implements Client against any OpenAI-compatible endpoint.
type OpenAIClient struct {
	client *openai.Client
	config Config
	log    zerolog.Logger
}

// NewOpenAIClient builds a client for the configured gateway.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	const op = "NewOpenAIClient"

	if cfg.APIKey == "" {
		return nil, WrapLLMError(op, ErrMissingAPIKey, "")
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	clientConfig.HTTPClient = httpClient

	return NewOpenAIClientWithClient(openai.NewClientWithConfig(clientConfig), cfg), nil
}

// NewOpenAIClientWithClient builds the wrapper around an explicit SDK client (for testing).
func NewOpenAIClientWithClient(client *openai.Client, cfg Config) *OpenAIClient {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &OpenAIClient{
		client: client,
		config: cfg,
		log:    logger.WithComponent("llm-client"),
	}
}

// Generate sends prompt as a single user message and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "Generate"

	c.log.Debug().
		Str("model", c.config.Model).
		Int("prompt_length", len(prompt)).
		Msg("Sending chat completion request")

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.config.Model,
			Temperature: c.config.Temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})

		if err != nil {
			lastErr = err
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			c.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_retries", c.config.MaxRetries).
				Msg("Chat completion request failed, retrying")
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = ErrEmptyResponse
			c.log.Warn().
				Int("attempt", attempt).
				Msg("Chat completion returned no choices, retrying")
			continue
		}

		content := resp.Choices[0].Message.Content
		c.log.Debug().
			Int("response_length", len(content)).
			Msg("Received chat completion response")
		return content, nil
	}

	return "", WrapLLMError(op, lastErr, fmt.Sprintf("after %d attempts", c.config.MaxRetries))
}
