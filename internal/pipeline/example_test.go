package pipeline_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"docverify/internal/authenticity"
	"docverify/internal/config"
	"docverify/internal/content"
	"docverify/internal/extract"
	"docverify/internal/llm"
	"docverify/internal/pipeline"
)

// Example demonstrates a complete validation run.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create the LLM client for content validation
	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		APIKey:      os.Getenv("LLM_API_KEY"),
		Timeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		MaxRetries:  cfg.LLMMaxRetries,
		Temperature: cfg.LLMTemperature,
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	// The extractor is built lazily: markdown inputs never touch it, so
	// Google credentials are only needed for PDF and image inputs.
	contentValidator := content.NewValidator(client, func(ctx context.Context) (extract.Extractor, error) {
		return extract.NewExtractor(ctx, cfg)
	})

	authValidator := authenticity.NewValidator(authenticity.NewPDFInspector(), authenticity.Config{
		RequireSignature: cfg.RequireSignature,
	})

	// Run the full pipeline
	runner := pipeline.NewRunner(contentValidator, authValidator)
	result := runner.Run(ctx, "injury_report.pdf")

	fmt.Printf("Run %s finished in %v\n", result.RunID, result.Duration)
	fmt.Println(result.Decision)
	fmt.Println(result.ReasoningLine())
}

// Example_decisionHandling demonstrates acting on the outcome of a run.
func Example_decisionHandling() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		APIKey:  os.Getenv("LLM_API_KEY"),
	})
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	contentValidator := content.NewValidator(client, func(ctx context.Context) (extract.Extractor, error) {
		return extract.NewExtractor(ctx, cfg)
	})
	authValidator := authenticity.NewValidator(authenticity.NewPDFInspector(), authenticity.Config{})

	result := pipeline.NewRunner(contentValidator, authValidator).Run(ctx, "claim_42.pdf")

	switch {
	case result.Decision == pipeline.DecisionValid:
		fmt.Println("Document accepted")
	case result.Decision.NeedsReview():
		fmt.Println("Routing to a human reviewer")
	default:
		fmt.Println("Document rejected")
	}
}
