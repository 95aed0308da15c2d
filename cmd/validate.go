package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docverify/internal/authenticity"
	"docverify/internal/config"
	"docverify/internal/content"
	"docverify/internal/extract"
	"docverify/internal/llm"
	"docverify/internal/logger"
	"docverify/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate [input]",
	Short: "Validate an injury incident document",
	Long: `Run the full validation pipeline on an injury incident document.

The input may be a PDF, an image, a markdown file, or a directory of
pre-extracted markdown pages. Content validation judges whether the text
reads like a genuine incident report: a recognized authority, a plausible
date, patient details, bilingual Arabic/English content, and medical
context. Authenticity validation inspects the file structure: page count,
digital signatures, and encryption.

The two checks combine into one decision. A document that passes both is
valid, one that fails both is invalid, and one that passes exactly one is
routed to manual review.

Required configuration:
  LLM_API_KEY - API key for the language model gateway (or --api-key)
For PDF and image inputs, text extraction also needs Google credentials:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Validate a PDF report
  docverify validate report.pdf

  # Validate a directory of pre-extracted markdown pages
  docverify validate ./report_pages/

  # Pass the API key explicitly and save the result as JSON
  docverify validate report.pdf --api-key sk-... --json -o result.json

  # Demand a digital signature during authenticity validation
  docverify validate report.pdf --require-signature`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("api-key", "", "API key for the language model (default: LLM_API_KEY)")
	validateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	validateCmd.Flags().Bool("json", false, "Output as JSON")
	validateCmd.Flags().Bool("require-signature", false, "Reject unsigned documents during authenticity validation")
	validateCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate")

	// Get flags
	apiKey, _ := cmd.Flags().GetString("api-key")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	inputPath := args[0]

	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting document validation")

	// Validate input path before doing any work
	if _, err := validateInputPath(inputPath, log); err != nil {
		return err
	}

	// The language model is mandatory for a validation run; fail fast
	// before any network or extraction work when the key is missing.
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if apiKey == "" {
		log.Error().Msg("LLM API key not configured")
		return fmt.Errorf("LLM API key not configured. Please either:\n\n" +
			"1. Pass the key on the command line:\n" +
			"   docverify validate report.pdf --api-key <key>\n\n" +
			"2. Export LLM_API_KEY:\n" +
			"   export LLM_API_KEY=<key>\n\n" +
			"3. Add LLM_API_KEY to your .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("invalid configuration: %w", err)
	}

	requireSignature := cfg.RequireSignature
	if cmd.Flags().Changed("require-signature") {
		requireSignature, _ = cmd.Flags().GetBool("require-signature")
	}

	// Create context with timeout and signal handling
	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	// Build the pipeline
	client, err := buildLLMClient(cfg, apiKey, log)
	if err != nil {
		return err
	}

	contentValidator := content.NewValidator(client, func(ctx context.Context) (extract.Extractor, error) {
		return extract.NewExtractor(ctx, cfg)
	})
	authValidator := authenticity.NewValidator(authenticity.NewPDFInspector(), authenticity.Config{
		RequireSignature: requireSignature,
	})

	runner := pipeline.NewRunner(contentValidator, authValidator)

	// Run validation; stage failures are recorded inside the result
	result := runner.Run(ctx, inputPath)

	log.Info().
		Str("run_id", result.RunID).
		Str("decision", string(result.Decision)).
		Dur("duration", result.Duration).
		Msg("Validation run completed")

	return outputValidationResults(result, outputPath, jsonOutput, log)
}

// validateInputPath checks that the input exists and is not an empty file.
// Directories are allowed: they hold pre-extracted markdown pages. Content
// checks for other file types happen further down the pipeline.
func validateInputPath(inputPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("input", inputPath).
				Msg("Input not found")
			return nil, fmt.Errorf("input not found: %s", inputPath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("input", inputPath).
				Msg("Permission denied accessing input")
			return nil, fmt.Errorf("permission denied accessing input: %s", inputPath)
		}
		return nil, fmt.Errorf("error accessing input: %w", err)
	}

	if fileInfo.Mode().IsRegular() && fileInfo.Size() == 0 {
		log.Error().
			Str("input", inputPath).
			Msg("Input file is empty")
		return nil, fmt.Errorf("input file is empty: %s", inputPath)
	}

	return fileInfo, nil
}

// buildLLMClient creates the language model client for content validation.
func buildLLMClient(cfg *config.Config, apiKey string, log zerolog.Logger) (llm.Client, error) {
	client, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:            cfg.LLMBaseURL,
		Model:              cfg.LLMModel,
		APIKey:             apiKey,
		Timeout:            time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		MaxRetries:         cfg.LLMMaxRetries,
		Temperature:        cfg.LLMTemperature,
		InsecureSkipVerify: cfg.LLMInsecureSkipVerify,
	})
	if err != nil {
		log.Error().
			Err(err).
			Msg("Failed to create LLM client")
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	log.Debug().
		Str("base_url", cfg.LLMBaseURL).
		Str("model", cfg.LLMModel).
		Msg("LLM client created successfully")
	return client, nil
}

// outputValidationResults formats and outputs the validation result.
func outputValidationResults(result *pipeline.Result, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal validation result to JSON")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		outputData = data
	} else {
		var output strings.Builder

		output.WriteString(fmt.Sprintf("=== Validation Results for %s ===\n", filepath.Base(result.InputPath)))
		output.WriteString(fmt.Sprintf("Run ID: %s\n", result.RunID))
		output.WriteString(fmt.Sprintf("Completed in: %v\n\n", result.Duration))

		output.WriteString(result.Content.Message + "\n")
		if v := result.Content.Verdict; v != nil {
			if v.Reason != "" {
				output.WriteString(fmt.Sprintf("  Reason: %s\n", v.Reason))
			}
			if v.FinalDecision != "" {
				output.WriteString(fmt.Sprintf("  Model decision: %s\n", v.FinalDecision))
			}
		}

		output.WriteString(result.Authenticity.Message + "\n")
		if v := result.Authenticity.Verdict; v != nil {
			output.WriteString(fmt.Sprintf("  Reason: %s\n", v.Reason))
			if m := v.Metadata; m != nil {
				output.WriteString(fmt.Sprintf("  Pages: %d, Signed: %t, Encrypted: %t\n",
					m.TotalPages, m.HasSignature, m.IsEncrypted))
			}
		}

		output.WriteString("\n" + string(result.Decision) + "\n")
		output.WriteString(fmt.Sprintf("Reasoning: %s\n", result.ReasoningLine()))

		outputData = []byte(output.String())
	}

	// Write output
	if outputPath != "" {
		if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Validation results written to file")
	} else {
		if _, err := os.Stdout.Write(outputData); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		if jsonOutput {
			fmt.Println()
		}
	}

	return nil
}
