package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docverify/internal/authenticity"
	"docverify/internal/config"
	"docverify/internal/logger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [pdf-file]",
	Short: "Check the structural authenticity of a PDF document",
	Long: `Inspect a PDF document's structure without reading its text: page
count, digital signatures, encryption, and embedded metadata.

The inspection runs entirely on this machine; no network access or
credentials are needed. The verdict follows the same rule chain the
validate command uses for its authenticity stage, so inspect is useful
for checking documents before spending language model calls on them.`,
	Example: `  # Inspect a report
  docverify inspect report.pdf

  # Save the verdict as JSON
  docverify inspect report.pdf --json -o verdict.json

  # Reject unsigned documents
  docverify inspect report.pdf --require-signature`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().Bool("json", false, "Output as JSON")
	inspectCmd.Flags().Bool("require-signature", false, "Reject unsigned documents")
	inspectCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inspect")

	// Get flags
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	pdfPath := args[0]

	log.Info().
		Str("file", pdfPath).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Msg("Starting document inspection")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("invalid configuration: %w", err)
	}

	requireSignature := cfg.RequireSignature
	if cmd.Flags().Changed("require-signature") {
		requireSignature, _ = cmd.Flags().GetBool("require-signature")
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	validator := authenticity.NewValidator(authenticity.NewPDFInspector(), authenticity.Config{
		RequireSignature: requireSignature,
	})

	// A missing or unreadable file yields a not-validated verdict, not an
	// error, so inspect always reports something useful.
	verdict, err := validator.Validate(ctx, pdfPath)
	if err != nil {
		log.Error().Err(err).Msg("Document inspection failed")
		return fmt.Errorf("inspection failed: %w", err)
	}

	log.Info().
		Str("status", string(verdict.Status)).
		Str("reason", verdict.Reason).
		Msg("Document inspection completed")

	return outputInspectResults(verdict, pdfPath, outputPath, jsonOutput, log)
}

// outputInspectResults formats and outputs the inspection verdict.
func outputInspectResults(verdict *authenticity.Verdict, inputPath, outputPath string, jsonOutput bool, log zerolog.Logger) error {
	var outputData []byte

	if jsonOutput {
		data, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal verdict to JSON")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		outputData = data
	} else {
		var output strings.Builder

		output.WriteString(fmt.Sprintf("=== Document Inspection for %s ===\n", filepath.Base(inputPath)))
		output.WriteString(fmt.Sprintf("Status: %s\n", verdict.Status))
		output.WriteString(fmt.Sprintf("Reason: %s\n", verdict.Reason))

		if m := verdict.Metadata; m != nil {
			output.WriteString("\n=== Document Metadata ===\n")
			output.WriteString(fmt.Sprintf("Pages: %d\n", m.TotalPages))
			output.WriteString(fmt.Sprintf("Signed: %t\n", m.HasSignature))
			output.WriteString(fmt.Sprintf("Encrypted: %t\n", m.IsEncrypted))
			if m.Title != "" {
				output.WriteString(fmt.Sprintf("Title: %s\n", m.Title))
			}
			if m.Author != "" {
				output.WriteString(fmt.Sprintf("Author: %s\n", m.Author))
			}
			if m.Creator != "" {
				output.WriteString(fmt.Sprintf("Creator: %s\n", m.Creator))
			}
			if m.Producer != "" {
				output.WriteString(fmt.Sprintf("Producer: %s\n", m.Producer))
			}
			if m.CreationDate != "" {
				output.WriteString(fmt.Sprintf("Created: %s\n", m.CreationDate))
			}
			if m.ModDate != "" {
				output.WriteString(fmt.Sprintf("Modified: %s\n", m.ModDate))
			}
		}

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
			Msg("Inspection results written to file")
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
