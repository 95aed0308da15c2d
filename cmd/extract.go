package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docverify/internal/config"
	"docverify/internal/extract"
	"docverify/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input-file]",
	Short: "Extract markdown text from a PDF or image",
	Long: `Extract the text of a PDF or image file and render it as markdown,
one "## Page N" section per page.

Two extraction engines are available. The default is Google Cloud Vision
document text detection; Google Document AI can be selected for documents
that need layout-aware processing. Vision supports PDFs up to 5 pages and
20MB for synchronous processing.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string

For the documentai engine, also:
  GOOGLE_CLOUD_PROJECT - Your Google Cloud project ID
  DOCUMENT_AI_PROCESSOR_ID - Your Document AI processor ID`,
	Example: `  # Extract markdown from a report to stdout
  docverify extract report.pdf

  # Save combined markdown to a file
  docverify extract report.pdf -o report.md

  # Write one .md file per page, for later validation runs
  docverify extract report.pdf --output-dir ./report_pages/

  # Use Document AI instead of Vision
  docverify extract report.pdf --engine documentai

  # Include metadata and output as JSON
  docverify extract scan.jpg --metadata --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput represents the JSON output structure when --json flag is used
type ExtractOutput struct {
	Markdown           string    `json:"markdown"`
	PageCount          int       `json:"page_count,omitempty"`
	Engine             string    `json:"engine"`
	Confidence         float32   `json:"confidence,omitempty"`
	LanguageCodes      []string  `json:"language_codes,omitempty"`
	PageFiles          []string  `json:"page_files,omitempty"`
	ProcessedAt        time.Time `json:"processed_at,omitempty"`
	ProcessingDuration string    `json:"processing_duration,omitempty"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().String("output-dir", "", "Directory for per-page markdown files")
	extractCmd.Flags().String("engine", "", "Extraction engine: vision or documentai (default: EXTRACTOR_ENGINE)")
	extractCmd.Flags().BoolP("metadata", "m", false, "Include metadata in output")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	// Get flags
	outputPath, _ := cmd.Flags().GetString("output")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	engine, _ := cmd.Flags().GetString("engine")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	inputPath := args[0]

	log.Info().
		Str("file", inputPath).
		Str("output", outputPath).
		Str("output_dir", outputDir).
		Str("engine", engine).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting text extraction")

	// Validate and get file info
	fileInfo, err := validateExtractFile(inputPath, log)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if engine != "" {
		if engine != config.EngineVision && engine != config.EngineDocumentAI {
			return fmt.Errorf("unknown engine %q. Supported engines: %s, %s",
				engine, config.EngineVision, config.EngineDocumentAI)
		}
		cfg.ExtractorEngine = engine
	}

	// Create context with timeout and signal handling
	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	// Create extraction service
	extractor, err := createExtractorService(ctx, cfg, log)
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			log.Error().
				Err(err).
				Str("output_dir", outputDir).
				Msg("Failed to create output directory")
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Info().
		Str("file", inputPath).
		Int64("size", fileInfo.Size()).
		Str("engine", cfg.ExtractorEngine).
		Msg("Processing document")

	// Extract text
	result, err := extractor.ExtractMarkdown(ctx, inputPath, outputDir)
	if err != nil {
		return handleExtractError(err, log)
	}

	log.Info().
		Int("page_count", result.PageCount).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("markdown_length", len(result.Markdown)).
		Msg("Text extraction completed successfully")

	// Format and output results
	return outputExtractResults(result, fileInfo, outputPath, jsonOutput, includeMetadata, log)
}

// validateExtractFile checks that the input exists, is a regular file,
// and stays within the size limit for synchronous processing.
func validateExtractFile(inputPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", inputPath).
				Msg("Input file not found")
			return nil, fmt.Errorf("input file not found: %s", inputPath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", inputPath).
				Msg("Permission denied accessing input file")
			return nil, fmt.Errorf("permission denied accessing input file: %s", inputPath)
		}
		return nil, fmt.Errorf("error accessing input file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", inputPath).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", inputPath)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", inputPath).
			Msg("Input file is empty")
		return nil, fmt.Errorf("input file is empty: %s", inputPath)
	}

	if fileInfo.Size() > extract.MaxFileSizeBytes {
		log.Error().
			Str("file", inputPath).
			Int64("size", fileInfo.Size()).
			Int64("max_size", extract.MaxFileSizeBytes).
			Msg("Input file exceeds maximum size limit")
		return nil, fmt.Errorf("input file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), extract.MaxFileSizeBytes)
	}

	return fileInfo, nil
}

// createExtractorService creates and configures the extraction engine.
func createExtractorService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (extract.Extractor, error) {
	extractor, err := extract.NewExtractor(ctx, cfg)
	if err != nil {
		if errors.Is(err, extract.ErrMissingCredentials) {
			log.Error().
				Err(err).
				Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n"+
				"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n"+
				"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n"+
				"2. Export GOOGLE_CREDENTIALS with inline JSON:\n"+
				"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n"+
				"3. Use Application Default Credentials (if gcloud is configured):\n"+
				"   gcloud auth application-default login\n\n"+
				"Original error: %w", err)
		}
		log.Error().
			Err(err).
			Msg("Failed to create extraction service")
		return nil, fmt.Errorf("failed to create extraction service: %w", err)
	}

	log.Debug().
		Str("engine", cfg.ExtractorEngine).
		Msg("Extraction service created successfully")
	return extractor, nil
}

// handleExtractError provides user-friendly error messages for extraction failures
func handleExtractError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text extraction failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("extraction timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("extraction was canceled")
	case errors.Is(err, extract.ErrFileTooLarge):
		return fmt.Errorf("input file is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, extract.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages (maximum %d pages for synchronous processing). Try splitting into smaller files", extract.MaxPagesSync)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported file format. Supported formats: PDF, PNG, JPEG, TIFF, GIF, BMP, WebP")
	case errors.Is(err, extract.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, extract.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document. The file may contain only images or be corrupted")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n"+
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path\n"+
			"2. Or set GOOGLE_CREDENTIALS with inline JSON credentials\n"+
			"3. Ensure the service account has access to the selected engine\n\n"+
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your service account has access to the selected extraction engine")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, extract.ErrExtractionFailed):
		return fmt.Errorf("extraction failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("extraction failed: %w", err)
	}
}

// outputExtractResults formats and outputs the extraction results
func outputExtractResults(result *extract.Result, fileInfo os.FileInfo, outputPath string, jsonOutput, includeMetadata bool, log zerolog.Logger) error {
	var output strings.Builder
	var outputData []byte
	var err error

	if jsonOutput {
		// JSON output
		extractOutput := ExtractOutput{
			Markdown:           result.Markdown,
			PageCount:          result.PageCount,
			Engine:             result.Engine,
			Confidence:         result.Confidence,
			LanguageCodes:      result.LanguageCodes,
			PageFiles:          result.PageFiles,
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
			FileName:           filepath.Base(fileInfo.Name()),
			FileSize:           fileInfo.Size(),
		}

		outputData, err = json.MarshalIndent(extractOutput, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	} else {
		// Text output
		if includeMetadata {
			output.WriteString(fmt.Sprintf("=== Extraction Results for %s ===\n", filepath.Base(fileInfo.Name())))
			output.WriteString(fmt.Sprintf("File size: %d bytes\n", fileInfo.Size()))
			output.WriteString(fmt.Sprintf("Engine: %s\n", result.Engine))
			if result.PageCount > 0 {
				output.WriteString(fmt.Sprintf("Pages processed: %d\n", result.PageCount))
			}
			if result.Confidence > 0 {
				output.WriteString(fmt.Sprintf("Confidence: %.1f%%\n", result.Confidence*100))
			}
			if len(result.LanguageCodes) > 0 {
				output.WriteString(fmt.Sprintf("Languages: %s\n", strings.Join(result.LanguageCodes, ", ")))
			}
			if len(result.PageFiles) > 0 {
				output.WriteString(fmt.Sprintf("Page files: %s\n", strings.Join(result.PageFiles, ", ")))
			}
			output.WriteString(fmt.Sprintf("Processing time: %v\n", result.ProcessingDuration))
			output.WriteString(fmt.Sprintf("Processed at: %s\n", result.ProcessedAt.Format(time.RFC3339)))
			output.WriteString("\n=== Extracted Markdown ===\n\n")
		}

		output.WriteString(result.Markdown)
		outputData = []byte(output.String())
	}

	// Write output
	if outputPath != "" {
		err = os.WriteFile(outputPath, outputData, 0644)
		if err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(outputData)).
			Msg("Extraction results written to file")
	} else {
		_, err = os.Stdout.Write(outputData)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}

		// Add newline if not JSON (JSON already has proper formatting)
		if !jsonOutput {
			fmt.Println()
		}
	}

	return nil
}
