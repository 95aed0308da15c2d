package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"docverify/internal/logger"
)

// DocumentAIConfig holds the processor coordinates for Document AI extraction.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string // e.g. "us" or "eu"
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

// DocumentAIExtractor implements Extractor using a Google Document AI OCR processor.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIExtractor creates the extractor with credentials from environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
func NewDocumentAIExtractor(ctx context.Context, config DocumentAIConfig) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if config.ProjectID == "" {
		return nil, WrapExtractionError(op, ErrMissingCredentials, "GOOGLE_CLOUD_PROJECT is required")
	}
	if config.ProcessorID == "" {
		return nil, WrapExtractionError(op, ErrMissingCredentials, "DOCUMENT_AI_PROCESSOR_ID is required")
	}
	if config.Location == "" {
		config.Location = "us"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	var clientOptions []option.ClientOption

	// Regional endpoints for anything outside the US multi-region
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapExtractionError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapExtractionError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return NewDocumentAIExtractorWithClient(config, client), nil
}

// NewDocumentAIExtractorWithClient creates the extractor with an explicit client (for testing).
func NewDocumentAIExtractorWithClient(config DocumentAIConfig, client *documentai.DocumentProcessorClient) *DocumentAIExtractor {
	return &DocumentAIExtractor{
		client: client,
		config: config,
		log:    logger.WithComponent("documentai-extractor"),
	}
}

// ExtractMarkdown extracts text from a PDF or image file and renders it as markdown.
func (d *DocumentAIExtractor) ExtractMarkdown(ctx context.Context, inputPath, outputDir string) (*Result, error) {
	const op = "ExtractMarkdown"
	startTime := time.Now()

	mimeType, err := mimeTypeFor(inputPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, WrapExtractionError(op, err, "failed to read input file")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapExtractionError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if mimeType == "application/pdf" && (len(data) < 4 || string(data[:4]) != "%PDF") {
		return nil, WrapExtractionError(op, ErrInvalidPDF, "missing PDF header")
	}

	processCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := d.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, d.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapExtractionError(op, ErrExtractionFailed, "no document in response")
	}

	pages := pageTexts(resp.Document)
	if !hasText(pages) {
		return nil, WrapExtractionError(op, ErrEmptyDocument, inputPath)
	}

	rendered := make([]string, 0, len(pages))
	for i, text := range pages {
		rendered = append(rendered, renderPageMarkdown(i+1, text))
	}

	pageFiles, err := writePageFiles(outputDir, rendered)
	if err != nil {
		return nil, err
	}

	d.log.Info().
		Str("file", inputPath).
		Int("pages", len(pages)).
		Msg("Document AI extraction completed")

	return &Result{
		Markdown:           combinePages(rendered),
		PageCount:          len(pages),
		PageFiles:          pageFiles,
		Engine:             "documentai",
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}, nil
}

// processorName constructs the full processor resource name.
func (d *DocumentAIExtractor) processorName() string {
	if d.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			d.config.ProjectID, d.config.Location, d.config.ProcessorID, d.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to extraction errors.
func (d *DocumentAIExtractor) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapExtractionError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapExtractionError(op, ErrExtractionFailed, fmt.Sprintf("processor not found: %s", d.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapExtractionError(op, ErrInvalidPDF, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapExtractionError(op, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "Canceled") || strings.Contains(errStr, "context canceled"):
		return WrapExtractionError(op, ErrContextCanceled, "processing was canceled")
	default:
		return WrapExtractionError(op, ErrExtractionFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// pageTexts recovers per-page text through the page layout anchors into the
// shared document text. Documents without page layouts fall back to one page.
func pageTexts(doc *documentaipb.Document) []string {
	if len(doc.Pages) == 0 {
		if strings.TrimSpace(doc.Text) == "" {
			return nil
		}
		return []string{doc.Text}
	}

	pages := make([]string, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pages = append(pages, anchorText(doc.Text, page.GetLayout().GetTextAnchor()))
	}
	return pages
}

// anchorText assembles the text segments referenced by a text anchor.
func anchorText(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}

	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start := int(seg.GetStartIndex())
		end := int(seg.GetEndIndex())
		if start < 0 || end > len(full) || start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}

// Close closes the underlying Document AI client.
func (d *DocumentAIExtractor) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
