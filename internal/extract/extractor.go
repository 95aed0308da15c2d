// Package extract converts claim attachments (PDF documents and scanned
// images) into markdown text for content validation.
//
// Two engines are available, selected through EXTRACTOR_ENGINE:
//   - vision: Google Cloud Vision document text detection (default)
//   - documentai: Google Document AI OCR processor
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - For documentai additionally: GOOGLE_CLOUD_PROJECT, DOCUMENT_AI_PROCESSOR_ID
//
// Both engines share the same contract: extract text page by page, render
// each page as a small markdown section, optionally persist the sections as
// page1.md, page2.md, ... in a caller-supplied directory, and return the
// concatenated markdown. Synchronous processing limits of the backing APIs
// apply (20MB per file, 5 pages per PDF for Vision).
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docverify/internal/config"
)

// Extractor converts a document or image file into markdown text.
type Extractor interface {
	// ExtractMarkdown extracts text from inputPath and renders it as markdown.
	// When outputDir is non-empty, one markdown file per page is written there.
	ExtractMarkdown(ctx context.Context, inputPath, outputDir string) (*Result, error)
}

// Result contains the extracted markdown with processing metadata.
type Result struct {
	// Markdown is the full document rendered as markdown, pages concatenated
	// in reading order with blank-line separators.
	Markdown string `json:"markdown"`

	// PageCount is the number of pages that were processed.
	PageCount int `json:"page_count"`

	// PageFiles lists the per-page markdown files written to the output
	// directory, in page order. Empty when no output directory was given.
	PageFiles []string `json:"page_files,omitempty"`

	// Engine is the name of the engine that produced this result.
	Engine string `json:"engine"`

	// Confidence is the average text detection confidence (0.0 to 1.0),
	// when the engine reports one.
	Confidence float32 `json:"confidence,omitempty"`

	// LanguageCodes contains the detected languages in the document.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// ProcessedAt is the timestamp when extraction completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long the extraction took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB).
const MaxFileSizeBytes = 20 * 1024 * 1024

// NewExtractor builds the engine selected by the configuration.
func NewExtractor(ctx context.Context, cfg *config.Config) (Extractor, error) {
	switch cfg.ExtractorEngine {
	case config.EngineDocumentAI:
		return NewDocumentAIExtractor(ctx, DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		})
	default:
		return NewVisionExtractor(ctx)
	}
}

// mimeTypeFor maps an input file extension to the MIME type understood by the
// extraction backends.
func mimeTypeFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".tif", ".tiff":
		return "image/tiff", nil
	case ".gif":
		return "image/gif", nil
	case ".bmp":
		return "image/bmp", nil
	case ".webp":
		return "image/webp", nil
	default:
		return "", WrapExtractionError("mimeTypeFor", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// renderPageMarkdown renders one page of extracted text as a markdown section.
func renderPageMarkdown(pageNum int, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Page %d\n\n", pageNum)
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	return b.String()
}

// writePageFiles persists one markdown file per page into outputDir and
// returns the written paths in page order. A blank outputDir skips persistence.
func writePageFiles(outputDir string, pages []string) ([]string, error) {
	if outputDir == "" {
		return nil, nil
	}

	files := make([]string, 0, len(pages))
	for i, page := range pages {
		path := filepath.Join(outputDir, fmt.Sprintf("page%d.md", i+1))
		if err := os.WriteFile(path, []byte(page), 0644); err != nil {
			return nil, WrapExtractionError("writePageFiles", err, path)
		}
		files = append(files, path)
	}
	return files, nil
}

// combinePages joins rendered page sections into one markdown document.
func combinePages(pages []string) string {
	return strings.Join(pages, "\n\n")
}
