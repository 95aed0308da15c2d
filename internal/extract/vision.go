package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"docverify/internal/logger"
)

// MaxPagesSync is the maximum number of PDF pages for synchronous Vision processing.
const MaxPagesSync = 5

// VisionExtractor implements Extractor using Google Cloud Vision document text detection.
type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
	log    zerolog.Logger
}

// NewVisionExtractor creates the extractor with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapExtractionError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapExtractionError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapExtractionError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return NewVisionExtractorWithClient(client), nil
}

// NewVisionExtractorWithClient creates the extractor with an explicit client (for testing).
func NewVisionExtractorWithClient(client *vision.ImageAnnotatorClient) *VisionExtractor {
	return &VisionExtractor{
		client: client,
		log:    logger.WithComponent("vision-extractor"),
	}
}

// ExtractMarkdown extracts text from a PDF or image file and renders it as markdown.
func (v *VisionExtractor) ExtractMarkdown(ctx context.Context, inputPath, outputDir string) (*Result, error) {
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

	var pages []string
	var confidence float32
	var languages []string

	if mimeType == "application/pdf" {
		if len(data) < 4 || string(data[:4]) != "%PDF" {
			return nil, WrapExtractionError(op, ErrInvalidPDF, "missing PDF header")
		}
		pages, confidence, languages, err = v.annotateFile(ctx, data, mimeType)
	} else {
		pages, confidence, languages, err = v.annotateImage(ctx, data)
	}
	if err != nil {
		return nil, WrapExtractionError(op, err, inputPath)
	}

	rendered := make([]string, 0, len(pages))
	for i, text := range pages {
		rendered = append(rendered, renderPageMarkdown(i+1, text))
	}

	pageFiles, err := writePageFiles(outputDir, rendered)
	if err != nil {
		return nil, err
	}

	v.log.Info().
		Str("file", inputPath).
		Int("pages", len(pages)).
		Float32("confidence", confidence).
		Msg("Vision extraction completed")

	return &Result{
		Markdown:           combinePages(rendered),
		PageCount:          len(pages),
		PageFiles:          pageFiles,
		Engine:             "vision",
		Confidence:         confidence,
		LanguageCodes:      languages,
		ProcessedAt:        time.Now(),
		ProcessingDuration: time.Since(startTime),
	}, nil
}

// annotateFile runs document text detection over an inline PDF/TIFF file and
// returns the text of each page.
func (v *VisionExtractor) annotateFile(ctx context.Context, data []byte, mimeType string) ([]string, float32, []string, error) {
	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: mimeType,
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: Vision API call failed: %v", ErrExtractionFailed, err)
	}
	if len(resp.Responses) == 0 {
		return nil, 0, nil, fmt.Errorf("%w: no response from Vision API", ErrExtractionFailed)
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, 0, nil, fmt.Errorf("%w: Vision API error: %s", ErrExtractionFailed, fileResp.Error.Message)
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return nil, 0, nil, fmt.Errorf("%w: document has %d pages", ErrTooManyPages, len(fileResp.Responses))
	}

	var pages []string
	var confidenceSum float32
	var confidenceCount int
	languageSet := make(map[string]bool)

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, 0, nil, fmt.Errorf("%w: page %d: %s", ErrExtractionFailed, pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			pages = append(pages, "")
			continue
		}

		pages = append(pages, page.FullTextAnnotation.Text)

		for _, pageInfo := range page.FullTextAnnotation.Pages {
			if pageInfo.Confidence > 0 {
				confidenceSum += pageInfo.Confidence
				confidenceCount++
			}
			if pageInfo.Property != nil {
				for _, lang := range pageInfo.Property.DetectedLanguages {
					if lang.LanguageCode != "" {
						languageSet[lang.LanguageCode] = true
					}
				}
			}
		}
	}

	if !hasText(pages) {
		return nil, 0, nil, ErrEmptyDocument
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return pages, avgConfidence, languageKeys(languageSet), nil
}

// annotateImage runs document text detection over a single scanned image.
func (v *VisionExtractor) annotateImage(ctx context.Context, data []byte) ([]string, float32, []string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: data},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("%w: Vision API call failed: %v", ErrExtractionFailed, err)
	}
	if len(resp.Responses) == 0 {
		return nil, 0, nil, fmt.Errorf("%w: no response from Vision API", ErrExtractionFailed)
	}

	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, 0, nil, fmt.Errorf("%w: Vision API error: %s", ErrExtractionFailed, imageResp.Error.Message)
	}
	if imageResp.FullTextAnnotation == nil || imageResp.FullTextAnnotation.Text == "" {
		return nil, 0, nil, ErrEmptyDocument
	}

	var confidence float32
	languageSet := make(map[string]bool)
	for _, pageInfo := range imageResp.FullTextAnnotation.Pages {
		if pageInfo.Confidence > 0 {
			confidence = pageInfo.Confidence
		}
		if pageInfo.Property != nil {
			for _, lang := range pageInfo.Property.DetectedLanguages {
				if lang.LanguageCode != "" {
					languageSet[lang.LanguageCode] = true
				}
			}
		}
	}

	return []string{imageResp.FullTextAnnotation.Text}, confidence, languageKeys(languageSet), nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

func hasText(pages []string) bool {
	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return true
		}
	}
	return false
}

func languageKeys(set map[string]bool) []string {
	var languages []string
	for lang := range set {
		languages = append(languages, lang)
	}
	return languages
}
