// Package content validates the plausibility of injury-incident documents.
//
// The validator obtains markdown text for the input (either pre-extracted
// markdown or OCR through an extraction engine), normalizes Hijri dates to
// Gregorian, and asks a language model to judge the text against a fixed set
// of criteria: a recognized authority source (Police, Fire, Red Crescent,
// Najm), a recognized document type, a plausible non-future date, patient
// identification details, bilingual Arabic/English content, medical context,
// and absence of template or placeholder text.
//
// The model answers with a structured JSON verdict. A response without
// parseable JSON is itself a judgement: it yields the defined rejection
// verdict, not an error. Errors are reserved for failures to obtain text or
// reach the model at all.
package content

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"docverify/internal/extract"
	"docverify/internal/hijridate"
	"docverify/internal/llm"
	"docverify/internal/logger"
)

// ExtractorFactory builds a text extraction engine on demand. Extraction is
// only needed for PDF/image inputs, so construction (and its credential
// requirements) is deferred until a run actually hits that path.
type ExtractorFactory func(ctx context.Context) (extract.Extractor, error)

// Validator judges document text plausibility with a language model.
type Validator struct {
	llm          llm.Client
	newExtractor ExtractorFactory
	log          zerolog.Logger
}

// NewValidator creates a content validator.
func NewValidator(client llm.Client, factory ExtractorFactory) *Validator {
	return &Validator{
		llm:          client,
		newExtractor: factory,
		log:          logger.WithComponent("content-validator"),
	}
}

// Validate resolves inputPath to markdown text and returns the model's
// verdict. Temporary extraction artifacts are removed before returning,
// whether validation succeeded or not.
func (v *Validator) Validate(ctx context.Context, inputPath string) (*Verdict, error) {
	v.log.Info().
		Str("input", inputPath).
		Msg("Starting content validation")

	text, cleanup, err := v.resolveText(ctx, inputPath)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	normalized := hijridate.Normalize(text)

	v.log.Debug().
		Int("text_length", len(normalized)).
		Msg("Sending document text for evaluation")

	raw, err := v.llm.Generate(ctx, buildPrompt(normalized))
	if err != nil {
		return nil, fmt.Errorf("model evaluation failed: %w", err)
	}

	verdict := ParseVerdict(raw)

	v.log.Info().
		Str("status", string(verdict.Status)).
		Str("final_decision", verdict.FinalDecision).
		Msg("Content validation completed")

	return verdict, nil
}
