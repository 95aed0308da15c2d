// Package authenticity checks the structural trustworthiness of a document
// file without looking at its text. It inspects the PDF itself: page count,
// digital signatures, encryption, and embedded metadata.
//
// The verdict follows a fixed rule chain, evaluated in order: missing file,
// unreadable file, empty document, signed-and-open, open-without-signature,
// and everything else. By default an open unsigned document passes, which
// matches how most legitimate reports arrive; set RequireSignature to demand
// a digital signature instead.
package authenticity

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"docverify/internal/logger"
	"docverify/pkg/models"
)

// Status is the outcome of an authenticity check.
type Status string

const (
	StatusValidated    Status = "validated"
	StatusNotValidated Status = "not validated"
)

// Reasons attached to verdicts by the rule chain.
const (
	ReasonFileNotFound        = "File not found"
	ReasonEmptyDocument       = "Empty document"
	ReasonSignedNoEncryption  = "Validated via digital signature and no encryption"
	ReasonOpenNoEncryption    = "Validated via open document with no encryption"
	ReasonEncryptedOrUnsigned = "Document is encrypted or lacks valid signature"
)

// Verdict is the result of an authenticity check. Metadata is present
// whenever the document could be opened.
type Verdict struct {
	Status   Status                   `json:"status"`
	Reason   string                   `json:"reason"`
	Metadata *models.DocumentMetadata `json:"metadata,omitempty"`
}

// Validated reports whether the document passed the authenticity check.
func (v *Verdict) Validated() bool {
	return v != nil && v.Status == StatusValidated
}

// Config holds validator settings.
type Config struct {
	// RequireSignature rejects documents that lack a digital signature,
	// even when they are otherwise open and readable.
	RequireSignature bool
}

// Validator applies the structural rule chain to document files.
type Validator struct {
	inspector        Inspector
	requireSignature bool
	log              zerolog.Logger
}

// NewValidator creates an authenticity validator backed by the given inspector.
func NewValidator(inspector Inspector, cfg Config) *Validator {
	return &Validator{
		inspector:        inspector,
		requireSignature: cfg.RequireSignature,
		log:              logger.WithComponent("authenticity-validator"),
	}
}

// Validate checks the document at path and returns a verdict. Structural
// problems, including unreadable or password-locked files, fold into a
// not-validated verdict rather than an error; an error is returned only
// when the run itself is canceled.
func (v *Validator) Validate(ctx context.Context, path string) (*Verdict, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.log.Info().
		Str("input", path).
		Msg("Starting authenticity validation")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Verdict{Status: StatusNotValidated, Reason: ReasonFileNotFound}, nil
	}

	meta, err := v.inspector.Inspect(path)
	if err != nil {
		v.log.Warn().
			Err(err).
			Str("input", path).
			Msg("Document inspection failed")
		return &Verdict{
			Status: StatusNotValidated,
			Reason: fmt.Sprintf("Error during authentication: %v", err),
		}, nil
	}

	verdict := &Verdict{Metadata: meta}
	switch {
	case meta.TotalPages < 1:
		verdict.Status = StatusNotValidated
		verdict.Reason = ReasonEmptyDocument
	case meta.HasSignature && !meta.IsEncrypted:
		verdict.Status = StatusValidated
		verdict.Reason = ReasonSignedNoEncryption
	case !meta.HasSignature && !meta.IsEncrypted && !v.requireSignature:
		verdict.Status = StatusValidated
		verdict.Reason = ReasonOpenNoEncryption
	default:
		verdict.Status = StatusNotValidated
		verdict.Reason = ReasonEncryptedOrUnsigned
	}

	v.log.Info().
		Str("status", string(verdict.Status)).
		Str("reason", verdict.Reason).
		Int("pages", meta.TotalPages).
		Bool("has_signature", meta.HasSignature).
		Bool("is_encrypted", meta.IsEncrypted).
		Msg("Authenticity validation completed")

	return verdict, nil
}
