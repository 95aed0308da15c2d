// Package pipeline runs the document validation workflow. A run executes
// three stages in a fixed order: content validation, authenticity
// validation, then the final decision. The two validation stages are
// independent of each other; each produces a tagged stage result, and the
// decision stage combines the two.
//
// A stage failure never aborts the run. A content stage that cannot reach
// the language model, or an authenticity stage interrupted mid-run, records
// an error result for that stage and the run continues; the decision stage
// treats a failed stage as not passed. The run also keeps an append-only
// reasoning log, one entry per stage, explaining how the decision was
// reached.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docverify/internal/authenticity"
	"docverify/internal/content"
	"docverify/internal/logger"
)

// StageStatus tags a stage result as a success or an error.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageError   StageStatus = "error"
)

// ContentStage is the outcome of the content validation stage. On success
// the verdict is present; on error only the message is.
type ContentStage struct {
	Status  StageStatus      `json:"status"`
	Verdict *content.Verdict `json:"result,omitempty"`
	Message string           `json:"message"`
}

func contentSuccess(verdict *content.Verdict) ContentStage {
	return ContentStage{
		Status:  StageSuccess,
		Verdict: verdict,
		Message: fmt.Sprintf("Content Validation: %s", verdict.Status),
	}
}

func contentFailure(err error) ContentStage {
	return ContentStage{
		Status:  StageError,
		Message: fmt.Sprintf("Content Validation Error: %v", err),
	}
}

// Passed reports whether the stage succeeded with a validated verdict.
func (s ContentStage) Passed() bool {
	return s.Status == StageSuccess && s.Verdict.Validated()
}

// AuthenticityStage is the outcome of the authenticity validation stage.
// On success the verdict is present; on error only the message is.
type AuthenticityStage struct {
	Status  StageStatus           `json:"status"`
	Verdict *authenticity.Verdict `json:"result,omitempty"`
	Message string                `json:"message"`
}

func authenticitySuccess(verdict *authenticity.Verdict) AuthenticityStage {
	return AuthenticityStage{
		Status:  StageSuccess,
		Verdict: verdict,
		Message: fmt.Sprintf("Authentication Validation: %s", verdict.Status),
	}
}

func authenticityFailure(err error) AuthenticityStage {
	return AuthenticityStage{
		Status:  StageError,
		Message: fmt.Sprintf("Authentication Validation Error: %v", err),
	}
}

// Passed reports whether the stage succeeded with a validated verdict.
func (s AuthenticityStage) Passed() bool {
	return s.Status == StageSuccess && s.Verdict.Validated()
}

// Result is the complete outcome of one validation run.
type Result struct {
	RunID        string            `json:"run_id"`
	InputPath    string            `json:"input_path"`
	Content      ContentStage      `json:"content_validation"`
	Authenticity AuthenticityStage `json:"authenticity_validation"`
	Decision     Decision          `json:"final_decision"`
	Reasoning    []string          `json:"reasoning"`
	StartedAt    time.Time         `json:"started_at"`
	CompletedAt  time.Time         `json:"completed_at"`
	Duration     time.Duration     `json:"duration"`
}

// ReasoningLine renders the reasoning log as a single line.
func (r *Result) ReasoningLine() string {
	return strings.Join(r.Reasoning, " | ")
}

// ContentValidator judges the plausibility of a document's text.
type ContentValidator interface {
	Validate(ctx context.Context, inputPath string) (*content.Verdict, error)
}

// AuthenticityValidator checks a document's structural trustworthiness.
type AuthenticityValidator interface {
	Validate(ctx context.Context, inputPath string) (*authenticity.Verdict, error)
}

// Runner executes validation runs.
type Runner struct {
	content      ContentValidator
	authenticity AuthenticityValidator
}

// NewRunner creates a pipeline runner from the two stage validators.
func NewRunner(content ContentValidator, authenticity AuthenticityValidator) *Runner {
	return &Runner{
		content:      content,
		authenticity: authenticity,
	}
}

// Run validates the document at inputPath and returns the full result.
// Run always returns a result; stage failures are recorded inside it.
func (r *Runner) Run(ctx context.Context, inputPath string) *Result {
	runID := uuid.New().String()
	log := logger.WithRunID(runID)
	startedAt := time.Now()

	log.Info().
		Str("input", inputPath).
		Msg("Starting document validation")

	reasoning := make([]string, 0, 3)

	log.Info().Msg("Step 1: Content Validation...")
	contentStage := r.runContent(ctx, inputPath)
	reasoning = append(reasoning, fmt.Sprintf("Content validation: %s", contentStage.Status))

	log.Info().Msg("Step 2: Authenticity Validation...")
	authStage := r.runAuthenticity(ctx, inputPath)
	reasoning = append(reasoning, fmt.Sprintf("Authenticity validation: %s", authStage.Status))

	log.Info().Msg("Step 3: Making Final Decision...")
	decision := Decide(contentStage.Passed(), authStage.Passed())
	reasoning = append(reasoning, fmt.Sprintf("Final decision: %s", decision))

	completedAt := time.Now()

	log.Info().
		Str("decision", string(decision)).
		Dur("duration", completedAt.Sub(startedAt)).
		Msg("Document validation completed")

	return &Result{
		RunID:        runID,
		InputPath:    inputPath,
		Content:      contentStage,
		Authenticity: authStage,
		Decision:     decision,
		Reasoning:    reasoning,
		StartedAt:    startedAt,
		CompletedAt:  completedAt,
		Duration:     completedAt.Sub(startedAt),
	}
}

func (r *Runner) runContent(ctx context.Context, inputPath string) ContentStage {
	verdict, err := r.content.Validate(ctx, inputPath)
	if err != nil {
		return contentFailure(err)
	}
	return contentSuccess(verdict)
}

func (r *Runner) runAuthenticity(ctx context.Context, inputPath string) AuthenticityStage {
	verdict, err := r.authenticity.Validate(ctx, inputPath)
	if err != nil {
		return authenticityFailure(err)
	}
	return authenticitySuccess(verdict)
}
