package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/authenticity"
	"docverify/internal/content"
	"docverify/pkg/models"
)

type stubContentValidator struct {
	verdict *content.Verdict
	err     error
	gotPath string
}

func (s *stubContentValidator) Validate(_ context.Context, inputPath string) (*content.Verdict, error) {
	s.gotPath = inputPath
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}

type stubAuthValidator struct {
	verdict *authenticity.Verdict
	err     error
	gotPath string
}

func (s *stubAuthValidator) Validate(_ context.Context, inputPath string) (*authenticity.Verdict, error) {
	s.gotPath = inputPath
	if s.err != nil {
		return nil, s.err
	}
	return s.verdict, nil
}

func validatedContent() *content.Verdict {
	return &content.Verdict{Status: content.StatusValidated, FinalDecision: content.FinalDecisionValid}
}

func rejectedContent() *content.Verdict {
	return &content.Verdict{Status: content.StatusNotValidated, FinalDecision: content.FinalDecisionInvalid}
}

func validatedAuth() *authenticity.Verdict {
	return &authenticity.Verdict{Status: authenticity.StatusValidated, Reason: authenticity.ReasonOpenNoEncryption}
}

func rejectedAuth() *authenticity.Verdict {
	return &authenticity.Verdict{Status: authenticity.StatusNotValidated, Reason: authenticity.ReasonEncryptedOrUnsigned}
}

func TestRunDecisions(t *testing.T) {
	tests := []struct {
		name         string
		content      *content.Verdict
		auth         *authenticity.Verdict
		wantDecision Decision
	}{
		{"both validated", validatedContent(), validatedAuth(), DecisionValid},
		{"content only", validatedContent(), rejectedAuth(), DecisionReviewAuthenticity},
		{"authenticity only", rejectedContent(), validatedAuth(), DecisionReviewContent},
		{"both rejected", rejectedContent(), rejectedAuth(), DecisionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(
				&stubContentValidator{verdict: tt.content},
				&stubAuthValidator{verdict: tt.auth},
			)

			result := runner.Run(context.Background(), "report.pdf")

			assert.Equal(t, tt.wantDecision, result.Decision)
			assert.Equal(t, StageSuccess, result.Content.Status)
			assert.Equal(t, StageSuccess, result.Authenticity.Status)

			require.Len(t, result.Reasoning, 3)
			assert.Equal(t, "Content validation: success", result.Reasoning[0])
			assert.Equal(t, "Authenticity validation: success", result.Reasoning[1])
			assert.Equal(t, "Final decision: "+string(tt.wantDecision), result.Reasoning[2])
		})
	}
}

func TestRunContentStageFailure(t *testing.T) {
	runner := NewRunner(
		&stubContentValidator{err: errors.New("model unreachable")},
		&stubAuthValidator{verdict: validatedAuth()},
	)

	result := runner.Run(context.Background(), "report.pdf")

	assert.Equal(t, StageError, result.Content.Status)
	assert.Nil(t, result.Content.Verdict)
	assert.Equal(t, "Content Validation Error: model unreachable", result.Content.Message)
	assert.False(t, result.Content.Passed())

	// The run continues past the failed stage.
	assert.Equal(t, StageSuccess, result.Authenticity.Status)
	assert.Equal(t, DecisionReviewContent, result.Decision)

	require.Len(t, result.Reasoning, 3)
	assert.Equal(t, "Content validation: error", result.Reasoning[0])
}

func TestRunAuthenticityStageFailure(t *testing.T) {
	runner := NewRunner(
		&stubContentValidator{verdict: validatedContent()},
		&stubAuthValidator{err: errors.New("disk unavailable")},
	)

	result := runner.Run(context.Background(), "report.pdf")

	assert.Equal(t, StageError, result.Authenticity.Status)
	assert.Nil(t, result.Authenticity.Verdict)
	assert.Equal(t, "Authentication Validation Error: disk unavailable", result.Authenticity.Message)
	assert.False(t, result.Authenticity.Passed())
	assert.Equal(t, DecisionReviewAuthenticity, result.Decision)

	require.Len(t, result.Reasoning, 3)
	assert.Equal(t, "Authenticity validation: error", result.Reasoning[1])
}

func TestRunBothStagesFail(t *testing.T) {
	runner := NewRunner(
		&stubContentValidator{err: errors.New("model unreachable")},
		&stubAuthValidator{err: errors.New("disk unavailable")},
	)

	result := runner.Run(context.Background(), "report.pdf")

	assert.Equal(t, DecisionInvalid, result.Decision)
	assert.Equal(t, "Content validation: error | Authenticity validation: error | Final decision: "+string(DecisionInvalid), result.ReasoningLine())
}

func TestRunResultMetadata(t *testing.T) {
	contentStub := &stubContentValidator{verdict: validatedContent()}
	authStub := &stubAuthValidator{verdict: validatedAuth()}
	runner := NewRunner(contentStub, authStub)

	result := runner.Run(context.Background(), "report.pdf")

	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err, "run IDs are UUIDs")
	assert.Equal(t, "report.pdf", result.InputPath)
	assert.Equal(t, "report.pdf", contentStub.gotPath)
	assert.Equal(t, "report.pdf", authStub.gotPath)

	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))

	assert.Equal(t, "Content Validation: validated", result.Content.Message)
	assert.Equal(t, "Authentication Validation: validated", result.Authenticity.Message)
}

type zeroPageInspector struct{}

func (zeroPageInspector) Inspect(string) (*models.DocumentMetadata, error) {
	return &models.DocumentMetadata{TotalPages: 0}, nil
}

func TestRunZeroPageDocumentNeverValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 fake"), 0644))

	runner := NewRunner(
		&stubContentValidator{verdict: validatedContent()},
		authenticity.NewValidator(zeroPageInspector{}, authenticity.Config{}),
	)

	result := runner.Run(context.Background(), path)

	require.NotNil(t, result.Authenticity.Verdict)
	assert.Equal(t, authenticity.ReasonEmptyDocument, result.Authenticity.Verdict.Reason)
	assert.Equal(t, DecisionReviewAuthenticity, result.Decision)
	assert.NotEqual(t, DecisionValid, result.Decision, "an empty document cannot produce a valid decision")
}

func TestRunDistinctRunIDs(t *testing.T) {
	runner := NewRunner(
		&stubContentValidator{verdict: validatedContent()},
		&stubAuthValidator{verdict: validatedAuth()},
	)

	first := runner.Run(context.Background(), "a.pdf")
	second := runner.Run(context.Background(), "b.pdf")

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestStageMessagesForRejectedVerdicts(t *testing.T) {
	runner := NewRunner(
		&stubContentValidator{verdict: rejectedContent()},
		&stubAuthValidator{verdict: rejectedAuth()},
	)

	result := runner.Run(context.Background(), "report.pdf")

	// A rejected verdict is still a successful stage; only the message
	// carries the verdict status.
	assert.Equal(t, "Content Validation: not validated", result.Content.Message)
	assert.Equal(t, "Authentication Validation: not validated", result.Authenticity.Message)
	assert.Equal(t, "Content validation: success", result.Reasoning[0])
	assert.Equal(t, "Authenticity validation: success", result.Reasoning[1])
	assert.Equal(t, DecisionInvalid, result.Decision)
}
