package content

import (
	"encoding/json"
	"strings"
)

// Status is the model's judgement of the document text.
type Status string

const (
	StatusValidated    Status = "validated"
	StatusNotValidated Status = "not validated"
)

// Final-decision labels the model may return in a verdict.
const (
	FinalDecisionValid       = "Valid"
	FinalDecisionInvalid     = "Invalid"
	FinalDecisionNeedsReview = "Needs Manual Review"
)

// Verdict is the structured plausibility judgement returned by the model.
type Verdict struct {
	Status            Status   `json:"status"`
	Reason            string   `json:"reason"`
	FieldsDetected    FieldSet `json:"fields_detected"`
	CompletenessScore float64  `json:"completeness_score"`
	AuthenticityScore float64  `json:"authenticity_score"`
	FinalDecision     string   `json:"final_decision"`
}

// Validated reports whether the model accepted the document text.
func (v *Verdict) Validated() bool {
	return v != nil && v.Status == StatusValidated
}

// FieldSet lists the document fields the model managed to detect.
// Absent fields are null in the model response and nil here.
type FieldSet struct {
	AuthorityName        *string `json:"authority_name"`
	ReferenceNumber      *string `json:"reference_number"`
	Date                 *string `json:"date"`
	DocumentType         *string `json:"document_type"`
	PatientName          *string `json:"patient_name"`
	DiagnosisOrProcedure *string `json:"diagnosis_or_procedure"`
	SignatureOrStamp     *string `json:"signature_or_stamp"`
	IsBilingual          bool    `json:"is_bilingual"`
}

// ParseVerdict decodes a model response into a Verdict. Responses that carry
// no parseable JSON object produce the defined rejection fallback rather than
// an error: an unparseable answer means the document was not validated.
func ParseVerdict(raw string) *Verdict {
	jsonStr, ok := extractJSON(raw)
	if !ok {
		return rejectionFallback()
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(jsonStr), &verdict); err != nil {
		return rejectionFallback()
	}
	return &verdict
}

func rejectionFallback() *Verdict {
	return &Verdict{
		Status:        StatusNotValidated,
		FinalDecision: FinalDecisionInvalid,
	}
}

// extractJSON locates the JSON object inside a model response, tolerating
// markdown code fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return cleaned[start : end+1], true
}
