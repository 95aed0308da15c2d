package content

import "fmt"

// evaluationPrompt is the fixed instruction set for the model. The document
// text is interpolated at the end; everything else never changes between runs
// so verdicts stay comparable.
const evaluationPrompt = `You are an expert document verification system for injury incident reports in Saudi Arabia.
The document may contain both English and Arabic text.

Your task: Validate whether this text is valid.

Check the following criteria:
1. Presence of any of the sources "Police", "Fire", "Red Crescent" or "Najm". The names can be in Arabic as well.
2. Presence of document type such as "Medical Report", "Referral", "Electronic Patient Care Report (ePCR)" or "Treatment Approval".
3. Presence of date (Gregorian or Hijri, not future dated) in DD/MM/YYYY format.
4. Presence of patient details (name, ID/passport, gender, DOB/age).
5. Bilingual content (English + Arabic sections).
6. Medical or humanitarian context (diagnosis, treatment, etc.).
7. No obvious template text or placeholder content.

Respond strictly in this JSON format:
{
  "status": "validated" or "not validated",
  "reason": "Explain clearly why the document was marked valid or invalid",
  "fields_detected": {
      "authority_name": "string or null",
      "reference_number": "string or null",
      "date": "string or null",
      "document_type": "string or null",
      "patient_name": "string or null",
      "diagnosis_or_procedure": "string or null",
      "signature_or_stamp": "string or null",
      "is_bilingual": true or false
  },
  "completeness_score": 0.0,
  "authenticity_score": 0.0,
  "final_decision": "Valid" or "Invalid" or "Needs Manual Review"
}

Text to validate:
"""%s"""
`

// buildPrompt interpolates the document text into the evaluation prompt.
func buildPrompt(text string) string {
	return fmt.Sprintf(evaluationPrompt, text)
}
