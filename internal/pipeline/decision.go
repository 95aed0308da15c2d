package pipeline

// Decision is the final outcome of a validation run.
type Decision string

// The four possible outcomes. A document that passes exactly one of the two
// checks is never rejected outright; it goes to a human instead.
const (
	DecisionValid              Decision = "Document is VALID - Passed both content and authenticity checks"
	DecisionReviewAuthenticity Decision = "Document needs MANUAL REVIEW - Passed content but failed authenticity"
	DecisionReviewContent      Decision = "Document needs MANUAL REVIEW - Passed authenticity but failed content"
	DecisionInvalid            Decision = "Document is INVALID - Failed both content and authenticity checks"
)

// Decide maps the two validation outcomes onto a final decision.
func Decide(contentValid, authValid bool) Decision {
	switch {
	case contentValid && authValid:
		return DecisionValid
	case contentValid:
		return DecisionReviewAuthenticity
	case authValid:
		return DecisionReviewContent
	default:
		return DecisionInvalid
	}
}

// NeedsReview reports whether the decision calls for a human reviewer.
func (d Decision) NeedsReview() bool {
	return d == DecisionReviewAuthenticity || d == DecisionReviewContent
}
