package contracts

import (
	"errors"
	"fmt"
)

// RejectionReason explains why a candidate never reached scoring.
type RejectionReason string

const (
	RejectMissingPriceData RejectionReason = "MISSING_PRICE_DATA"
	RejectInvalidSymbol    RejectionReason = "INVALID_SYMBOL"
	RejectDuplicateSymbol  RejectionReason = "DUPLICATE_SYMBOL"
)

// Rejection is the error returned by the normalizer for a dropped candidate.
type Rejection struct {
	Symbol string          `json:"symbol"`
	Reason RejectionReason `json:"reason"`
	Detail string          `json:"detail,omitempty"`
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("%s rejected: %s", r.Symbol, r.Reason)
	}
	return fmt.Sprintf("%s rejected: %s (%s)", r.Symbol, r.Reason, r.Detail)
}

// AsRejection unwraps err into a *Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IssueCode classifies a recoverable field problem.
type IssueCode string

const (
	IssueMalformedSentiment IssueCode = "MALFORMED_SENTIMENT_FIELD"
	IssueMalformedNumeric   IssueCode = "MALFORMED_NUMERIC_FIELD"
	IssueMalformedWindow    IssueCode = "MALFORMED_WINDOW_FIELD"
)

// FieldIssue records a field that was replaced by its default.
// The candidate is kept.
type FieldIssue struct {
	Symbol string    `json:"symbol"`
	Field  string    `json:"field"`
	Code   IssueCode `json:"code"`
	Value  string    `json:"value"`
}

func (i FieldIssue) String() string {
	return fmt.Sprintf("%s.%s: %s (%q)", i.Symbol, i.Field, i.Code, i.Value)
}
