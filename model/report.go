package model

// Summary values the oracle is instructed to use.
const (
	SummaryCompliant    = "Compliant"
	SummaryNonCompliant = "Non-Compliant"
)

// Issue types as they appear in the report JSON.
const (
	IssueTypePriceMismatch = "Price Mismatch"
	IssueTypeQuantityError = "Quantity Error"
	IssueTypeTermViolation = "Term Violation"
	IssueTypeDiscountError = "Discount Error"
	IssueTypeOther         = "Other"
)

// Suggested actions per issue.
const (
	ActionAutoApprove = "Auto-approve"
	ActionFlag        = "Flag"
	ActionReject      = "Reject"
	ActionClarify     = "Clarify"
)

// Severity levels per issue.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// ComplianceReport is the structured verdict produced by the oracle.
// Field names and the "compliance-score" spelling follow the prompt's
// required output shape and must not be changed.
type ComplianceReport struct {
	Summary         string  `json:"summary"`
	ComplianceScore int     `json:"compliance-score"`
	Issues          []Issue `json:"issues"`
	Recommendation  string  `json:"recommendation"`
	Notes           string  `json:"notes,omitempty"`
}

// Issue is a single detected non-compliance.
type Issue struct {
	Type              string `json:"type"`
	Description       string `json:"description"`
	ContractReference string `json:"contract_reference"`
	InvoiceReference  string `json:"invoice_reference"`
	SuggestedAction   string `json:"suggested_action"`
	Severity          string `json:"severity"`
}

// ErrorReport is returned in place of a ComplianceReport when the oracle's
// output cannot be used. RawOutput carries the model text verbatim for triage.
type ErrorReport struct {
	Error     string `json:"error"`
	RawOutput string `json:"raw_output"`
	Exception string `json:"exception"`
}
