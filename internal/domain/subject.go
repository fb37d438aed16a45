package domain

import "time"

// Subject is the catalog item under evaluation. Identity is the ID; rank
// and title are descriptive and may be absent.
type Subject struct {
	ID    string
	Rank  int    // 0 when not extractable
	Title string // "" when not extractable
}

// Status classifies the outcome of an eligibility check.
type Status string

const (
	StatusGood         Status = "GOOD"
	StatusNeedApproval Status = "NEED_APPROVAL"
	StatusRestricted   Status = "RESTRICTED"
	StatusNotAvailable Status = "NOT_AVAILABLE"
	StatusUnknown      Status = "UNKNOWN"
)

// ParseStatus maps a wire value onto the taxonomy. Unrecognized values
// become StatusUnknown rather than an error so that future additions to
// the taxonomy never break consumers.
func ParseStatus(value string) Status {
	switch Status(value) {
	case StatusGood, StatusNeedApproval, StatusRestricted, StatusNotAvailable, StatusUnknown:
		return Status(value)
	default:
		return StatusUnknown
	}
}

// Sellable reports whether the status permits listing without further steps.
func (s Status) Sellable() bool {
	return s == StatusGood
}

// ClassificationResult is the immutable record produced once per completed
// check. It is handed to the result sink and the notifier and never
// mutated afterwards.
type ClassificationResult struct {
	SubjectID string    `json:"asin"`
	Status    Status    `json:"status"`
	Condition string    `json:"condition,omitempty"`
	Message   string    `json:"message,omitempty"`
	Indicator string    `json:"indicator"`
	Rank      int       `json:"bsr,omitempty"`
	Title     string    `json:"title,omitempty"`
	SourceURL string    `json:"sourceUrl,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}
