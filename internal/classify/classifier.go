// Package classify turns a checkable panel snapshot into an eligibility
// outcome. Classification is a pure snapshot function: no retries, no
// waiting. The readiness machine guarantees the snapshot is stable.
package classify

import (
	"ListingScanner/internal/dom"
	"ListingScanner/internal/domain"
	"ListingScanner/internal/readiness"
)

// Indicator values name the rule that fired.
const (
	IndicatorNoDropdown   = "no_dropdown"
	IndicatorSellButton   = "sell_button"
	IndicatorApplyButton  = "apply_button"
	IndicatorNotAvailable = "not_available"
	IndicatorUnknown      = "unknown"
)

const notAvailableNotice = "not available to be sold"

// Outcome is the raw classifier verdict, before subject metadata is
// attached to form a ClassificationResult.
type Outcome struct {
	Status    domain.Status
	Indicator string
	Message   string
}

// Classify evaluates the snapshot for a panel the readiness machine
// declared checkable. Unrecognized panels classify as UNKNOWN; that is a
// reported outcome, never an error.
func Classify(page *dom.Page, ev readiness.Evaluation) Outcome {
	if ev.State == readiness.StateCheckableNoDropdown {
		return Outcome{
			Status:    domain.StatusRestricted,
			Indicator: IndicatorNoDropdown,
			Message:   "No condition selector offered; listing is restricted",
		}
	}

	labels := page.CollectLabels(readiness.ButtonHost, readiness.MaxLabelLength)

	if hasLabel(labels, readiness.LabelSell) {
		return Outcome{
			Status:    domain.StatusGood,
			Indicator: IndicatorSellButton,
			Message:   "Eligible: sell control is offered",
		}
	}
	if hasLabel(labels, readiness.LabelApply) {
		return Outcome{
			Status:    domain.StatusNeedApproval,
			Indicator: IndicatorApplyButton,
			Message:   "Approval required before selling",
		}
	}
	if page.ContainsText(notAvailableNotice) {
		return Outcome{
			Status:    domain.StatusNotAvailable,
			Indicator: IndicatorNotAvailable,
			Message:   "Product is not available to be sold",
		}
	}

	return Outcome{
		Status:    domain.StatusUnknown,
		Indicator: IndicatorUnknown,
		Message:   "Checkable panel without a recognized control",
	}
}

func hasLabel(labels []string, want string) bool {
	for _, label := range labels {
		if label == want {
			return true
		}
	}
	return false
}
