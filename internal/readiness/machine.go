// Package readiness decides, once per poll tick, whether the observed
// panel has reached a state stable enough to classify. It is the only
// writer of domain.PollState.
package readiness

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ListingScanner/internal/dom"
	"ListingScanner/internal/domain"
	"ListingScanner/internal/extract"
)

// Selectors and labels of the observed panel's web components.
const (
	DropdownHost = "kat-dropdown"
	ButtonHost   = "kat-button"

	// The dropdown's resolved selection is only readable from its header
	// element; the same shadow subtree also renders every option.
	DropdownHeaderSelector = `.select-header, [part="header"]`

	copyHosts = "kat-icon, kat-button, button"

	// Recognized action-control labels, matched exactly after
	// normalization, never by substring.
	LabelSell  = "sell this product"
	LabelApply = "apply to sell"

	// Anything at or above this length is instructional text, not a label.
	MaxLabelLength = 30
)

// Resolved condition values are matched by prefix so that variants such
// as "used - good" count, while the placeholder never does.
var allowedConditions = []string{"new", "used", "collectible", "refurbished"}

// State enumerates the readiness machine states.
type State string

const (
	StateNoPanel          State = "NO_PANEL"
	StatePendingSelection State = "PENDING_SELECTION"
	StatePendingReady     State = "PENDING_READY"
	StateCheckable        State = "CHECKABLE"
	// StateCheckableNoDropdown is the panel layout without a condition
	// selector; it is immediately checkable and always classifies as the
	// most restrictive outcome.
	StateCheckableNoDropdown State = "CHECKABLE_NO_DROPDOWN"
)

// Checkable reports whether classification may run in this state.
func (s State) Checkable() bool {
	return s == StateCheckable || s == StateCheckableNoDropdown
}

// Evaluation is the outcome of one tick.
type Evaluation struct {
	State     State
	SubjectID string
	Condition string // resolved dropdown selection, "" until one is picked
	// ShouldCheck is true when the state is checkable and the subject has
	// not already been checked in this panel session.
	ShouldCheck bool
}

// Machine evaluates panel readiness against a page snapshot.
type Machine struct {
	state  *domain.PollState
	logger *slog.Logger
	now    func() time.Time
}

// NewMachine wires the machine to the poll state it owns.
func NewMachine(state *domain.PollState, logger *slog.Logger) *Machine {
	if state == nil {
		state = &domain.PollState{}
	}
	return &Machine{state: state, logger: logger, now: time.Now}
}

// Evaluate runs one transition pass. Any disqualifying condition drops
// back to StateNoPanel and clears the poll state, so a panel closed and
// reopened on the same subject becomes checkable again.
func (m *Machine) Evaluate(page *dom.Page) Evaluation {
	id := extract.SubjectID(page)
	if id == "" || !hasCopyAffordance(page) {
		m.state.Reset()
		return Evaluation{State: StateNoPanel}
	}

	if !page.HasHost(DropdownHost) {
		m.state.ClearPending()
		return m.checkable(Evaluation{State: StateCheckableNoDropdown, SubjectID: id})
	}

	condition := SelectedCondition(page)
	if condition == "" {
		m.state.MarkPending(id, m.now())
		return Evaluation{State: StatePendingSelection, SubjectID: id}
	}

	if !actionControlsReady(page) {
		m.state.MarkPending(id, m.now())
		return Evaluation{State: StatePendingReady, SubjectID: id, Condition: condition}
	}

	m.state.ClearPending()
	return m.checkable(Evaluation{State: StateCheckable, SubjectID: id, Condition: condition})
}

func (m *Machine) checkable(ev Evaluation) Evaluation {
	ev.ShouldCheck = ev.SubjectID != m.state.LastCheckedID
	if !ev.ShouldCheck && m.logger != nil {
		m.logger.Debug("subject already checked this session", "asin", ev.SubjectID)
	}
	return ev
}

// MarkChecked records a completed check so the same subject is not
// re-checked until its panel closes.
func (m *Machine) MarkChecked(id string) {
	m.state.LastCheckedID = id
}

// ForceRecheck clears the dedup marker; a manual re-check bypasses the
// once-per-session rule unconditionally.
func (m *Machine) ForceRecheck() {
	m.state.LastCheckedID = ""
}

// State exposes the poll state for inspection; callers must not mutate it.
func (m *Machine) State() domain.PollState {
	return *m.state
}

// SelectedCondition returns the dropdown's resolved selection, "" while
// the placeholder is still showing. Prefix match against the allowed set
// keeps the unselected placeholder from ever counting as a selection.
func SelectedCondition(page *dom.Page) string {
	header := dom.NormalizeLabel(page.FindHeaderText(DropdownHost, DropdownHeaderSelector))
	if header == "" {
		return ""
	}
	for _, condition := range allowedConditions {
		if strings.HasPrefix(header, condition) {
			return header
		}
	}
	return ""
}

// hasCopyAffordance looks for the short copy control rendered beside the
// subject code. A label scan is used instead of a raw substring search so
// that e.g. copyright footers inside other subtrees do not count.
func hasCopyAffordance(page *dom.Page) bool {
	for _, label := range page.CollectLabels(copyHosts, MaxLabelLength) {
		if label == "copy" || strings.HasPrefix(label, "copy ") {
			return true
		}
	}
	return false
}

// actionControlsReady reports whether at least one control whose label
// exactly matches a recognized action is free of every busy signal.
func actionControlsReady(page *dom.Page) bool {
	ready := false
	page.Doc.Find(ButtonHost).EachWithBreak(func(_ int, host *goquery.Selection) bool {
		root := dom.ShadowRoot(host)
		if root.Length() == 0 {
			return true
		}
		label := dom.NormalizeLabel(root.Text())
		if label != LabelSell && label != LabelApply {
			return true
		}
		if controlReady(host, root) {
			ready = true
			return false
		}
		return true
	})
	return ready
}

func controlReady(host, root *goquery.Selection) bool {
	if _, disabled := host.Attr("disabled"); disabled {
		return false
	}
	if _, loading := host.Attr("loading"); loading {
		return false
	}
	if root.Find("button[disabled]").Length() > 0 {
		return false
	}
	class, _ := host.Attr("class")
	lowered := strings.ToLower(class)
	if strings.Contains(lowered, "disabled") || strings.Contains(lowered, "loading") {
		return false
	}
	if root.Find(`[class*="disabled"], [class*="loading"]`).Length() > 0 {
		return false
	}
	return true
}
