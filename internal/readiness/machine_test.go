package readiness

import (
	"fmt"
	"testing"

	"ListingScanner/internal/dom"
	"ListingScanner/internal/domain"
)

const copyControl = `<kat-icon><template shadowrootmode="open">Copy</template></kat-icon>`

func dropdown(header string) string {
	return fmt.Sprintf(`
	<kat-dropdown>
	  <template shadowrootmode="open">
	    <div class="select-header">%s</div>
	    <ul><li>New</li><li>Used - Good</li><li>Collectible - Acceptable</li></ul>
	  </template>
	</kat-dropdown>`, header)
}

func actionButton(label, hostAttrs, inner string) string {
	return fmt.Sprintf(`
	<kat-button %s>
	  <template shadowrootmode="open">%s%s</template>
	</kat-button>`, hostAttrs, label, inner)
}

func panelPage(asin, body string) *dom.Page {
	html := fmt.Sprintf(`<html><body><div>ASIN: %s</div>%s</body></html>`, asin, body)
	return dom.MustParse("https://sell.example.com/product/search", html)
}

func newMachine() (*Machine, *domain.PollState) {
	state := &domain.PollState{}
	return NewMachine(state, nil), state
}

func TestEvaluateNoPanel(t *testing.T) {
	t.Parallel()

	machine, state := newMachine()
	state.LastCheckedID = "B00ABCDEF1"

	page := dom.MustParse("https://sell.example.com/home", "<html><body><p>dashboard</p></body></html>")
	ev := machine.Evaluate(page)

	if ev.State != StateNoPanel {
		t.Fatalf("state = %s, want %s", ev.State, StateNoPanel)
	}
	if state.LastCheckedID != "" {
		t.Fatal("poll state must be reset when no panel is present")
	}
}

func TestEvaluateNoPanelWithoutCopyAffordance(t *testing.T) {
	t.Parallel()

	machine, _ := newMachine()

	// Subject id present, but the panel chrome (copy control) is not.
	page := panelPage("B00ABCDEF1", dropdown("Select condition"))
	if ev := machine.Evaluate(page); ev.State != StateNoPanel {
		t.Fatalf("state = %s, want %s", ev.State, StateNoPanel)
	}
}

func TestEvaluateNoDropdownIsImmediatelyCheckable(t *testing.T) {
	t.Parallel()

	machine, _ := newMachine()

	page := panelPage("B00ABCDEF1", copyControl)
	ev := machine.Evaluate(page)

	if ev.State != StateCheckableNoDropdown {
		t.Fatalf("state = %s, want %s", ev.State, StateCheckableNoDropdown)
	}
	if !ev.ShouldCheck {
		t.Fatal("fresh subject must be checked")
	}
	if ev.SubjectID != "B00ABCDEF1" {
		t.Fatalf("subject = %q", ev.SubjectID)
	}
}

func TestEvaluatePlaceholderStaysPending(t *testing.T) {
	t.Parallel()

	machine, state := newMachine()

	page := panelPage("B00ABCDEF1", copyControl+dropdown("Select condition"))
	ev := machine.Evaluate(page)

	if ev.State != StatePendingSelection {
		t.Fatalf("state = %s, want %s", ev.State, StatePendingSelection)
	}
	if ev.ShouldCheck {
		t.Fatal("pending state must not trigger a check")
	}
	if state.PendingID != "B00ABCDEF1" || state.PendingSince.IsZero() {
		t.Fatalf("pending marker not recorded: %+v", state)
	}
}

func TestEvaluateLoadingControlStaysPending(t *testing.T) {
	t.Parallel()

	machine, _ := newMachine()

	page := panelPage("B00ABCDEF1",
		copyControl+dropdown("Used - Good")+actionButton("Sell this product", "loading", ""))
	ev := machine.Evaluate(page)

	if ev.State != StatePendingReady {
		t.Fatalf("state = %s, want %s", ev.State, StatePendingReady)
	}
	if ev.Condition != "used - good" {
		t.Fatalf("condition = %q", ev.Condition)
	}
}

func TestEvaluateDisabledInnerButtonStaysPending(t *testing.T) {
	t.Parallel()

	page := panelPage("B00ABCDEF1",
		copyControl+dropdown("Used - Good")+actionButton("Sell this product", "", `<button disabled></button>`))
	machine, _ := newMachine()

	if ev := machine.Evaluate(page); ev.State != StatePendingReady {
		t.Fatalf("state = %s, want %s", ev.State, StatePendingReady)
	}
}

func TestEvaluateReadyControlIsCheckable(t *testing.T) {
	t.Parallel()

	machine, state := newMachine()

	page := panelPage("B00ABCDEF1",
		copyControl+dropdown("Used - Good")+actionButton("Sell this product", "", ""))
	ev := machine.Evaluate(page)

	if ev.State != StateCheckable {
		t.Fatalf("state = %s, want %s", ev.State, StateCheckable)
	}
	if !ev.ShouldCheck {
		t.Fatal("fresh subject must be checked")
	}
	if state.PendingID != "" {
		t.Fatal("pending marker must clear on checkable")
	}
}

func TestDedupAcrossTicksAndResetOnPanelClose(t *testing.T) {
	t.Parallel()

	machine, _ := newMachine()
	page := panelPage("B00ABCDEF1", copyControl)

	if ev := machine.Evaluate(page); !ev.ShouldCheck {
		t.Fatal("first tick must check")
	}
	machine.MarkChecked("B00ABCDEF1")

	if ev := machine.Evaluate(page); ev.ShouldCheck {
		t.Fatal("second tick on same subject must dedup")
	}

	closed := dom.MustParse("https://sell.example.com/home", "<html><body></body></html>")
	if ev := machine.Evaluate(closed); ev.State != StateNoPanel {
		t.Fatal("expected panel close")
	}

	if ev := machine.Evaluate(page); !ev.ShouldCheck {
		t.Fatal("reopened panel must be checkable again")
	}
}

func TestForceRecheckBypassesDedup(t *testing.T) {
	t.Parallel()

	machine, _ := newMachine()
	page := panelPage("B00ABCDEF1", copyControl)

	machine.Evaluate(page)
	machine.MarkChecked("B00ABCDEF1")
	machine.ForceRecheck()

	if ev := machine.Evaluate(page); !ev.ShouldCheck {
		t.Fatal("manual re-check must bypass dedup")
	}
}

func TestSubjectSwitchMidPendingRestartsFresh(t *testing.T) {
	t.Parallel()

	machine, state := newMachine()

	pendingA := panelPage("B00ABCDEF1", copyControl+dropdown("Select condition"))
	machine.Evaluate(pendingA)
	firstSince := state.PendingSince

	pendingB := panelPage("B09ZYXWVU8", copyControl+dropdown("Select condition"))
	ev := machine.Evaluate(pendingB)

	if ev.State != StatePendingSelection {
		t.Fatalf("state = %s", ev.State)
	}
	if state.PendingID != "B09ZYXWVU8" {
		t.Fatalf("pending id = %q, want new subject", state.PendingID)
	}
	if !state.PendingSince.Equal(firstSince) && state.PendingSince.Before(firstSince) {
		t.Fatal("pending timestamp went backwards")
	}
}

func TestSelectedConditionNeverMatchesPlaceholder(t *testing.T) {
	t.Parallel()

	placeholder := panelPage("B00ABCDEF1", copyControl+dropdown("Select condition"))
	if got := SelectedCondition(placeholder); got != "" {
		t.Fatalf("SelectedCondition = %q, want empty for placeholder", got)
	}

	resolved := panelPage("B00ABCDEF1", copyControl+dropdown("Collectible - Acceptable"))
	if got := SelectedCondition(resolved); got != "collectible - acceptable" {
		t.Fatalf("SelectedCondition = %q", got)
	}
}
