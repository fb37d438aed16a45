package dom

import (
	"strings"
	"testing"
)

const fixture = `
<html><body>
  <h1>Product Detail</h1>
  <kat-button class="primary">
    <template shadowrootmode="open">
      <button part="button">Sell this product</button>
    </template>
  </kat-button>
  <kat-dropdown>
    <template shadowrootmode="open">
      <div class="select-header">Select condition</div>
      <ul class="options">
        <li>New</li>
        <li>Used - Good</li>
        <li>Collectible - Acceptable</li>
      </ul>
    </template>
  </kat-dropdown>
  <div class="plain">regular page text</div>
</body></html>`

func TestVisibleTextSkipsShadowContent(t *testing.T) {
	t.Parallel()

	page := MustParse("https://example.com/item", fixture)

	text := page.VisibleText()
	if !strings.Contains(text, "regular page text") {
		t.Fatalf("visible text missing plain content: %q", text)
	}
	if strings.Contains(text, "Sell") {
		t.Fatalf("visible text leaked shadow content: %q", text)
	}
	if strings.Contains(text, "Used - Good") {
		t.Fatalf("visible text leaked dropdown options: %q", text)
	}
}

func TestContainsTextEntersShadowRoots(t *testing.T) {
	t.Parallel()

	page := MustParse("https://example.com/item", fixture)

	if !page.ContainsText("sell this product") {
		t.Fatal("expected shadow search to find the button label")
	}
	if page.ContainsText("regular page text") {
		t.Fatal("shadow search must not match light-DOM content")
	}
}

func TestHasHost(t *testing.T) {
	t.Parallel()

	page := MustParse("https://example.com/item", fixture)

	if !page.HasHost("kat-dropdown") {
		t.Fatal("expected dropdown host with shadow subtree")
	}
	if page.HasHost("kat-table") {
		t.Fatal("unexpected host match")
	}
	// An element without a shadow subtree is not a host.
	if page.HasHost("div.plain") {
		t.Fatal("plain div must not count as a shadow host")
	}
}

func TestCollectLabelsNormalizesAndCapsLength(t *testing.T) {
	t.Parallel()

	snapshot := `
	<kat-button><template shadowrootmode="open"><button> Apply   to
	  Sell </button></template></kat-button>
	<kat-button><template shadowrootmode="open">
	  To list in this category you must first apply to sell this product line.
	</template></kat-button>
	<kat-button><template shadowrootmode="open">123456789012345678901234567890</template></kat-button>`

	page := MustParse("https://example.com/item", snapshot)

	labels := page.CollectLabels("kat-button", 30)
	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d: %v", len(labels), labels)
	}
	if labels[0] != "apply to sell" {
		t.Fatalf("unexpected label: %q", labels[0])
	}
}

func TestCollectLabelsCountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	// 17 runes, 51 UTF-8 bytes; a byte-based cap would drop it.
	snapshot := `<kat-button><template shadowrootmode="open">価格と在庫の詳細を確認して出品する</template></kat-button>`
	page := MustParse("https://example.com/item", snapshot)

	labels := page.CollectLabels("kat-button", 30)
	if len(labels) != 1 {
		t.Fatalf("expected multibyte label to survive the cap, got %v", labels)
	}
}

func TestFindHeaderTextReturnsHeaderOnly(t *testing.T) {
	t.Parallel()

	page := MustParse("https://example.com/item", fixture)

	header := page.FindHeaderText("kat-dropdown", ".select-header")
	if header != "Select condition" {
		t.Fatalf("unexpected header: %q", header)
	}
	if strings.Contains(header, "Used") {
		t.Fatalf("header leaked option list: %q", header)
	}

	if got := page.FindHeaderText("kat-dropdown", ".missing"); got != "" {
		t.Fatalf("expected empty header for absent selector, got %q", got)
	}
}
