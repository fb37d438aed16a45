package extract

import (
	"fmt"
	"testing"

	"ListingScanner/internal/dom"
)

func pageWith(url, body string) *dom.Page {
	return dom.MustParse(url, fmt.Sprintf("<html><body>%s</body></html>", body))
}

func TestSubjectIDStrategies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
		body string
		want string
	}{
		{
			name: "query parameter",
			url:  "https://sell.example.com/product/search?asin=B00ABCDEF1",
			want: "B00ABCDEF1",
		},
		{
			name: "path segment",
			url:  "https://www.example.com/dp/0747532745?ref=nav",
			want: "0747532745",
		},
		{
			name: "asin label in visible text",
			url:  "https://sell.example.com/home",
			body: "<div>ASIN: B01XYZABC2</div>",
			want: "B01XYZABC2",
		},
		{
			name: "isbn label",
			url:  "https://sell.example.com/home",
			body: "<div>ISBN-10: 013468599X</div>",
			want: "013468599X",
		},
		{
			name: "b-prefixed code",
			url:  "https://sell.example.com/home",
			body: "<div>offer B07QWERTY9 available</div>",
			want: "B07QWERTY9",
		},
		{
			name: "bare ten digit code",
			url:  "https://sell.example.com/home",
			body: "<div>catalog 1861972717 entry</div>",
			want: "1861972717",
		},
		{
			name: "no subject",
			url:  "https://sell.example.com/home",
			body: "<div>nothing to see</div>",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SubjectID(pageWith(tc.url, tc.body))
			if got != tc.want {
				t.Fatalf("SubjectID = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSubjectIDPrecedence(t *testing.T) {
	t.Parallel()

	// A bare ten-digit code in page text must not shadow the query param.
	page := pageWith(
		"https://sell.example.com/product/search?asin=B00ABCDEF1",
		"<div>related: 0747532745</div>",
	)
	if got := SubjectID(page); got != "B00ABCDEF1" {
		t.Fatalf("SubjectID = %q, want query-param match", got)
	}
}

func TestSubjectIDIgnoresShadowText(t *testing.T) {
	t.Parallel()

	page := pageWith("https://sell.example.com/home",
		`<kat-card><template shadowrootmode="open">ASIN: B09HIDDEN1</template></kat-card>`)
	if got := SubjectID(page); got != "" {
		t.Fatalf("SubjectID = %q, expected shadow content to stay invisible", got)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	page := pageWith("https://sell.example.com/home",
		"<div>Best Sellers Rank: #1,234,567 in Books</div>")
	if got := Rank(page); got != 1234567 {
		t.Fatalf("Rank = %d, want 1234567", got)
	}

	empty := pageWith("https://sell.example.com/home", "<div>no rank here</div>")
	if got := Rank(empty); got != 0 {
		t.Fatalf("Rank = %d, want 0 when absent", got)
	}
}

func TestTitleFiltersChromeAndLength(t *testing.T) {
	t.Parallel()

	page := pageWith("https://sell.example.com/home", `
		<h1>Sell this product</h1>
		<h1>Short</h1>
		<h2>The Pragmatic Programmer: Your Journey to Mastery</h2>`)
	want := "The Pragmatic Programmer: Your Journey to Mastery"
	if got := Title(page); got != want {
		t.Fatalf("Title = %q, want %q", got, want)
	}

	none := pageWith("https://sell.example.com/home", "<h1>Seller Central</h1>")
	if got := Title(none); got != "" {
		t.Fatalf("Title = %q, want empty", got)
	}
}

func TestTitleLengthBoundsCountRunes(t *testing.T) {
	t.Parallel()

	// 8 runes but 24 UTF-8 bytes; a byte-based minimum would accept it.
	short := pageWith("https://sell.example.com/home", "<h1>日本語のタイトル</h1>")
	if got := Title(short); got != "" {
		t.Fatalf("Title = %q, want empty for an 8-character heading", got)
	}

	long := pageWith("https://sell.example.com/home",
		"<h1>週刊少年マンガ全集 完全版セット 全二十巻 特装版（出版社公式）</h1>")
	if got := Title(long); got == "" {
		t.Fatal("expected a multibyte title above the minimum to survive")
	}
}
