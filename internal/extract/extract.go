// Package extract pulls the subject identifier and auxiliary attributes
// (sales rank, title) out of the page URL and visible text.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"ListingScanner/internal/dom"
)

var (
	codeExpr     = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	pathExpr     = regexp.MustCompile(`/(?:dp|product|gp/product)/([A-Za-z0-9]{10})(?:[/?#]|$)`)
	labeledExpr  = regexp.MustCompile(`(?i)\bASIN[:\s]+([A-Za-z0-9]{10})\b`)
	isbnExpr     = regexp.MustCompile(`(?i)\bISBN(?:-10)?[:\s]+([0-9]{9}[0-9Xx])\b`)
	bCodeExpr    = regexp.MustCompile(`\bB[0-9A-Z]{9}\b`)
	bareISBNExpr = regexp.MustCompile(`\b[01][0-9]{9}\b`)
)

// Query parameters known to carry the catalog code.
var codeParams = []string{"asin", "itemAsin", "asinForDisplay"}

// idStrategy is one replaceable identifier heuristic. Adapting to a UI
// change means swapping a strategy, not touching callers.
type idStrategy struct {
	name  string
	match func(pageURL *url.URL, visible string) string
}

// Strict precedence: later strategies are broader and would shadow the
// specific ones if tried first, so the order of this slice is load-bearing.
var idStrategies = []idStrategy{
	{"query-param", fromQueryParam},
	{"path-segment", fromPathSegment},
	{"asin-label", firstGroup(labeledExpr)},
	{"isbn-label", firstGroup(isbnExpr)},
	{"b-code", wholeMatch(bCodeExpr)},
	{"bare-isbn", wholeMatch(bareISBNExpr)},
}

// SubjectID resolves the current subject identifier; the first matching
// strategy wins. An empty result signals "no active subject", not an error.
func SubjectID(page *dom.Page) string {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		pageURL = &url.URL{}
	}
	visible := page.VisibleText()

	for _, strategy := range idStrategies {
		if id := strategy.match(pageURL, visible); id != "" {
			return strings.ToUpper(id)
		}
	}
	return ""
}

func fromQueryParam(pageURL *url.URL, _ string) string {
	query := pageURL.Query()
	for _, param := range codeParams {
		if value := query.Get(param); codeExpr.MatchString(value) {
			return value
		}
	}
	return ""
}

func fromPathSegment(pageURL *url.URL, _ string) string {
	if m := pathExpr.FindStringSubmatch(pageURL.Path); m != nil {
		return m[1]
	}
	return ""
}

func firstGroup(expr *regexp.Regexp) func(*url.URL, string) string {
	return func(_ *url.URL, visible string) string {
		if m := expr.FindStringSubmatch(visible); m != nil {
			return m[1]
		}
		return ""
	}
}

func wholeMatch(expr *regexp.Regexp) func(*url.URL, string) string {
	return func(_ *url.URL, visible string) string {
		return expr.FindString(visible)
	}
}
