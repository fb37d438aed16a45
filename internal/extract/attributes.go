package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"ListingScanner/internal/dom"
	"ListingScanner/internal/domain"
)

var rankExpr = regexp.MustCompile(`(?i)(?:best\s+sellers?\s+rank|sales\s+rank)[:\s#]*([0-9][0-9,.]*)`)

// Heading-shaped elements worth considering as a product title.
var titleSelectors = []string{
	"h1",
	"h2",
	`[class*="product-title"]`,
	`[class*="item-title"]`,
}

// Chrome strings that show up in heading elements but are never a title.
var titleBoilerplate = []string{
	"sell this product",
	"apply to sell",
	"seller central",
	"add a product",
	"search results",
	"listing limitations",
}

const (
	titleMinLength = 15
	titleMaxLength = 300
)

// Rank returns the sales rank parsed from visible page text, 0 when absent.
func Rank(page *dom.Page) int {
	m := rankExpr.FindStringSubmatch(page.VisibleText())
	if m == nil {
		return 0
	}
	digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
	rank, err := strconv.Atoi(digits)
	if err != nil || rank <= 0 {
		return 0
	}
	return rank
}

// Title returns the first heading-like text that survives the boilerplate
// and length filters, "" when none does.
func Title(page *dom.Page) string {
	var title string
	for _, selector := range titleSelectors {
		page.Doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			candidate := strings.TrimSpace(sel.Text())
			if !plausibleTitle(candidate) {
				return true
			}
			title = candidate
			return false
		})
		if title != "" {
			return title
		}
	}
	return ""
}

func plausibleTitle(candidate string) bool {
	length := utf8.RuneCountInString(candidate)
	if length < titleMinLength || length > titleMaxLength {
		return false
	}
	lowered := strings.ToLower(candidate)
	for _, chrome := range titleBoilerplate {
		if strings.Contains(lowered, chrome) {
			return false
		}
	}
	return true
}

// Subject bundles everything extractable for the current page. The second
// return is false when no subject identifier resolves.
func Subject(page *dom.Page) (domain.Subject, bool) {
	id := SubjectID(page)
	if id == "" {
		return domain.Subject{}, false
	}
	return domain.Subject{
		ID:    id,
		Rank:  Rank(page),
		Title: Title(page),
	}, true
}
