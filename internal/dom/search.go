package dom

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ShadowRoot returns the open shadow subtree attached to host, or an
// empty selection when the host exposes none.
func ShadowRoot(host *goquery.Selection) *goquery.Selection {
	return host.ChildrenFiltered(shadowRootSelector).First()
}

// ContainsText reports whether any open shadow subtree on the page
// contains fragment. The comparison is case-insensitive. No side effects.
func (p *Page) ContainsText(fragment string) bool {
	needle := strings.ToLower(fragment)
	found := false
	p.Doc.Find(shadowRootSelector).EachWithBreak(func(_ int, root *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(root.Text()), needle) {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasHost reports whether any element matching hostSelector carries an
// open shadow subtree.
func (p *Page) HasHost(hostSelector string) bool {
	found := false
	p.Doc.Find(hostSelector).EachWithBreak(func(_ int, host *goquery.Selection) bool {
		if ShadowRoot(host).Length() > 0 {
			found = true
			return false
		}
		return true
	})
	return found
}

// CollectLabels gathers the normalized shadow text of every element
// matching hostSelector, keeping entries strictly shorter than maxLength
// runes.
// The length cap filters out paragraph-length instructional text that
// would otherwise masquerade as a control label.
func (p *Page) CollectLabels(hostSelector string, maxLength int) []string {
	var labels []string
	p.Doc.Find(hostSelector).Each(func(_ int, host *goquery.Selection) {
		root := ShadowRoot(host)
		if root.Length() == 0 {
			return
		}
		label := NormalizeLabel(root.Text())
		if label == "" || utf8.RuneCountInString(label) >= maxLength {
			return
		}
		labels = append(labels, label)
	})
	return labels
}

// FindHeaderText returns the trimmed text of headerSelector inside the
// shadow subtree of a container matching containerSelector, or "" when no
// container resolves one. Restricting the query to the header element
// matters: the subtree also holds the full option list, and matching
// against the whole subtree text would false-positive on every option.
func (p *Page) FindHeaderText(containerSelector, headerSelector string) string {
	var header string
	p.Doc.Find(containerSelector).EachWithBreak(func(_ int, host *goquery.Selection) bool {
		root := ShadowRoot(host)
		if root.Length() == 0 {
			return true
		}
		text := strings.TrimSpace(root.Find(headerSelector).First().Text())
		if text == "" {
			return true
		}
		header = text
		return false
	})
	return header
}

// NormalizeLabel lower-cases text and collapses internal whitespace, the
// form every label comparison in the engine uses.
func NormalizeLabel(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
