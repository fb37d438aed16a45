// Package dom makes content inside encapsulated rendering boundaries
// searchable. The observed application renders its panel widgets inside
// open shadow roots, which serialize as <template shadowrootmode="open">
// children of their host element. Ordinary whole-document text queries
// must not see that content, so VisibleText skips template subtrees and
// the search helpers enter them explicitly.
package dom

import (
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const shadowRootSelector = `template[shadowrootmode="open"], template[shadowroot="open"]`

// Page is an immutable snapshot of a rendered page.
type Page struct {
	URL string
	Doc *goquery.Document

	visibleOnce sync.Once
	visible     string
}

// NewPage parses an HTML snapshot read from r.
func NewPage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Page{URL: pageURL, Doc: doc}, nil
}

// MustParse is a test/fixture helper; it panics on malformed input.
func MustParse(pageURL, snapshot string) *Page {
	page, err := NewPage(pageURL, strings.NewReader(snapshot))
	if err != nil {
		panic(err)
	}
	return page
}

// VisibleText returns the text an ordinary page query sees: every text
// node outside template, script and style subtrees. Cached, since the
// snapshot never changes.
func (p *Page) VisibleText() string {
	p.visibleOnce.Do(func() {
		var b strings.Builder
		for _, n := range p.Doc.Nodes {
			appendVisibleText(&b, n)
		}
		p.visible = b.String()
	})
	return p.visible
}

func appendVisibleText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "template", "script", "style":
			return
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendVisibleText(b, c)
	}
}
