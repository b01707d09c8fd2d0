package extract

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/webscour/internal/model"
)

// Page is the capability the crawl and index core require from a parsed document.
type Page interface {
	// VisibleText returns the human-visible text, whitespace collapsed.
	VisibleText() string

	// Hyperlinks returns absolute, fragment-free HTTP(S) link targets
	// resolved against base.
	Hyperlinks(base *url.URL) []string
}

// Titled is implemented by pages that carry a document title.
type Titled interface {
	Title() string
}

// Parser produces a Page from raw markup.
type Parser interface {
	Parse(r io.Reader) (Page, error)
}

// HTMLParser is the Parser backed by golang.org/x/net/html.
type HTMLParser struct{}

// Parse implements Parser.
func (HTMLParser) Parse(r io.Reader) (Page, error) {
	return Parse(r)
}

// HTMLPage is a parsed HTML document.
type HTMLPage struct {
	title string
	text  string
	hrefs []string
}

// invisibleElements never contribute visible text.
var invisibleElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Parse parses HTML content in a single pass, collecting title, text and raw hrefs.
func Parse(r io.Reader) (*HTMLPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	p := &HTMLPage{}
	var text strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if invisibleElements[n.Data] {
				return
			}
			switch n.Data {
			case "title":
				if p.title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					p.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					p.hrefs = append(p.hrefs, href)
				}
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		case html.CommentNode:
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	p.text = strings.Join(strings.Fields(text.String()), " ")
	return p, nil
}

// Title returns the contents of the first <title> element.
func (p *HTMLPage) Title() string {
	return p.title
}

// VisibleText implements Page.
func (p *HTMLPage) VisibleText() string {
	return p.text
}

// Hyperlinks implements Page.
func (p *HTMLPage) Hyperlinks(base *url.URL) []string {
	seen := make(map[string]bool, len(p.hrefs))
	links := make([]string, 0, len(p.hrefs))

	for _, href := range p.hrefs {
		link := resolveURL(base, href)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links
}

// skippedPrefixes are href schemes that never lead to crawlable pages.
var skippedPrefixes = []string{"javascript:", "mailto:", "tel:", "data:", "#"}

// resolveURL resolves href against base and normalizes it.
// It returns "" for links that should not be followed.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}

	normalized, err := model.NormalizeURL(resolved.String())
	if err != nil {
		return ""
	}
	return normalized
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
