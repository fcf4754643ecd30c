package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/doeshing/quack-go/internal/domain"
)

// skipped elements contribute no readable text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Nav:      true,
	atom.Footer:   true,
	atom.Header:   true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Br: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Blockquote: true, atom.Pre: true,
}

// Extract pulls the title, description, headings and body text out of an
// HTML document.
func Extract(url, document string) (domain.WebPage, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return domain.WebPage{}, fmt.Errorf("parse %s: %w", url, err)
	}
	page := domain.WebPage{URL: url}
	var body strings.Builder
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if page.Title == "" {
					page.Title = collapse(text(n))
				}
				return
			case atom.Meta:
				name := strings.ToLower(attr(n, "name") + attr(n, "property"))
				if page.Description == "" && (name == "description" || name == "og:description") {
					page.Description = collapse(attr(n, "content"))
				}
				return
			case atom.H1, atom.H2, atom.H3:
				if h := collapse(text(n)); h != "" {
					page.Headings = append(page.Headings, h)
				}
			case atom.Body:
				inBody = true
			}
			if skipped[n.DataAtom] {
				return
			}
			if blocks[n.DataAtom] {
				body.WriteString("\n")
			}
		}
		if n.Type == html.TextNode && inBody {
			body.WriteString(collapse(n.Data))
			body.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(root, false)

	var lines []string
	for _, line := range strings.Split(body.String(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	page.Content = strings.Join(lines, "\n")
	return page, nil
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
