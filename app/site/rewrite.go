package site

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/mkrukov/shade/app/enum"
)

// ToggleControlID is the id of the clickable control the blog markup
// carries for switching themes.
const ToggleControlID = "theme-toggle"

// class tokens the rewriter owns on the body and the toggle control.
// They are removed before the active pair is added, which makes Apply
// idempotent.
var (
	bodyTokens   = []string{enum.ThemeLight.BodyClass(), enum.ThemeDark.BodyClass()}
	switchTokens = []string{enum.ThemeLight.SwitchClass(), enum.ThemeDark.SwitchClass()}
)

// Rewriter applies theme classes to a single parsed HTML document.
// It satisfies the controller's Sink and renders the result afterwards.
type Rewriter struct {
	doc    *html.Node
	body   *html.Node
	toggle *html.Node
}

// NewRewriter parses the raw page. Pages without a body or toggle control
// still parse fine, Apply just skips the missing element.
func NewRewriter(raw []byte) (*Rewriter, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Rewriter{
		doc:    doc,
		body:   findElement(doc, func(n *html.Node) bool { return n.Data == "body" }),
		toggle: findElement(doc, func(n *html.Node) bool { return attrVal(n, "id") == ToggleControlID }),
	}, nil
}

// Apply sets the class pair for the theme on the body and toggle control,
// replacing whatever theme tokens were there before.
func (rw *Rewriter) Apply(th enum.Theme) {
	if rw.body != nil {
		setClassToken(rw.body, bodyTokens, th.BodyClass())
	}
	if rw.toggle != nil {
		setClassToken(rw.toggle, switchTokens, th.SwitchClass())
	}
}

// Render writes the document back as HTML.
func (rw *Rewriter) Render(w io.Writer) error {
	if err := html.Render(w, rw.doc); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// HasBody reports whether the page has a body element.
func (rw *Rewriter) HasBody() bool { return rw.body != nil }

// HasToggle reports whether the page has the toggle control.
func (rw *Rewriter) HasToggle() bool { return rw.toggle != nil }

// findElement walks the node tree depth-first and returns the first element
// matching the predicate.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

// attrVal returns the value of the named attribute, empty when absent.
func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// setClassToken removes all owned tokens from the element's class attribute
// and appends the active one.
func setClassToken(n *html.Node, owned []string, active string) {
	classes := strings.Fields(attrVal(n, "class"))
	kept := classes[:0]
	for _, c := range classes {
		if !slices.Contains(owned, c) {
			kept = append(kept, c)
		}
	}
	kept = append(kept, active)

	for i, a := range n.Attr {
		if a.Key == "class" {
			n.Attr[i].Val = strings.Join(kept, " ")
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: active})
}
