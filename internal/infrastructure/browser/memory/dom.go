package memory

import (
	"strings"

	"golang.org/x/net/html"
)

// tagsToRemove never take part in locating: nothing here runs scripts.
var tagsToRemove = []string{"script", "noscript", "template"}

// inline elements do not break the surrounding text.
var inline = []string{"a", "abbr", "b", "code", "em", "i", "label", "small", "span", "strong", "sub", "sup", "u"}

// notRendered have no box and therefore no visible text.
var notRendered = []string{"head", "title", "style", "meta", "link"}

// sanitize рекурсивно удаляет комментарии и скрипты
func sanitize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, tagsToRemove...):
			n.RemoveChild(c)
		default:
			sanitize(c)
		}
		c = next
	}
}

func attr(n *html.Node, name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// displayed approximates CSS visibility from markup alone: the hidden
// attribute, inline display/visibility and hidden inputs.
func displayed(n *html.Node) bool {
	if n.Data == "input" {
		if typ, _ := attr(n, "type"); strings.EqualFold(typ, "hidden") {
			return false
		}
	}
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if isOneOf(p.Data, notRendered...) {
			return false
		}
		if _, hidden := attr(p, "hidden"); hidden {
			return false
		}
		style, _ := attr(p, "style")
		style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// renderedText collects the text of displayed descendants.
func renderedText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if !displayed(c) {
				continue
			}
			if c.Data == "br" {
				sb.WriteString(" ")
				continue
			}
			renderedText(c, sb)
			if !isOneOf(c.Data, inline...) {
				sb.WriteString(" ")
			}
		}
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func value(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return textContent(n)
	case "select":
		opts := options(n)
		for _, opt := range opts {
			if _, ok := attr(opt, "selected"); ok {
				return optionValue(opt)
			}
		}
		if len(opts) > 0 {
			return optionValue(opts[0])
		}
		return ""
	case "option":
		return optionValue(n)
	}
	v, _ := attr(n, "value")
	return v
}

func setValue(n *html.Node, v string) {
	if n.Data != "textarea" {
		setAttr(n, "value", v)
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
}

func options(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func optionValue(opt *html.Node) string {
	if v, ok := attr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(opt))
}

// uncheckGroup clears every radio sharing n's name.
func uncheckGroup(doc, n *html.Node) {
	name, ok := attr(n, "name")
	if !ok {
		return
	}
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && c.Data == "input" {
			typ, _ := attr(c, "type")
			other, _ := attr(c, "name")
			if strings.EqualFold(typ, "radio") && other == name {
				removeAttr(c, "checked")
			}
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(doc)
}

// isOneOf проверяет, что s совпадает с одним из candidates
func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
