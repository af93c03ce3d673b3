// CLAUDE:SUMMARY Narrows an HTML page to its main content (CSS-like selectors, landmarks, boilerplate removal) before markdown conversion.
// Package extract selects the part of a documentation page that carries
// the prompt text, so navigation chrome does not dilute scoring or change
// the content hash.
package extract

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoMatch is returned when configured selectors match no element.
var ErrNoMatch = errors.New("extract: selectors matched no element")

// Main returns the HTML of the page's main content.
//
// With selectors, every matching element is kept in document order. Without,
// <main> landmarks are used, then <article>, then <body>. Boilerplate
// elements are removed from whatever is kept.
func Main(page string, selectors []string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("extract: parse: %w", err)
	}

	var nodes []*html.Node
	if len(selectors) > 0 {
		for _, sel := range selectors {
			for _, n := range queryAll(doc, sel) {
				if !slices.Contains(nodes, n) {
					nodes = append(nodes, n)
				}
			}
		}
		nodes = outermost(nodes)
		if len(nodes) == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoMatch, strings.Join(selectors, ", "))
		}
	} else {
		nodes = landmarks(doc)
	}

	var sb strings.Builder
	for _, n := range nodes {
		strip(n)
		parts := []*html.Node{n}
		if n.DataAtom == atom.Body {
			parts = parts[:0]
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				parts = append(parts, c)
			}
		}
		for _, p := range parts {
			if err := html.Render(&sb, p); err != nil {
				return "", fmt.Errorf("extract: render: %w", err)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func landmarks(doc *html.Node) []*html.Node {
	for _, a := range []atom.Atom{atom.Main, atom.Article} {
		if found := findAll(doc, func(n *html.Node) bool { return n.DataAtom == a }); len(found) > 0 {
			return outermost(found)
		}
	}
	if body := findAll(doc, func(n *html.Node) bool { return n.DataAtom == atom.Body }); len(body) > 0 {
		return body[:1]
	}
	return []*html.Node{doc}
}

var boilerplateTags = []atom.Atom{
	atom.Nav, atom.Header, atom.Footer, atom.Aside,
	atom.Script, atom.Style, atom.Noscript, atom.Form, atom.Iframe,
}

var boilerplateRoles = []string{"navigation", "banner", "contentinfo", "complementary", "search"}

func isBoilerplate(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return n.Type == html.CommentNode
	}
	return slices.Contains(boilerplateTags, n.DataAtom) ||
		slices.Contains(boilerplateRoles, attr(n, "role")) ||
		attr(n, "aria-hidden") == "true"
}

// strip removes boilerplate descendants of n in place.
func strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isBoilerplate(c) {
			n.RemoveChild(c)
		} else {
			strip(c)
		}
		c = next
	}
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// outermost drops nodes nested inside another node of the list.
func outermost(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if !hasAncestorIn(n, nodes) {
			out = append(out, n)
		}
	}
	return out
}

func hasAncestorIn(n *html.Node, set []*html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if slices.Contains(set, p) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
