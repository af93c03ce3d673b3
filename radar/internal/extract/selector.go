package extract

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// selector is one compound selector: tag, #id, .class and [attr] or
// [attr=value], in any combination.
type selector struct {
	tag     string
	id      string
	classes []string
	attrKey string
	attrVal string
	hasVal  bool
}

func parseSelector(s string) selector {
	var sel selector
	if i := strings.IndexByte(s, '['); i >= 0 {
		inner := strings.TrimSuffix(s[i+1:], "]")
		s = s[:i]
		if k, v, ok := strings.Cut(inner, "="); ok {
			sel.attrKey, sel.attrVal, sel.hasVal = k, strings.Trim(v, `"'`), true
		} else {
			sel.attrKey = inner
		}
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		sel.id = s[i+1:]
		s = s[:i]
		if j := strings.IndexByte(sel.id, '.'); j >= 0 {
			s += sel.id[j:]
			sel.id = sel.id[:j]
		}
	}
	parts := strings.Split(s, ".")
	sel.tag = strings.ToLower(parts[0])
	for _, c := range parts[1:] {
		if c != "" {
			sel.classes = append(sel.classes, c)
		}
	}
	return sel
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && s.tag != "*" && n.Data != s.tag {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(attr(n, "class"))
		for _, c := range s.classes {
			if !slices.Contains(have, c) {
				return false
			}
		}
	}
	if s.attrKey != "" {
		if s.hasVal {
			return attr(n, s.attrKey) == s.attrVal
		}
		return slices.ContainsFunc(n.Attr, func(a html.Attribute) bool { return a.Key == s.attrKey })
	}
	return true
}

// queryAll resolves a space-separated descendant selector chain against
// root, returning matches in document order.
func queryAll(root *html.Node, chain string) []*html.Node {
	steps := strings.Fields(chain)
	if len(steps) == 0 {
		return nil
	}
	scope := []*html.Node{root}
	for _, step := range steps {
		sel := parseSelector(step)
		var next []*html.Node
		for _, s := range scope {
			for c := s.FirstChild; c != nil; c = c.NextSibling {
				for _, m := range findAll(c, sel.matches) {
					if !slices.Contains(next, m) {
						next = append(next, m)
					}
				}
			}
		}
		scope = next
	}
	return scope
}
