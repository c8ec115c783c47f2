package engine

import (
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// pathSegment is one parsed step of a simplified path expression.
type pathSegment struct {
	name      string            // element local name to match
	attribute string            // attribute local name when the segment is @attr
	self      bool              // segment is "."
	parent    bool              // segment is ".."
	predicate *segmentPredicate // optional bracketed predicate
}

// segmentPredicate is a parsed bracket predicate. Either an attribute
// equality test ([@role='SoldTo']) or a 1-based positional index ([2]).
type segmentPredicate struct {
	attr  string
	value string
	index int
}

// splitPath splits a path expression on '/' while leaving separators
// inside bracket predicates and quoted strings untouched.
func splitPath(path string) []string {
	var segments []string
	var sb strings.Builder
	depth := 0
	var quote byte

	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			sb.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			sb.WriteByte(c)
		case c == '[':
			depth++
			sb.WriteByte(c)
		case c == ']':
			if depth > 0 {
				depth--
			}
			sb.WriteByte(c)
		case c == '/' && depth == 0:
			segments = append(segments, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	segments = append(segments, sb.String())
	return segments
}

// parseSegment parses one path segment. Segments that look malformed
// degrade to a literal local-name match on the raw text rather than
// failing; a literal that matches nothing simply resolves empty.
func parseSegment(text string) pathSegment {
	switch text {
	case "", ".":
		return pathSegment{self: true}
	case "..":
		return pathSegment{parent: true}
	}

	if strings.HasPrefix(text, "@") {
		return pathSegment{attribute: text[1:]}
	}

	open := strings.IndexByte(text, '[')
	if open < 0 {
		return pathSegment{name: text}
	}

	close := strings.LastIndexByte(text, ']')
	if close < open {
		// Unbalanced bracket: pass the segment through literally.
		return pathSegment{name: text}
	}

	name := text[:open]
	pred := parsePredicate(text[open+1 : close])
	if pred == nil {
		return pathSegment{name: text}
	}
	return pathSegment{name: name, predicate: pred}
}

// parsePredicate parses the inside of a bracket predicate. Returns nil
// when the predicate is not a supported form.
func parsePredicate(text string) *segmentPredicate {
	text = strings.TrimSpace(text)

	if idx, err := strconv.Atoi(text); err == nil && idx > 0 {
		return &segmentPredicate{index: idx}
	}

	if !strings.HasPrefix(text, "@") {
		return nil
	}

	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return nil
	}

	attr := strings.TrimSpace(text[1:eq])
	value := strings.TrimSpace(text[eq+1:])
	if len(value) >= 2 && (value[0] == '\'' || value[0] == '"') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	if attr == "" {
		return nil
	}
	return &segmentPredicate{attr: attr, value: value}
}

// resolveNodes resolves a path expression against a context node and
// returns every matching element in document order. When the context is
// the document itself, the first segment is resolved as a
// descendant-or-self search so short top-level paths can locate deeply
// nested elements; every subsequent segment matches direct children
// only. Attribute segments yield no elements here; resolveString
// handles them.
func resolveNodes(ctx *xmlquery.Node, path string) []*xmlquery.Node {
	if ctx == nil {
		return nil
	}

	segments := splitPath(path)
	current := []*xmlquery.Node{ctx}

	for i, text := range segments {
		seg := parseSegment(text)

		switch {
		case seg.self:
			continue
		case seg.parent:
			current = parentElements(current)
		case seg.attribute != "":
			// Attributes are only legal as the final segment; an
			// attribute mid-path matches nothing.
			return nil
		default:
			anywhere := i == 0 && ctx.Type == xmlquery.DocumentNode
			current = matchElements(current, seg, anywhere)
		}

		if len(current) == 0 {
			return nil
		}
	}

	return current
}

// resolveFirst returns the first element the path resolves to, or nil.
func resolveFirst(ctx *xmlquery.Node, path string) *xmlquery.Node {
	nodes := resolveNodes(ctx, path)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// resolveString resolves a path to its raw string value: the attribute
// value when the final segment is an @attr, otherwise the trimmed text
// content of the first matching element. A missing node yields "".
func resolveString(ctx *xmlquery.Node, path string) string {
	elemPath, attr := splitAttribute(path)

	target := ctx
	if elemPath != "" {
		target = resolveFirst(ctx, elemPath)
	}
	if target == nil {
		return ""
	}

	if attr != "" {
		return attrValue(target, attr)
	}
	return strings.TrimSpace(target.InnerText())
}

// splitAttribute separates a trailing @attr segment from the element
// portion of a path. "Name/@role" => ("Name", "role"); "@role" =>
// ("", "role"); "Name" => ("Name", "").
func splitAttribute(path string) (string, string) {
	segments := splitPath(path)
	last := segments[len(segments)-1]
	if !strings.HasPrefix(last, "@") {
		return path, ""
	}
	elem := strings.Join(segments[:len(segments)-1], "/")
	return elem, last[1:]
}

// matchElements matches one named segment against a set of context
// nodes, in document order. With anywhere set, matching descends the
// whole subtree of each context instead of only its direct children.
func matchElements(contexts []*xmlquery.Node, seg pathSegment, anywhere bool) []*xmlquery.Node {
	var out []*xmlquery.Node
	for _, ctx := range contexts {
		var matched []*xmlquery.Node
		if anywhere {
			matched = descendantElements(ctx, seg.name)
		} else {
			matched = childElements(ctx, seg.name)
		}
		out = append(out, filterPredicate(matched, seg.predicate)...)
	}
	return out
}

// filterPredicate applies a segment predicate to a matched set.
func filterPredicate(nodes []*xmlquery.Node, pred *segmentPredicate) []*xmlquery.Node {
	if pred == nil {
		return nodes
	}
	if pred.index > 0 {
		if pred.index > len(nodes) {
			return nil
		}
		return nodes[pred.index-1 : pred.index]
	}

	var out []*xmlquery.Node
	for _, n := range nodes {
		if attrValue(n, pred.attr) == pred.value {
			out = append(out, n)
		}
	}
	return out
}

// childElements returns the direct child elements of n whose local name
// matches, in document order.
func childElements(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == local {
			out = append(out, child)
		}
	}
	return out
}

// descendantElements returns every element in n's subtree (including n
// itself when it is an element) whose local name matches, in document
// order.
func descendantElements(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	var walk func(node *xmlquery.Node)
	walk = func(node *xmlquery.Node) {
		if node.Type == xmlquery.ElementNode && node.Data == local {
			out = append(out, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return out
}

// parentElements maps a set of nodes to their distinct parent elements.
func parentElements(nodes []*xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	seen := make(map[*xmlquery.Node]bool)
	for _, n := range nodes {
		p := n.Parent
		if p == nil || p.Type != xmlquery.ElementNode || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// attrValue returns the value of the attribute with the given local
// name, ignoring any namespace prefix. Missing attribute yields "".
func attrValue(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
