package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var defaultPolicy = DefaultPolicy()

// Sanitize cleans untrusted HTML with the default policy.
func Sanitize(input string) string {
	return defaultPolicy.Sanitize(input)
}

// Sanitize parses the input as a body fragment, strips everything the
// policy does not allow, and renders the surviving tree back to HTML.
// It is deterministic and never fails; malformed markup is repaired or
// dropped by the parser, and plain text comes back escaped.
func (p *Policy) Sanitize(input string) string {
	if input == "" {
		return ""
	}

	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(input), ctx)
	if err != nil {
		// The fragment parser only fails on reader errors, which a string
		// reader cannot produce. Escape as a defensive fallback.
		return html.EscapeString(input)
	}

	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	for _, n := range nodes {
		p.appendSanitized(root, n)
	}

	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// appendSanitized appends a sanitized copy of n (and its subtree) to dst.
// Disallowed elements vanish but their allowed children are hoisted into
// their place, except raw-text containers whose bodies must go with them.
func (p *Policy) appendSanitized(dst, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		dst.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data})

	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if _, ok := p.tags[tag]; !ok {
			if _, drop := p.dropContent[tag]; drop {
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.appendSanitized(dst, c)
			}
			return
		}

		attrs := p.filterAttributes(tag, n.Attr)
		attrs = applyRewrite(p.rewrites[tag], attrs)
		el := &html.Node{Type: html.ElementNode, DataAtom: n.DataAtom, Data: tag, Attr: attrs}
		dst.AppendChild(el)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.appendSanitized(el, c)
		}
	}
	// Comments and doctypes are dropped.
}

func (p *Policy) filterAttributes(tag string, attrs []html.Attribute) []html.Attribute {
	var out []html.Attribute
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a.Namespace != "" {
			continue
		}
		key := strings.ToLower(a.Key)
		if _, dup := seen[key]; dup {
			continue
		}
		if !p.attrAllowed(tag, key) {
			continue
		}
		if isURLAttr(key) && !p.allowedURL(tag, key, a.Val) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, html.Attribute{Key: key, Val: a.Val})
	}
	return out
}

func (p *Policy) attrAllowed(tag, key string) bool {
	if _, ok := p.globalAttrs[key]; ok {
		return true
	}
	if tagAttrs, ok := p.attrs[tag]; ok {
		if _, ok := tagAttrs[key]; ok {
			return true
		}
	}
	for _, prefix := range p.attrPrefixes {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return true
		}
	}
	return false
}

// applyRewrite runs the tag's rewrite rule after allow-list filtering.
func applyRewrite(kind rewriteKind, attrs []html.Attribute) []html.Attribute {
	switch kind {
	case rewriteAnchor:
		// An anchor whose href failed the scheme check has already lost
		// it; only anchors with a surviving href get the safe defaults.
		if hasAttr(attrs, "href") {
			attrs = setDefault(attrs, "target", "_blank")
			attrs = setDefault(attrs, "rel", "nofollow noopener noreferrer")
		}
	case rewriteImage:
		attrs = setDefault(attrs, "loading", "lazy")
		attrs = setDefault(attrs, "decoding", "async")
		attrs = setDefault(attrs, "referrerpolicy", "no-referrer")
	case rewriteVideo:
		if hasAttr(attrs, "autoplay") {
			attrs = setDefault(attrs, "playsinline", "playsinline")
		}
	}
	return attrs
}

func hasAttr(attrs []html.Attribute, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setDefault(attrs []html.Attribute, key, val string) []html.Attribute {
	if hasAttr(attrs, key) {
		return attrs
	}
	return append(attrs, html.Attribute{Key: key, Val: val})
}
