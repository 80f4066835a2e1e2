package sanitizer

import "strings"

// rewriteKind identifies a post-filter rewrite rule. Rules are a closed,
// reviewable set dispatched by tag rather than open callback registration,
// and may only remove or normalize attributes, never add unsafe ones.
type rewriteKind uint8

const (
	rewriteNone rewriteKind = iota
	rewriteAnchor
	rewriteImage
	rewriteVideo
)

// Policy is the static allow-list table driving Sanitize. Any tag,
// attribute, or URL scheme not listed here is stripped from the output.
type Policy struct {
	// tags is the element allow-list.
	tags map[string]struct{}

	// attrs lists attributes allowed on specific tags, in addition to
	// globalAttrs and attrPrefixes which apply to every allowed tag.
	attrs        map[string]map[string]struct{}
	globalAttrs  map[string]struct{}
	attrPrefixes []string

	// schemes lists URL schemes allowed in href/src/srcset per tag.
	// dataMIME further restricts data: URIs to matching MIME prefixes.
	schemes  map[string]map[string]struct{}
	dataMIME map[string][]string

	// rewrites maps tags to their post-filter rewrite rule.
	rewrites map[string]rewriteKind

	// dropContent lists tags whose raw bodies must be discarded together
	// with the tag when the tag itself is not allowed. Hoisting the text
	// of a disallowed script would leak its source into the page.
	dropContent map[string]struct{}
}

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

// DefaultPolicy returns the policy used for tenant admin content. It covers
// standard rich-text tags plus media, iframe, svg, style, and script.
func DefaultPolicy() *Policy {
	return &Policy{
		tags: set(
			// structure and rich text
			"address", "article", "aside", "footer", "header",
			"h1", "h2", "h3", "h4", "h5", "h6", "hgroup", "main", "nav", "section",
			"blockquote", "dd", "div", "dl", "dt", "hr", "li", "ol", "p", "pre", "ul",
			"a", "abbr", "b", "bdi", "bdo", "br", "cite", "code", "data", "dfn",
			"em", "i", "kbd", "mark", "q", "rb", "rp", "rt", "rtc", "ruby", "s",
			"samp", "small", "span", "strong", "sub", "sup", "time", "u", "var", "wbr",
			"caption", "col", "colgroup", "table", "tbody", "td", "tfoot", "th", "thead", "tr",
			// media
			"img", "picture", "source", "video", "audio", "track", "figure", "figcaption",
			// deliberate additions for semi-trusted admin snippets
			"script", "style", "iframe", "svg", "path",
		),
		attrs: map[string]map[string]struct{}{
			"a":      set("href", "target", "rel", "download"),
			"iframe": set("src", "frameborder", "allow", "allowfullscreen", "referrerpolicy"),
			"img":    set("src", "alt", "decoding", "srcset", "sizes", "referrerpolicy"),
			"source": set("src", "srcset", "type", "sizes", "media"),
			"video":  set("src", "poster", "controls", "autoplay", "muted", "loop", "playsinline", "preload", "crossorigin"),
			"audio":  set("src", "controls", "autoplay", "loop", "muted", "preload", "crossorigin"),
			"track":  set("kind", "src", "srclang", "label", "default"),
			"script": set("src", "async", "defer"),
			// attribute keys are matched after lowercasing; browsers restore
			// the svg casing (viewBox) when they re-parse the markup
			"svg":  set("viewbox", "xmlns", "fill", "stroke", "stroke-width", "preserveaspectratio"),
			"path": set("d", "fill", "stroke", "stroke-width", "stroke-linecap", "stroke-linejoin", "fill-rule", "clip-rule"),
		},
		globalAttrs:  set("style", "class", "id", "title", "role", "width", "height", "loading"),
		attrPrefixes: []string{"data-", "aria-"},
		schemes: map[string]map[string]struct{}{
			"a":      set("http", "https", "mailto", "tel"),
			"img":    set("http", "https", "data", "blob"),
			"source": set("http", "https", "data", "blob"),
			"video":  set("http", "https", "data", "blob"),
			"audio":  set("http", "https", "data", "blob"),
			"track":  set("http", "https"),
			"script": set("http", "https"),
			"iframe": set("http", "https"),
		},
		dataMIME: map[string][]string{
			"img":    {"image/"},
			"source": {"image/", "video/", "audio/"},
			"video":  {"video/"},
			"audio":  {"audio/"},
		},
		rewrites: map[string]rewriteKind{
			"a":     rewriteAnchor,
			"img":   rewriteImage,
			"video": rewriteVideo,
		},
		dropContent: set("script", "style", "iframe", "noscript", "textarea", "title", "object", "embed"),
	}
}

// urlAttrs are the attributes subject to scheme filtering.
func isURLAttr(key string) bool {
	switch key {
	case "href", "src", "srcset", "poster":
		return true
	}
	return false
}

// allowedURL reports whether a URL-bearing attribute value passes the
// per-tag scheme allow-list. srcset values must have every candidate pass.
func (p *Policy) allowedURL(tag, key, val string) bool {
	if key != "srcset" {
		return p.allowedURLValue(tag, val)
	}
	candidates := strings.Split(val, ",")
	for _, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			return false
		}
		if !p.allowedURLValue(tag, fields[0]) {
			return false
		}
	}
	return len(candidates) > 0
}

func (p *Policy) allowedURLValue(tag, raw string) bool {
	// Browsers ignore tab/newline inside URLs, so "java\tscript:" still
	// executes; strip them before the scheme check to close that hole.
	v := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if v == "" {
		return false
	}

	i := strings.IndexAny(v, ":/?#")
	if i == -1 || v[i] != ':' {
		// Schemeless (relative) URLs are not allowed; the original page
		// context of a pasted snippet is unknown at save time.
		return false
	}
	scheme := strings.ToLower(v[:i])

	allowed, ok := p.schemes[tag]
	if !ok {
		return false
	}
	if _, ok := allowed[scheme]; !ok {
		return false
	}
	if scheme == "data" {
		rest := v[i+1:]
		for _, prefix := range p.dataMIME[tag] {
			if strings.HasPrefix(strings.ToLower(rest), prefix) {
				return true
			}
		}
		return false
	}
	return true
}
