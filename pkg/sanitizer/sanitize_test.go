package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/biolink/pkg/sanitizer"
)

func TestSanitizeAnchors(t *testing.T) {
	t.Parallel()

	t.Run("blocks javascript scheme", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<a href="javascript:alert(1)">x</a>`)
		assert.Equal(t, "<a>x</a>", out)
	})

	t.Run("blocks entity and whitespace smuggled schemes", func(t *testing.T) {
		t.Parallel()

		assert.NotContains(t, sanitizer.Sanitize(`<a href="java&#115;cript:alert(1)">x</a>`), "href")
		assert.NotContains(t, sanitizer.Sanitize("<a href=\"java\tscript:alert(1)\">x</a>"), "href")
	})

	t.Run("safe href gets target and rel defaults", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<a href="https://example.com/promo">go</a>`)
		assert.Contains(t, out, `href="https://example.com/promo"`)
		assert.Contains(t, out, `target="_blank"`)
		assert.Contains(t, out, `rel="nofollow noopener noreferrer"`)
	})

	t.Run("existing target and rel are kept", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<a href="https://example.com" target="_self" rel="author">x</a>`)
		assert.Contains(t, out, `target="_self"`)
		assert.Contains(t, out, `rel="author"`)
	})

	t.Run("mailto and tel pass", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t, sanitizer.Sanitize(`<a href="mailto:a@b.com">m</a>`), `href="mailto:a@b.com"`)
		assert.Contains(t, sanitizer.Sanitize(`<a href="tel:+66812345678">t</a>`), `href="tel:+66812345678"`)
	})

	t.Run("relative and fragment hrefs are dropped", func(t *testing.T) {
		t.Parallel()

		assert.NotContains(t, sanitizer.Sanitize(`<a href="/local/path">x</a>`), "href")
		assert.NotContains(t, sanitizer.Sanitize(`<a href="#promo">x</a>`), "href")
	})
}

func TestSanitizeMedia(t *testing.T) {
	t.Parallel()

	t.Run("img gets lazy loading defaults", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img src="https://a/b.png">`)
		assert.Contains(t, out, `src="https://a/b.png"`)
		assert.Contains(t, out, `loading="lazy"`)
		assert.Contains(t, out, `decoding="async"`)
		assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	})

	t.Run("img keeps explicit loading value", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img src="https://a/b.png" loading="eager">`)
		assert.Contains(t, out, `loading="eager"`)
		assert.NotContains(t, out, `loading="lazy"`)
	})

	t.Run("img with disallowed scheme loses src", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img src="ftp://a/b.png">`)
		assert.NotContains(t, out, "src")
		assert.Contains(t, out, "<img")
	})

	t.Run("img accepts matching data uri only", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t,
			sanitizer.Sanitize(`<img src="data:image/png;base64,iVBORw0KGgo=">`),
			`src="data:image/png;base64,iVBORw0KGgo="`,
		)
		assert.NotContains(t,
			sanitizer.Sanitize(`<img src="data:text/html,<script>alert(1)</script>">`),
			"src",
		)
	})

	t.Run("video data uri must be video mime", func(t *testing.T) {
		t.Parallel()

		assert.NotContains(t, sanitizer.Sanitize(`<video src="data:image/png;base64,AA=="></video>`), "src")
		assert.Contains(t, sanitizer.Sanitize(`<video src="https://a/v.mp4"></video>`), `src="https://a/v.mp4"`)
	})

	t.Run("autoplay video forces playsinline", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<video src="https://a/v.mp4" autoplay></video>`)
		assert.Contains(t, out, "playsinline")
	})

	t.Run("srcset with one bad candidate is dropped", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img srcset="https://a/1.png 1x, javascript:alert(1) 2x">`)
		assert.NotContains(t, out, "srcset")
	})

	t.Run("srcset with safe candidates survives", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img srcset="https://a/1.png 1x, https://a/2.png 2x">`)
		assert.Contains(t, out, "srcset")
	})
}

func TestSanitizeScripts(t *testing.T) {
	t.Parallel()

	t.Run("inline script body passes through untouched", func(t *testing.T) {
		t.Parallel()

		in := `<script>fbq('track','PageView');if(a<b){x()}</script>`
		assert.Equal(t, in, sanitizer.Sanitize(in))
	})

	t.Run("script src restricted to http and https", func(t *testing.T) {
		t.Parallel()

		assert.Contains(t,
			sanitizer.Sanitize(`<script src="https://cdn.example.com/p.js" async></script>`),
			`src="https://cdn.example.com/p.js"`,
		)
		assert.NotContains(t,
			sanitizer.Sanitize(`<script src="data:text/javascript,alert(1)"></script>`),
			"src",
		)
	})

	t.Run("event handler attributes are stripped", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<img src="https://a/b.png" onerror="alert(1)" onclick="x()">`)
		assert.NotContains(t, out, "onerror")
		assert.NotContains(t, out, "onclick")
	})
}

func TestSanitizeStructure(t *testing.T) {
	t.Parallel()

	t.Run("disallowed tag is stripped but children hoisted", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<form action="https://evil"><b>keep me</b></form>`)
		assert.NotContains(t, out, "form")
		assert.Contains(t, out, "<b>keep me</b>")
	})

	t.Run("disallowed raw text containers drop their bodies", func(t *testing.T) {
		t.Parallel()

		assert.NotContains(t, sanitizer.Sanitize(`<textarea>secret</textarea>`), "secret")
		assert.NotContains(t, sanitizer.Sanitize(`<object data="x">fallback</object>`), "fallback")
	})

	t.Run("comments are removed", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "<p>hi</p>", sanitizer.Sanitize(`<p>hi<!-- secret note --></p>`))
	})

	t.Run("disallowed attributes are removed", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<div contenteditable="true" class="ok" spellcheck="false">x</div>`)
		assert.NotContains(t, out, "contenteditable")
		assert.NotContains(t, out, "spellcheck")
		assert.Contains(t, out, `class="ok"`)
	})

	t.Run("data and aria prefixed attributes survive", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<div data-event="ClickRegister" aria-label="cta" role="button">x</div>`)
		assert.Contains(t, out, `data-event="ClickRegister"`)
		assert.Contains(t, out, `aria-label="cta"`)
		assert.Contains(t, out, `role="button"`)
	})

	t.Run("iframe survives with https src", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<iframe src="https://www.youtube.com/embed/x" allowfullscreen loading="lazy"></iframe>`)
		assert.Contains(t, out, `src="https://www.youtube.com/embed/x"`)
		assert.Contains(t, out, "allowfullscreen")
	})

	t.Run("style element content is preserved", func(t *testing.T) {
		t.Parallel()

		in := `<style>.card{color:red}</style>`
		assert.Equal(t, in, sanitizer.Sanitize(in))
	})

	t.Run("inline svg keeps its drawing attributes", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<svg viewBox="0 0 24 24" fill="none" width="24" height="24">` +
			`<path d="M5 12h14" stroke="currentColor" stroke-width="2" stroke-linecap="round"/></svg>`)
		assert.Contains(t, out, `viewbox="0 0 24 24"`)
		assert.Contains(t, out, `d="M5 12h14"`)
		assert.Contains(t, out, `stroke="currentColor"`)
		assert.Contains(t, out, `stroke-width="2"`)
		assert.Contains(t, out, `width="24"`)
	})

	t.Run("svg event handlers are stripped", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize(`<svg onload="alert(1)"><path d="M0 0" onclick="alert(2)"/></svg>`)
		assert.NotContains(t, out, "onload")
		assert.NotContains(t, out, "onclick")
		assert.Contains(t, out, `d="M0 0"`)
	})
}

func TestSanitizeTotality(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, sanitizer.Sanitize(""))
	})

	t.Run("plain text passes through", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello world", sanitizer.Sanitize("hello world"))
	})

	t.Run("loose angle brackets come back escaped", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Sanitize("5 > 3")
		assert.NotContains(t, out, ">3")
		assert.Contains(t, out, "5 ")
	})

	t.Run("unclosed markup does not panic", func(t *testing.T) {
		t.Parallel()

		assert.NotPanics(t, func() {
			sanitizer.Sanitize(`<div><a href="https://x`)
			sanitizer.Sanitize(`<<<<>>`)
			sanitizer.Sanitize(`<video><source src=`)
		})
	})
}
