// Package sanitizer provides a policy-driven HTML allow-list sanitizer for
// tenant-supplied page content (custom code bundles, head/body snippets).
//
// The input is parsed with the golang.org/x/net/html tokenizer, the node
// tree is walked against a [Policy], and a new HTML string is rendered that
// contains only the tags, attributes, and URL schemes the policy permits.
// Anything not explicitly listed is stripped; safe children of a stripped
// element are hoisted in its place.
//
// The default policy is deliberately permissive: it targets semi-trusted
// tenant admins who paste analytics snippets, not anonymous user-generated
// content. Rich media (img, picture, source, video, audio, track), iframes,
// svg, style, and script elements are allowed. Inline script bodies pass
// through untouched — the policy's job is to block URL-based script schemes
// (javascript: and friends) and cross-tag scheme confusion, not to audit
// snippet contents.
//
// Sanitize is total: it never returns an error. Empty input yields empty
// output, and plain non-HTML text is passed through escaped.
//
// Policies must not be mutated after first use; Sanitize is then safe for
// concurrent use.
package sanitizer
