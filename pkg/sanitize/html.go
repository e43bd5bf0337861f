package sanitize

import "regexp"

// Exit-bound scrubbing for vendor-generated HTML. The generated page is
// rendered in a sandboxed iframe client-side; this strips the constructs the
// sandbox must never see regardless.
var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<\s*script\b[^>]*>.*?<\s*/\s*script\s*>`)
	scriptTagPattern   = regexp.MustCompile(`(?i)<\s*/?\s*script\b[^>]*>`)
	iframeBlockPattern = regexp.MustCompile(`(?is)<\s*iframe\b[^>]*>.*?<\s*/\s*iframe\s*>`)
	iframeTagPattern   = regexp.MustCompile(`(?i)<\s*/?\s*iframe\b[^>]*>`)
	eventAttrPattern   = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	uriSchemePattern   = regexp.MustCompile(`(?i)(href|src|action)\s*=\s*(["']?)\s*(javascript|vbscript)\s*:`)
)

// CleanHTML removes script and iframe constructs, inline event handlers, and
// dangerous URI schemes from generated HTML. The passes repeat until the
// string stops changing: removing one construct can splice another together
// (`<scr<iframe >ipt>` becomes `<script>` once the iframe tag is gone), so a
// single ordered sweep is not enough. The fixed point contains none of the
// stripped constructs, which also makes the function idempotent.
func CleanHTML(html string) string {
	for {
		cleaned := cleanPass(html)
		if cleaned == html {
			return cleaned
		}
		html = cleaned
	}
}

func cleanPass(html string) string {
	cleaned := scriptBlockPattern.ReplaceAllString(html, "")
	cleaned = scriptTagPattern.ReplaceAllString(cleaned, "")
	cleaned = iframeBlockPattern.ReplaceAllString(cleaned, "")
	cleaned = iframeTagPattern.ReplaceAllString(cleaned, "")
	cleaned = eventAttrPattern.ReplaceAllString(cleaned, "")
	cleaned = uriSchemePattern.ReplaceAllString(cleaned, "${1}=${2}#")
	return cleaned
}
