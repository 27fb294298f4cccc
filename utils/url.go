package utils

import "strings"

// AbsoluteImageURL normalizes the cover URL variants the upstream emits into
// absolute https URLs. Protocol-relative ("//cdn.example.com/x.jpg") and
// bare-host ("cdn.example.com/x.jpg") forms are both seen across upstream
// versions. The function is idempotent: applying it to its own output is a
// no-op.
func AbsoluteImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	return "https://" + strings.TrimPrefix(s, "/")
}

// IsLikelyImageURL reports whether s looks like a fetchable image URL: an
// http(s) URL whose remainder contains both a host dot and a path separator.
// Upstream listing items frequently carry placeholder junk ("1", "null",
// relative fragments) in their cover fields; this filter decides whether
// cover repair should bother with a card.
func IsLikelyImageURL(s string) bool {
	var rest string
	switch {
	case strings.HasPrefix(s, "https://"):
		rest = s[len("https://"):]
	case strings.HasPrefix(s, "http://"):
		rest = s[len("http://"):]
	default:
		return false
	}
	return strings.Contains(rest, ".") && strings.Contains(rest, "/")
}
