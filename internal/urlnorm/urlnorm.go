package urlnorm

import (
	"net/url"
	"strings"
)

// hostAliases maps known alternate hosts of a chat site to its canonical host.
var hostAliases = map[string]string{
	"chat.openai.com":     "chatgpt.com",
	"www.chat.openai.com": "chatgpt.com",
	"www.chatgpt.com":     "chatgpt.com",
}

// Normalize canonicalizes a raw link into a comparison key.
// The same conversation reached through different hosts, schemes, query strings
// or fragments yields the same key. It never fails: unparseable input falls back
// to a lossy string cut.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if key, ok := canonical(raw); ok {
		return key
	}

	cut := fallback(raw)
	// The cut may have removed the only unparseable part (a bad fragment escape).
	if cut != raw {
		if key, ok := canonical(cut); ok {
			return key
		}
	}
	return cut
}

// Equal reports whether two raw links normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

func canonical(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if alias, ok := hostAliases[host]; ok {
		host = alias
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && port != "443" && port != "80" {
		host = host + ":" + port
	}

	// Trailing slashes are trimmed until none remain so the key stays a fixed point.
	path := strings.TrimRight(u.EscapedPath(), "/")

	return "https://" + host + path, true
}

// fallback strips fragment, query and trailing slashes from s.
func fallback(s string) string {
	if i := strings.Index(s, "#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}
