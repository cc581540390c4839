package model

import (
	"net/url"
	"strings"
)

// NormalizeURL returns the canonical form of an article URL used as its
// identity: lowercased scheme and host, fragment dropped, trailing slash
// trimmed from the path. Unparseable URLs fall back to the trimmed raw
// string.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
