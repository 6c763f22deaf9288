package sanitizer

import (
	"net/url"
	"strings"
)

// NormalizePhotoURL lowercases the scheme and host of an http(s) URL.
// Anything else, such as a data URI, is only trimmed.
func NormalizePhotoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return raw
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
