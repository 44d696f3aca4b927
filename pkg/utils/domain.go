package utils

import (
	"net/url"
	"strings"
)

// internalSchemes are browser UI pages that never count as a visit.
var internalSchemes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-search://",
	"edge://",
	"brave://",
	"about:",
	"moz-extension://",
	"devtools://",
	"view-source:",
}

// ExtractDomain returns the lower-cased host of rawURL. Anything that does not
// parse into a URL with a host is returned unchanged and becomes its own key.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := u.Hostname()
	if host == "" {
		return rawURL
	}
	return strings.ToLower(host)
}

// IsTrackableURL reports whether a tab showing rawURL should open a visit.
func IsTrackableURL(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, scheme := range internalSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
