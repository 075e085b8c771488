package utils

import "strings"

// ParseOrigins splits a comma separated CORS_ORIGIN value. Entries are
// compared without a trailing slash.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

// OriginAllowed reports whether a browser Origin header may talk to us.
// An empty list allows everything and so does a request without Origin,
// which only non-browser clients send.
func OriginAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	origin = strings.TrimRight(origin, "/")
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}
