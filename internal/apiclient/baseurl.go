package apiclient

import (
	"net"
	"strings"
)

// ResolveBaseURL picks the backend for the host the console is served from:
// loopback hosts talk to the development backend, everything else to the
// deployed one.
func ResolveBaseURL(host, devURL, deployedURL string) string {
	if IsLoopback(host) {
		return devURL
	}
	return deployedURL
}

// IsLoopback reports whether host (optionally with a port) names the local machine.
func IsLoopback(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return false
	}
	if split, _, err := net.SplitHostPort(h); err == nil {
		h = split
	}
	h = strings.Trim(h, "[]")
	if h == "localhost" {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
