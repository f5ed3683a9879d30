package util

import (
	"net"
	"strings"
)

const fallbackAddress = "127.0.0.1"

// ClientIdentity extracts the client IP address used as the rate-limit key.
// Order of preference: first X-Forwarded-For entry, X-Real-IP, the transport
// peer address, then a constant loopback fallback. Ports are stripped.
func ClientIdentity(remoteAddr, xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		// X-Forwarded-For can contain multiple IPs separated by commas
		first := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if first != "" {
			return stripPort(first)
		}
	}

	if ip := strings.TrimSpace(xRealIP); ip != "" {
		return stripPort(ip)
	}

	if remoteAddr != "" {
		return stripPort(remoteAddr)
	}

	return fallbackAddress
}

func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
