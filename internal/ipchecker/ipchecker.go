// Package ipchecker extracts and validates client IP addresses from HTTP
// requests. The router uses it to restrict the unauthenticated link listing
// to a trusted subnet.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether a request's client IP belongs to a trusted
// subnet given in CIDR notation.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the given CIDR. An empty string yields a
// disabled checker: Check then refuses every client.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("parsing trusted subnet %q: %w", trustedSubnet, err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// Check reports whether the IP falls inside the trusted subnet.
// Without a configured subnet it always returns false.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

// ClientIP extracts the client's address, preferring the X-Real-IP header,
// then the first entry of X-Forwarded-For, then the connection's RemoteAddr.
func (checker *IPChecker) ClientIP(request *http.Request) (net.IP, error) {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip, nil
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return net.ParseIP(first), nil
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil, fmt.Errorf("splitting remote address %q: %w", request.RemoteAddr, err)
	}

	return net.ParseIP(host), nil
}
