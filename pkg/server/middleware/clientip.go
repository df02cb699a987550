package middleware

import (
	"net"
	"net/http"
	"strings"
)

// TrustFunc reports whether a peer address is a trusted proxy
type TrustFunc func(ip string) bool

// ClientIP returns the address of the client that made r.
// X-Forwarded-For is only honored when the peer is a trusted proxy;
// the rightmost untrusted hop is taken.
func ClientIP(r *http.Request, trusted TrustFunc) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)

	if trusted == nil || peer == nil || !trusted(peer.String()) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		ip := net.ParseIP(strings.TrimSpace(hops[i]))
		if ip == nil {
			continue
		}
		if !trusted(ip.String()) {
			return ip
		}
		peer = ip
	}
	return peer
}
