package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies lists the peers allowed to report the client address in
// X-Forwarded-For. The zero value trusts nobody.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts CIDR ranges and bare IP addresses.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	var out TrustedProxies
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			out = append(out, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", e)
		}
		bits := 128
		if v4 := ip.To4(); v4 != nil {
			ip, bits = v4, 32
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out, nil
}

func (p TrustedProxies) trusts(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range p {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the connection address unless it is a trusted proxy. Then
// X-Forwarded-For is walked from the nearest hop and the first address that
// is not itself a trusted proxy wins.
func (p TrustedProxies) ClientIP(r *http.Request) string {
	peer := ClientIP(r)
	if !p.trusts(peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !p.trusts(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}

// ClientIP returns the host of the connection address. Forwarding headers are
// ignored; see TrustedProxies.ClientIP.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
