package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

type ipSource string

const (
	ipSourceRemoteAddr    ipSource = "remote_addr"
	ipSourceXForwardedFor ipSource = "x_forwarded_for"
	ipSourceXRealIP       ipSource = "x_real_ip"
)

// clientIPResolver decides which address identifies the client. Forwarded
// headers are spoofable, so they are only honoured when the deployment opts in
// globally or the direct peer is a trusted proxy.
type clientIPResolver struct {
	trustForwarded bool
	trustedProxies []*net.IPNet
}

func newClientIPResolver(cfg RateLimitConfig) (*clientIPResolver, error) {
	resolver := &clientIPResolver{trustForwarded: cfg.TrustForwardedHeaders}
	for _, cidr := range cfg.TrustedProxies {
		trimmed := strings.TrimSpace(cidr)
		if trimmed == "" {
			continue
		}
		if !strings.Contains(trimmed, "/") {
			if strings.Contains(trimmed, ":") {
				trimmed += "/128"
			} else {
				trimmed += "/32"
			}
		}
		_, network, err := net.ParseCIDR(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", cidr, err)
		}
		resolver.trustedProxies = append(resolver.trustedProxies, network)
	}
	return resolver, nil
}

// ClientIPFromRequest resolves the client address and reports which source
// supplied it.
func (c *clientIPResolver) ClientIPFromRequest(r *http.Request) (string, ipSource) {
	remote := hostFromRemoteAddr(r.RemoteAddr)
	if c == nil || !c.shouldTrustHeaders(remote) {
		return remote, ipSourceRemoteAddr
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first, ipSourceXForwardedFor
		}
	}
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip, ipSourceXRealIP
	}
	return remote, ipSourceRemoteAddr
}

func (c *clientIPResolver) shouldTrustHeaders(remote string) bool {
	if c.trustForwarded {
		return true
	}
	if len(c.trustedProxies) == 0 {
		return false
	}
	ip := net.ParseIP(remote)
	if ip == nil {
		return false
	}
	for _, network := range c.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func hostFromRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
