package httputil

import (
	"fmt"
	"net"
)

type ipRule struct {
	match func(net.IP) bool
	kind  string
}

// blockedRanges are address classes a redirect may never point at.
var blockedRanges = []ipRule{
	{net.IP.IsPrivate, "private"},
	{net.IP.IsLoopback, "loopback"},
	{net.IP.IsLinkLocalUnicast, "link-local"},
	{net.IP.IsLinkLocalMulticast, "link-local multicast"},
	{net.IP.IsMulticast, "multicast"},
	{net.IP.IsUnspecified, "unspecified"},
}

// ValidateIP returns an error when ip is private, loopback, link-local
// (including cloud metadata endpoints), multicast or unspecified.
// host is only used in the error message.
func ValidateIP(ip net.IP, host string) error {
	for _, rule := range blockedRanges {
		if rule.match(ip) {
			return fmt.Errorf("refusing redirect to %s IP: %s (%s)", rule.kind, host, ip)
		}
	}
	return nil
}

// ValidateHost checks a redirect host. Literal IPs are checked directly;
// names are resolved with lookup and every returned address must pass, which
// also covers DNS rebinding to an internal address.
func ValidateHost(host string, lookup func(string) ([]net.IP, error)) error {
	if ip := net.ParseIP(host); ip != nil {
		return ValidateIP(ip, host)
	}

	ips, err := lookup(host)
	if err != nil {
		return fmt.Errorf("failed to resolve redirect host %s: %w", host, err)
	}
	for _, ip := range ips {
		if err := ValidateIP(ip, host); err != nil {
			return fmt.Errorf("refusing redirect: %s resolves to blocked IP %s", host, ip)
		}
	}
	return nil
}
