package util

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

var (
	hostnameLabelRegexp = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
	allNumericRegexp    = regexp.MustCompile(`^[\d.]+$`)
)

// IsValidIPOrPrefix reports whether s is an IPv4/IPv6 address or prefix.
// Host bits are allowed in prefixes: 10.1.1.1/24 is valid.
func IsValidIPOrPrefix(s string) bool {
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	_, err := netip.ParsePrefix(s)
	return err == nil
}

// IsValidHostname reports whether s is a syntactically valid DNS name that
// cannot be confused with an IP address.
func IsValidHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return false
	}
	if allNumericRegexp.MatchString(s) {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !hostnameLabelRegexp.MatchString(label) {
			return false
		}
	}
	return true
}

// FormatIPWithMask joins an address and mask length into CIDR notation.
// It accepts the mask length as an int or numeric string, as vendor payloads
// carry either.
func FormatIPWithMask(addr string, maskLen interface{}) string {
	return fmt.Sprintf("%s/%v", addr, maskLen)
}

// IsIPv4CIDR reports whether s is an IPv4 address with a mask length
func IsIPv4CIDR(s string) bool {
	p, err := netip.ParsePrefix(s)
	return err == nil && p.Addr().Is4()
}
