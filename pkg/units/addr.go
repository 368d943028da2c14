package units

import (
	"fmt"
	"math"
	"net"
	"net/netip"
	"strings"

	"github.com/spf13/cast"
)

// ToIPAddress converts raw into an IPv4 or IPv6 address.
// Accepted shapes: netip.Addr, net.IP, text, an integer (IPv4), a one-element
// sequence or a map with an "address" key.
func ToIPAddress(raw interface{}) (netip.Addr, error) {
	switch x := raw.(type) {
	case netip.Addr:
		return x, nil
	case net.IP:
		addr, ok := netip.AddrFromSlice(x)
		if !ok {
			return netip.Addr{}, coercionError(TypeIPAddress, raw, fmt.Errorf("invalid IP %v", x))
		}
		return addr.Unmap(), nil
	case string:
		addr, err := netip.ParseAddr(strings.TrimSpace(x))
		if err != nil {
			return netip.Addr{}, coercionError(TypeIPAddress, raw,
				fmt.Errorf("failed to detect a valid IP address from %q", x))
		}
		return addr, nil
	case map[string]interface{}:
		v, ok := x["address"]
		if !ok {
			return netip.Addr{}, coercionError(TypeIPAddress, raw, fmt.Errorf("missing address key"))
		}
		return ToIPAddress(v)
	case int, int64, uint32, uint64, float64:
		n, err := cast.ToUint64E(x)
		if err != nil || n > math.MaxUint32 {
			return netip.Addr{}, coercionError(TypeIPAddress, raw, fmt.Errorf("integer out of IPv4 range"))
		}
		return netip.AddrFrom4([4]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}), nil
	}
	if _, ok := sequence(raw); ok {
		v, err := single(TypeIPAddress, raw)
		if err != nil {
			return netip.Addr{}, err
		}
		return ToIPAddress(v)
	}
	return netip.Addr{}, coercionError(TypeIPAddress, raw, fmt.Errorf("unsupported type %T", raw))
}

// ToIPNetwork converts raw into a prefix. Host bits are kept, so
// "7.7.7.1/24" stays 7.7.7.1/24. A bare address becomes a full-length prefix.
// Dotted masks ("10.0.0.1/255.255.255.0") are accepted.
func ToIPNetwork(raw interface{}) (netip.Prefix, error) {
	switch x := raw.(type) {
	case netip.Prefix:
		return x, nil
	case netip.Addr:
		return netip.PrefixFrom(x, x.BitLen()), nil
	case *net.IPNet:
		addr, ok := netip.AddrFromSlice(x.IP)
		if !ok {
			return netip.Prefix{}, coercionError(TypeIPNetwork, raw, fmt.Errorf("invalid network %v", x))
		}
		ones, _ := x.Mask.Size()
		return netip.PrefixFrom(addr.Unmap(), ones), nil
	case string:
		return parsePrefix(strings.TrimSpace(x))
	case map[string]interface{}:
		addr, ok := x["address"]
		if !ok {
			return netip.Prefix{}, coercionError(TypeIPNetwork, raw, fmt.Errorf("missing address key"))
		}
		if l, ok := x["prefixlen"]; ok {
			return ToIPNetwork([]interface{}{addr, l})
		}
		return ToIPNetwork(addr)
	}
	if seq, ok := sequence(raw); ok {
		switch len(seq) {
		case 1:
			return ToIPNetwork(seq[0])
		case 2:
			addr, err := ToIPAddress(seq[0])
			if err != nil {
				return netip.Prefix{}, coercionError(TypeIPNetwork, raw, err)
			}
			bits, err := cast.ToIntE(seq[1])
			if err != nil {
				return netip.Prefix{}, coercionError(TypeIPNetwork, raw, err)
			}
			p := netip.PrefixFrom(addr, bits)
			if !p.IsValid() {
				return netip.Prefix{}, coercionError(TypeIPNetwork, raw, fmt.Errorf("invalid prefix length %d", bits))
			}
			return p, nil
		}
		return netip.Prefix{}, coercionError(TypeIPNetwork, raw, fmt.Errorf("expected (address, length), got %d values", len(seq)))
	}
	return netip.Prefix{}, coercionError(TypeIPNetwork, raw, fmt.Errorf("unsupported type %T", raw))
}

func parsePrefix(s string) (netip.Prefix, error) {
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, coercionError(TypeIPNetwork, s, fmt.Errorf("invalid IPNetwork %s", s))
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	if p, err := netip.ParsePrefix(s); err == nil {
		return p, nil
	}
	addrText, maskText, _ := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrText)
	if err != nil {
		return netip.Prefix{}, coercionError(TypeIPNetwork, s, fmt.Errorf("invalid IPNetwork %s", s))
	}
	mask := net.ParseIP(maskText).To4()
	if mask == nil || !addr.Is4() {
		return netip.Prefix{}, coercionError(TypeIPNetwork, s, fmt.Errorf("invalid IPNetwork %s", s))
	}
	ones, bits := net.IPMask(mask).Size()
	if bits == 0 {
		return netip.Prefix{}, coercionError(TypeIPNetwork, s, fmt.Errorf("non-contiguous netmask %s", maskText))
	}
	return netip.PrefixFrom(addr, ones), nil
}
