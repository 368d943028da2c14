package units

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// MAC is a 48-bit EUI address. Its text form is uppercase with dashes,
// 28-99-3A-F8-5D-E8.
type MAC [6]byte

var (
	macOctetsRegexp  = regexp.MustCompile(`^([0-9A-Fa-f]{1,2})[:-]([0-9A-Fa-f]{1,2})[:-]([0-9A-Fa-f]{1,2})[:-]([0-9A-Fa-f]{1,2})[:-]([0-9A-Fa-f]{1,2})[:-]([0-9A-Fa-f]{1,2})$`)
	macDottedRegexp  = regexp.MustCompile(`^([0-9A-Fa-f]{1,4})\.([0-9A-Fa-f]{1,4})\.([0-9A-Fa-f]{1,4})$`)
	macTripletRegexp = regexp.MustCompile(`^([0-9A-Fa-f]{1,4}):([0-9A-Fa-f]{1,4}):([0-9A-Fa-f]{1,4})$`)
	macBareRegexp    = regexp.MustCompile(`^[0-9A-Fa-f]{12}$`)
)

func (m MAC) String() string {
	return fmt.Sprintf("%02X-%02X-%02X-%02X-%02X-%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// MarshalText implements encoding.TextMarshaler
func (m MAC) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MAC) UnmarshalText(text []byte) error {
	v, err := ParseMAC(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// HardwareAddr returns the address as a net.HardwareAddr
func (m MAC) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(m[:])
}

// ParseMAC parses colon or dash separated octets, Cisco dotted
// (xxxx.xxxx.xxxx), colon triplets (xxxx:xxxx:xxxx) and 12 bare hex digits.
func ParseMAC(s string) (MAC, error) {
	s = strings.TrimSpace(s)
	var hex string
	switch {
	case macOctetsRegexp.MatchString(s):
		for _, g := range macOctetsRegexp.FindStringSubmatch(s)[1:] {
			hex += zeroPad(g, 2)
		}
	case macDottedRegexp.MatchString(s):
		for _, g := range macDottedRegexp.FindStringSubmatch(s)[1:] {
			hex += zeroPad(g, 4)
		}
	case macTripletRegexp.MatchString(s):
		for _, g := range macTripletRegexp.FindStringSubmatch(s)[1:] {
			hex += zeroPad(g, 4)
		}
	case macBareRegexp.MatchString(s):
		hex = s
	default:
		return MAC{}, fmt.Errorf("failed to detect EUI version: %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return MAC{}, err
	}
	return macFromUint(n), nil
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func macFromUint(n uint64) MAC {
	var m MAC
	for i := 5; i >= 0; i-- {
		m[i] = byte(n)
		n >>= 8
	}
	return m
}

// ToMAC converts raw into a MAC. Accepted shapes: MAC, net.HardwareAddr of
// six bytes, text, a 48-bit integer, a one-element sequence or a map with
// an "address" key.
func ToMAC(raw interface{}) (MAC, error) {
	switch x := raw.(type) {
	case MAC:
		return x, nil
	case *MAC:
		if x == nil {
			return MAC{}, coercionError(TypeMAC, raw, fmt.Errorf("nil MAC"))
		}
		return *x, nil
	case net.HardwareAddr:
		if len(x) != 6 {
			return MAC{}, coercionError(TypeMAC, raw, fmt.Errorf("expected 6 bytes, got %d", len(x)))
		}
		var m MAC
		copy(m[:], x)
		return m, nil
	case string:
		m, err := ParseMAC(x)
		if err != nil {
			return MAC{}, coercionError(TypeMAC, raw, err)
		}
		return m, nil
	case map[string]interface{}:
		v, ok := x["address"]
		if !ok {
			return MAC{}, coercionError(TypeMAC, raw, fmt.Errorf("missing address key"))
		}
		return ToMAC(v)
	case int, int64, uint64, float64:
		n, err := cast.ToUint64E(x)
		if err != nil || n >= 1<<48 {
			return MAC{}, coercionError(TypeMAC, raw, fmt.Errorf("integer out of EUI-48 range"))
		}
		return macFromUint(n), nil
	}
	if _, ok := sequence(raw); ok {
		v, err := single(TypeMAC, raw)
		if err != nil {
			return MAC{}, err
		}
		return ToMAC(v)
	}
	return MAC{}, coercionError(TypeMAC, raw, fmt.Errorf("unsupported type %T", raw))
}
