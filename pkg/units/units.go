// Package units converts raw vendor values into domain-typed values.
//
// Every field that holds an address, prefix, MAC, byte or bit quantity,
// duration or timestamp is routed through Coerce or one of the typed To*
// helpers. The helpers are idempotent and return *util.TypeCoercionError
// when a raw value cannot be interpreted.
package units

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"github.com/netapi-network/netapi/pkg/util"
)

// Type names a domain type produced by the coercion layer
type Type string

const (
	TypeIPAddress Type = "IPAddress"
	TypeIPNetwork Type = "IPNetwork"
	TypeMAC       Type = "MAC"
	TypeBytes     Type = "Bytes"
	TypeBits      Type = "Bits"
	TypeDuration  Type = "Duration"
	TypeDateTime  Type = "DateTime"
)

// Coerce converts raw into the domain type t.
func Coerce(t Type, raw interface{}) (interface{}, error) {
	switch t {
	case TypeIPAddress:
		return ToIPAddress(raw)
	case TypeIPNetwork:
		return ToIPNetwork(raw)
	case TypeMAC:
		return ToMAC(raw)
	case TypeBytes:
		return ToBytes(raw)
	case TypeBits:
		return ToBits(raw)
	case TypeDuration:
		return ToDuration(raw)
	case TypeDateTime:
		return ToDateTime(raw)
	default:
		return nil, coercionError(t, raw, fmt.Errorf("unknown unit type %q", t))
	}
}

// External returns the interchange representation of a domain value.
// Addresses, prefixes and MACs become strings, quantities become float64,
// durations become ISO-8601 text and timestamps RFC 3339 text in UTC.
// Other values are returned as given.
func External(v interface{}) interface{} {
	switch x := v.(type) {
	case netip.Addr:
		if !x.IsValid() {
			return nil
		}
		return x.String()
	case netip.Prefix:
		if !x.IsValid() {
			return nil
		}
		return x.String()
	case MAC:
		return x.String()
	case Bytes:
		return float64(x)
	case Bits:
		return float64(x)
	case time.Duration:
		return FormatISODuration(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.UTC().Format(time.RFC3339Nano)
	case uuid.UUID:
		return x.String()
	default:
		return v
	}
}

func coercionError(t Type, raw interface{}, err error) error {
	return &util.TypeCoercionError{Type: string(t), Value: raw, Err: err}
}

// sequence returns raw as a slice when it has a sequence shape
func sequence(raw interface{}) ([]interface{}, bool) {
	switch x := raw.(type) {
	case []interface{}:
		return x, true
	case []int:
		out := make([]interface{}, len(x))
		for i, v := range x {
			out[i] = v
		}
		return out, true
	case []int64:
		out := make([]interface{}, len(x))
		for i, v := range x {
			out[i] = v
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(x))
		for i, v := range x {
			out[i] = v
		}
		return out, true
	case []string:
		out := make([]interface{}, len(x))
		for i, v := range x {
			out[i] = v
		}
		return out, true
	}
	return nil, false
}

// single unwraps a one-element sequence used as a positional constructor
func single(t Type, raw interface{}) (interface{}, error) {
	seq, _ := sequence(raw)
	if len(seq) != 1 {
		return nil, coercionError(t, raw, fmt.Errorf("expected 1 positional value, got %d", len(seq)))
	}
	return seq[0], nil
}
