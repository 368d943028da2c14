package units

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/netapi-network/netapi/pkg/util"
)

// Scalar coercions for plain entity fields. They wrap spf13/cast so that a
// failed conversion reports the same error type as the domain coercions.

// ToString converts raw to a string
func ToString(raw interface{}) (string, error) {
	s, err := cast.ToStringE(raw)
	if err != nil {
		return "", scalarError("string", raw, err)
	}
	return s, nil
}

// ToInt converts raw to an int. Numeric strings are read in base 10 even
// with leading zeros or a sign.
func ToInt(raw interface{}) (int, error) {
	if s, ok := raw.(string); ok {
		raw = decimalText(s)
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, scalarError("int", raw, err)
	}
	return n, nil
}

// decimalText strips leading zeros after an optional sign, so cast does not
// read the text as octal
func decimalText(s string) string {
	s = strings.TrimSpace(s)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" && s != "" {
		digits = "0"
	}
	if sign == "-" {
		return sign + digits
	}
	return digits
}

// ToFloat converts raw to a float64
func ToFloat(raw interface{}) (float64, error) {
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, scalarError("float", raw, err)
	}
	return f, nil
}

// ToBool converts raw to a bool
func ToBool(raw interface{}) (bool, error) {
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return false, scalarError("bool", raw, err)
	}
	return b, nil
}

// ToStringSlice converts raw to a list of strings. A nil value gives an
// empty list.
func ToStringSlice(raw interface{}) ([]string, error) {
	if raw == nil {
		return []string{}, nil
	}
	if s, ok := raw.(string); ok {
		return nil, scalarError("string list", raw, fmt.Errorf("got a single string %q", s))
	}
	out, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, scalarError("string list", raw, err)
	}
	return out, nil
}

// ToStringMap converts raw to a map with string keys
func ToStringMap(raw interface{}) (map[string]interface{}, error) {
	if raw == nil {
		return map[string]interface{}{}, nil
	}
	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return nil, scalarError("map", raw, err)
	}
	return m, nil
}

func scalarError(typ string, raw interface{}, err error) error {
	return &util.TypeCoercionError{Type: typ, Value: raw, Err: err}
}
