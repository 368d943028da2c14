package units

import (
	"fmt"

	"github.com/spf13/cast"
)

// Bytes is a byte quantity
type Bytes float64

// Bits is a bit quantity
type Bits float64

// Bits converts a byte quantity to bits
func (b Bytes) Bits() Bits { return Bits(b * 8) }

// Bytes converts a bit quantity to bytes
func (b Bits) Bytes() Bytes { return Bytes(b / 8) }

// ToBytes converts raw into a byte quantity. Numbers are taken as bytes;
// Bits are divided by eight. Text is rejected so that "1500" and "1.5 KB"
// are never guessed at.
func ToBytes(raw interface{}) (Bytes, error) {
	switch x := raw.(type) {
	case Bytes:
		return x, nil
	case Bits:
		return x.Bytes(), nil
	case string:
		return 0, coercionError(TypeBytes, raw, fmt.Errorf("text values are not byte quantities: %q", x))
	case map[string]interface{}:
		if v, ok := firstKey(x, "bytes", "value"); ok {
			return ToBytes(v)
		}
		if v, ok := x["bits"]; ok {
			bits, err := ToBits(v)
			if err != nil {
				return 0, coercionError(TypeBytes, raw, err)
			}
			return bits.Bytes(), nil
		}
		return 0, coercionError(TypeBytes, raw, fmt.Errorf("expected one of bytes, value, bits"))
	}
	if _, ok := sequence(raw); ok {
		v, err := single(TypeBytes, raw)
		if err != nil {
			return 0, err
		}
		return ToBytes(v)
	}
	f, err := number(raw)
	if err != nil {
		return 0, coercionError(TypeBytes, raw, err)
	}
	return Bytes(f), nil
}

// ToBits converts raw into a bit quantity. Numbers are taken as bits;
// Bytes are multiplied by eight. Text is rejected.
func ToBits(raw interface{}) (Bits, error) {
	switch x := raw.(type) {
	case Bits:
		return x, nil
	case Bytes:
		return x.Bits(), nil
	case string:
		return 0, coercionError(TypeBits, raw, fmt.Errorf("text values are not bit quantities: %q", x))
	case map[string]interface{}:
		if v, ok := firstKey(x, "bits", "value"); ok {
			return ToBits(v)
		}
		if v, ok := x["bytes"]; ok {
			b, err := ToBytes(v)
			if err != nil {
				return 0, coercionError(TypeBits, raw, err)
			}
			return b.Bits(), nil
		}
		return 0, coercionError(TypeBits, raw, fmt.Errorf("expected one of bits, value, bytes"))
	}
	if _, ok := sequence(raw); ok {
		v, err := single(TypeBits, raw)
		if err != nil {
			return 0, err
		}
		return ToBits(v)
	}
	f, err := number(raw)
	if err != nil {
		return 0, coercionError(TypeBits, raw, err)
	}
	return Bits(f), nil
}

// number accepts Go numeric kinds only
func number(raw interface{}) (float64, error) {
	switch raw.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return cast.ToFloat64E(raw)
	case nil:
		return 0, fmt.Errorf("no value")
	}
	return 0, fmt.Errorf("unsupported type %T", raw)
}

func firstKey(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}
