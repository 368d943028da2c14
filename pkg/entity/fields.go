package entity

import (
	"github.com/netapi-network/netapi/pkg/units"
)

// Setter constructors for the common field shapes. A nil raw value clears
// optional fields and zeroes required ones.

// Value stores conv(raw) in a value field
func Value[T, V any](field func(*T) *V, conv func(interface{}) (V, error)) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		dst := field(t)
		if raw == nil {
			var zero V
			*dst = zero
			return nil
		}
		v, err := conv(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// Optional stores conv(raw) in a pointer field; nil means absent
func Optional[T, V any](field func(*T) **V, conv func(interface{}) (V, error)) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		dst := field(t)
		if raw == nil {
			*dst = nil
			return nil
		}
		v, err := conv(raw)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

// String sets a plain string field
func String[T any](field func(*T) *string) SetFunc[T] {
	return Value(field, units.ToString)
}

// OptString sets an optional string field
func OptString[T any](field func(*T) **string) SetFunc[T] {
	return Optional(field, units.ToString)
}

// Int sets a plain int field
func Int[T any](field func(*T) *int) SetFunc[T] {
	return Value(field, units.ToInt)
}

// OptInt sets an optional int field
func OptInt[T any](field func(*T) **int) SetFunc[T] {
	return Optional(field, units.ToInt)
}

// Float sets a plain float field
func Float[T any](field func(*T) *float64) SetFunc[T] {
	return Value(field, units.ToFloat)
}

// OptFloat sets an optional float field
func OptFloat[T any](field func(*T) **float64) SetFunc[T] {
	return Optional(field, units.ToFloat)
}

// Bool sets a plain bool field
func Bool[T any](field func(*T) *bool) SetFunc[T] {
	return Value(field, units.ToBool)
}

// OptBool sets an optional bool field
func OptBool[T any](field func(*T) **bool) SetFunc[T] {
	return Optional(field, units.ToBool)
}

// Strings sets a string list field
func Strings[T any](field func(*T) *[]string) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		l, err := units.ToStringSlice(raw)
		if err != nil {
			return err
		}
		*field(t) = l
		return nil
	}
}

// OptStrings sets a string list field that stays nil when absent
func OptStrings[T any](field func(*T) *[]string) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		if raw == nil {
			*field(t) = nil
			return nil
		}
		return Strings(field)(t, raw)
	}
}

// Attrs sets an open map field
func Attrs[T any](field func(*T) *map[string]interface{}) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		m, err := units.ToStringMap(raw)
		if err != nil {
			return err
		}
		*field(t) = m
		return nil
	}
}

// Record sets a nested record field through its own schema. A nil raw value
// leaves the record absent.
func Record[T, R any](field func(*T) **R, schema *Schema[R]) SetFunc[T] {
	return func(t *T, raw interface{}) error {
		dst := field(t)
		switch x := raw.(type) {
		case nil:
			*dst = nil
			return nil
		case *R:
			*dst = x
			return nil
		case R:
			*dst = &x
			return nil
		}
		values, err := units.ToStringMap(raw)
		if err != nil {
			return err
		}
		r := new(R)
		if err := schema.Apply(r, values); err != nil {
			return err
		}
		*dst = r
		return nil
	}
}
