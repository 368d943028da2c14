package entity

import (
	"fmt"
	"net/netip"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/netapi-network/netapi/pkg/units"
)

// Mapper is implemented by values that provide their own canonical form
type Mapper interface {
	Map() map[string]interface{}
}

// Export converts a struct (or pointer to struct) into a plain nested map
// keyed by json tag names. It skips unexported fields, fields tagged "-",
// names starting with "_", the connector reference and names ending in
// "_cmd". Domain values are replaced by their external form.
func Export(v interface{}) map[string]interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	out := make(map[string]interface{})
	exportStruct(rv, out)
	return out
}

func exportStruct(rv reflect.Value, out map[string]interface{}) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("json")
		if sf.Anonymous && tag == "" {
			fv := rv.Field(i)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				exportStruct(fv, out)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if skipField(name) {
			continue
		}
		out[name] = exportValue(rv.Field(i))
	}
}

func skipField(name string) bool {
	return strings.HasPrefix(name, "_") || name == "connector" || strings.HasSuffix(name, "_cmd")
}

func exportValue(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface ||
		v.Kind() == reflect.Map || v.Kind() == reflect.Slice) && v.IsNil() {
		return nil
	}
	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case netip.Addr, netip.Prefix, units.MAC, units.Bytes, units.Bits,
			time.Duration, time.Time, uuid.UUID:
			return units.External(x)
		case Mapper:
			return x.Map()
		}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return exportValue(v.Elem())
	case reflect.Struct:
		out := make(map[string]interface{})
		exportStruct(v, out)
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = exportValue(v.Index(i))
		}
		return out
	case reflect.Map:
		out := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[keyString(iter.Key())] = exportValue(iter.Value())
		}
		return out
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	if v.CanInterface() {
		return v.Interface()
	}
	return nil
}

func keyString(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if s, ok := k.Interface().(interface{ String() string }); ok {
		return s.String()
	}
	return fmt.Sprint(k.Interface())
}
