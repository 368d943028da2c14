package connector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Object is a JSON object that remembers its key order
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject returns an empty ordered object
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Set stores a value, appending the key on first use
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for key
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in document order
func (o *Object) Keys() []string { return append([]string(nil), o.keys...) }

// Len returns the number of keys
func (o *Object) Len() int { return len(o.keys) }

// Map returns a shallow unordered copy
func (o *Object) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the object in key order
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AsObject views v as an ordered object. Plain maps are accepted with
// their keys sorted.
func AsObject(v interface{}) (*Object, bool) {
	switch x := v.(type) {
	case *Object:
		return x, x != nil
	case map[string]interface{}:
		o := &Object{values: x, keys: make([]string, 0, len(x))}
		for k := range x {
			o.keys = append(o.keys, k)
		}
		sort.Strings(o.keys)
		return o, true
	case map[string]string:
		o := NewObject()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			o.Set(k, x[k])
		}
		return o, true
	}
	return nil, false
}

// DecodeOrdered decodes JSON keeping object key order. Objects become
// *Object, arrays []interface{} and numbers float64.
func DecodeOrdered(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []interface{}{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return tok, nil
	}
}

// Plain converts ordered objects inside v into plain maps, recursively
func Plain(v interface{}) interface{} {
	switch x := v.(type) {
	case *Object:
		if x == nil {
			return nil
		}
		out := make(map[string]interface{}, len(x.keys))
		for _, k := range x.keys {
			out[k] = Plain(x.values[k])
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = Plain(val)
		}
		return out
	case map[string]string:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = val
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = Plain(val)
		}
		return out
	}
	return v
}
