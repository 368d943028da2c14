// Package payload navigates decoded vendor replies. Replies are ordered
// objects (*connector.Object), plain maps, lists and scalars; every helper
// returns nil instead of failing when the shape does not match, leaving
// the decision to the parser.
package payload

import (
	"github.com/netapi-network/netapi/pkg/connector"
)

// Object views v as an ordered object, nil when v is not one
func Object(v interface{}) *connector.Object {
	o, ok := connector.AsObject(v)
	if !ok {
		return nil
	}
	return o
}

// Get walks keys through nested objects
func Get(v interface{}, keys ...string) interface{} {
	for _, k := range keys {
		o := Object(v)
		if o == nil {
			return nil
		}
		v, _ = o.Get(k)
	}
	return v
}

// Keys returns the keys of the object at v in document order
func Keys(v interface{}) []string {
	o := Object(v)
	if o == nil {
		return nil
	}
	return o.Keys()
}

// List returns v as a list. A single object becomes a one-element list,
// which is how NX-API reports a table with one row.
func List(v interface{}) []interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []interface{}:
		return x
	}
	if Object(v) != nil {
		return []interface{}{v}
	}
	return nil
}

// Empty reports whether v is nil or an empty object, list or string
func Empty(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []interface{}:
		return len(x) == 0
	}
	if o := Object(v); o != nil {
		return o.Len() == 0
	}
	return false
}

// Plain converts v into plain maps and lists
func Plain(v interface{}) interface{} {
	return connector.Plain(v)
}

// Map returns the object at v as a plain map, nil when v is not an object
func Map(v interface{}) map[string]interface{} {
	if Object(v) == nil {
		return nil
	}
	m, _ := connector.Plain(v).(map[string]interface{})
	return m
}

// Text returns v when it is a string, "" otherwise
func Text(v interface{}) string {
	s, _ := v.(string)
	return s
}
