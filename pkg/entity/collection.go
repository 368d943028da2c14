package entity

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/netapi-network/netapi/pkg/util"
)

// Item is a keyed collection member
type Item[K comparable, V Entity] struct {
	Key   K
	Value V
}

// Collection is an insertion-ordered keyed set of entities of one kind.
// Re-inserting an existing key replaces the value in place.
type Collection[K comparable, V Entity] struct {
	kind  string
	meta  *Metadata
	keys  []K
	items map[K]V
}

// NewCollection creates a collection for members of kind and inserts items
func NewCollection[K comparable, V Entity](kind string, items ...Item[K, V]) (*Collection[K, V], error) {
	c := &Collection[K, V]{
		kind:  kind,
		meta:  NewMetadata(kind+"s", TypeCollection),
		items: make(map[K]V),
	}
	for _, it := range items {
		if err := c.Insert(it.Key, it.Value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Kind returns the member kind
func (c *Collection[K, V]) Kind() string { return c.kind }

// Meta returns the collection metadata
func (c *Collection[K, V]) Meta() *Metadata { return c.meta }

// Insert adds or replaces a member. The value must be a valid entity of
// the collection's kind.
func (c *Collection[K, V]) Insert(key K, value V) error {
	if isNil(value) || value.Kind() != c.kind {
		return &util.CollectionMembershipError{Kind: c.kind, Value: value}
	}
	if err := value.Validate(); err != nil {
		return err
	}
	if _, exists := c.items[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.items[key] = value
	c.meta.Touch()
	return nil
}

// Get returns the member stored under key
func (c *Collection[K, V]) Get(key K) (V, bool) {
	v, ok := c.items[key]
	return v, ok
}

// Delete removes a member, reporting whether it was present
func (c *Collection[K, V]) Delete(key K) bool {
	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	c.meta.Touch()
	return true
}

// Len returns the number of members
func (c *Collection[K, V]) Len() int { return len(c.keys) }

// Keys returns the keys in insertion order
func (c *Collection[K, V]) Keys() []K {
	return append([]K(nil), c.keys...)
}

// Values returns the members in insertion order
func (c *Collection[K, V]) Values() []V {
	out := make([]V, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.items[k]
	}
	return out
}

// Range calls fn for each member in order until fn returns false
func (c *Collection[K, V]) Range(fn func(K, V) bool) {
	for _, k := range c.keys {
		if !fn(k, c.items[k]) {
			return
		}
	}
}

// Clear removes every member
func (c *Collection[K, V]) Clear() {
	c.keys = nil
	c.items = make(map[K]V)
	c.meta.Touch()
}

// String lists the keys only, e.g. Vlans(1, 70, 177)
func (c *Collection[K, V]) String() string {
	parts := make([]string, len(c.keys))
	for i, k := range c.keys {
		parts[i] = fmt.Sprint(k)
	}
	return util.CapitalizeFirst(c.kind) + "s(" + strings.Join(parts, ", ") + ")"
}

// CanonicalMapping exports every member keyed by its key text. Map order is
// not kept; CanonicalItems keeps it.
func (c *Collection[K, V]) CanonicalMapping() (map[string]interface{}, error) {
	items, err := c.CanonicalItems()
	if err != nil {
		return nil, err
	}
	return items.Map(), nil
}

// CanonicalItems exports every member in insertion order
func (c *Collection[K, V]) CanonicalItems() (Ordered, error) {
	out := make(Ordered, 0, len(c.keys))
	for _, k := range c.keys {
		m, err := c.items[k].CanonicalMapping()
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Key: fmt.Sprint(k), Value: m})
	}
	return out, nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return rv.IsNil()
	}
	return false
}
