package entity

import (
	"fmt"
	"sort"

	"github.com/netapi-network/netapi/pkg/util"
)

// SetFunc coerces a raw value and stores it on the target
type SetFunc[T any] func(target *T, value interface{}) error

// Field binds a canonical field name to its setter
type Field[T any] struct {
	Name string
	Set  SetFunc[T]
}

// Schema is the ordered field declaration of one record type. Apply sets
// fields in declaration order, so a field that others depend on (for
// example an admin state read by a status setter) is declared first.
type Schema[T any] struct {
	kind   string
	fields []Field[T]
	index  map[string]int
}

// NewSchema creates a schema for records of the given kind
func NewSchema[T any](kind string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{kind: kind, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("entity: duplicate field %q in %s schema", f.Name, kind))
		}
		s.index[f.Name] = i
	}
	return s
}

// Kind returns the record kind the schema describes
func (s *Schema[T]) Kind() string { return s.kind }

// Fields returns the field names in declaration order
func (s *Schema[T]) Fields() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the schema declares a field
func (s *Schema[T]) Has(field string) bool {
	_, ok := s.index[field]
	return ok
}

// Set coerces and assigns one field
func (s *Schema[T]) Set(target *T, field string, value interface{}) error {
	i, ok := s.index[field]
	if !ok {
		return util.NewFieldError(s.kind, field, value, fmt.Errorf("unknown field"))
	}
	if err := s.fields[i].Set(target, value); err != nil {
		return util.NewFieldError(s.kind, field, value, err)
	}
	return nil
}

// Apply assigns every field present in values, in declaration order. The
// fields are set on a copy of target that replaces it only when every field
// succeeds, so a failed Apply leaves target unchanged.
func (s *Schema[T]) Apply(target *T, values map[string]interface{}) error {
	var unknown []string
	for k := range values {
		if !s.Has(k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return util.NewFieldError(s.kind, unknown[0], values[unknown[0]], fmt.Errorf("unknown field"))
	}
	staged := *target
	for _, f := range s.fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := f.Set(&staged, v); err != nil {
			return util.NewFieldError(s.kind, f.Name, v, err)
		}
	}
	*target = staged
	return nil
}

// Build creates a zero record and applies values to it
func (s *Schema[T]) Build(values map[string]interface{}) (*T, error) {
	t := new(T)
	if err := s.Apply(t, values); err != nil {
		return nil, err
	}
	return t, nil
}
