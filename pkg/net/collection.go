package net

import (
	"context"
	"fmt"

	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/util"
)

// Entity kinds
const (
	KindInterface = "interface"
	KindVlan      = "vlan"
	KindVrrp      = "vrrp"
	KindRoute     = "route"
	KindFacts     = "facts"
)

// Fields is a canonical field mapping as produced by a parser
type Fields = map[string]interface{}

// Record is one parsed collection member under its identity key
type Record[K comparable] struct {
	Key    K
	Fields Fields
}

// retrieval re-runs the commands an entity or collection was built from
// and returns the parsed data with the commands used
type retrieval[T any] func(ctx context.Context) (T, []string, error)

// Member is an entity that can be updated in place and bound to a device
type Member interface {
	entity.Entity
	Update(fields Fields) error
	Bind(d entity.Device, cmds []string) error
	Connector() entity.Device
}

func refreshEntity(ctx context.Context, e Member, fetch retrieval[Fields]) error {
	if fetch == nil || e.Connector() == nil {
		return fmt.Errorf("refresh %s: %w", e.Kind(), util.ErrNoConnector)
	}
	fields, cmds, err := fetch(ctx)
	if err != nil {
		return err
	}
	if err := e.Update(fields); err != nil {
		return err
	}
	if err := e.Bind(e.Connector(), cmds); err != nil {
		return err
	}
	e.Meta().Collected()
	return nil
}

// Collection is an ordered keyed set of entities that remembers the device
// and commands it was retrieved with
type Collection[K comparable, V Member] struct {
	*entity.Collection[K, V]

	GetCmd []string `json:"get_cmd"`

	device entity.Device
	create func() V
	fetch  retrieval[[]Record[K]]
}

func newCollection[K comparable, V Member](kind string, create func() V, items ...entity.Item[K, V]) (*Collection[K, V], error) {
	c, err := entity.NewCollection(kind, items...)
	if err != nil {
		return nil, err
	}
	return &Collection[K, V]{Collection: c, create: create}, nil
}

// Connector returns the device the collection was retrieved from
func (c *Collection[K, V]) Connector() entity.Device { return c.device }

// AttachConnector stores a non-owning device reference
func (c *Collection[K, V]) AttachConnector(d entity.Device) error {
	if err := entity.CheckDevice(d); err != nil {
		return err
	}
	c.device = d
	c.Meta().Implementation = d.Meta().Implementation
	return nil
}

// Load builds or updates members from parsed records. Members whose key is
// no longer reported are removed. Every record is first built on a fresh
// member; if any record fails, the collection is left unchanged.
func (c *Collection[K, V]) Load(records []Record[K], cmds []string) error {
	staged := make([]V, len(records))
	for i, r := range records {
		v := c.create()
		if err := v.Update(r.Fields); err != nil {
			return err
		}
		if err := v.Validate(); err != nil {
			return err
		}
		staged[i] = v
	}

	seen := make(map[K]bool, len(records))
	for i, r := range records {
		seen[r.Key] = true
		v, ok := c.Get(r.Key)
		if ok {
			if err := v.Update(r.Fields); err != nil {
				return err
			}
		} else {
			v = staged[i]
		}
		if c.device != nil {
			if err := v.Bind(c.device, cmds); err != nil {
				return err
			}
		}
		v.Meta().Parent = c.Meta().ID().String()
		if err := c.Insert(r.Key, v); err != nil {
			return err
		}
	}
	for _, k := range c.Keys() {
		if !seen[k] {
			c.Delete(k)
		}
	}
	c.GetCmd = append([]string(nil), cmds...)
	return nil
}

// Refresh re-runs the retrieval and updates members in place
func (c *Collection[K, V]) Refresh(ctx context.Context) error {
	if c.fetch == nil || c.device == nil {
		return fmt.Errorf("refresh %ss: %w", c.Kind(), util.ErrNoConnector)
	}
	records, cmds, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	if err := c.Load(records, cmds); err != nil {
		return err
	}
	c.Meta().Collected()
	return nil
}
