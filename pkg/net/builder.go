package net

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/metrics"
	"github.com/netapi-network/netapi/pkg/util"
)

// Builder retrieves canonical entities from connectors. The driver is
// chosen by the connector's implementation tag, so the same call returns
// the same entity shape for every vendor.
type Builder struct {
	reg     *Registry
	metrics *metrics.Collector
}

// Option configures a Builder
type Option func(*Builder)

// WithMetrics records retrievals on m
func WithMetrics(m *metrics.Collector) Option {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder creates a builder dispatching through reg
func NewBuilder(reg *Registry, opts ...Option) *Builder {
	b := &Builder{reg: reg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Interface retrieves the interface named q.Name
func (b *Builder) Interface(ctx context.Context, c connector.Connector, q Query) (*Interface, error) {
	i := NewInterface()
	i.fetch = b.fetchEntity(c, KindInterface, q)
	if err := build(ctx, i, c, i.fetch); err != nil {
		return nil, err
	}
	return i, nil
}

// Interfaces retrieves every interface, or those in q.Names
func (b *Builder) Interfaces(ctx context.Context, c connector.Connector, q Query) (*Interfaces, error) {
	col, err := NewInterfaces()
	if err != nil {
		return nil, err
	}
	return load(ctx, col, c, fetchCollection[string](b, c, KindInterface, q))
}

// Vlan retrieves the VLAN q.ID
func (b *Builder) Vlan(ctx context.Context, c connector.Connector, q Query) (*Vlan, error) {
	v := NewVlan()
	v.fetch = b.fetchEntity(c, KindVlan, q)
	if err := build(ctx, v, c, v.fetch); err != nil {
		return nil, err
	}
	return v, nil
}

// Vlans retrieves every VLAN, or those in q.IDs or q.Range
func (b *Builder) Vlans(ctx context.Context, c connector.Connector, q Query) (*Vlans, error) {
	col, err := NewVlans()
	if err != nil {
		return nil, err
	}
	return load(ctx, col, c, fetchCollection[int](b, c, KindVlan, q))
}

// Vrrp retrieves VRRP group q.Group, optionally on q.Interface or in
// q.Instance
func (b *Builder) Vrrp(ctx context.Context, c connector.Connector, q Query) (*Vrrp, error) {
	v := NewVrrp()
	v.fetch = b.fetchEntity(c, KindVrrp, q)
	if err := build(ctx, v, c, v.fetch); err != nil {
		return nil, err
	}
	return v, nil
}

// Vrrps retrieves every VRRP group, optionally of one interface or instance
func (b *Builder) Vrrps(ctx context.Context, c connector.Connector, q Query) (*Vrrps, error) {
	col, err := NewVrrps()
	if err != nil {
		return nil, err
	}
	return load(ctx, col, c, fetchCollection[VrrpKey](b, c, KindVrrp, q))
}

// Route resolves q.Dest in q.Instance. A destination without a route
// yields an inactive route rather than an error.
func (b *Builder) Route(ctx context.Context, c connector.Connector, q Query) (*Route, error) {
	r := NewRoute()
	r.fetch = b.fetchEntity(c, KindRoute, q)
	if err := build(ctx, r, c, r.fetch); err != nil {
		return nil, err
	}
	return r, nil
}

// Routes retrieves the routing table, optionally of one instance and
// protocol
func (b *Builder) Routes(ctx context.Context, c connector.Connector, q Query) (*Routes, error) {
	col, err := NewRoutes()
	if err != nil {
		return nil, err
	}
	return load(ctx, col, c, fetchCollection[RouteKey](b, c, KindRoute, q))
}

// Facts retrieves the device facts
func (b *Builder) Facts(ctx context.Context, c connector.Connector) (*Facts, error) {
	f := NewFacts()
	f.fetch = b.fetchEntity(c, KindFacts, Query{})
	if err := build(ctx, f, c, f.fetch); err != nil {
		return nil, err
	}
	return f, nil
}

func build(ctx context.Context, e Member, c connector.Connector, fetch retrieval[Fields]) error {
	fields, cmds, err := fetch(ctx)
	if err != nil {
		return err
	}
	if err := e.Update(fields); err != nil {
		return err
	}
	return e.Bind(c, cmds)
}

func load[K comparable, V Member](ctx context.Context, col *Collection[K, V], c connector.Connector, fetch retrieval[[]Record[K]]) (*Collection[K, V], error) {
	if c == nil {
		return nil, fmt.Errorf("retrieve %ss: %w", col.Kind(), util.ErrNoConnector)
	}
	if err := col.AttachConnector(c); err != nil {
		return nil, err
	}
	col.fetch = fetch
	records, cmds, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := col.Load(records, cmds); err != nil {
		return nil, err
	}
	return col, nil
}

func (b *Builder) fetchEntity(c connector.Connector, kind string, q Query) retrieval[Fields] {
	return func(ctx context.Context) (Fields, []string, error) {
		if c == nil {
			return nil, nil, fmt.Errorf("retrieve %s: %w", kind, util.ErrNoConnector)
		}
		tag := c.Meta().Implementation
		start := time.Now()

		fields, cmds, err := func() (Fields, []string, error) {
			d, err := entityDriver(b.reg, kind, tag)
			if err != nil {
				return nil, nil, err
			}
			cmds, err := d.EntityCommands(q)
			if err != nil {
				return nil, nil, err
			}
			util.WithEntity(kind, tag).Debugf("retrieving %s: %v", kind, cmds)
			raw, err := c.Run(ctx, cmds, runOptions(d))
			if err != nil {
				return nil, cmds, err
			}
			fields, err := d.Parse(raw, q)
			return fields, cmds, err
		}()

		b.observe(kind, tag, metrics.PathEntity, start, err)
		return fields, cmds, err
	}
}

func fetchCollection[K comparable](b *Builder, c connector.Connector, kind string, q Query) retrieval[[]Record[K]] {
	return func(ctx context.Context) ([]Record[K], []string, error) {
		tag := c.Meta().Implementation
		start := time.Now()

		records, cmds, err := func() ([]Record[K], []string, error) {
			d, err := collectionDriver[K](b.reg, kind, tag)
			if err != nil {
				return nil, nil, err
			}
			cmds, err := d.CollectionCommands(q)
			if err != nil {
				return nil, nil, err
			}
			util.WithEntity(kind, tag).Debugf("retrieving %s collection: %v", kind, cmds)
			raw, err := c.Run(ctx, cmds, runOptions(d))
			if err != nil {
				return nil, cmds, err
			}
			records, err := d.CollectorParse(raw, q)
			return records, cmds, err
		}()

		b.observe(kind, tag, metrics.PathCollection, start, err)
		return records, cmds, err
	}
}

func (b *Builder) observe(kind, tag, path string, start time.Time, err error) {
	if errors.Is(err, util.ErrParseFailed) {
		b.metrics.ParseError(kind, tag)
	}
	b.metrics.ObserveRetrieval(kind, tag, path, resultLabel(err), time.Since(start))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, util.ErrUnimplemented):
		return "unimplemented"
	case errors.Is(err, util.ErrParseFailed):
		return "parse_error"
	case errors.Is(err, util.ErrValidationFailed):
		return "validation_error"
	}
	return "error"
}
