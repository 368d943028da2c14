package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/metrics"
	"github.com/netapi-network/netapi/pkg/util"
)

// PingBuilder runs pings through connectors, choosing the implementation
// by the connector's tag
type PingBuilder struct {
	reg      *Registry
	resolver Resolver
	metrics  *metrics.Collector
}

// Option configures a PingBuilder
type Option func(*PingBuilder)

// WithResolver resolves targets through r instead of the system resolver
func WithResolver(r Resolver) Option {
	return func(b *PingBuilder) { b.resolver = r }
}

// WithMetrics records packet loss on m
func WithMetrics(m *metrics.Collector) Option {
	return func(b *PingBuilder) { b.metrics = m }
}

// NewPingBuilder creates a builder. A nil registry uses DefaultRegistry.
func NewPingBuilder(reg *Registry, opts ...Option) *PingBuilder {
	if reg == nil {
		reg = DefaultRegistry()
	}
	b := &PingBuilder{reg: reg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Get binds p to c, resolves the target when asked to and executes it
func (b *PingBuilder) Get(ctx context.Context, c connector.Connector, p *Ping, th Thresholds) (*Ping, error) {
	if c == nil {
		return nil, fmt.Errorf("ping %s: %w", p.Target, util.ErrNoConnector)
	}
	tag := c.Meta().Implementation
	impl, err := b.reg.Lookup(tag)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.ResolveTarget {
		if err := p.Resolve(ctx, b.resolver); err != nil {
			return nil, err
		}
	}
	if err := p.Bind(c, impl); err != nil {
		return nil, err
	}
	if err := b.Execute(ctx, p, th); err != nil {
		return nil, err
	}
	return p, nil
}

// Execute re-runs a bound ping and records its packet loss
func (b *PingBuilder) Execute(ctx context.Context, p *Ping, th Thresholds) error {
	if err := p.Execute(ctx, th); err != nil {
		if errors.Is(err, util.ErrParseFailed) {
			b.metrics.ParseError(Kind, p.Meta().Implementation)
		}
		return err
	}
	b.metrics.PacketLoss(p.Meta().Implementation, p.Target, p.Result.PacketLoss)
	return nil
}
