// Package probe runs ping probes through device connectors and reports the
// outcome as a canonical Ping entity. The command syntax and the output
// parser are chosen by the connector's implementation tag.
package probe

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Kind is the metadata name of ping entities
const Kind = "ping"

// Ping parameter defaults
const (
	DefaultCount    = 5
	DefaultTimeout  = 2
	DefaultSize     = 692
	DefaultInterval = 1.0
)

// Ping holds the parameters of a ping probe and the result of its last
// execution
type Ping struct {
	entity.Base

	Target        string      `json:"target"`
	TargetIP      *netip.Addr `json:"target_ip"`
	TargetName    *string     `json:"target_name"`
	ResolveTarget bool        `json:"resolve_target"`
	Source        *string     `json:"source"`
	SourceIP      *netip.Addr `json:"source_ip"`
	Instance      *string     `json:"instance"`
	Count         int         `json:"count"`
	Timeout       int         `json:"timeout"`
	Size          int         `json:"size"`
	DFBit         bool        `json:"df_bit"`
	Interval      float64     `json:"interval"`
	TTL           *int        `json:"ttl"`
	Result        *Result     `json:"result"`

	// PingCmd is the generated command, kept so re-executions reuse it
	PingCmd string `json:"ping_cmd"`

	device connector.Connector
	impl   *Implementation
}

var pingSchema = entity.NewSchema(Kind,
	entity.Field[Ping]{Name: "target", Set: entity.String(func(p *Ping) *string { return &p.Target })},
	entity.Field[Ping]{Name: "target_ip", Set: entity.Optional(func(p *Ping) **netip.Addr { return &p.TargetIP }, units.ToIPAddress)},
	entity.Field[Ping]{Name: "target_name", Set: entity.OptString(func(p *Ping) **string { return &p.TargetName })},
	entity.Field[Ping]{Name: "resolve_target", Set: entity.Bool(func(p *Ping) *bool { return &p.ResolveTarget })},
	entity.Field[Ping]{Name: "source", Set: entity.OptString(func(p *Ping) **string { return &p.Source })},
	entity.Field[Ping]{Name: "source_ip", Set: entity.Optional(func(p *Ping) **netip.Addr { return &p.SourceIP }, units.ToIPAddress)},
	entity.Field[Ping]{Name: "instance", Set: entity.OptString(func(p *Ping) **string { return &p.Instance })},
	entity.Field[Ping]{Name: "count", Set: entity.Int(func(p *Ping) *int { return &p.Count })},
	entity.Field[Ping]{Name: "timeout", Set: entity.Int(func(p *Ping) *int { return &p.Timeout })},
	entity.Field[Ping]{Name: "size", Set: entity.Int(func(p *Ping) *int { return &p.Size })},
	entity.Field[Ping]{Name: "df_bit", Set: entity.Bool(func(p *Ping) *bool { return &p.DFBit })},
	entity.Field[Ping]{Name: "interval", Set: entity.Float(func(p *Ping) *float64 { return &p.Interval })},
	entity.Field[Ping]{Name: "ttl", Set: entity.OptInt(func(p *Ping) **int { return &p.TTL })},
	entity.Field[Ping]{Name: "result", Set: entity.Record(func(p *Ping) **Result { return &p.Result }, resultSchema)},
)

// NewPing creates a ping of target with default parameters
func NewPing(target string) *Ping {
	return &Ping{
		Base:     entity.NewBase(Kind),
		Target:   target,
		Count:    DefaultCount,
		Timeout:  DefaultTimeout,
		Size:     DefaultSize,
		Interval: DefaultInterval,
	}
}

// BuildPing creates a ping from canonical fields. Parameters not given
// keep their defaults.
func BuildPing(fields map[string]interface{}) (*Ping, error) {
	p := NewPing("")
	if err := p.Update(fields); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Kind returns "ping"
func (p *Ping) Kind() string { return Kind }

// Set assigns one canonical field
func (p *Ping) Set(field string, value interface{}) error {
	return pingSchema.Set(p, field, value)
}

// Update assigns several canonical fields
func (p *Ping) Update(fields map[string]interface{}) error {
	return pingSchema.Apply(p, fields)
}

// Validate checks the current parameters and result
func (p *Ping) Validate() error {
	b := &util.ValidationBuilder{}
	b.Add(strings.TrimSpace(p.Target) != "", "target is required")
	b.Add(p.Count >= 0, fmt.Sprintf("count must not be negative: %d", p.Count))
	b.Add(p.Timeout >= 0, fmt.Sprintf("timeout must not be negative: %d", p.Timeout))
	b.Add(p.Size >= 0, fmt.Sprintf("size must not be negative: %d", p.Size))
	b.Add(p.Interval >= 0, fmt.Sprintf("interval must not be negative: %v", p.Interval))
	if p.TTL != nil {
		b.Add(*p.TTL >= 0, fmt.Sprintf("ttl must not be negative: %d", *p.TTL))
	}
	if err := b.Build(); err != nil {
		return err
	}
	if p.Result != nil {
		return p.Result.Validate()
	}
	return nil
}

// CanonicalMapping exports the ping
func (p *Ping) CanonicalMapping() (map[string]interface{}, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(p), nil
}

// Bind attaches the connector and the implementation serving its tag
func (p *Ping) Bind(c connector.Connector, impl *Implementation) error {
	if err := p.Base.Bind(c, p.GetCmd); err != nil {
		return err
	}
	p.device = c
	p.impl = impl
	return nil
}

// target is the address the command pings
func (p *Ping) target() string {
	if p.ResolveTarget && p.TargetIP != nil {
		return p.TargetIP.String()
	}
	return p.Target
}

// Command generates the ping command of the bound implementation
func (p *Ping) Command() (string, error) {
	if p.impl == nil {
		return "", fmt.Errorf("ping %s: %w", p.Target, util.ErrNoConnector)
	}
	return p.impl.Command(p), nil
}

// Execute runs the ping and replaces the result. Thresholds are loss
// percentages; a zero Thresholds applies the default bands. Executing
// again counts as a re-collection of the entity.
func (p *Ping) Execute(ctx context.Context, th Thresholds) error {
	if p.device == nil || p.impl == nil {
		return fmt.Errorf("execute ping %s: %w", p.Target, util.ErrNoConnector)
	}
	if p.PingCmd == "" {
		cmd, err := p.Command()
		if err != nil {
			return err
		}
		p.PingCmd = cmd
	}
	executed := p.Result != nil
	tag := p.device.Meta().Implementation
	log := util.WithEntity(Kind, tag)

	log.Debugf("executing %q", p.PingCmd)
	raw, err := p.device.Run(ctx, []string{p.PingCmd}, p.impl.Options)
	if err != nil {
		return err
	}
	text, err := p.impl.Extract(raw)
	if err != nil {
		return err
	}
	result, err := p.impl.Parser.Parse(text, th)
	if err != nil {
		return err
	}
	if err := result.Validate(); err != nil {
		return err
	}

	p.Result = result
	p.GetCmd = []string{p.PingCmd}
	if executed {
		p.Meta().Collected()
	}
	log.WithField("target", p.Target).Debugf("ping %s: %d/%d received, status %s",
		p.target(), result.ProbesReceived, result.ProbesSent, result.status())
	return nil
}
