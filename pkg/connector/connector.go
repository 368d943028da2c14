// Package connector defines the transport contract the network model is
// built on, together with the ordered result set, the silent command
// pruning executor and the connector factory keyed by "<OS>-<PROVIDER>".
package connector

import (
	"context"
	"strings"
	"time"

	"github.com/netapi-network/netapi/pkg/entity"
)

// Connector executes commands against a device
type Connector interface {
	// Meta carries Name "device" and the dispatch tag in Implementation
	Meta() *entity.Metadata
	Run(ctx context.Context, commands []string, opts RunOptions) (Results, error)
}

// RunOptions tunes a single Run call
type RunOptions struct {
	// Silent drops commands the device rejects and retries the rest
	Silent bool
	// Encoding asks structured transports for "json" (default) or "text"
	Encoding string
}

// Result is the raw output of one command. A pruned command keeps its
// place with a nil Output.
type Result struct {
	Command string
	Output  interface{}
}

// Results holds command outputs in submission order
type Results []Result

// Get returns the output of cmd
func (r Results) Get(cmd string) (interface{}, bool) {
	for _, res := range r {
		if res.Command == cmd {
			return res.Output, true
		}
	}
	return nil, false
}

// First returns the output of the first command
func (r Results) First() interface{} {
	if len(r) == 0 {
		return nil
	}
	return r[0].Output
}

// Commands returns the commands in submission order
func (r Results) Commands() []string {
	out := make([]string, len(r))
	for i, res := range r {
		out[i] = res.Command
	}
	return out
}

// Outputs returns the non-nil outputs in submission order
func (r Results) Outputs() []interface{} {
	out := make([]interface{}, 0, len(r))
	for _, res := range r {
		if res.Output != nil {
			out = append(out, res.Output)
		}
	}
	return out
}

// Config holds what a transport needs to reach a device
type Config struct {
	Name      string
	Host      string
	Port      int
	Username  string
	Password  string
	Transport string
	Timeout   time.Duration
	Netns     string
	// Insecure skips TLS and SSH host key verification
	Insecure bool
	// KnownHosts is an OpenSSH known_hosts file used when Insecure is false
	KnownHosts string
}

// Tag builds the dispatch tag for an OS and provider, e.g. EOS-PYEAPI
func Tag(os, provider string) string {
	return strings.ToUpper(os) + "-" + strings.ToUpper(provider)
}

// Base carries the metadata every connector exposes
type Base struct {
	meta *entity.Metadata
	cfg  Config
}

// NewBase creates connector metadata for a dispatch tag
func NewBase(tag string, cfg Config) Base {
	meta := entity.NewMetadata(entity.DeviceKind, entity.TypeEntity)
	meta.Implementation = tag
	meta.Parent = cfg.Name
	return Base{meta: meta, cfg: cfg}
}

// Meta returns the connector metadata
func (b *Base) Meta() *entity.Metadata { return b.meta }

// Config returns the connection settings
func (b *Base) Config() Config { return b.cfg }

// Timeout returns the configured timeout or def when unset
func (b *Base) Timeout(def time.Duration) time.Duration {
	if b.cfg.Timeout > 0 {
		return b.cfg.Timeout
	}
	return def
}

// Addr returns host:port using def when no port is set
func (b *Base) Addr(def int) string {
	port := b.cfg.Port
	if port == 0 {
		port = def
	}
	return joinHostPort(b.cfg.Host, port)
}
