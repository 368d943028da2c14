package probe

import (
	"fmt"
	"sort"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/util"
)

// Implementation tags served by the default registry
const (
	TagEOS        = "EOS-PYEAPI"
	TagNXOS       = "NXOS-NXAPI"
	TagIOS        = "IOS-NETMIKO"
	TagXE         = "XE-NETMIKO"
	TagXR         = "XR-NETMIKO"
	TagJunos      = "JUNOS-PYEZ"
	TagLinuxLocal = "LINUX-SUBPROCESS"
	TagLinuxSSH   = "LINUX-PARAMIKO"
	TagLinuxICMP  = "LINUX-PROBING"
)

// Implementation is how one connector type pings: the command syntax, how
// the text is pulled out of the raw result and how it is parsed
type Implementation struct {
	Command CommandFunc
	Extract func(raw connector.Results) (string, error)
	Parser  *Parser
	Options connector.RunOptions
}

// Registry maps implementation tags to ping implementations
type Registry struct {
	impls map[string]*Implementation
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{impls: make(map[string]*Implementation)}
}

// DefaultRegistry returns a registry serving every supported tag
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TagEOS, Implementation{Command: EOSCommand, Extract: eapiMessages, Parser: IPUtils})
	r.Register(TagNXOS, Implementation{
		Command: NXOSCommand,
		Extract: firstText,
		Parser:  NXOS,
		Options: connector.RunOptions{Encoding: "text"},
	})
	r.Register(TagIOS, Implementation{Command: IOSCommand, Extract: firstText, Parser: Cisco})
	r.Register(TagXE, Implementation{Command: IOSCommand, Extract: firstText, Parser: Cisco})
	r.Register(TagXR, Implementation{Command: XRCommand, Extract: firstText, Parser: Cisco})
	r.Register(TagJunos, Implementation{Command: JunosCommand, Extract: firstText, Parser: IPUtils})
	r.Register(TagLinuxLocal, Implementation{Command: LinuxCommand, Extract: firstText, Parser: IPUtils})
	r.Register(TagLinuxSSH, Implementation{Command: LinuxCommand, Extract: firstText, Parser: IPUtils})
	r.Register(TagLinuxICMP, Implementation{Command: LinuxCommand, Extract: firstText, Parser: IPUtils})
	return r
}

// Register adds an implementation. Registering a tag twice or an
// incomplete implementation panics.
func (r *Registry) Register(tag string, impl Implementation) {
	if impl.Command == nil || impl.Extract == nil || impl.Parser == nil {
		panic(fmt.Sprintf("probe: incomplete implementation for %s", tag))
	}
	if _, dup := r.impls[tag]; dup {
		panic(fmt.Sprintf("probe: %s registered twice", tag))
	}
	r.impls[tag] = &impl
}

// Lookup returns the implementation serving tag
func (r *Registry) Lookup(tag string) (*Implementation, error) {
	impl, ok := r.impls[tag]
	if !ok {
		return nil, util.NewUnimplementedError(Kind, tag)
	}
	return impl, nil
}

// Tags lists the registered tags in sorted order
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.impls))
	for t := range r.impls {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// eapiMessages reads the text eAPI returns for commands without a JSON
// model: {"messages": ["..."]}
func eapiMessages(raw connector.Results) (string, error) {
	msgs := payload.List(payload.Get(raw.First(), "messages"))
	if len(msgs) == 0 {
		return "", util.NewParseError(TagEOS, "no data to be parsed", raw.First())
	}
	text := payload.Text(msgs[0])
	if text == "" {
		return "", util.NewParseError(TagEOS, "no data to be parsed", raw.First())
	}
	return text, nil
}

func firstText(raw connector.Results) (string, error) {
	text := payload.Text(raw.First())
	if text == "" {
		return "", util.NewParseError(Kind, "no data to be parsed", raw.First())
	}
	return text, nil
}
