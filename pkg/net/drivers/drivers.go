// Package drivers assembles the registry of every vendor parser shipped
// with netapi.
package drivers

import (
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/eos"
	"github.com/netapi-network/netapi/pkg/net/nxos"
	"github.com/netapi-network/netapi/pkg/net/sonic"
)

// NewRegistry returns a registry holding the EOS, NX-OS and SONiC drivers
func NewRegistry() *net.Registry {
	r := net.NewRegistry()
	eos.Register(r)
	nxos.Register(r)
	sonic.Register(r)
	return r
}
