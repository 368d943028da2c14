// Package eos turns Arista eAPI replies (EOS-PYEAPI) into canonical
// entities.
//
// Every parser works on the decoded JSON of one or more "show" commands.
// Payloads keep the key order of the device reply, so when an entity
// command unexpectedly matches several records the last one in the reply
// is used.
package eos

import (
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the implementation served by this package
const Tag = "EOS-PYEAPI"

// Register adds the EOS drivers to r
func Register(r *net.Registry) {
	r.Register(net.KindInterface, Tag, InterfaceDriver{})
	r.Register(net.KindVlan, Tag, VlanDriver{})
	r.Register(net.KindVrrp, Tag, VrrpDriver{})
	r.Register(net.KindRoute, Tag, RouteDriver{})
	r.Register(net.KindFacts, Tag, FactsDriver{})
}

func parseError(kind, reason string, raw interface{}) error {
	if res, ok := raw.(connector.Results); ok {
		plain := make(map[string]interface{}, len(res))
		for _, r := range res {
			plain[r.Command] = payload.Plain(r.Output)
		}
		raw = plain
	} else {
		raw = payload.Plain(raw)
	}
	return util.NewParseError(Tag+" "+kind, reason, raw)
}

func warnMultiple(kind string, matches int) {
	util.WithEntity(kind, Tag).WithField("matches", matches).Warn("multiple entities present, using the last one")
}

// getOr returns the value at key, def when the key is missing
func getOr(v interface{}, key string, def interface{}) interface{} {
	o := payload.Object(v)
	if o == nil {
		return def
	}
	if x, ok := o.Get(key); ok {
		return x
	}
	return def
}

// kilobytes converts a kB figure into bytes
func kilobytes(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	f, err := units.ToFloat(v)
	if err != nil {
		return v
	}
	return units.Bytes(f * 1000)
}
