// Package nxos turns Cisco NX-API replies (NXOS-NXAPI) into canonical
// entities.
//
// NX-API wraps every table as TABLE_<name>.ROW_<name>, where ROW_<name> is
// a single object when the table has one row and a list otherwise. Most
// numbers arrive as strings.
package nxos

import (
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the implementation served by this package
const Tag = "NXOS-NXAPI"

// Register adds the NX-OS drivers to r
func Register(r *net.Registry) {
	r.Register(net.KindInterface, Tag, InterfaceDriver{})
	r.Register(net.KindVlan, Tag, VlanDriver{})
	r.Register(net.KindVrrp, Tag, VrrpDriver{})
	r.Register(net.KindRoute, Tag, RouteDriver{})
	r.Register(net.KindFacts, Tag, FactsDriver{})
}

// rows returns the rows of TABLE_<name> in v
func rows(v interface{}, name string) []interface{} {
	return payload.List(payload.Get(v, "TABLE_"+name, "ROW_"+name))
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

// number reads a numeric field that may be sent as text; nil when absent
// or not numeric
func number(v interface{}) interface{} {
	if payload.Empty(v) {
		return nil
	}
	f, err := units.ToFloat(v)
	if err != nil {
		return nil
	}
	return f
}

// text returns a non-empty string field or nil
func text(v interface{}) interface{} {
	s := strings.TrimSpace(payload.Text(v))
	if s == "" {
		return nil
	}
	return s
}

// flag reads NX-OS booleans: "true", "enabled", "Enable", "yes"
func flag(v interface{}) interface{} {
	switch strings.ToLower(payload.Text(v)) {
	case "true", "enable", "enabled", "yes":
		return true
	case "false", "disable", "disabled", "no":
		return false
	}
	return nil
}

// memberList splits "Eth1/1, Eth1/2" style lists into normalized names
func memberList(v interface{}) []string {
	out := []string{}
	for _, name := range strings.FieldsFunc(payload.Text(v), func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, util.NormalizeInterfaceName(name))
	}
	return out
}
