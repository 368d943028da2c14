// Package sonic turns SONiC Redis database reads (SONIC-REDIS) into
// canonical entities.
//
// Commands name a database and a key pattern, e.g. "CONFIG_DB PORT|*".
// Each reply maps the matching Redis keys to their field hashes. CONFIG_DB
// and STATE_DB keys separate their parts with "|", APPL_DB keys with ":".
package sonic

import (
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the implementation served by this package
const Tag = "SONIC-REDIS"

// Register adds the SONiC drivers to r. SONiC keeps no VRRP state in
// Redis, so VRRP retrievals stay unimplemented.
func Register(r *net.Registry) {
	r.Register(net.KindInterface, Tag, InterfaceDriver{})
	r.Register(net.KindVlan, Tag, VlanDriver{})
	r.Register(net.KindRoute, Tag, RouteDriver{})
	r.Register(net.KindFacts, Tag, FactsDriver{})
}

// entry is one Redis hash of a reply
type entry struct {
	table string
	parts []string
	hash  interface{}
}

// entries splits every key of every reply into table and key parts
func entries(raw connector.Results) []entry {
	var out []entry
	for _, res := range raw {
		for _, key := range payload.Keys(res.Output) {
			sep := "|"
			if strings.HasPrefix(res.Command, "APPL_DB") {
				sep = ":"
			}
			table, rest, _ := strings.Cut(key, sep)
			out = append(out, entry{
				table: table,
				parts: strings.Split(rest, sep),
				hash:  payload.Get(res.Output, key),
			})
		}
	}
	return out
}

// empty reports whether no command matched a key
func empty(raw connector.Results) bool {
	for _, res := range raw {
		if !payload.Empty(res.Output) {
			return false
		}
	}
	return true
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

// field returns a non-empty hash field or nil
func field(hash interface{}, name string) interface{} {
	s := strings.TrimSpace(payload.Text(payload.Get(hash, name)))
	if s == "" {
		return nil
	}
	return s
}

// number reads a numeric hash field; Redis stores every value as text
func number(hash interface{}, name string) interface{} {
	v := field(hash, name)
	if v == nil {
		return nil
	}
	f, err := units.ToFloat(v)
	if err != nil {
		return nil
	}
	return f
}
