package sonic

import (
	"net/netip"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/util"
)

// RouteDriver reads the routes fpmsyncd programs into APPL_DB. The table
// only holds best paths, so every route is active; lookups resolve the
// longest matching prefix locally.
type RouteDriver struct{}

const defaultInstance = "default"

// EntityCommands returns the route table of q.Instance
func (RouteDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Dest == "" {
		return nil, util.NewFieldError(net.KindRoute, "dest", q.Dest, util.NewValidationError("destination is required"))
	}
	if _, err := destPrefix(q.Dest); err != nil {
		return nil, util.NewFieldError(net.KindRoute, "dest", q.Dest, err)
	}
	return routeCommands(q.Instance), nil
}

// CollectionCommands returns the route table of q.Instance, or of every
// instance
func (RouteDriver) CollectionCommands(q net.Query) ([]string, error) {
	if q.Protocol != "" {
		if _, err := net.ResolveProtocol(q.Protocol); err != nil {
			return nil, util.NewFieldError(net.KindRoute, "protocol", q.Protocol, err)
		}
	}
	return routeCommands(q.Instance), nil
}

func routeCommands(instance string) []string {
	if instance != "" && instance != defaultInstance {
		return []string{"APPL_DB ROUTE_TABLE:" + instance + ":*"}
	}
	return []string{"APPL_DB ROUTE_TABLE:*"}
}

type routeEntry struct {
	instance string
	network  netip.Prefix
	hash     interface{}
}

// Parse returns the longest prefix in q.Instance covering q.Dest
func (RouteDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	dest, err := destPrefix(q.Dest)
	if err != nil {
		return nil, parseError(net.KindRoute, err.Error(), raw)
	}
	instance := q.Instance
	if instance == "" {
		instance = defaultInstance
	}
	var best *routeEntry
	for _, e := range routeEntries(raw) {
		if e.instance != instance || e.network.Bits() > dest.Bits() || !e.network.Contains(dest.Addr()) {
			continue
		}
		if best == nil || e.network.Bits() > best.network.Bits() {
			e := e
			best = &e
		}
	}
	if best == nil {
		util.WithEntity(net.KindRoute, Tag).WithField("dest", q.Dest).Info("no route information collected")
		return net.Fields{"dest": q.Dest, "active": false, "inactive_reason": "Route not found"}, nil
	}
	return constructRoute(*best, q.Dest), nil
}

// CollectorParse returns the routes keyed by (instance, network). Without
// q.Instance or q.VRFAll only the default instance is kept.
func (RouteDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[net.RouteKey], error) {
	var protocol string
	if q.Protocol != "" {
		protocol, _ = net.ResolveProtocol(q.Protocol)
	}
	instance := q.Instance
	if instance == "" && !q.VRFAll {
		instance = defaultInstance
	}
	var out []net.Record[net.RouteKey]
	for _, e := range routeEntries(raw) {
		if instance != "" && e.instance != instance {
			continue
		}
		fields := constructRoute(e, "")
		if protocol != "" && fields["protocol"] != protocol {
			continue
		}
		out = append(out, net.Record[net.RouteKey]{
			Key:    net.RouteKey{Instance: e.instance, Network: e.network},
			Fields: fields,
		})
	}
	return out, nil
}

// routeEntries parses the ROUTE_TABLE keys. VRF routes carry the VRF name
// ahead of the prefix; IPv6 prefixes contain the separator themselves.
func routeEntries(raw connector.Results) []routeEntry {
	var out []routeEntry
	for _, e := range entries(raw) {
		if e.table != "ROUTE_TABLE" {
			continue
		}
		rest := strings.Join(e.parts, ":")
		instance := defaultInstance
		if strings.HasPrefix(rest, "Vrf") || strings.HasPrefix(rest, "mgmt:") {
			instance, rest, _ = strings.Cut(rest, ":")
		}
		network, err := netip.ParsePrefix(rest)
		if err != nil {
			util.WithEntity(net.KindRoute, Tag).WithField("key", rest).Debug("skipping route with malformed prefix")
			continue
		}
		out = append(out, routeEntry{instance: instance, network: network.Masked(), hash: e.hash})
	}
	return out
}

func constructRoute(e routeEntry, dest string) net.Fields {
	network := e.network.String()
	if dest == "" {
		dest = network
	}

	var protocol interface{}
	if p := field(e.hash, "protocol"); p != nil {
		if canonical, err := net.ResolveProtocol(p.(string)); err == nil {
			protocol = canonical
		} else {
			util.WithEntity(net.KindRoute, Tag).WithField("protocol", p).Debug("unknown route protocol")
		}
	}

	var hops, ifnames []string
	if v := field(e.hash, "nexthop"); v != nil {
		hops = strings.Split(v.(string), ",")
	}
	if v := field(e.hash, "ifname"); v != nil {
		ifnames = strings.Split(v.(string), ",")
	}
	vias := []interface{}{}
	for i := 0; i < len(hops) || i < len(ifnames); i++ {
		via := map[string]interface{}{"interface": nil, "next_hop": nil}
		if i < len(ifnames) && ifnames[i] != "" {
			via["interface"] = ifnames[i]
		}
		if i < len(hops) {
			if addr, err := netip.ParseAddr(hops[i]); err == nil && !addr.IsUnspecified() {
				via["next_hop"] = hops[i]
			}
		}
		vias = append(vias, via)
	}

	return net.Fields{
		"dest":            dest,
		"instance":        e.instance,
		"network":         network,
		"active":          true,
		"inactive_reason": nil,
		"protocol":        protocol,
		"metric":          nil,
		"preference":      nil,
		"age":             nil,
		"tag":             nil,
		"vias":            vias,
		"extra_attributes": map[string]interface{}{
			"blackhole": field(e.hash, "blackhole") == "true",
			"weight":    field(e.hash, "weight"),
		},
	}
}

// destPrefix reads an address or prefix as a prefix; addresses become
// host prefixes
func destPrefix(dest string) (netip.Prefix, error) {
	if strings.Contains(dest, "/") {
		p, err := netip.ParsePrefix(dest)
		if err != nil {
			return netip.Prefix{}, util.NewValidationError("not a valid IP address: " + dest)
		}
		return p, nil
	}
	addr, err := netip.ParseAddr(dest)
	if err != nil {
		return netip.Prefix{}, util.NewValidationError("not a valid IP address: " + dest)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
