package nxos

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// RouteDriver parses "show ip route"
type RouteDriver struct{}

// EntityCommands returns the lookup of q.Dest
func (RouteDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Dest == "" {
		return nil, util.NewFieldError(net.KindRoute, "dest", q.Dest, util.NewValidationError("destination is required"))
	}
	if q.Instance != "" {
		return []string{fmt.Sprintf("show ip route %s vrf %s", q.Dest, q.Instance)}, nil
	}
	return []string{"show ip route " + q.Dest}, nil
}

// CollectionCommands returns the routing table commands
func (RouteDriver) CollectionCommands(q net.Query) ([]string, error) {
	cmd := "show ip route"
	if q.Protocol != "" {
		cmd += " " + q.Protocol
	}
	switch {
	case q.Instance != "":
		cmd += " vrf " + q.Instance
	case q.VRFAll:
		cmd += " vrf all"
	}
	return []string{cmd}, nil
}

// routeEntry is one prefix row and the VRF it was reported in
type routeEntry struct {
	instance string
	row      interface{}
}

// Parse returns the route resolving q.Dest. A VRF without prefixes yields
// an inactive route.
func (RouteDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	entries, err := validateRoutes(raw)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		util.WithEntity(net.KindRoute, Tag).WithField("dest", q.Dest).Info("no route information collected")
		return net.Fields{"dest": q.Dest, "active": false, "inactive_reason": "Route not found"}, nil
	}
	if len(entries) > 1 {
		warnMultiple(net.KindRoute, len(entries))
	}
	last := entries[len(entries)-1]
	return constructRoute(last.instance, last.row, q.Dest), nil
}

// CollectorParse returns every route keyed by (instance, network)
func (RouteDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[net.RouteKey], error) {
	entries, err := validateRoutes(raw)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[net.RouteKey], 0, len(entries))
	for _, e := range entries {
		prefix := payload.Text(payload.Get(e.row, "ipprefix"))
		network, err := netip.ParsePrefix(prefix)
		if err != nil {
			return nil, parseError(net.KindRoute, "invalid prefix "+prefix, raw)
		}
		out = append(out, net.Record[net.RouteKey]{
			Key:    net.RouteKey{Instance: e.instance, Network: network},
			Fields: constructRoute(e.instance, e.row, ""),
		})
	}
	return out, nil
}

// validateRoutes flattens TABLE_vrf/TABLE_addrf/TABLE_prefix. A reply
// without any VRF is not a routing table.
func validateRoutes(raw connector.Results) ([]routeEntry, error) {
	vrfs := rows(raw.First(), "vrf")
	if len(vrfs) == 0 {
		return nil, parseError(net.KindRoute, "no data to be parsed", raw)
	}
	var entries []routeEntry
	for _, vrf := range vrfs {
		instance := payload.Text(payload.Get(vrf, "vrf-name-out"))
		for _, af := range rows(vrf, "addrf") {
			for _, row := range rows(af, "prefix") {
				entries = append(entries, routeEntry{instance: instance, row: row})
			}
		}
	}
	return entries, nil
}

func constructRoute(instance string, row interface{}, dest string) net.Fields {
	paths := rows(row, "path")
	prefix := payload.Text(payload.Get(row, "ipprefix"))
	if dest == "" {
		dest = prefix
	}

	active := false
	vias := []interface{}{}
	for _, p := range paths {
		if flag(payload.Get(p, "ubest")) == true {
			active = true
		}
		var intf interface{}
		if name := payload.Text(payload.Get(p, "ifname")); name != "" {
			intf = util.NormalizeInterfaceName(name)
		}
		vias = append(vias, map[string]interface{}{
			"interface": intf,
			"next_hop":  text(payload.Get(p, "ipnexthop")),
		})
	}

	var first interface{}
	if len(paths) > 0 {
		first = paths[0]
	}
	var inactiveReason interface{}
	if !active {
		inactiveReason = "No best path"
	}
	return net.Fields{
		"dest":            dest,
		"instance":        instance,
		"network":         prefix,
		"active":          active,
		"inactive_reason": inactiveReason,
		"protocol":        routeProtocol(payload.Get(first, "clientname")),
		"metric":          number(payload.Get(first, "metric")),
		"preference":      number(payload.Get(first, "pref")),
		"age":             routeAge(payload.Get(first, "uptime")),
		"tag":             number(payload.Get(first, "tag")),
		"vias":            vias,
		"extra_attributes": map[string]interface{}{
			"ucast_nhops": number(payload.Get(row, "ucast-nhops")),
			"attached":    flag(payload.Get(row, "attached")),
		},
	}
}

// routeProtocol maps NX-OS client names ("direct", "ospf-1", "bgp-65000")
// to canonical protocols; unknown clients are left unset
func routeProtocol(v interface{}) interface{} {
	client := strings.ToLower(payload.Text(v))
	if client == "" {
		return nil
	}
	switch client {
	case "direct", "local", "hsrp", "vrrp":
		return "connected"
	}
	base, _, _ := strings.Cut(client, "-")
	if p, err := net.ResolveProtocol(base); err == nil {
		return p
	}
	util.WithEntity(net.KindRoute, Tag).WithField("client", client).Debug("unknown route client")
	return nil
}

// routeAge converts the path uptime ("P1DT2H3M", "02:03:04") to seconds
func routeAge(v interface{}) interface{} {
	s := payload.Text(v)
	if s == "" {
		return nil
	}
	d, err := units.ToDuration(s)
	if err != nil {
		return nil
	}
	return d.Seconds()
}
