package eos

import (
	"fmt"
	"net/netip"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/util"
)

// RouteDriver parses "show ip route"
type RouteDriver struct{}

// EntityCommands returns the detail lookup of q.Dest
func (RouteDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Dest == "" {
		return nil, util.NewFieldError(net.KindRoute, "dest", q.Dest, util.NewValidationError("destination is required"))
	}
	if q.Instance != "" {
		return []string{fmt.Sprintf("show ip route vrf %s %s detail", q.Instance, q.Dest)}, nil
	}
	return []string{fmt.Sprintf("show ip route %s detail", q.Dest)}, nil
}

// CollectionCommands returns the routing table commands
func (RouteDriver) CollectionCommands(q net.Query) ([]string, error) {
	switch {
	case q.Protocol != "" && q.Instance != "":
		return []string{fmt.Sprintf("show ip route vrf %s %s", q.Instance, q.Protocol)}, nil
	case q.Instance != "":
		return []string{"show ip route vrf " + q.Instance}, nil
	case q.Protocol != "":
		return []string{"show ip route " + q.Protocol}, nil
	case q.VRFAll:
		return []string{"show ip route vrf all"}, nil
	}
	return []string{"show ip route"}, nil
}

// Parse returns the route resolving q.Dest. An instance without routes
// yields an inactive route.
func (RouteDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	vrfs, err := validateRoutes(raw, true)
	if err != nil {
		return nil, err
	}
	var fields net.Fields
	for _, instance := range vrfs.Keys() {
		routes := payload.Object(payload.Get(vrfs, instance, "routes"))
		if routes == nil || routes.Len() == 0 {
			util.WithEntity(net.KindRoute, Tag).WithField("dest", q.Dest).Info("no route information collected")
			return net.Fields{"dest": q.Dest, "active": false, "inactive_reason": "Route not found"}, nil
		}
		for _, prefix := range routes.Keys() {
			data, _ := routes.Get(prefix)
			fields = constructRoute(instance, prefix, data, q.Dest)
		}
	}
	return fields, nil
}

// CollectorParse returns every route keyed by (instance, network)
func (RouteDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[net.RouteKey], error) {
	vrfs, err := validateRoutes(raw, false)
	if err != nil {
		return nil, err
	}
	var out []net.Record[net.RouteKey]
	for _, instance := range vrfs.Keys() {
		routes := payload.Object(payload.Get(vrfs, instance, "routes"))
		if routes == nil {
			continue
		}
		for _, prefix := range routes.Keys() {
			network, err := netip.ParsePrefix(prefix)
			if err != nil {
				return nil, parseError(net.KindRoute, "invalid prefix "+prefix, raw)
			}
			data, _ := routes.Get(prefix)
			out = append(out, net.Record[net.RouteKey]{
				Key:    net.RouteKey{Instance: instance, Network: network},
				Fields: constructRoute(instance, prefix, data, ""),
			})
		}
	}
	return out, nil
}

func validateRoutes(raw connector.Results, single bool) (*connector.Object, error) {
	vrfs := payload.Object(payload.Get(raw.First(), "vrfs"))
	if vrfs == nil || vrfs.Len() == 0 {
		return nil, parseError(net.KindRoute, "no data to be parsed", raw)
	}
	if single && vrfs.Len() > 1 {
		warnMultiple(net.KindRoute, vrfs.Len())
	}
	return vrfs, nil
}

func constructRoute(instance, prefix string, data interface{}, dest string) net.Fields {
	active := payload.Get(data, "hardwareProgrammed") == true || payload.Get(data, "kernelProgrammed") == true

	vias := []interface{}{}
	for _, via := range payload.List(payload.Get(data, "vias")) {
		vias = append(vias, map[string]interface{}{
			"interface": payload.Get(via, "interface"),
			"next_hop":  payload.Get(via, "nexthopAddr"),
		})
	}
	if dest == "" {
		dest = prefix
	}
	return net.Fields{
		"dest":            dest,
		"instance":        instance,
		"network":         prefix,
		"active":          active,
		"inactive_reason": nil,
		"protocol":        payload.Get(data, "routeType"),
		"metric":          payload.Get(data, "metric"),
		"preference":      payload.Get(data, "preference"),
		"vias":            vias,
		"extra_attributes": map[string]interface{}{
			"route_action": payload.Get(data, "routeAction"),
			"route_leaked": payload.Get(data, "routeLeaked"),
		},
	}
}
