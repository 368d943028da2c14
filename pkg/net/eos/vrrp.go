package eos

import (
	"fmt"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// VrrpDriver parses "show vrrp ... all"
type VrrpDriver struct{}

// EntityCommands returns the commands retrieving group q.Group, scoped to
// q.Interface or q.Instance when set
func (VrrpDriver) EntityCommands(q net.Query) ([]string, error) {
	switch {
	case q.Interface != "":
		return []string{fmt.Sprintf("show vrrp group %d interface %s all", q.Group, q.Interface)}, nil
	case q.Instance != "":
		return []string{fmt.Sprintf("show vrrp group %d vrf %s all", q.Group, q.Instance)}, nil
	}
	return []string{fmt.Sprintf("show vrrp group %d vrf all", q.Group)}, nil
}

// CollectionCommands returns the commands retrieving every group
func (VrrpDriver) CollectionCommands(q net.Query) ([]string, error) {
	switch {
	case q.Interface != "":
		return []string{fmt.Sprintf("show vrrp interface %s all", q.Interface)}, nil
	case q.Instance != "":
		return []string{fmt.Sprintf("show vrrp vrf %s all", q.Instance)}, nil
	}
	return []string{"show vrrp all"}, nil
}

// Parse returns the first group of the reply
func (VrrpDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	routers, err := validateVrrp(raw, true)
	if err != nil {
		return nil, err
	}
	return constructVrrp(routers[0])
}

// CollectorParse returns every group keyed by (group, interface)
func (VrrpDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[net.VrrpKey], error) {
	routers, err := validateVrrp(raw, false)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[net.VrrpKey], 0, len(routers))
	for _, data := range routers {
		fields, err := constructVrrp(data)
		if err != nil {
			return nil, err
		}
		key, err := vrrpKey(fields)
		if err != nil {
			return nil, parseError(net.KindVrrp, err.Error(), data)
		}
		out = append(out, net.Record[net.VrrpKey]{Key: key, Fields: fields})
	}
	return out, nil
}

func validateVrrp(raw connector.Results, single bool) ([]interface{}, error) {
	routers := payload.List(payload.Get(raw.First(), "virtualRouters"))
	if len(routers) == 0 {
		return nil, parseError(net.KindVrrp, "no data to be parsed", raw)
	}
	if single && len(routers) > 1 {
		util.WithEntity(net.KindVrrp, Tag).WithField("matches", len(routers)).Warn("multiple entities present, using the first one")
	}
	return routers, nil
}

func constructVrrp(data interface{}) (net.Fields, error) {
	if payload.Empty(data) {
		return nil, parseError(net.KindVrrp, "no data to be parsed", data)
	}
	var downInterval interface{}
	if v := payload.Get(data, "masterDownInterval"); v != nil {
		ms, err := units.ToFloat(v)
		if err != nil {
			return nil, parseError(net.KindVrrp, "masterDownInterval is not numeric", data)
		}
		downInterval = ms / 1000.0
	}
	return net.Fields{
		"group_id":                   payload.Get(data, "groupId"),
		"interface":                  payload.Get(data, "interface"),
		"instance":                   payload.Get(data, "vrfName"),
		"description":                payload.Get(data, "description"),
		"virtual_mac":                payload.Get(data, "virtualMac"),
		"virtual_ip_secondary":       payload.Get(data, "virtualIpSecondary"),
		"master_ip":                  payload.Get(data, "masterAddr"),
		"virtual_ip":                 payload.Get(data, "virtualIp"),
		"priority":                   payload.Get(data, "priority"),
		"skew_time":                  payload.Get(data, "skewTime"),
		"version":                    payload.Get(data, "version"),
		"preempt":                    payload.Get(data, "preempt"),
		"preempt_delay":              payload.Get(data, "preemptDelay"),
		"mac_advertisement_interval": payload.Get(data, "macAddressInterval"),
		"master_interval":            payload.Get(data, "masterInterval"),
		"master_down_interval":       downInterval,
		"tracked_objects":            payload.Plain(payload.Get(data, "trackedObjects")),
		"status":                     payload.Get(data, "state"),
		"extra_attributes": map[string]interface{}{
			"vrrp_advertisement_interval": payload.Get(data, "vrrpAdvertInterval"),
			"vrrp_id_disabled":            payload.Get(data, "vrIdDisabled"),
			"vrrp_id_disabled_reason":     payload.Get(data, "vrIdDisabledReason"),
			"bfd_peer_ip":                 payload.Get(data, "bfdPeerAddr"),
			"preempt_reload":              payload.Get(data, "preemptReload"),
		},
	}, nil
}

func vrrpKey(fields net.Fields) (net.VrrpKey, error) {
	group, err := units.ToInt(fields["group_id"])
	if err != nil {
		return net.VrrpKey{}, fmt.Errorf("groupId: %w", err)
	}
	name := payload.Text(fields["interface"])
	return net.VrrpKey{GroupID: group, Interface: util.NormalizeInterfaceName(name)}, nil
}
