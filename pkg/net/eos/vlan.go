package eos

import (
	"fmt"
	"strconv"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/util"
)

// VlanDriver parses "show vlan"
type VlanDriver struct{}

// EntityCommands returns the commands retrieving VLAN q.ID
func (VlanDriver) EntityCommands(q net.Query) ([]string, error) {
	if err := util.ValidateVLANID(q.ID); err != nil {
		return nil, util.NewFieldError(net.KindVlan, "id", q.ID, err)
	}
	return []string{fmt.Sprintf("show vlan id %d", q.ID)}, nil
}

// CollectionCommands returns the commands retrieving a VLAN table. A list
// of ids is sent as the span between the lowest and highest.
func (VlanDriver) CollectionCommands(q net.Query) ([]string, error) {
	switch {
	case len(q.IDs) > 0:
		return []string{"show vlan id " + util.VLANSpan(q.IDs)}, nil
	case q.Range != "":
		r, err := util.NormalizeVLANRange(q.Range)
		if err != nil {
			return nil, util.NewFieldError(net.KindVlan, "range", q.Range, err)
		}
		return []string{"show vlan id " + r}, nil
	}
	return []string{"show vlan"}, nil
}

// Parse returns the fields of a single VLAN
func (VlanDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	vlans, err := validateVlans(raw, true)
	if err != nil {
		return nil, err
	}
	var fields net.Fields
	for _, id := range vlans.Keys() {
		data, _ := vlans.Get(id)
		if fields, err = constructVlan(id, data); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// CollectorParse returns every VLAN keyed by id
func (VlanDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[int], error) {
	vlans, err := validateVlans(raw, false)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[int], 0, vlans.Len())
	for _, id := range vlans.Keys() {
		data, _ := vlans.Get(id)
		fields, err := constructVlan(id, data)
		if err != nil {
			return nil, err
		}
		out = append(out, net.Record[int]{Key: fields["id"].(int), Fields: fields})
	}
	return out, nil
}

func validateVlans(raw connector.Results, single bool) (*connector.Object, error) {
	vlans := payload.Object(payload.Get(raw.First(), "vlans"))
	if vlans == nil || vlans.Len() == 0 {
		return nil, parseError(net.KindVlan, "no data to be parsed", raw)
	}
	if single && vlans.Len() > 1 {
		warnMultiple(net.KindVlan, vlans.Len())
	}
	return vlans, nil
}

func constructVlan(id string, data interface{}) (net.Fields, error) {
	if payload.Empty(data) {
		return nil, parseError(net.KindVlan, "no data to be parsed", data)
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, parseError(net.KindVlan, "vlan id is not numeric: "+id, data)
	}
	var interfaces interface{}
	if names := payload.Keys(payload.Get(data, "interfaces")); len(names) > 0 {
		interfaces = names
	}
	return net.Fields{
		"id":         n,
		"name":       payload.Get(data, "name"),
		"dynamic":    payload.Get(data, "dynamic"),
		"interfaces": interfaces,
		"status":     payload.Get(data, "status"),
	}, nil
}
