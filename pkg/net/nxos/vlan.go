package nxos

import (
	"fmt"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// VlanDriver parses "show vlan brief" and "show vlan id"
type VlanDriver struct{}

// EntityCommands returns the commands retrieving VLAN q.ID
func (VlanDriver) EntityCommands(q net.Query) ([]string, error) {
	if err := util.ValidateVLANID(q.ID); err != nil {
		return nil, util.NewFieldError(net.KindVlan, "id", q.ID, err)
	}
	return []string{fmt.Sprintf("show vlan id %d", q.ID)}, nil
}

// CollectionCommands returns the commands retrieving a VLAN table. NX-OS
// takes a compact id list such as 10-12,30.
func (VlanDriver) CollectionCommands(q net.Query) ([]string, error) {
	switch {
	case len(q.IDs) > 0:
		for _, id := range q.IDs {
			if err := util.ValidateVLANID(id); err != nil {
				return nil, util.NewFieldError(net.KindVlan, "ids", q.IDs, err)
			}
		}
		return []string{"show vlan id " + util.CompactRange(q.IDs)}, nil
	case q.Range != "":
		r, err := util.NormalizeVLANRange(q.Range)
		if err != nil {
			return nil, util.NewFieldError(net.KindVlan, "range", q.Range, err)
		}
		return []string{"show vlan id " + r}, nil
	}
	return []string{"show vlan brief"}, nil
}

// Parse returns the fields of a single VLAN
func (VlanDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	vlans, err := validateVlans(raw, true)
	if err != nil {
		return nil, err
	}
	var fields net.Fields
	for _, row := range vlans {
		if fields, err = constructVlan(row); err != nil {
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
	out := make([]net.Record[int], 0, len(vlans))
	for _, row := range vlans {
		fields, err := constructVlan(row)
		if err != nil {
			return nil, err
		}
		out = append(out, net.Record[int]{Key: fields["id"].(int), Fields: fields})
	}
	return out, nil
}

// validateVlans accepts the brief table and the table "show vlan id" uses
func validateVlans(raw connector.Results, single bool) ([]interface{}, error) {
	first := raw.First()
	vlans := rows(first, "vlanbriefxbrief")
	if len(vlans) == 0 {
		vlans = rows(first, "vlanbriefid")
	}
	if len(vlans) == 0 {
		return nil, parseError(net.KindVlan, "no data to be parsed", raw)
	}
	if single && len(vlans) > 1 {
		warnMultiple(net.KindVlan, len(vlans))
	}
	return vlans, nil
}

func constructVlan(row interface{}) (net.Fields, error) {
	raw := payload.Get(row, "vlanshowbr-vlanid")
	id, err := units.ToInt(raw)
	if err != nil || payload.Empty(raw) {
		return nil, parseError(net.KindVlan, "vlan id is not numeric", row)
	}
	var interfaces interface{}
	if ports := payload.Text(payload.Get(row, "vlanshowplist-ifidx")); ports != "" {
		interfaces = memberList(ports)
	}
	status := payload.Text(payload.Get(row, "vlanshowbr-vlanstate"))
	if payload.Text(payload.Get(row, "vlanshowbr-shutstate")) == "shutdown" {
		status = "suspended"
	}
	return net.Fields{
		"id":         id,
		"name":       text(payload.Get(row, "vlanshowbr-vlanname")),
		"dynamic":    false,
		"interfaces": interfaces,
		"status":     vlanStatus(status),
	}, nil
}

// vlanStatus maps NX-OS states onto the canonical active/suspended pair
func vlanStatus(s string) interface{} {
	switch strings.ToLower(s) {
	case "":
		return nil
	case "active":
		return "active"
	}
	return "suspended"
}
