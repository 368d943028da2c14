package sonic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/util"
)

// VlanDriver reads the VLAN and VLAN_MEMBER tables and the VLAN state
type VlanDriver struct{}

// EntityCommands returns the keys of VLAN q.ID
func (VlanDriver) EntityCommands(q net.Query) ([]string, error) {
	if err := util.ValidateVLANID(q.ID); err != nil {
		return nil, util.NewFieldError(net.KindVlan, "id", q.ID, err)
	}
	return vlanCommands(fmt.Sprintf("Vlan%d", q.ID)), nil
}

// CollectionCommands returns the keys of the listed VLANs, of a range
// ("10-20,30") or patterns covering every VLAN
func (VlanDriver) CollectionCommands(q net.Query) ([]string, error) {
	ids := q.IDs
	if q.Range != "" {
		expanded, err := util.ExpandVLANRange(q.Range)
		if err != nil {
			return nil, util.NewFieldError(net.KindVlan, "range", q.Range, err)
		}
		ids = append(append([]int(nil), ids...), expanded...)
	}
	if len(ids) == 0 {
		return vlanCommands("*"), nil
	}
	var cmds []string
	for _, id := range ids {
		if err := util.ValidateVLANID(id); err != nil {
			return nil, util.NewFieldError(net.KindVlan, "ids", ids, err)
		}
		cmds = append(cmds, vlanCommands(fmt.Sprintf("Vlan%d", id))...)
	}
	return cmds, nil
}

func vlanCommands(name string) []string {
	return []string{
		"CONFIG_DB VLAN|" + name,
		"CONFIG_DB VLAN_MEMBER|" + name + "|*",
		"STATE_DB VLAN_TABLE|" + name,
	}
}

// Parse returns the fields of a single VLAN
func (VlanDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	ids, vlans, err := mergeVlans(raw)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, parseError(net.KindVlan, fmt.Sprintf("vlan %d not found", q.ID), raw)
	}
	if len(ids) > 1 {
		warnMultiple(net.KindVlan, len(ids))
	}
	id := ids[len(ids)-1]
	return constructVlan(id, vlans[id]), nil
}

// CollectorParse returns every VLAN keyed by id
func (VlanDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[int], error) {
	ids, vlans, err := mergeVlans(raw)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[int], 0, len(ids))
	for _, id := range ids {
		out = append(out, net.Record[int]{Key: id, Fields: constructVlan(id, vlans[id])})
	}
	return out, nil
}

type vlanData struct {
	config  interface{}
	state   interface{}
	members []string
}

// mergeVlans groups the hashes by VLAN id; ids are returned ascending
func mergeVlans(raw connector.Results) ([]int, map[int]*vlanData, error) {
	var ids []int
	vlans := make(map[int]*vlanData)
	for _, e := range entries(raw) {
		id, err := strconv.Atoi(strings.TrimPrefix(e.parts[0], "Vlan"))
		if err != nil {
			return nil, nil, parseError(net.KindVlan, "unexpected vlan key "+e.parts[0], raw)
		}
		d, ok := vlans[id]
		if !ok {
			d = &vlanData{}
			vlans[id] = d
			ids = append(ids, id)
		}
		switch e.table {
		case "VLAN":
			d.config = e.hash
			// releases before 202006 keep the members in the VLAN entry
			if legacy := field(e.hash, "members@"); legacy != nil {
				d.members = append(d.members, util.SplitCommaSeparated(legacy.(string))...)
			}
		case "VLAN_MEMBER":
			if len(e.parts) == 2 {
				d.members = append(d.members, e.parts[1])
			}
		case "VLAN_TABLE":
			d.state = e.hash
		}
	}
	sort.Ints(ids)
	return ids, vlans, nil
}

func constructVlan(id int, d *vlanData) net.Fields {
	var interfaces interface{}
	if len(d.members) > 0 {
		interfaces = util.NormalizeInterfaceNames(d.members)
	}
	name := field(d.config, "description")
	if name == nil && d.config != nil {
		name = fmt.Sprintf("Vlan%d", id)
	}
	status := "active"
	admin := field(d.config, "admin_status")
	if admin == nil {
		admin = field(d.state, "admin_status")
	}
	if admin != nil && strings.EqualFold(admin.(string), "down") {
		status = "suspended"
	}
	return net.Fields{
		"id":         id,
		"name":       name,
		"dynamic":    false,
		"interfaces": interfaces,
		"status":     status,
	}
}
