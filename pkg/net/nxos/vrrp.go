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

// VrrpDriver parses "show vrrp detail". NX-OS cannot filter the detail
// view by group, so groups are selected after parsing.
type VrrpDriver struct{}

// EntityCommands returns the detail view of q.Interface, or of every
// interface
func (VrrpDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Group < 1 || q.Group > 255 {
		return nil, util.NewFieldError(net.KindVrrp, "group_id", q.Group, util.NewValidationError("vrrp group must be between 1 and 255"))
	}
	return vrrpCommands(q), nil
}

// CollectionCommands returns the detail view of q.Interface, or of every
// interface
func (VrrpDriver) CollectionCommands(q net.Query) ([]string, error) {
	return vrrpCommands(q), nil
}

func vrrpCommands(q net.Query) []string {
	if q.Interface != "" {
		return []string{"show vrrp detail interface " + q.Interface}
	}
	return []string{"show vrrp detail"}
}

// Parse returns the first group matching q.Group and q.Instance
func (VrrpDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	groups, err := validateVrrp(raw, q)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, parseError(net.KindVrrp, fmt.Sprintf("vrrp group %d not found", q.Group), raw)
	}
	if len(groups) > 1 {
		util.WithEntity(net.KindVrrp, Tag).WithField("matches", len(groups)).Warn("multiple entities present, using the first one")
	}
	return constructVrrp(groups[0]), nil
}

// CollectorParse returns every group keyed by (group, interface)
func (VrrpDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[net.VrrpKey], error) {
	q.Group = 0
	groups, err := validateVrrp(raw, q)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[net.VrrpKey], 0, len(groups))
	for _, row := range groups {
		fields := constructVrrp(row)
		group, err := units.ToInt(fields["group_id"])
		if err != nil {
			return nil, parseError(net.KindVrrp, "sh_group_id is not numeric", row)
		}
		key := net.VrrpKey{GroupID: group, Interface: payload.Text(fields["interface"])}
		out = append(out, net.Record[net.VrrpKey]{Key: key, Fields: fields})
	}
	return out, nil
}

// validateVrrp returns the IPv4 groups of the reply, restricted to q.Group
// and q.Instance when set. An empty table is a valid reply without groups.
func validateVrrp(raw connector.Results, q net.Query) ([]interface{}, error) {
	first := raw.First()
	if payload.Object(first) == nil && !payload.Empty(first) {
		return nil, parseError(net.KindVrrp, "unexpected reply", raw)
	}
	var out []interface{}
	for _, row := range rows(first, "vrrp_group") {
		if t := payload.Text(payload.Get(row, "sh_group_type")); t != "" && !strings.EqualFold(t, "ipv4") {
			continue
		}
		if q.Group != 0 {
			if id, err := units.ToInt(payload.Get(row, "sh_group_id")); err != nil || id != q.Group {
				continue
			}
		}
		if q.Instance != "" && payload.Text(payload.Get(row, "sh_vrf_name")) != q.Instance {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func constructVrrp(row interface{}) net.Fields {
	var intf interface{}
	if name := payload.Text(payload.Get(row, "sh_if_index")); name != "" {
		intf = util.NormalizeInterfaceName(name)
	}
	var downInterval interface{}
	if ms := number(payload.Get(row, "sh_master_down_interval")); ms != nil {
		downInterval = ms.(float64) / 1000.0
	}
	return net.Fields{
		"group_id":             payload.Get(row, "sh_group_id"),
		"interface":            intf,
		"instance":             text(payload.Get(row, "sh_vrf_name")),
		"description":          text(payload.Get(row, "sh_description")),
		"virtual_mac":          text(payload.Get(row, "sh_vmac")),
		"virtual_ip":           text(payload.Get(row, "sh_vip_addr")),
		"master_ip":            text(payload.Get(row, "sh_master_addr")),
		"priority":             number(payload.Get(row, "sh_priority")),
		"version":              2,
		"preempt":              flag(payload.Get(row, "sh_group_preempt")),
		"master_interval":      number(payload.Get(row, "sh_adv_interval")),
		"master_down_interval": downInterval,
		"status":               vrrpState(payload.Get(row, "sh_group_state")),
		"extra_attributes": map[string]interface{}{
			"configured_priority": number(payload.Get(row, "sh_cfg_priority")),
			"state_transitions":   number(payload.Get(row, "sh_state_tran_ctr")),
			"auth_type":           text(payload.Get(row, "sh_auth_type")),
		},
	}
}

// vrrpState maps Init to the canonical stopped state
func vrrpState(v interface{}) interface{} {
	switch s := strings.ToLower(payload.Text(v)); s {
	case "":
		return nil
	case "init", "initialize":
		return "stopped"
	default:
		return s
	}
}
