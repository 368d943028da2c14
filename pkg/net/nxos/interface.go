package nxos

import (
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// InterfaceDriver parses "show interface" and "show ip interface vrf all"
// into one record per interface
type InterfaceDriver struct{}

// RunOptions prunes "show ip interface" when the interface has no layer 3
// configuration and the switch rejects the command
func (InterfaceDriver) RunOptions() connector.RunOptions {
	return connector.RunOptions{Silent: true}
}

// EntityCommands returns the commands retrieving interface q.Name
func (InterfaceDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Name == "" {
		return nil, util.NewFieldError(net.KindInterface, "name", q.Name, util.NewValidationError("interface name is required"))
	}
	return interfaceCommands(q.Name), nil
}

// CollectionCommands returns the commands retrieving every interface, a
// range ("Ethernet1/1-4") or a list of names
func (InterfaceDriver) CollectionCommands(q net.Query) ([]string, error) {
	if len(q.Names) > 0 {
		return interfaceCommands(strings.Join(q.Names, ", ")), nil
	}
	return interfaceCommands(q.Range), nil
}

func interfaceCommands(scope string) []string {
	if scope == "" {
		return []string{"show interface", "show ip interface vrf all"}
	}
	return []string{"show interface " + scope, "show ip interface " + scope + " vrf all"}
}

// Parse returns the fields of a single interface
func (InterfaceDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	names, merged, err := mergeInterfaces(raw, true)
	if err != nil {
		return nil, err
	}
	name := names[len(names)-1]
	return constructInterface(name, merged[name]), nil
}

// CollectorParse returns every interface keyed by name
func (InterfaceDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[string], error) {
	names, merged, err := mergeInterfaces(raw, false)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[string], 0, len(names))
	for _, name := range names {
		out = append(out, net.Record[string]{Key: name, Fields: constructInterface(name, merged[name])})
	}
	return out, nil
}

// ifaceData pairs the "show interface" row of an interface with its
// "show ip interface" row and VRF
type ifaceData struct {
	row interface{}
	ip  interface{}
	vrf interface{}
}

// mergeInterfaces joins both tables by normalized name, in the order of
// first appearance
func mergeInterfaces(raw connector.Results, single bool) ([]string, map[string]*ifaceData, error) {
	var names []string
	merged := make(map[string]*ifaceData)
	entry := func(name string) *ifaceData {
		name = util.NormalizeInterfaceName(name)
		d, ok := merged[name]
		if !ok {
			d = &ifaceData{}
			merged[name] = d
			names = append(names, name)
		}
		return d
	}

	for _, res := range raw {
		if res.Output == nil {
			continue
		}
		if payload.Object(res.Output) == nil {
			return nil, nil, parseError(net.KindInterface, "unexpected reply to "+res.Command, raw)
		}
		for _, row := range rows(res.Output, "interface") {
			if name := payload.Text(payload.Get(row, "interface")); name != "" {
				entry(name).row = row
			}
		}
		// the VRF of each ip interface row is the row at the same index
		// of TABLE_vrf
		vrfs := rows(res.Output, "vrf")
		for i, row := range rows(res.Output, "intf") {
			name := payload.Text(payload.Get(row, "intf-name"))
			if name == "" {
				continue
			}
			d := entry(name)
			d.ip = row
			if i < len(vrfs) {
				d.vrf = text(payload.Get(vrfs[i], "vrf-name-out"))
			}
		}
	}
	if len(names) == 0 {
		return nil, nil, parseError(net.KindInterface, "no data to be parsed", raw)
	}
	if single && len(names) > 1 {
		warnMultiple(net.KindInterface, len(names))
	}
	return names, merged, nil
}

func constructInterface(name string, d *ifaceData) net.Fields {
	row := d.row
	// SVIs report their attributes with an svi_ prefix
	attr := func(key string) interface{} {
		if v := payload.Get(row, "eth_"+key); v != nil {
			return v
		}
		return payload.Get(row, "svi_"+key)
	}

	admin := payload.Text(payload.Get(row, "admin_state"))
	if admin == "" {
		admin = payload.Text(payload.Get(row, "svi_admin_state"))
	}
	adminStatus := "enabled"
	if strings.EqualFold(admin, "down") {
		adminStatus = "disabled"
	}

	fields := net.Fields{
		"name":             name,
		"description":      text(firstOf(payload.Get(row, "desc"), payload.Get(row, "svi_desc"))),
		"instance":         d.vrf,
		"members":          memberList(payload.Get(row, "eth_members")),
		"admin_status":     adminStatus,
		"status":           interfaceStatus(row, adminStatus),
		"update_interval":  number(payload.Get(row, "eth_load_interval1_rx")),
		"forwarding_model": forwardingModel(row, d.ip),
		"physical":         nil,
		"addresses":        interfaceAddresses(row, d.ip),
		"counters":         interfaceCounters(row),
	}
	if row != nil {
		var bandwidth interface{}
		if kbit := number(attr("bw")); kbit != nil {
			bandwidth = units.Bits(kbit.(float64) * 1000)
		}
		var mtu interface{}
		if n := number(attr("mtu")); n != nil {
			mtu = units.Bytes(n.(float64))
		}
		fields["physical"] = map[string]interface{}{
			"mac":       text(firstOf(payload.Get(row, "eth_hw_addr"), payload.Get(row, "svi_mac"))),
			"mtu":       mtu,
			"duplex":    text(payload.Get(row, "eth_duplex")),
			"bandwidth": bandwidth,
		}
	}
	return fields
}

func firstOf(values ...interface{}) interface{} {
	for _, v := range values {
		if !payload.Empty(v) {
			return v
		}
	}
	return nil
}

// interfaceStatus maps the NX-OS state and its reason onto the canonical
// vocabulary
func interfaceStatus(row interface{}, admin string) interface{} {
	state := strings.ToLower(payload.Text(firstOf(payload.Get(row, "state"), payload.Get(row, "svi_line_proto"))))
	reason := strings.ToLower(payload.Text(payload.Get(row, "state_rsn_desc")))
	switch {
	case state == "":
		return nil
	case admin == "disabled":
		return "disabled"
	case state == "up":
		return "connected"
	case strings.Contains(reason, "not connected"):
		return "notconnect"
	}
	return "down"
}

func forwardingModel(row, ip interface{}) interface{} {
	switch strings.ToLower(payload.Text(payload.Get(row, "eth_mode"))) {
	case "routed":
		return "routed"
	case "access", "trunk", "fex-fabric", "pvlan":
		return "bridged"
	}
	if ip != nil || payload.Get(row, "svi_line_proto") != nil {
		return "routed"
	}
	return nil
}

func interfaceAddresses(row, ip interface{}) interface{} {
	primary, mask := payload.Get(ip, "prefix"), payload.Get(ip, "masklen")
	if payload.Empty(primary) {
		primary = firstOf(payload.Get(row, "eth_ip_addr"), payload.Get(row, "svi_ip_addr"))
		mask = firstOf(payload.Get(row, "eth_ip_mask"), payload.Get(row, "svi_ip_mask"))
	}
	if payload.Empty(primary) {
		return nil
	}
	secondary := []string{}
	for _, s := range rows(ip, "secondary_address") {
		secondary = append(secondary, util.FormatIPWithMask(payload.Text(payload.Get(s, "prefix1")), payload.Get(s, "masklen1")))
	}
	return map[string]interface{}{
		"ipv4":           util.FormatIPWithMask(payload.Text(primary), mask),
		"secondary_ipv4": secondary,
		"dhcp":           nil,
	}
}

var counterKeys = []struct{ field, key string }{
	{"rx_unicast_pkts", "eth_inucast"},
	{"tx_unicast_pkts", "eth_outucast"},
	{"rx_multicast_pkts", "eth_inmcast"},
	{"tx_multicast_pkts", "eth_outmcast"},
	{"rx_broadcast_pkts", "eth_inbcast"},
	{"tx_broadcast_pkts", "eth_outbcast"},
	{"rx_discards", "eth_indiscard"},
	{"tx_discards", "eth_outdiscard"},
	{"rx_errors_general", "eth_inerr"},
	{"tx_errors_general", "eth_outerr"},
	{"rx_errors_crc", "eth_crc"},
	{"rx_errors_runt", "eth_runts"},
	{"rx_errors_giant", "eth_giants"},
	{"rx_errors_rx_pause", "eth_inpause"},
	{"rx_errors_symbol", "eth_symbol"},
	{"tx_errors_collisions", "eth_coll"},
	{"tx_errors_late_collisions", "eth_latecoll"},
	{"tx_errors_deferred_transmissions", "eth_deferred"},
	{"tx_errors_tx_pause", "eth_outpause"},
	{"rx_pkts_rate", "eth_inrate1_pkts"},
	{"tx_pkts_rate", "eth_outrate1_pkts"},
}

// interfaceCounters returns nil for interfaces without traffic counters
func interfaceCounters(row interface{}) interface{} {
	if payload.Get(row, "eth_inbytes") == nil {
		return nil
	}
	counters := map[string]interface{}{}
	for _, c := range counterKeys {
		counters[c.field] = number(payload.Get(row, c.key))
	}
	if n := number(payload.Get(row, "eth_inbytes")); n != nil {
		counters["rx_bytes"] = units.Bytes(n.(float64))
	}
	if n := number(payload.Get(row, "eth_outbytes")); n != nil {
		counters["tx_bytes"] = units.Bytes(n.(float64))
	}
	if n := number(payload.Get(row, "eth_inrate1_bits")); n != nil {
		counters["rx_bits_rate"] = units.Bits(n.(float64))
	}
	if n := number(payload.Get(row, "eth_outrate1_bits")); n != nil {
		counters["tx_bits_rate"] = units.Bits(n.(float64))
	}
	return counters
}
