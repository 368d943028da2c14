package sonic

import (
	"net/netip"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// InterfaceDriver joins the port, port channel and layer 3 tables of
// CONFIG_DB with the operational state kept in STATE_DB
type InterfaceDriver struct{}

// EntityCommands returns the keys describing interface q.Name
func (InterfaceDriver) EntityCommands(q net.Query) ([]string, error) {
	if q.Name == "" {
		return nil, util.NewFieldError(net.KindInterface, "name", q.Name, util.NewValidationError("interface name is required"))
	}
	if strings.ContainsAny(q.Name, "*?[") {
		return nil, util.NewFieldError(net.KindInterface, "name", q.Name, util.NewValidationError("interface name must not be a pattern"))
	}
	return interfaceCommands(q.Name), nil
}

// CollectionCommands returns the key patterns of every interface. Ranges
// ("Ethernet0-8") and name lists become one key set per interface.
func (InterfaceDriver) CollectionCommands(q net.Query) ([]string, error) {
	names := q.Names
	if q.Range != "" {
		expanded, err := util.ExpandInterfaceRange(q.Range)
		if err != nil {
			return nil, util.NewFieldError(net.KindInterface, "range", q.Range, err)
		}
		names = append(append([]string(nil), names...), expanded...)
	}
	if len(names) == 0 {
		return []string{
			"CONFIG_DB PORT|*",
			"CONFIG_DB PORTCHANNEL|*",
			"CONFIG_DB PORTCHANNEL_MEMBER|*",
			"CONFIG_DB VLAN_MEMBER|*",
			"CONFIG_DB *INTERFACE|*",
			"STATE_DB PORT_TABLE|*",
			"STATE_DB LAG_TABLE|*",
			"STATE_DB TRANSCEIVER_INFO|*",
			"STATE_DB TRANSCEIVER_DOM_SENSOR|*",
		}, nil
	}
	var cmds []string
	for _, name := range names {
		cmds = append(cmds, interfaceCommands(name)...)
	}
	return cmds, nil
}

func interfaceCommands(name string) []string {
	return []string{
		"CONFIG_DB PORT|" + name,
		"CONFIG_DB PORTCHANNEL|" + name,
		"CONFIG_DB PORTCHANNEL_MEMBER|" + name + "|*",
		"CONFIG_DB VLAN_MEMBER|*|" + name,
		"CONFIG_DB *INTERFACE|" + name,
		"CONFIG_DB *INTERFACE|" + name + "|*",
		"STATE_DB PORT_TABLE|" + name,
		"STATE_DB LAG_TABLE|" + name,
		"STATE_DB TRANSCEIVER_INFO|" + name,
		"STATE_DB TRANSCEIVER_DOM_SENSOR|" + name,
	}
}

// Parse returns the fields of interface q.Name
func (InterfaceDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	names, merged := mergeInterfaces(raw)
	if len(names) == 0 {
		return nil, parseError(net.KindInterface, "interface "+q.Name+" not found", raw)
	}
	name := util.NormalizeInterfaceName(q.Name)
	if _, ok := merged[name]; !ok {
		if len(names) > 1 {
			warnMultiple(net.KindInterface, len(names))
		}
		name = names[len(names)-1]
	}
	return constructInterface(name, merged[name]), nil
}

// CollectorParse returns every interface keyed by name
func (InterfaceDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[string], error) {
	names, merged := mergeInterfaces(raw)
	out := make([]net.Record[string], 0, len(names))
	for _, name := range names {
		out = append(out, net.Record[string]{Key: name, Fields: constructInterface(name, merged[name])})
	}
	return out, nil
}

// ifaceData gathers the hashes describing one interface
type ifaceData struct {
	config    interface{}
	state     interface{}
	info      interface{}
	dom       interface{}
	l3        interface{}
	routed    bool
	bridged   bool
	members   []string
	addresses []string
}

// mergeInterfaces groups the reply hashes by interface, returning the
// names sorted the way devices list them
func mergeInterfaces(raw connector.Results) ([]string, map[string]*ifaceData) {
	merged := make(map[string]*ifaceData)
	data := func(name string) *ifaceData {
		name = util.NormalizeInterfaceName(name)
		d, ok := merged[name]
		if !ok {
			d = &ifaceData{}
			merged[name] = d
		}
		return d
	}

	for _, e := range entries(raw) {
		name := e.parts[0]
		if name == "" {
			continue
		}
		switch {
		case e.table == "PORT", e.table == "PORTCHANNEL":
			data(name).config = e.hash
		case e.table == "PORT_TABLE", e.table == "LAG_TABLE":
			data(name).state = e.hash
		case e.table == "TRANSCEIVER_INFO":
			data(name).info = e.hash
		case e.table == "TRANSCEIVER_DOM_SENSOR":
			data(name).dom = e.hash
		case e.table == "PORTCHANNEL_MEMBER" && len(e.parts) == 2:
			d := data(name)
			d.members = append(d.members, util.NormalizeInterfaceName(e.parts[1]))
		case e.table == "VLAN_MEMBER" && len(e.parts) == 2:
			data(e.parts[1]).bridged = true
		case strings.HasSuffix(e.table, "INTERFACE"):
			d := data(name)
			d.routed = true
			if len(e.parts) == 1 {
				d.l3 = e.hash
			} else {
				d.addresses = append(d.addresses, e.parts[1])
			}
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	util.SortInterfaceNames(names)
	return names, merged
}

func constructInterface(name string, d *ifaceData) net.Fields {
	adminStatus := "enabled"
	admin := field(d.config, "admin_status")
	if admin == nil {
		admin = field(d.state, "admin_status")
	}
	if admin != nil && strings.EqualFold(admin.(string), "down") {
		adminStatus = "disabled"
	}

	var instance interface{}
	if d.routed {
		instance = "default"
		if vrf := field(d.l3, "vrf_name"); vrf != nil {
			instance = vrf
		}
	}
	var forwarding interface{}
	switch {
	case d.routed:
		forwarding = "routed"
	case d.bridged:
		forwarding = "bridged"
	}

	members := append([]string{}, d.members...)
	util.SortInterfaceNames(members)

	fields := net.Fields{
		"name":             name,
		"description":      field(d.config, "description"),
		"instance":         instance,
		"members":          members,
		"admin_status":     adminStatus,
		"status":           interfaceStatus(d.state, adminStatus),
		"forwarding_model": forwarding,
		"physical":         nil,
		"optical":          interfaceOptical(d.info, d.dom),
		"addresses":        interfaceAddresses(d.addresses),
		"counters":         nil,
	}
	if d.config != nil || d.state != nil {
		var mtu interface{}
		if n := firstNumber(d.config, d.state, "mtu"); n != nil {
			mtu = units.Bytes(n.(float64))
		}
		var bandwidth interface{}
		if mbit := firstNumber(d.config, d.state, "speed"); mbit != nil {
			bandwidth = units.Bits(mbit.(float64) * 1e6)
		}
		mac := field(d.config, "mac")
		if mac == nil {
			mac = field(d.state, "mac")
		}
		fields["physical"] = map[string]interface{}{
			"mac":       mac,
			"mtu":       mtu,
			"duplex":    nil,
			"bandwidth": bandwidth,
		}
	}
	return fields
}

func firstNumber(config, state interface{}, name string) interface{} {
	if n := number(config, name); n != nil {
		return n
	}
	return number(state, name)
}

// interfaceStatus maps oper_status onto the canonical vocabulary; an
// interface without state is left unset
func interfaceStatus(state interface{}, admin string) interface{} {
	oper := field(state, "oper_status")
	switch {
	case oper == nil:
		return nil
	case admin == "disabled":
		return "disabled"
	case strings.EqualFold(oper.(string), "up"):
		return "connected"
	}
	return "down"
}

// interfaceAddresses splits the INTERFACE keys into the primary IPv4, the
// secondaries and the first IPv6 prefix
func interfaceAddresses(prefixes []string) interface{} {
	if len(prefixes) == 0 {
		return nil
	}
	var ipv4, ipv6 interface{}
	secondary := []string{}
	for _, p := range prefixes {
		if _, err := netip.ParsePrefix(p); err != nil {
			util.WithEntity(net.KindInterface, Tag).WithField("prefix", p).Debug("skipping malformed interface address")
			continue
		}
		switch {
		case util.IsIPv4CIDR(p) && ipv4 == nil:
			ipv4 = p
		case util.IsIPv4CIDR(p):
			secondary = append(secondary, p)
		case ipv6 == nil:
			ipv6 = p
		}
	}
	return map[string]interface{}{
		"ipv4":           ipv4,
		"ipv6":           ipv6,
		"secondary_ipv4": secondary,
		"dhcp":           nil,
	}
}

// interfaceOptical returns the lane 1 light levels, nil without a
// transceiver
func interfaceOptical(info, dom interface{}) interface{} {
	if info == nil && dom == nil {
		return nil
	}
	tx, rx := number(dom, "tx1power"), number(dom, "rx1power")
	optical := map[string]interface{}{
		"tx":            tx,
		"rx":            rx,
		"serial_number": field(info, "serial"),
		"media_type":    field(info, "type"),
	}
	if tx != nil && rx != nil {
		optical["status"] = net.LightLevels(tx.(float64), rx.(float64), "sonic")
	}
	return optical
}
