package eos

import (
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// InterfaceDriver parses "show interfaces", "show ip interface" and the
// transceiver table into one record per interface
type InterfaceDriver struct{}

// RunOptions prunes commands the platform rejects; virtual and logical
// interfaces have no transceiver table
func (InterfaceDriver) RunOptions() connector.RunOptions {
	return connector.RunOptions{Silent: true}
}

// EntityCommands returns the commands retrieving interface q.Name
func (InterfaceDriver) EntityCommands(q net.Query) ([]string, error) {
	if len(q.Names) > 0 {
		return nil, util.NewFieldError(net.KindInterface, "name", q.Names, errNoList)
	}
	if q.Name == "" {
		return nil, util.NewFieldError(net.KindInterface, "name", q.Name, util.NewValidationError("interface name is required"))
	}
	return interfaceCommands(q.Name), nil
}

// CollectionCommands returns the commands retrieving every interface or
// those in q.Range
func (InterfaceDriver) CollectionCommands(q net.Query) ([]string, error) {
	if len(q.Names) > 0 {
		return nil, util.NewFieldError(net.KindInterface, "range", q.Names, errNoList)
	}
	return interfaceCommands(q.Range), nil
}

var errNoList = util.NewValidationError(`must pass a range string (e.g. "Ethernet1-10") or nothing to collect all`)

func interfaceCommands(scope string) []string {
	if scope == "" {
		return []string{"show interfaces", "show ip interface", "show interfaces transceiver"}
	}
	return []string{
		"show interfaces " + scope,
		"show ip interface " + scope,
		"show interfaces " + scope + " transceiver",
	}
}

// Parse returns the fields of a single interface
func (InterfaceDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	merged, err := mergeInterfaces(raw, true)
	if err != nil {
		return nil, err
	}
	var fields net.Fields
	for _, name := range merged.Keys() {
		data, _ := merged.Get(name)
		if fields, err = constructInterface(name, data); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// CollectorParse returns every interface keyed by name
func (InterfaceDriver) CollectorParse(raw connector.Results, q net.Query) ([]net.Record[string], error) {
	merged, err := mergeInterfaces(raw, false)
	if err != nil {
		return nil, err
	}
	out := make([]net.Record[string], 0, merged.Len())
	for _, name := range merged.Keys() {
		data, _ := merged.Get(name)
		fields, err := constructInterface(name, data)
		if err != nil {
			return nil, err
		}
		out = append(out, net.Record[string]{Key: util.NormalizeInterfaceName(name), Fields: fields})
	}
	return out, nil
}

// mergeInterfaces unions the per-interface records of every command. A
// key reported by several commands takes the value of the last one.
func mergeInterfaces(raw connector.Results, single bool) (*connector.Object, error) {
	merged := connector.NewObject()
	for _, res := range raw {
		if res.Output == nil {
			continue
		}
		table := payload.Get(res.Output, "interfaces")
		if payload.Object(res.Output) == nil || (table != nil && payload.Object(table) == nil) {
			return nil, parseError(net.KindInterface, "unexpected reply to "+res.Command, raw)
		}
		for _, name := range payload.Keys(table) {
			data := payload.Get(table, name)
			current := payload.Object(data)
			if current == nil {
				continue
			}
			prev, ok := merged.Get(name)
			if !ok {
				merged.Set(name, current)
				continue
			}
			merged.Set(name, util.MergeMaps(payload.Object(prev).Map(), current.Map()))
		}
	}
	if merged.Len() == 0 {
		return nil, parseError(net.KindInterface, "no data to be parsed", raw)
	}
	if single && merged.Len() > 1 {
		warnMultiple(net.KindInterface, merged.Len())
	}
	return merged, nil
}

func constructInterface(name string, data interface{}) (net.Fields, error) {
	if payload.Empty(data) {
		return nil, parseError(net.KindInterface, "no data to be parsed", data)
	}
	stats := payload.Get(data, "interfaceStatistics")
	counterInfo := payload.Get(data, "interfaceCounters")

	optical, err := interfaceOptical(data)
	if err != nil {
		return nil, err
	}

	members := payload.Keys(payload.Get(data, "memberInterfaces"))
	if members == nil {
		members = []string{}
	}

	return net.Fields{
		"name":                  name,
		"forwarding_model":      payload.Get(data, "forwardingModel"),
		"description":           payload.Get(data, "description"),
		"instance":              payload.Get(data, "vrf"),
		"status":                payload.Get(data, "interfaceStatus"),
		"last_status_change":    payload.Get(data, "lastStatusChangeTimestamp"),
		"last_clear":            payload.Get(counterInfo, "lastClear"),
		"number_status_changes": payload.Get(counterInfo, "linkStatusChanges"),
		"update_interval":       payload.Get(stats, "updateInterval"),
		"members":               members,
		"physical": map[string]interface{}{
			"mac":       payload.Get(data, "physicalAddress"),
			"mtu":       getOr(data, "mtu", 0.0),
			"duplex":    payload.Get(data, "duplex"),
			"bandwidth": getOr(data, "bandwidth", 0.0),
		},
		"addresses": interfaceAddresses(payload.Get(data, "interfaceAddress")),
		"optical":   optical,
		"counters":  interfaceCounters(counterInfo, stats),
	}, nil
}

// interfaceAddresses reads interfaceAddress, which "show interfaces"
// reports as a list and "show ip interface" as a single object
func interfaceAddresses(info interface{}) interface{} {
	if list, ok := info.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		info = list[0]
	}
	if payload.Empty(info) || payload.Object(info) == nil {
		return nil
	}
	secondary := []string{}
	for _, ip := range payload.List(payload.Get(info, "secondaryIpsOrderedList")) {
		secondary = append(secondary, util.FormatIPWithMask(payload.Text(payload.Get(ip, "address")), payload.Get(ip, "maskLen")))
	}
	addresses := map[string]interface{}{
		"dhcp":           payload.Get(info, "dhcp"),
		"secondary_ipv4": secondary,
	}
	if ip := payload.Get(info, "primaryIp"); !payload.Empty(ip) {
		addresses["ipv4"] = util.FormatIPWithMask(payload.Text(payload.Get(ip, "address")), payload.Get(ip, "maskLen"))
	}
	if ip := payload.Get(info, "linkLocalIp6"); !payload.Empty(ip) {
		addresses["ipv6"] = util.FormatIPWithMask(payload.Text(payload.Get(ip, "address")), payload.Get(ip, "maskLen"))
	}
	return addresses
}

func interfaceCounters(info, stats interface{}) interface{} {
	if payload.Empty(info) {
		return nil
	}
	counters := map[string]interface{}{
		"tx_broadcast_pkts": getOr(info, "outBroadcastPkts", 0.0),
		"rx_broadcast_pkts": getOr(info, "inBroadcastPkts", 0.0),
		"tx_unicast_pkts":   getOr(info, "outUcastPkts", 0.0),
		"rx_unicast_pkts":   getOr(info, "inUcastPkts", 0.0),
		"tx_multicast_pkts": getOr(info, "outMulticastPkts", 0.0),
		"rx_multicast_pkts": getOr(info, "inMulticastPkts", 0.0),
		"tx_bytes":          getOr(info, "outOctets", 0.0),
		"rx_bytes":          getOr(info, "inOctets", 0.0),
		"tx_errors_general": getOr(info, "totalOutErrors", 0.0),
		"rx_errors_general": getOr(info, "totalInErrors", 0.0),
		"tx_discards":       getOr(info, "outDiscards", 0.0),
		"rx_discards":       getOr(info, "inDiscards", 0.0),
	}
	if tx := payload.Get(info, "outputErrorsDetail"); !payload.Empty(tx) {
		counters["tx_errors_collisions"] = getOr(tx, "collisions", 0.0)
		counters["tx_errors_deferred_transmissions"] = getOr(tx, "deferredTransmissions", 0.0)
		counters["tx_errors_tx_pause"] = getOr(tx, "txPause", 0.0)
		counters["tx_errors_late_collisions"] = getOr(tx, "lateCollisions", 0.0)
	}
	if rx := payload.Get(info, "inputErrorsDetail"); !payload.Empty(rx) {
		counters["rx_errors_runt"] = getOr(rx, "runtFrames", 0.0)
		counters["rx_errors_rx_pause"] = getOr(rx, "rxPause", 0.0)
		counters["rx_errors_fcs"] = getOr(rx, "fcsErrors", 0.0)
		counters["rx_errors_crc"] = getOr(rx, "alignmentErrors", 0.0)
		counters["rx_errors_giant"] = getOr(rx, "giantFrames", 0.0)
		counters["rx_errors_symbol"] = getOr(rx, "symbolErrors", 0.0)
	}
	if !payload.Empty(stats) {
		counters["rx_bits_rate"] = getOr(stats, "inBitsRate", 0.0)
		counters["rx_pkts_rate"] = getOr(stats, "inPktsRate", 0.0)
		counters["tx_bits_rate"] = getOr(stats, "outBitsRate", 0.0)
		counters["tx_pkts_rate"] = getOr(stats, "outPktsRate", 0.0)
	}
	return counters
}

// interfaceOptical returns the transceiver levels, nil when the interface
// reported none
func interfaceOptical(data interface{}) (interface{}, error) {
	optical := map[string]interface{}{
		"tx":            payload.Get(data, "txPower"),
		"rx":            payload.Get(data, "rxPower"),
		"serial_number": payload.Get(data, "vendorSn"),
		"media_type":    payload.Get(data, "mediaType"),
	}
	empty := true
	for _, v := range optical {
		if !payload.Empty(v) {
			empty = false
		}
	}
	if empty {
		return nil, nil
	}
	if optical["tx"] != nil && optical["rx"] != nil {
		tx, err := units.ToFloat(optical["tx"])
		if err != nil {
			return nil, parseError(net.KindInterface, "txPower is not numeric", data)
		}
		rx, err := units.ToFloat(optical["rx"])
		if err != nil {
			return nil, parseError(net.KindInterface, "rxPower is not numeric", data)
		}
		optical["status"] = net.LightLevels(tx, rx, "eos")
	}
	return optical, nil
}
