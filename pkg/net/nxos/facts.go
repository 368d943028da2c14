package nxos

import (
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
	"github.com/netapi-network/netapi/pkg/units"
)

var factsCommands = []string{"show hostname", "show version", "show interface brief"}

// FactsDriver combines hostname, version and the interface list
type FactsDriver struct{}

// EntityCommands returns the facts commands
func (FactsDriver) EntityCommands(net.Query) ([]string, error) {
	return append([]string(nil), factsCommands...), nil
}

// Parse returns the device facts. Uptime is split into day, hour, minute
// and second fields; memory is reported in kB.
func (FactsDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	hostname, _ := raw.Get("show hostname")
	version, _ := raw.Get("show version")
	brief, _ := raw.Get("show interface brief")
	if payload.Empty(hostname) && payload.Empty(version) && payload.Empty(brief) {
		return nil, parseError(net.KindFacts, "no data to be parsed", raw)
	}

	var uptime interface{}
	if payload.Get(version, "kern_uptm_days") != nil {
		uptime = map[string]interface{}{
			"days":    number(payload.Get(version, "kern_uptm_days")),
			"hours":   number(payload.Get(version, "kern_uptm_hrs")),
			"minutes": number(payload.Get(version, "kern_uptm_mins")),
			"seconds": number(payload.Get(version, "kern_uptm_secs")),
		}
	}
	var memory interface{}
	if kb := number(payload.Get(version, "memory")); kb != nil {
		memory = units.Bytes(kb.(float64) * 1000)
	}

	names := []string{}
	for _, row := range rows(brief, "interface") {
		if name := payload.Text(payload.Get(row, "interface")); name != "" {
			names = append(names, name)
		}
	}
	return net.Fields{
		"hostname":         text(firstOf(payload.Get(hostname, "hostname"), payload.Get(version, "host_name"))),
		"os_version":       text(firstOf(payload.Get(version, "nxos_ver_str"), payload.Get(version, "kickstart_ver_str"))),
		"model":            text(payload.Get(version, "chassis_id")),
		"serial_number":    text(payload.Get(version, "proc_board_id")),
		"uptime":           uptime,
		"available_memory": nil,
		"total_memory":     memory,
		"os_arch":          text(payload.Get(version, "cpu_name")),
		"hw_revision":      nil,
		"interfaces":       names,
	}, nil
}
