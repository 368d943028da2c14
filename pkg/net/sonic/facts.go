package sonic

import (
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
)

var factsCommands = []string{
	"CONFIG_DB DEVICE_METADATA|localhost",
	"STATE_DB CHASSIS_INFO|chassis 1",
	"CONFIG_DB PORT|*",
	"CONFIG_DB PORTCHANNEL|*",
}

// FactsDriver combines the device metadata, the chassis EEPROM summary and
// the configured ports. Redis holds neither the image version nor uptime
// and memory, so those facts stay unset.
type FactsDriver struct{}

// EntityCommands returns the facts keys
func (FactsDriver) EntityCommands(net.Query) ([]string, error) {
	return append([]string(nil), factsCommands...), nil
}

// Parse returns the device facts
func (FactsDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	if empty(raw) {
		return nil, parseError(net.KindFacts, "no data to be parsed", raw)
	}
	var metadata, chassis interface{}
	names := []string{}
	for _, e := range entries(raw) {
		switch e.table {
		case "DEVICE_METADATA":
			metadata = e.hash
		case "CHASSIS_INFO":
			chassis = e.hash
		case "PORT", "PORTCHANNEL":
			names = append(names, e.parts[0])
		}
	}

	model := field(metadata, "hwsku")
	if model == nil {
		model = field(chassis, "model")
	}
	var arch interface{}
	if platform := field(metadata, "platform"); platform != nil {
		arch, _, _ = strings.Cut(platform.(string), "-")
	}
	return net.Fields{
		"hostname":         field(metadata, "hostname"),
		"os_version":       nil,
		"model":            model,
		"serial_number":    field(chassis, "serial"),
		"uptime":           nil,
		"system_mac":       field(metadata, "mac"),
		"available_memory": nil,
		"total_memory":     nil,
		"os_arch":          arch,
		"hw_revision":      field(chassis, "revision"),
		"interfaces":       names,
	}, nil
}
