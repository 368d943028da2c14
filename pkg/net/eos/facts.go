package eos

import (
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/payload"
)

var factsCommands = []string{"show hostname", "show version", "show interfaces"}

// FactsDriver combines hostname, version and the interface list
type FactsDriver struct{}

// EntityCommands returns the facts commands
func (FactsDriver) EntityCommands(net.Query) ([]string, error) {
	return append([]string(nil), factsCommands...), nil
}

// Parse returns the device facts. Memory is reported in kB.
func (FactsDriver) Parse(raw connector.Results, q net.Query) (net.Fields, error) {
	hostname, _ := raw.Get("show hostname")
	version, _ := raw.Get("show version")
	interfaces, _ := raw.Get("show interfaces")
	if payload.Empty(hostname) && payload.Empty(version) && payload.Empty(interfaces) {
		return nil, parseError(net.KindFacts, "no data to be parsed", raw)
	}

	names := payload.Keys(payload.Get(interfaces, "interfaces"))
	if names == nil {
		names = []string{}
	}
	return net.Fields{
		"hostname":         payload.Get(hostname, "hostname"),
		"os_version":       payload.Get(version, "version"),
		"model":            payload.Get(version, "modelName"),
		"serial_number":    payload.Get(version, "serialNumber"),
		"uptime":           payload.Get(version, "uptime"),
		"up_since":         payload.Get(version, "bootupTimestamp"),
		"system_mac":       payload.Get(version, "systemMacAddress"),
		"available_memory": kilobytes(payload.Get(version, "memFree")),
		"total_memory":     kilobytes(payload.Get(version, "memTotal")),
		"os_arch":          payload.Get(version, "architecture"),
		"hw_revision":      payload.Get(version, "hardwareRevision"),
		"interfaces":       names,
	}, nil
}
