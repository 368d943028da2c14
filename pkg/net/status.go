// Package net holds the canonical network entities (interfaces, VLANs,
// VRRP groups, routes and device facts), their status vocabularies and the
// Builder that turns vendor payloads into them through registered drivers.
package net

import (
	"fmt"
	"strings"

	"github.com/netapi-network/netapi/pkg/util"
)

// InterfaceStatus maps a raw line protocol status to the canonical status,
// whether the interface is up and whether it is enabled. admin is the
// separate admin state some vendors report; it decides enabled for the
// states that do not imply it.
func InterfaceStatus(raw, admin string) (status string, up, enabled bool, err error) {
	status = strings.ToLower(raw)
	switch status {
	case "connected", "up":
		return status, true, true, nil
	case "notconnect":
		return status, false, true, nil
	case "disabled":
		return status, false, false, nil
	case "dormant", "lowerlayerdown", "testing", "down", "notpresent":
		return status, false, admin != "disabled", nil
	}
	return "", false, false, util.NewValidationError(
		fmt.Sprintf("interface status not known: %s - %s", status, admin))
}

// VlanStatus maps a raw VLAN state to the canonical status and up flag
func VlanStatus(raw string) (string, bool, error) {
	status := strings.ToLower(raw)
	switch status {
	case "active":
		return status, true, nil
	case "suspended":
		return status, false, nil
	}
	return "", false, util.NewValidationError("vlan status not known: " + status)
}

// VrrpStatus maps a raw VRRP state to the canonical status and up flag
func VrrpStatus(raw string) (string, bool, error) {
	status := strings.ToLower(raw)
	switch status {
	case "master", "backup":
		return status, true, nil
	case "stopped":
		return status, false, nil
	}
	return "", false, util.NewValidationError("vrrp status not known: " + status)
}

var forwardingModels = map[string]string{
	"dataLink":      "data_link",
	"unauthorized":  "unauthorized",
	"recirculation": "recirculation",
	"routed":        "routed",
	"bridged":       "bridged",
	"quietDataLink": "quiet_data_link",
	"quiteDataLink": "quiet_data_link",
}

// ForwardingModel maps a vendor forwarding model to its canonical name.
// Canonical names map to themselves.
func ForwardingModel(raw string) (string, error) {
	if m, ok := forwardingModels[raw]; ok {
		return m, nil
	}
	for _, m := range forwardingModels {
		if m == raw {
			return m, nil
		}
	}
	return "", util.NewValidationError("unknown forwarding model: " + raw)
}

var protocols = map[string]string{
	"bgp":               "bgp",
	"b":                 "bgp",
	"ibgp":              "ibgp",
	"ebgp":              "ebgp",
	"ospf":              "ospf",
	"o":                 "ospf",
	"ospfv3":            "ospfv3",
	"o3":                "ospfv3",
	"is-is":             "is-is",
	"i":                 "is-is",
	"static":            "static",
	"s":                 "static",
	"rip":               "rip",
	"r":                 "rip",
	"eigrp":             "eigrp",
	"d":                 "eigrp",
	"connected":         "connected",
	"c":                 "connected",
	"directlyconnected": "connected",
}

// ResolveProtocol maps a routing protocol name or one-letter code to its
// canonical name
func ResolveProtocol(raw string) (string, error) {
	p := strings.ToLower(raw)
	if canonical, ok := protocols[p]; ok {
		return canonical, nil
	}
	return "", util.NewValidationError("unknown protocol " + p)
}

// Optical alert flags
const (
	LightGreen  = "green"
	LightYellow = "yellow"
	LightRed    = "red"
)

type powerBand struct {
	lowWarn, highWarn, lowAlarm, highAlarm float64
}

func (b powerBand) alarm(v float64) bool { return v >= b.highAlarm || v <= b.lowAlarm }
func (b powerBand) warn(v float64) bool  { return v >= b.highWarn || v <= b.lowWarn }

var (
	txBand      = powerBand{-7.61, -1.00, -11.61, 1.99}
	rxBand      = powerBand{-9.50, 2.39, -13.56, 3.39}
	rxJunosBand = powerBand{-23.01, -1.00, -23.98, 0.00}
)

// LightLevels flags transceiver tx/rx power in dBm as green, yellow or red.
// Junos reports rx power on a different scale.
func LightLevels(tx, rx float64, osFamily string) string {
	rxb := rxBand
	if strings.EqualFold(osFamily, "junos") {
		rxb = rxJunosBand
	}
	switch {
	case rxb.alarm(rx), txBand.alarm(tx):
		return LightRed
	case rxb.warn(rx), txBand.warn(tx):
		return LightYellow
	}
	return LightGreen
}
