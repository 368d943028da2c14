package net

import (
	"errors"
	"testing"

	"github.com/netapi-network/netapi/pkg/util"
)

func TestInterfaceStatus(t *testing.T) {
	tests := []struct {
		raw, admin  string
		status      string
		up, enabled bool
		wantErr     bool
	}{
		{raw: "connected", status: "connected", up: true, enabled: true},
		{raw: "UP", status: "up", up: true, enabled: true},
		{raw: "notconnect", status: "notconnect", enabled: true},
		{raw: "disabled", status: "disabled"},
		{raw: "down", admin: "enabled", status: "down", enabled: true},
		{raw: "down", admin: "disabled", status: "down"},
		{raw: "lowerLayerDown", status: "lowerlayerdown", enabled: true},
		{raw: "notPresent", admin: "disabled", status: "notpresent"},
		{raw: "errdisabled", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.admin, func(t *testing.T) {
			status, up, enabled, err := InterfaceStatus(tt.raw, tt.admin)
			if tt.wantErr {
				if !errors.Is(err, util.ErrValidationFailed) {
					t.Errorf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if status != tt.status || up != tt.up || enabled != tt.enabled {
				t.Errorf("InterfaceStatus(%q, %q) = %q %v %v, want %q %v %v",
					tt.raw, tt.admin, status, up, enabled, tt.status, tt.up, tt.enabled)
			}
		})
	}
}

func TestVlanAndVrrpStatus(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) (string, bool, error)
		raw     string
		status  string
		up      bool
		wantErr bool
	}{
		{"vlan active", VlanStatus, "Active", "active", true, false},
		{"vlan suspended", VlanStatus, "suspended", "suspended", false, false},
		{"vlan unknown", VlanStatus, "act/lshut", "", false, true},
		{"vrrp master", VrrpStatus, "Master", "master", true, false},
		{"vrrp backup", VrrpStatus, "backup", "backup", true, false},
		{"vrrp stopped", VrrpStatus, "stopped", "stopped", false, false},
		{"vrrp unknown", VrrpStatus, "init", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, up, err := tt.fn(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if status != tt.status || up != tt.up {
				t.Errorf("status = %q %v, want %q %v", status, up, tt.status, tt.up)
			}
		})
	}
}

func TestForwardingModel(t *testing.T) {
	tests := []struct {
		raw, want string
		wantErr   bool
	}{
		{raw: "dataLink", want: "data_link"},
		{raw: "quiteDataLink", want: "quiet_data_link"},
		{raw: "routed", want: "routed"},
		{raw: "data_link", want: "data_link"},
		{raw: "switched", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ForwardingModel(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ForwardingModel(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveProtocol(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"BGP", "bgp"},
		{"o", "ospf"},
		{"O3", "ospfv3"},
		{"i", "is-is"},
		{"d", "eigrp"},
		{"directlyConnected", "connected"},
		{"static", "static"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ResolveProtocol(tt.raw)
			if err != nil || got != tt.want {
				t.Errorf("ResolveProtocol(%q) = %q, %v, want %q", tt.raw, got, err, tt.want)
			}
		})
	}
	if _, err := ResolveProtocol("babel"); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("unknown protocol error = %v", err)
	}
}

func TestLightLevels(t *testing.T) {
	tests := []struct {
		name   string
		tx, rx float64
		family string
		want   string
	}{
		{"nominal", -2, -3, "eos", LightGreen},
		{"tx high warning", -0.5, -3, "eos", LightYellow},
		{"rx low warning", -2, -10, "eos", LightYellow},
		{"tx alarm", 2.5, -3, "eos", LightRed},
		{"rx alarm", -2, -14, "nxos", LightRed},
		{"junos rx scale", -2, -23.5, "junos", LightYellow},
		{"junos rx alarm", -2, -24, "JUNOS", LightRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LightLevels(tt.tx, tt.rx, tt.family); got != tt.want {
				t.Errorf("LightLevels(%v, %v, %s) = %s, want %s", tt.tx, tt.rx, tt.family, got, tt.want)
			}
		})
	}
}
