package main

import (
	"bytes"
	"encoding/json"
	"net/netip"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/internal/testutil"
	"github.com/netapi-network/netapi/pkg/connector/eapi"
	"github.com/netapi-network/netapi/pkg/inventory"
	"github.com/netapi-network/netapi/pkg/metrics"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/drivers"
)

// withApp points the shared state at a buffer and a fresh builder for the
// duration of a test
func withApp(t *testing.T) *bytes.Buffer {
	t.Helper()
	saved := *app
	t.Cleanup(func() { *app = saved })

	var buf bytes.Buffer
	app.out = &buf
	app.jsonOutput, app.yamlOutput = false, false
	app.promReg = prometheus.NewRegistry()
	app.metrics = metrics.New(app.promReg)
	app.builder = net.NewBuilder(drivers.NewRegistry(), net.WithMetrics(app.metrics))
	return &buf
}

const eosVlans = `{
  "sourceDetail": "",
  "vlans": {
    "1": {"status": "active", "name": "default", "interfaces": {"Ethernet3": {}}, "dynamic": false},
    "120": {"status": "suspended", "name": "servers", "interfaces": {}, "dynamic": false}
  }
}`

func TestListVlans(t *testing.T) {
	buf := withApp(t)
	c := testutil.NewFakeConnector(eapi.TagEOS, map[string]interface{}{
		"show vlan": testutil.DecodeJSON(t, eosVlans),
	})

	if err := listVlans(testutil.Context(t), c); err != nil {
		t.Fatalf("listVlans() error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, divider and 2 rows, got:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[0], "VLAN ID") {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range []string{"1", "120"} {
		if fields := strings.Fields(lines[i+2]); fields[0] != want {
			t.Errorf("row %d starts with %q, want %q", i, fields[0], want)
		}
	}
	if !strings.Contains(lines[2], "Ethernet3") {
		t.Errorf("row 1 should list Ethernet3: %q", lines[2])
	}
}

func TestListVlans_JSON(t *testing.T) {
	buf := withApp(t)
	app.jsonOutput = true
	c := testutil.NewFakeConnector(eapi.TagEOS, map[string]interface{}{
		"show vlan": testutil.DecodeJSON(t, eosVlans),
	})

	if err := listVlans(testutil.Context(t), c); err != nil {
		t.Fatalf("listVlans() error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) == 0 {
		t.Error("JSON output should not be empty")
	}
}

func TestShowVlan_YAML(t *testing.T) {
	buf := withApp(t)
	app.yamlOutput = true
	c := testutil.NewFakeConnector(eapi.TagEOS, map[string]interface{}{
		"show vlan id 120": testutil.DecodeJSON(t, `{"sourceDetail": "", "vlans": {"120": {"status": "active", "name": "servers", "interfaces": {}, "dynamic": false}}}`),
	})

	if err := showVlan(testutil.Context(t), c, 120); err != nil {
		t.Fatalf("showVlan() error: %v", err)
	}
	for _, want := range []string{"id: 120", "name: servers", "status: active"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestWriteMetrics(t *testing.T) {
	buf := withApp(t)
	c := testutil.NewFakeConnector(eapi.TagEOS, map[string]interface{}{
		"show vlan": testutil.DecodeJSON(t, eosVlans),
	})
	if err := listVlans(testutil.Context(t), c); err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	if err := writeMetrics(buf, app.promReg); err != nil {
		t.Fatalf("writeMetrics() error: %v", err)
	}
	want := `netapi_builder_requests_total{implementation="EOS-PYEAPI",kind="vlan",path="collection",result="ok"} 1`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("metrics output missing %q:\n%s", want, buf.String())
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"100", 100, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseID("VLAN id", tt.arg)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("parseID(%q) = %d, %v", tt.arg, got, err)
			}
		})
	}
}

func TestVias(t *testing.T) {
	intf := "Ethernet1"
	hop := netip.MustParseAddr("10.0.0.1")
	tests := []struct {
		name string
		in   []net.Via
		want string
	}{
		{"none", nil, "-"},
		{"next hop and interface", []net.Via{{Interface: &intf, NextHop: &hop}}, "10.0.0.1%Ethernet1"},
		{"interface only", []net.Via{{Interface: &intf}}, "Ethernet1"},
		{"two", []net.Via{{NextHop: &hop}, {Interface: &intf}}, "10.0.0.1,Ethernet1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vias(tt.in); got != tt.want {
				t.Errorf("vias() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPing(t *testing.T) {
	saved := pingOpts
	t.Cleanup(func() { pingOpts = saved })

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&pingOpts.ttl, "ttl", 0, "")
	pingOpts = pingFlags{count: 3, timeout: 1, size: 100, interval: 0.2, vrf: "blue", sourceIP: "10.0.0.9", warning: -1, critical: -1}

	p, err := buildPing("10.0.0.2", cmd)
	if err != nil {
		t.Fatalf("buildPing() error: %v", err)
	}
	if p.Count != 3 || p.Timeout != 1 || p.Size != 100 || p.Interval != 0.2 {
		t.Errorf("parameters = %d/%d/%d/%v", p.Count, p.Timeout, p.Size, p.Interval)
	}
	if p.TTL != nil {
		t.Errorf("TTL should stay unset, got %d", *p.TTL)
	}
	if p.Instance == nil || *p.Instance != "blue" {
		t.Errorf("Instance = %v", p.Instance)
	}
	if p.SourceIP == nil || p.SourceIP.String() != "10.0.0.9" {
		t.Errorf("SourceIP = %v", p.SourceIP)
	}

	if err := cmd.Flags().Set("ttl", "8"); err != nil {
		t.Fatal(err)
	}
	p, err = buildPing("10.0.0.2", cmd)
	if err != nil {
		t.Fatal(err)
	}
	if p.TTL == nil || *p.TTL != 8 {
		t.Errorf("TTL = %v, want 8", p.TTL)
	}

	pingOpts.sourceIP = "not-an-ip"
	if _, err := buildPing("10.0.0.2", cmd); err == nil {
		t.Error("invalid source address should fail")
	}
}

func TestDeviceViews(t *testing.T) {
	devices := []*inventory.Device{
		{Name: "leaf1", Host: "10.0.0.11", OS: "eos", Provider: "pyeapi", Username: "admin", Password: "secret", Port: 8443},
	}
	got := deviceViews(devices)
	want := []map[string]interface{}{{
		"name":           "leaf1",
		"host":           "10.0.0.11",
		"os":             "eos",
		"provider":       "pyeapi",
		"implementation": "EOS-PYEAPI",
		"username":       "admin",
		"port":           8443,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("deviceViews() = %v, want %v", got, want)
	}
}
