package eos

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/netapi-network/netapi/internal/testutil"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/metrics"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/util"
)

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		gen  func() ([]string, error)
		want []string
	}{
		{"vlan entity", func() ([]string, error) { return VlanDriver{}.EntityCommands(net.Query{ID: 7}) }, []string{"show vlan id 7"}},
		{"vlan collection", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{}) }, []string{"show vlan"}},
		{"vlan id list", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{IDs: []int{70, 7, 20}}) }, []string{"show vlan id 7 - 70"}},
		{"vlan range", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{Range: "1-10"}) }, []string{"show vlan id 1-10"}},
		{"vlan range compacted", func() ([]string, error) {
			return VlanDriver{}.CollectionCommands(net.Query{Range: "30, 10 - 12,11"})
		}, []string{"show vlan id 10-12,30"}},
		{"vrrp interface", func() ([]string, error) {
			return VrrpDriver{}.EntityCommands(net.Query{Group: 7, Interface: "Vlan7"})
		}, []string{"show vrrp group 7 interface Vlan7 all"}},
		{"vrrp instance", func() ([]string, error) {
			return VrrpDriver{}.EntityCommands(net.Query{Group: 70, Instance: "TEST-VRF"})
		}, []string{"show vrrp group 70 vrf TEST-VRF all"}},
		{"vrrp any", func() ([]string, error) { return VrrpDriver{}.EntityCommands(net.Query{Group: 7}) }, []string{"show vrrp group 7 vrf all"}},
		{"vrrps", func() ([]string, error) { return VrrpDriver{}.CollectionCommands(net.Query{}) }, []string{"show vrrp all"}},
		{"vrrps interface", func() ([]string, error) { return VrrpDriver{}.CollectionCommands(net.Query{Interface: "Vlan7"}) }, []string{"show vrrp interface Vlan7 all"}},
		{"interface", func() ([]string, error) { return InterfaceDriver{}.EntityCommands(net.Query{Name: "Ethernet1"}) }, []string{
			"show interfaces Ethernet1", "show ip interface Ethernet1", "show interfaces Ethernet1 transceiver",
		}},
		{"interfaces", func() ([]string, error) { return InterfaceDriver{}.CollectionCommands(net.Query{}) }, []string{
			"show interfaces", "show ip interface", "show interfaces transceiver",
		}},
		{"facts", func() ([]string, error) { return FactsDriver{}.EntityCommands(net.Query{}) }, []string{"show hostname", "show version", "show interfaces"}},
		{"route", func() ([]string, error) { return RouteDriver{}.EntityCommands(net.Query{Dest: "3.3.3.3"}) }, []string{"show ip route 3.3.3.3 detail"}},
		{"route vrf", func() ([]string, error) {
			return RouteDriver{}.EntityCommands(net.Query{Dest: "5.5.5.5", Instance: "MANAGEMENT"})
		}, []string{"show ip route vrf MANAGEMENT 5.5.5.5 detail"}},
		{"routes vrf protocol", func() ([]string, error) {
			return RouteDriver{}.CollectionCommands(net.Query{Instance: "MANAGEMENT", Protocol: "static"})
		}, []string{"show ip route vrf MANAGEMENT static"}},
		{"routes protocol", func() ([]string, error) { return RouteDriver{}.CollectionCommands(net.Query{Protocol: "bgp"}) }, []string{"show ip route bgp"}},
		{"routes vrf all", func() ([]string, error) { return RouteDriver{}.CollectionCommands(net.Query{VRFAll: true}) }, []string{"show ip route vrf all"}},
		{"routes", func() ([]string, error) { return RouteDriver{}.CollectionCommands(net.Query{}) }, []string{"show ip route"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.gen()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("commands = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  func() ([]string, error)
	}{
		{"vlan id out of range", func() ([]string, error) { return VlanDriver{}.EntityCommands(net.Query{ID: 4095}) }},
		{"interface list", func() ([]string, error) {
			return InterfaceDriver{}.CollectionCommands(net.Query{Names: []string{"Ethernet1", "Ethernet2"}})
		}},
		{"interface without name", func() ([]string, error) { return InterfaceDriver{}.EntityCommands(net.Query{}) }},
		{"route without dest", func() ([]string, error) { return RouteDriver{}.EntityCommands(net.Query{}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.gen()
			if !errors.Is(err, util.ErrValidationFailed) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestParseVlan(t *testing.T) {
	out := testutil.LoadJSON(t, "vlan.json")

	t.Run("unset fields", func(t *testing.T) {
		fields, err := VlanDriver{}.Parse(testutil.Results(out, "show vlan id 7"), net.Query{ID: 7})
		if err != nil {
			t.Fatal(err)
		}
		v, err := net.BuildVlan(fields)
		if err != nil {
			t.Fatal(err)
		}
		if v.ID != 7 || v.Name != nil || v.Status != nil || v.StatusUp != nil || v.Interfaces != nil {
			t.Errorf("vlan = %+v", v)
		}
	})

	t.Run("suspended", func(t *testing.T) {
		fields, err := VlanDriver{}.Parse(testutil.Results(out, "show vlan id 70"), net.Query{ID: 70})
		if err != nil {
			t.Fatal(err)
		}
		v, err := net.BuildVlan(fields)
		if err != nil {
			t.Fatal(err)
		}
		if v.ID != 70 || *v.Name != "TEST_VLAN" || *v.Status != "suspended" || *v.StatusUp || *v.Dynamic {
			t.Errorf("vlan = %+v", v)
		}
		if !reflect.DeepEqual(v.Interfaces, []string{"Ethernet1", "Ethernet2"}) {
			t.Errorf("interfaces = %v", v.Interfaces)
		}
	})

	t.Run("collection", func(t *testing.T) {
		records, err := VlanDriver{}.CollectorParse(testutil.Results(out, "show vlan"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		var keys []int
		for _, r := range records {
			keys = append(keys, r.Key)
		}
		if !reflect.DeepEqual(keys, []int{1, 7, 70}) {
			t.Errorf("keys = %v", keys)
		}
		if records[2].Fields["interfaces"] != nil {
			t.Errorf("vlan without members should have no interface list, got %v", records[2].Fields["interfaces"])
		}
	})

	t.Run("multiple matches use the last", func(t *testing.T) {
		fields, err := VlanDriver{}.Parse(testutil.Results(out, "show vlan"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		if fields["id"] != 70 {
			t.Errorf("id = %v, want 70", fields["id"])
		}
	})

	t.Run("no data", func(t *testing.T) {
		raw := testutil.Results(map[string]interface{}{
			"show vlan id 9": testutil.DecodeJSON(t, `{"sourceDetail": "", "vlans": {}}`),
		}, "show vlan id 9")
		_, err := VlanDriver{}.Parse(raw, net.Query{ID: 9})
		var pe *util.ParseError
		if !errors.As(err, &pe) || pe.Payload == nil {
			t.Fatalf("error = %v, want parse error carrying the payload", err)
		}
	})
}

func TestParseVrrp(t *testing.T) {
	out := testutil.LoadJSON(t, "vrrp.json")

	t.Run("master", func(t *testing.T) {
		fields, err := VrrpDriver{}.Parse(testutil.Results(out, "show vrrp group 7 interface Vlan7 all"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		v, err := net.BuildVrrp(fields)
		if err != nil {
			t.Fatal(err)
		}
		if v.GroupID != 7 || *v.Interface != "Vlan7" || *v.Status != "master" || !*v.StatusUp {
			t.Errorf("vrrp = %+v", v)
		}
		if *v.MasterDownInterval != 3.21 {
			t.Errorf("master_down_interval = %v, want 3.21", *v.MasterDownInterval)
		}
		if v.VirtualMAC.String() != "00-00-5E-00-77-77" || v.VirtualIP.String() != "7.7.7.7" || v.MasterIP.String() != "7.7.7.1" {
			t.Errorf("addresses = %v %v %v", v.VirtualMAC, v.VirtualIP, v.MasterIP)
		}
		if v.MasterPriority != nil {
			t.Errorf("master_priority = %v, want unset", *v.MasterPriority)
		}
		if len(v.TrackedObjects) != 1 || v.TrackedObjects[0]["trackedObject"] != "LO77" {
			t.Errorf("tracked_objects = %v", v.TrackedObjects)
		}
		want := map[string]interface{}{
			"bfd_peer_ip":                 "7.7.7.2",
			"preempt_reload":              float64(0),
			"vrrp_id_disabled":            false,
			"vrrp_id_disabled_reason":     "",
			"vrrp_advertisement_interval": float64(1),
		}
		if !reflect.DeepEqual(v.ExtraAttributes, want) {
			t.Errorf("extra_attributes = %v", v.ExtraAttributes)
		}
	})

	t.Run("stopped", func(t *testing.T) {
		fields, err := VrrpDriver{}.Parse(testutil.Results(out, "show vrrp group 70 vrf TEST-VRF all"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		v, err := net.BuildVrrp(fields)
		if err != nil {
			t.Fatal(err)
		}
		if v.Interface != nil || *v.Status != "stopped" || *v.StatusUp || *v.Instance != "TEST-VRF" {
			t.Errorf("vrrp = %+v", v)
		}
		if len(v.VirtualIPSecondary) != 0 {
			t.Errorf("virtual_ip_secondary = %v", v.VirtualIPSecondary)
		}
	})

	t.Run("collection", func(t *testing.T) {
		records, err := VrrpDriver{}.CollectorParse(testutil.Results(out, "show vrrp all"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		want := []net.VrrpKey{{GroupID: 7, Interface: "Vlan7"}, {GroupID: 8, Interface: "Vlan8"}}
		if len(records) != 2 || records[0].Key != want[0] || records[1].Key != want[1] {
			t.Errorf("records = %+v", records)
		}
	})

	t.Run("entity takes the first group", func(t *testing.T) {
		fields, err := VrrpDriver{}.Parse(testutil.Results(out, "show vrrp all"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		if fields["group_id"] != float64(7) {
			t.Errorf("group_id = %v, want 7", fields["group_id"])
		}
	})
}

func TestParseInterface(t *testing.T) {
	out := testutil.LoadJSON(t, "interface.json")
	parse := func(t *testing.T, name string) *net.Interface {
		t.Helper()
		cmds, err := InterfaceDriver{}.EntityCommands(net.Query{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		fields, err := InterfaceDriver{}.Parse(testutil.Results(out, cmds...), net.Query{Name: name})
		if err != nil {
			t.Fatal(err)
		}
		i, err := net.BuildInterface(fields)
		if err != nil {
			t.Fatal(err)
		}
		if err := i.Validate(); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		return i
	}

	t.Run("l3 vlan", func(t *testing.T) {
		i := parse(t, "Vlan177")
		if i.Name != "Vlan177" || !*i.Enabled || !*i.StatusUp || *i.Status != "connected" || *i.Instance != "default" {
			t.Errorf("interface = %+v", i)
		}
		if *i.ForwardingModel != "routed" {
			t.Errorf("forwarding_model = %v", *i.ForwardingModel)
		}
		if got := i.LastStatusChange.Format(time.RFC3339Nano); got != "2019-05-09T10:41:29.192066Z" {
			t.Errorf("last_status_change = %s", got)
		}
		if i.Addresses == nil || i.Addresses.IPv4.String() != "10.177.0.68/28" || *i.Addresses.DHCP || i.Addresses.IPv6 != nil {
			t.Errorf("addresses = %+v", i.Addresses)
		}
		if i.Counters != nil || i.Optical != nil || i.NumberStatusChanges != nil || i.LastClear != nil {
			t.Errorf("counters %v optical %v should be absent", i.Counters, i.Optical)
		}
		if *i.Physical.MTU != 1500 || *i.Physical.Bandwidth != 0 || i.Physical.MAC.String() != "28-99-3A-F8-5D-E8" {
			t.Errorf("physical = %+v", i.Physical)
		}
	})

	t.Run("l2 ethernet with optics", func(t *testing.T) {
		i := parse(t, "Ethernet52")
		if i.Instance != nil || *i.ForwardingModel != "data_link" || len(i.Members) != 0 {
			t.Errorf("interface = %+v", i)
		}
		if i.Optical == nil || *i.Optical.Status != net.LightGreen || *i.Optical.SerialNumber != "ACW1738001SP" {
			t.Errorf("optical = %+v", i.Optical)
		}
		if i.Addresses != nil {
			t.Errorf("addresses = %+v, want absent", i.Addresses)
		}
		if i.Counters == nil || i.Counters.RxBytes != 89625885 || i.Counters.TxBroadcastPkts != 90463 {
			t.Fatalf("counters = %+v", i.Counters)
		}
		if *i.Counters.RxBitsRate != 218.61442406465778 {
			t.Errorf("rx_bits_rate = %v", *i.Counters.RxBitsRate)
		}
		if *i.NumberStatusChanges != 4 || *i.UpdateInterval != 5 {
			t.Errorf("status changes %v update interval %v", *i.NumberStatusChanges, *i.UpdateInterval)
		}
		if got := i.LastClear.Format(time.RFC3339Nano); got != "2019-05-28T09:26:07.458264Z" {
			t.Errorf("last_clear = %s", got)
		}
		if *i.Physical.Duplex != "duplexFull" || i.Physical.MAC.String() != "00-1C-73-F9-E4-3B" {
			t.Errorf("physical = %+v", i.Physical)
		}
	})

	t.Run("l3 port-channel", func(t *testing.T) {
		i := parse(t, "Port-Channel200")
		if !reflect.DeepEqual(i.Members, []string{"Ethernet52"}) {
			t.Errorf("members = %v", i.Members)
		}
		if *i.UpdateInterval != 300 || *i.NumberStatusChanges != 2 {
			t.Errorf("update interval %v changes %v", *i.UpdateInterval, *i.NumberStatusChanges)
		}
		if !reflect.DeepEqual(i.Addresses.SecondaryIPv4, []string{"10.177.1.9/30"}) {
			t.Errorf("secondary_ipv4 = %v", i.Addresses.SecondaryIPv4)
		}
		if i.Counters.RxErrorsFCS != 0 || i.Counters.TxErrorsCollisions != 0 {
			t.Errorf("error counters should default to zero: %+v", i.Counters)
		}
	})

	t.Run("collection merges every command", func(t *testing.T) {
		raw := connector.Results{
			{Command: "show interfaces", Output: out["show interfaces Ethernet52"]},
			{Command: "show ip interface", Output: out["show ip interface Port-Channel200"]},
			{Command: "show interfaces transceiver", Output: out["show interfaces Ethernet52 transceiver"]},
		}
		records, err := InterfaceDriver{}.CollectorParse(raw, net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != 2 || records[0].Key != "Ethernet52" || records[1].Key != "Port-Channel200" {
			t.Fatalf("records = %+v", records)
		}
		if records[0].Fields["optical"] == nil {
			t.Error("transceiver data was not merged")
		}
	})

	t.Run("no output", func(t *testing.T) {
		raw := connector.Results{{Command: "show interfaces Ethernet9"}, {Command: "show interfaces Ethernet9 transceiver"}}
		if _, err := (InterfaceDriver{}).Parse(raw, net.Query{}); !errors.Is(err, util.ErrParseFailed) {
			t.Errorf("error = %v, want parse error", err)
		}
	})
}

func TestParseFacts(t *testing.T) {
	out := testutil.LoadJSON(t, "facts.json")
	fields, err := FactsDriver{}.Parse(testutil.Results(out, factsCommands...), net.Query{})
	if err != nil {
		t.Fatal(err)
	}
	f, err := net.BuildFacts(fields)
	if err != nil {
		t.Fatal(err)
	}
	if *f.Hostname != "lab-device" || *f.OSVersion != "4.21.5F" || *f.Model != "vEOS" || *f.SerialNumber != "SOMESERIAL" {
		t.Errorf("facts = %+v", f)
	}
	if *f.Uptime != 19*time.Hour+5*time.Minute+21*time.Second+630*time.Millisecond {
		t.Errorf("uptime = %v", *f.Uptime)
	}
	if got := f.UpSince.Format(time.RFC3339Nano); got != "2019-06-01T10:35:55.682022Z" {
		t.Errorf("up_since = %s", got)
	}
	if *f.AvailableMemory != 1031120000 || *f.TotalMemory != 1265832000 {
		t.Errorf("memory = %v / %v", *f.AvailableMemory, *f.TotalMemory)
	}
	if f.HWRevision != nil {
		t.Errorf("empty hardware revision should be absent, got %q", *f.HWRevision)
	}
	if f.SystemMAC.String() != "0C-62-02-A6-87-A3" {
		t.Errorf("system_mac = %s", f.SystemMAC)
	}
	if !reflect.DeepEqual(f.Interfaces, []string{"Ethernet1", "Ethernet2"}) {
		t.Errorf("interfaces = %v", f.Interfaces)
	}

	if _, err := (FactsDriver{}).Parse(connector.Results{}, net.Query{}); !errors.Is(err, util.ErrParseFailed) {
		t.Errorf("empty reply error = %v", err)
	}
}

func TestParseRoute(t *testing.T) {
	out := testutil.LoadJSON(t, "route.json")
	tests := []struct {
		name     string
		query    net.Query
		dest     string
		instance string
		viaIntf  string
		nextHop  string
		metric   *int
	}{
		{name: "interface via", query: net.Query{Dest: "3.3.3.3"}, dest: "3.3.3.3", instance: "default", viaIntf: "Loopback77"},
		{name: "interface and next hop", query: net.Query{Dest: "2.2.2.2"}, dest: "2.2.2.2", instance: "default", viaIntf: "Loopback77", nextHop: "77.77.77.2", metric: new(int)},
		{name: "vrf", query: net.Query{Dest: "5.5.5.5", Instance: "MANAGEMENT"}, dest: "5.5.5.5", instance: "MANAGEMENT", viaIntf: "Management1", nextHop: "10.77.7.1", metric: new(int)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, _ := RouteDriver{}.EntityCommands(tt.query)
			fields, err := RouteDriver{}.Parse(testutil.Results(out, cmds...), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			r, err := net.BuildRoute(fields)
			if err != nil {
				t.Fatal(err)
			}
			if r.Dest != tt.dest || *r.Instance != tt.instance || !*r.Active || *r.Protocol != "static" {
				t.Errorf("route = %+v", r)
			}
			if len(r.Vias) != 1 || *r.Vias[0].Interface != tt.viaIntf {
				t.Fatalf("vias = %+v", r.Vias)
			}
			if tt.nextHop == "" && r.Vias[0].NextHop != nil || tt.nextHop != "" && r.Vias[0].NextHop.String() != tt.nextHop {
				t.Errorf("next hop = %v, want %q", r.Vias[0].NextHop, tt.nextHop)
			}
			if (tt.metric == nil) != (r.Metric == nil) {
				t.Errorf("metric = %v", r.Metric)
			}
			if r.ExtraAttributes["route_action"] != "forward" || r.ExtraAttributes["route_leaked"] != false {
				t.Errorf("extra_attributes = %v", r.ExtraAttributes)
			}
		})
	}

	t.Run("not found", func(t *testing.T) {
		q := net.Query{Dest: "9.9.9.9"}
		fields, err := RouteDriver{}.Parse(testutil.Results(out, "show ip route 9.9.9.9 detail"), q)
		if err != nil {
			t.Fatal(err)
		}
		r, err := net.BuildRoute(fields)
		if err != nil {
			t.Fatal(err)
		}
		if r.Dest != "9.9.9.9" || *r.Active || *r.InactiveReason != "Route not found" || len(r.Vias) != 0 {
			t.Errorf("route = %+v", r)
		}
	})

	t.Run("collection", func(t *testing.T) {
		records, err := RouteDriver{}.CollectorParse(testutil.Results(out, "show ip route vrf all"), net.Query{VRFAll: true})
		if err != nil {
			t.Fatal(err)
		}
		var keys []string
		for _, r := range records {
			keys = append(keys, r.Key.String())
		}
		want := []string{"(default, 2.2.2.2/32)", "(default, 10.77.77.0/24)", "(MANAGEMENT, 0.0.0.0/0)"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("keys = %v, want %v", keys, want)
		}
		if records[2].Fields["active"] != false {
			t.Error("unprogrammed route should be inactive")
		}
	})
}

func newBuilder(t *testing.T) (*net.Builder, *prometheus.Registry) {
	t.Helper()
	reg := net.NewRegistry()
	Register(reg)
	prom := prometheus.NewRegistry()
	return net.NewBuilder(reg, net.WithMetrics(metrics.New(prom))), prom
}

func TestBuilderInterface(t *testing.T) {
	b, prom := newBuilder(t)
	fake := testutil.NewFakeConnector(Tag, testutil.LoadJSON(t, "interface.json"))
	ctx := testutil.Context(t)

	i, err := b.Interface(ctx, fake, net.Query{Name: "Vlan177"})
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	if len(fake.Calls) != 1 || len(fake.Calls[0]) != 3 {
		t.Errorf("calls = %q", fake.Calls)
	}
	if i.Optical != nil {
		t.Errorf("optical = %+v, want absent for the pruned transceiver command", i.Optical)
	}
	if !fake.Options[0].Silent {
		t.Error("interface retrieval should run silently")
	}
	if i.Meta().Implementation != Tag || len(i.GetCmd) != 3 || i.Connector() != fake {
		t.Errorf("binding: implementation %q cmds %q", i.Meta().Implementation, i.GetCmd)
	}

	fake.Set("show ip interface Vlan177", testutil.DecodeJSON(t, `{"interfaces": {"Vlan177": {"description": "renamed", "vrf": "BLUE"}}}`))
	if err := i.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if *i.Description != "renamed" || *i.Instance != "BLUE" || i.Meta().CollectionCount() != 1 {
		t.Errorf("after refresh description %q instance %q count %d", *i.Description, *i.Instance, i.Meta().CollectionCount())
	}

	if got := requests(t, prom, net.KindInterface, metrics.PathEntity, "ok"); got != 2 {
		t.Errorf("ok retrievals = %v, want 2", got)
	}
}

func TestBuilderCollections(t *testing.T) {
	b, _ := newBuilder(t)
	outputs := testutil.LoadJSON(t, "vlan.json")
	for k, v := range testutil.LoadJSON(t, "vrrp.json") {
		outputs[k] = v
	}
	for k, v := range testutil.LoadJSON(t, "route.json") {
		outputs[k] = v
	}
	fake := testutil.NewFakeConnector(Tag, outputs)
	ctx := testutil.Context(t)

	vlans, err := b.Vlans(ctx, fake, net.Query{})
	if err != nil {
		t.Fatalf("Vlans: %v", err)
	}
	if !reflect.DeepEqual(vlans.Keys(), []int{1, 7, 70}) {
		t.Errorf("vlan keys = %v", vlans.Keys())
	}
	first, _ := vlans.Get(1)
	if first.Meta().Parent != vlans.Meta().ID().String() || first.Meta().Implementation != Tag {
		t.Errorf("member metadata = %+v", first.Meta())
	}

	vrrps, err := b.Vrrps(ctx, fake, net.Query{})
	if err != nil {
		t.Fatalf("Vrrps: %v", err)
	}
	backup, ok := vrrps.Get(net.VrrpKey{GroupID: 8, Interface: "Vlan8"})
	if !ok || *backup.Status != "backup" || !*backup.StatusUp || *backup.Version != 3 {
		t.Errorf("group 8 = %+v", backup)
	}

	routes, err := b.Routes(ctx, fake, net.Query{VRFAll: true})
	if err != nil {
		t.Fatalf("Routes: %v", err)
	}
	if routes.Len() != 3 || routes.Meta().Implementation != Tag {
		t.Errorf("routes = %v", routes)
	}

	// a VLAN that disappears from the device is dropped on refresh
	fake.Set("show vlan", testutil.DecodeJSON(t, `{"vlans": {"1": {"status": "active", "name": "default", "interfaces": {}, "dynamic": false}}}`))
	if err := vlans.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if vlans.Len() != 1 || vlans.Meta().CollectionCount() != 1 {
		t.Errorf("after refresh keys %v count %d", vlans.Keys(), vlans.Meta().CollectionCount())
	}
	if again, _ := vlans.Get(1); again != first {
		t.Error("refresh should update members in place")
	}
}

func TestBuilderErrors(t *testing.T) {
	b, prom := newBuilder(t)
	fake := testutil.NewFakeConnector(Tag, map[string]interface{}{
		"show vlan id 9": testutil.DecodeJSON(t, `{"vlans": {}}`),
	})
	ctx := testutil.Context(t)

	if _, err := b.Vlan(ctx, fake, net.Query{ID: 9}); !errors.Is(err, util.ErrParseFailed) {
		t.Errorf("Vlan error = %v, want parse error", err)
	}
	if got := requests(t, prom, net.KindVlan, metrics.PathEntity, "parse_error"); got != 1 {
		t.Errorf("parse_error retrievals = %v, want 1", got)
	}

	var cmdErr *connector.CommandError
	if _, err := b.Vlan(ctx, fake, net.Query{ID: 10}); !errors.As(err, &cmdErr) {
		t.Errorf("unknown command error = %v, want command error", err)
	}

	other := testutil.NewFakeConnector("JUNOS-PYEZ", nil)
	if _, err := b.Facts(ctx, other); !errors.Is(err, util.ErrUnimplemented) {
		t.Errorf("Facts error = %v, want unimplemented", err)
	}
	if len(other.Calls) != 0 {
		t.Errorf("unimplemented retrieval should not reach the device: %q", other.Calls)
	}

	want := `
# HELP netapi_parse_errors_total Total number of vendor payloads that could not be parsed
# TYPE netapi_parse_errors_total counter
netapi_parse_errors_total{implementation="EOS-PYEAPI",kind="vlan"} 1
`
	if err := promtest.GatherAndCompare(prom, strings.NewReader(want), "netapi_parse_errors_total"); err != nil {
		t.Error(err)
	}
}

// requests returns the retrieval counter of one label set
func requests(t *testing.T, g prometheus.Gatherer, kind, path, result string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != "netapi_builder_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["kind"] == kind && labels["path"] == path && labels["result"] == result && labels["implementation"] == Tag {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
