package nxos

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/netapi-network/netapi/internal/testutil"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/util"
)

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		gen  func() ([]string, error)
		want []string
	}{
		{"vlan", func() ([]string, error) { return VlanDriver{}.EntityCommands(net.Query{ID: 10}) }, []string{"show vlan id 10"}},
		{"vlans", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{}) }, []string{"show vlan brief"}},
		{"vlan id list", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{IDs: []int{7, 20}}) }, []string{"show vlan id 7,20"}},
		{"vlan range", func() ([]string, error) { return VlanDriver{}.CollectionCommands(net.Query{Range: "10-20"}) }, []string{"show vlan id 10-20"}},
		{"vlan id list compacted", func() ([]string, error) {
			return VlanDriver{}.CollectionCommands(net.Query{IDs: []int{12, 10, 30, 11}})
		}, []string{"show vlan id 10-12,30"}},
		{"interface", func() ([]string, error) { return InterfaceDriver{}.EntityCommands(net.Query{Name: "Ethernet1/1"}) }, []string{
			"show interface Ethernet1/1", "show ip interface Ethernet1/1 vrf all",
		}},
		{"interface list", func() ([]string, error) {
			return InterfaceDriver{}.CollectionCommands(net.Query{Names: []string{"Ethernet1/1", "Ethernet1/2"}})
		}, []string{"show interface Ethernet1/1, Ethernet1/2", "show ip interface Ethernet1/1, Ethernet1/2 vrf all"}},
		{"interfaces", func() ([]string, error) { return InterfaceDriver{}.CollectionCommands(net.Query{}) }, []string{
			"show interface", "show ip interface vrf all",
		}},
		{"vrrp", func() ([]string, error) { return VrrpDriver{}.EntityCommands(net.Query{Group: 10}) }, []string{"show vrrp detail"}},
		{"vrrp interface", func() ([]string, error) {
			return VrrpDriver{}.EntityCommands(net.Query{Group: 10, Interface: "Vlan10"})
		}, []string{"show vrrp detail interface Vlan10"}},
		{"route", func() ([]string, error) { return RouteDriver{}.EntityCommands(net.Query{Dest: "10.20.0.5"}) }, []string{"show ip route 10.20.0.5"}},
		{"route vrf", func() ([]string, error) {
			return RouteDriver{}.EntityCommands(net.Query{Dest: "172.16.9.9", Instance: "SERVERS"})
		}, []string{"show ip route 172.16.9.9 vrf SERVERS"}},
		{"routes protocol vrf", func() ([]string, error) {
			return RouteDriver{}.CollectionCommands(net.Query{Protocol: "static", Instance: "management"})
		}, []string{"show ip route static vrf management"}},
		{"routes vrf all", func() ([]string, error) { return RouteDriver{}.CollectionCommands(net.Query{VRFAll: true}) }, []string{"show ip route vrf all"}},
		{"facts", func() ([]string, error) { return FactsDriver{}.EntityCommands(net.Query{}) }, []string{
			"show hostname", "show version", "show interface brief",
		}},
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

	t.Run("vrrp group out of range", func(t *testing.T) {
		if _, err := (VrrpDriver{}).EntityCommands(net.Query{}); !errors.Is(err, util.ErrValidationFailed) {
			t.Errorf("error = %v, want validation error", err)
		}
	})
}

func TestParseVlan(t *testing.T) {
	out := testutil.LoadJSON(t, "vlan.json")

	t.Run("single row table", func(t *testing.T) {
		fields, err := VlanDriver{}.Parse(testutil.Results(out, "show vlan id 10"), net.Query{ID: 10})
		if err != nil {
			t.Fatal(err)
		}
		v, err := net.BuildVlan(fields)
		if err != nil {
			t.Fatal(err)
		}
		if v.ID != 10 || *v.Name != "SERVERS" || *v.Status != "suspended" || *v.StatusUp || *v.Dynamic {
			t.Errorf("vlan = %+v", v)
		}
		if !reflect.DeepEqual(v.Interfaces, []string{"Port-Channel10", "Ethernet1/1"}) {
			t.Errorf("interfaces = %v", v.Interfaces)
		}
	})

	t.Run("brief table", func(t *testing.T) {
		records, err := VlanDriver{}.CollectorParse(testutil.Results(out, "show vlan brief"), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		var keys []int
		for _, r := range records {
			keys = append(keys, r.Key)
		}
		if !reflect.DeepEqual(keys, []int{1, 10, 20}) {
			t.Errorf("keys = %v", keys)
		}
		parked, err := net.BuildVlan(records[2].Fields)
		if err != nil {
			t.Fatal(err)
		}
		if *parked.Status != "suspended" || parked.Interfaces != nil {
			t.Errorf("vlan 20 = %+v", parked)
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		raw := connector.Results{{Command: "show vlan id 99", Output: testutil.DecodeJSON(t, `{}`)}}
		if _, err := (VlanDriver{}).Parse(raw, net.Query{ID: 99}); !errors.Is(err, util.ErrParseFailed) {
			t.Errorf("error = %v, want parse error", err)
		}
	})
}

func TestParseInterface(t *testing.T) {
	out := testutil.LoadJSON(t, "interface.json")
	parse := func(t *testing.T, name string) *net.Interface {
		t.Helper()
		cmds, _ := InterfaceDriver{}.EntityCommands(net.Query{Name: name})
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

	t.Run("routed port", func(t *testing.T) {
		i := parse(t, "Ethernet1/1")
		if i.Name != "Ethernet1/1" || *i.Description != "uplink to spine1" || *i.Instance != "default" {
			t.Errorf("interface = %+v", i)
		}
		if *i.Status != "connected" || !*i.StatusUp || !*i.Enabled || *i.ForwardingModel != "routed" {
			t.Errorf("status %v up %v enabled %v model %v", *i.Status, *i.StatusUp, *i.Enabled, *i.ForwardingModel)
		}
		if *i.Physical.MTU != 9216 || *i.Physical.Bandwidth != 10e9 || i.Physical.MAC.String() != "52-54-00-12-34-01" {
			t.Errorf("physical = %+v", i.Physical)
		}
		if i.Addresses.IPv4.String() != "10.1.1.1/31" || !reflect.DeepEqual(i.Addresses.SecondaryIPv4, []string{"10.1.2.1/24"}) {
			t.Errorf("addresses = %+v", i.Addresses)
		}
		c := i.Counters
		if c.RxBytes != 98765432 || c.RxErrorsCRC != 2 || c.TxDiscards != 5 || *c.RxBitsRate != 4200 || *c.TxPktsRate != 4 {
			t.Errorf("counters = %+v", c)
		}
		if *i.UpdateInterval != 30 || i.Optical != nil {
			t.Errorf("update interval %v optical %v", *i.UpdateInterval, i.Optical)
		}
	})

	t.Run("access port without ip interface", func(t *testing.T) {
		i := parse(t, "Ethernet1/2")
		if *i.Status != "notconnect" || *i.StatusUp || !*i.Enabled || *i.ForwardingModel != "bridged" {
			t.Errorf("interface = %+v", i)
		}
		if i.Addresses != nil || i.Instance != nil {
			t.Errorf("addresses %+v instance %v, want absent", i.Addresses, i.Instance)
		}
		if i.Counters == nil || i.Counters.RxBitsRate != nil || i.Counters.RxUnicastPkts != 0 {
			t.Errorf("counters = %+v", i.Counters)
		}
	})

	t.Run("shut port-channel", func(t *testing.T) {
		i := parse(t, "port-channel10")
		if i.Name != "Port-Channel10" || *i.Status != "disabled" || *i.Enabled {
			t.Errorf("interface = %+v", i)
		}
		if !reflect.DeepEqual(i.Members, []string{"Ethernet1/3", "Ethernet1/4"}) {
			t.Errorf("members = %v", i.Members)
		}
		if i.Counters != nil || *i.Physical.Bandwidth != 20e9 {
			t.Errorf("counters %+v bandwidth %v", i.Counters, *i.Physical.Bandwidth)
		}
	})

	t.Run("collection", func(t *testing.T) {
		cmds, _ := InterfaceDriver{}.CollectionCommands(net.Query{})
		records, err := InterfaceDriver{}.CollectorParse(testutil.Results(out, cmds...), net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		var keys []string
		for _, r := range records {
			keys = append(keys, r.Key)
		}
		if !reflect.DeepEqual(keys, []string{"mgmt0", "Ethernet1/1", "Vlan10"}) {
			t.Fatalf("keys = %v", keys)
		}
		mgmt, err := net.BuildInterface(records[0].Fields)
		if err != nil {
			t.Fatal(err)
		}
		if *mgmt.Instance != "management" || mgmt.Addresses.IPv4.String() != "192.0.2.10/24" {
			t.Errorf("mgmt0 = %+v", mgmt)
		}
		svi, err := net.BuildInterface(records[2].Fields)
		if err != nil {
			t.Fatal(err)
		}
		if *svi.Instance != "SERVERS" || *svi.Status != "connected" || *svi.ForwardingModel != "routed" || *svi.Description != "servers gateway" {
			t.Errorf("Vlan10 = %+v", svi)
		}
		if *svi.Physical.MTU != 1500 || svi.Physical.MAC.String() != "52-54-00-12-34-99" || svi.Counters != nil {
			t.Errorf("Vlan10 physical = %+v", svi.Physical)
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
	if *f.Hostname != "nx1.lab" || *f.OSVersion != "9.3(5)" || *f.Model != "Nexus9000 C9300v Chassis" || *f.SerialNumber != "9N3KD63KWT0" {
		t.Errorf("facts = %+v", f)
	}
	if *f.Uptime != 51*time.Hour+4*time.Minute+5*time.Second {
		t.Errorf("uptime = %v", *f.Uptime)
	}
	if *f.TotalMemory != 16409064000 || f.AvailableMemory != nil || f.HWRevision != nil {
		t.Errorf("memory %v / %v", *f.TotalMemory, f.AvailableMemory)
	}
	want := []string{"Ethernet1/1", "Ethernet1/2", "Port-Channel10", "mgmt0"}
	if !reflect.DeepEqual(f.Interfaces, want) {
		t.Errorf("interfaces = %v, want %v", f.Interfaces, want)
	}
}

func TestParseRoute(t *testing.T) {
	out := testutil.LoadJSON(t, "route.json")

	t.Run("ecmp", func(t *testing.T) {
		q := net.Query{Dest: "10.20.0.5"}
		fields, err := RouteDriver{}.Parse(testutil.Results(out, "show ip route 10.20.0.5"), q)
		if err != nil {
			t.Fatal(err)
		}
		r, err := net.BuildRoute(fields)
		if err != nil {
			t.Fatal(err)
		}
		if r.Dest != "10.20.0.5" || r.Network.String() != "10.20.0.0/16" || *r.Instance != "default" {
			t.Errorf("route = %+v", r)
		}
		if *r.Protocol != "ospf" || *r.Metric != 41 || *r.Preference != 110 || *r.Tag != 0 || !*r.Active {
			t.Errorf("protocol %v metric %v preference %v", *r.Protocol, *r.Metric, *r.Preference)
		}
		if *r.Age != 26*time.Hour+3*time.Minute {
			t.Errorf("age = %v", *r.Age)
		}
		if len(r.Vias) != 2 || *r.Vias[1].Interface != "Ethernet1/5" || r.Vias[1].NextHop.String() != "10.1.3.0" {
			t.Errorf("vias = %+v", r.Vias)
		}
		if r.ExtraAttributes["attached"] != false || r.ExtraAttributes["ucast_nhops"] != float64(2) {
			t.Errorf("extra_attributes = %v", r.ExtraAttributes)
		}
	})

	t.Run("not found", func(t *testing.T) {
		q := net.Query{Dest: "172.16.9.9", Instance: "SERVERS"}
		fields, err := RouteDriver{}.Parse(testutil.Results(out, "show ip route 172.16.9.9 vrf SERVERS"), q)
		if err != nil {
			t.Fatal(err)
		}
		if fields["active"] != false || fields["inactive_reason"] != "Route not found" || fields["dest"] != "172.16.9.9" {
			t.Errorf("fields = %v", fields)
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
		want := []string{"(default, 10.1.1.0/31)", "(default, 10.99.0.0/24)", "(management, 0.0.0.0/0)"}
		if !reflect.DeepEqual(keys, want) {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
		connected, err := net.BuildRoute(records[0].Fields)
		if err != nil {
			t.Fatal(err)
		}
		if *connected.Protocol != "connected" || *connected.Age != 5*time.Minute {
			t.Errorf("connected route = %+v", connected)
		}
		bgp, err := net.BuildRoute(records[1].Fields)
		if err != nil {
			t.Fatal(err)
		}
		if *bgp.Protocol != "bgp" || *bgp.Active || *bgp.InactiveReason != "No best path" || bgp.Vias[0].Interface != nil {
			t.Errorf("bgp route = %+v", bgp)
		}
	})

	t.Run("no table", func(t *testing.T) {
		raw := connector.Results{{Command: "show ip route", Output: testutil.DecodeJSON(t, `{}`)}}
		if _, err := (RouteDriver{}).CollectorParse(raw, net.Query{}); !errors.Is(err, util.ErrParseFailed) {
			t.Errorf("error = %v, want parse error", err)
		}
	})
}

func TestParseVrrp(t *testing.T) {
	out := testutil.LoadJSON(t, "vrrp.json")
	detail := testutil.Results(out, "show vrrp detail")

	tests := []struct {
		group    int
		status   string
		up       bool
		preempt  bool
		mac      string
		masterIP string
	}{
		{10, "master", true, true, "00-00-5E-00-01-0A", "10.10.0.1"},
		{20, "backup", true, false, "00-00-5E-00-01-14", "10.20.0.2"},
		{30, "stopped", false, true, "00-00-5E-00-01-1E", ""},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			fields, err := VrrpDriver{}.Parse(detail, net.Query{Group: tt.group})
			if err != nil {
				t.Fatal(err)
			}
			v, err := net.BuildVrrp(fields)
			if err != nil {
				t.Fatal(err)
			}
			if v.GroupID != tt.group || *v.Status != tt.status || *v.StatusUp != tt.up || *v.Preempt != tt.preempt {
				t.Errorf("vrrp = %+v", v)
			}
			if v.VirtualMAC.String() != tt.mac {
				t.Errorf("virtual_mac = %s, want %s", v.VirtualMAC, tt.mac)
			}
			if (tt.masterIP == "") != (v.MasterIP == nil) || tt.masterIP != "" && v.MasterIP.String() != tt.masterIP {
				t.Errorf("master_ip = %v, want %q", v.MasterIP, tt.masterIP)
			}
		})
	}

	t.Run("master down interval", func(t *testing.T) {
		fields, err := VrrpDriver{}.Parse(detail, net.Query{Group: 10})
		if err != nil {
			t.Fatal(err)
		}
		if fields["master_down_interval"] != 3.414 {
			t.Errorf("master_down_interval = %v", fields["master_down_interval"])
		}
	})

	t.Run("missing group", func(t *testing.T) {
		if _, err := (VrrpDriver{}).Parse(detail, net.Query{Group: 99}); !errors.Is(err, util.ErrParseFailed) {
			t.Errorf("error = %v, want parse error", err)
		}
	})

	t.Run("collection", func(t *testing.T) {
		records, err := VrrpDriver{}.CollectorParse(detail, net.Query{})
		if err != nil {
			t.Fatal(err)
		}
		want := []net.VrrpKey{{GroupID: 10, Interface: "Vlan10"}, {GroupID: 20, Interface: "Vlan20"}, {GroupID: 30, Interface: "Vlan30"}}
		if len(records) != len(want) {
			t.Fatalf("records = %+v", records)
		}
		for i, r := range records {
			if r.Key != want[i] {
				t.Errorf("key %d = %+v, want %+v", i, r.Key, want[i])
			}
		}
	})
}

func TestBuilderPrunesRejectedIPInterface(t *testing.T) {
	reg := net.NewRegistry()
	Register(reg)
	fake := testutil.NewFakeConnector(Tag, testutil.LoadJSON(t, "interface.json"))

	i, err := net.NewBuilder(reg).Interface(testutil.Context(t), fake, net.Query{Name: "Ethernet1/2"})
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	if *i.Status != "notconnect" || i.Meta().Implementation != Tag {
		t.Errorf("interface = %+v", i)
	}
	if !reflect.DeepEqual(i.GetCmd, []string{"show interface Ethernet1/2", "show ip interface Ethernet1/2 vrf all"}) {
		t.Errorf("get_cmd = %q", i.GetCmd)
	}
}
