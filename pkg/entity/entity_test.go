package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

type widgetLink struct {
	MAC *units.MAC `json:"mac"`
	MTU units.Bytes `json:"mtu"`
}

type widget struct {
	Base

	Name    string                 `json:"name"`
	Address netip.Addr             `json:"address"`
	Uptime  *time.Duration         `json:"uptime"`
	Tags    []string               `json:"tags"`
	Link    *widgetLink            `json:"link"`
	Extra   map[string]interface{} `json:"extra_attributes"`
	Secret  string                 `json:"_secret"`
	Dev     string                 `json:"connector"`
	Hidden  string                 `json:"-"`

	kind string
}

var linkSchema = NewSchema("link",
	Field[widgetLink]{"mac", Optional(func(l *widgetLink) **units.MAC { return &l.MAC }, units.ToMAC)},
	Field[widgetLink]{"mtu", Value(func(l *widgetLink) *units.Bytes { return &l.MTU }, units.ToBytes)},
)

var widgetSchema = NewSchema("widget",
	Field[widget]{"name", String(func(w *widget) *string { return &w.Name })},
	Field[widget]{"address", Value(func(w *widget) *netip.Addr { return &w.Address }, units.ToIPAddress)},
	Field[widget]{"uptime", Optional(func(w *widget) **time.Duration { return &w.Uptime }, units.ToDuration)},
	Field[widget]{"tags", Strings(func(w *widget) *[]string { return &w.Tags })},
	Field[widget]{"link", Record(func(w *widget) **widgetLink { return &w.Link }, linkSchema)},
	Field[widget]{"extra_attributes", Attrs(func(w *widget) *map[string]interface{} { return &w.Extra })},
)

func newWidget(kind string) *widget {
	return &widget{Base: NewBase(kind), kind: kind}
}

func (w *widget) Kind() string { return w.kind }

func (w *widget) Validate() error {
	if w.Name == "" {
		return util.NewFieldError(w.kind, "name", w.Name, errors.New("name is required"))
	}
	return nil
}

func (w *widget) CanonicalMapping() (map[string]interface{}, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return Export(w), nil
}

type device struct{ meta *Metadata }

func (d device) Meta() *Metadata { return d.meta }

func TestMetadataIdentity(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		m := NewMetadata("vlan", TypeEntity)
		id := m.ID().String()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}

	m := NewMetadata("vlan", TypeEntity)
	id, created := m.ID(), m.CreatedAt()
	if m.UpdatedAt() != nil || m.CollectionCount() != 0 {
		t.Fatal("new metadata should be unrefreshed")
	}
	m.Touch()
	if m.UpdatedAt() == nil || m.CollectionCount() != 0 {
		t.Error("Touch should set updated_at only")
	}
	m.Collected()
	m.Collected()
	if m.CollectionCount() != 2 {
		t.Errorf("CollectionCount = %d, want 2", m.CollectionCount())
	}
	if m.ID() != id || !m.CreatedAt().Equal(created) {
		t.Error("id and created_at must never change")
	}

	out := m.Map()
	if out["id"] != id.String() || out["implementation"] != nil || out["updated_at"] == nil {
		t.Errorf("unexpected metadata map %v", out)
	}
}

func TestSchemaApply(t *testing.T) {
	w := newWidget("widget")
	err := widgetSchema.Apply(w, map[string]interface{}{
		"name":    "w1",
		"address": "10.0.0.1",
		"uptime":  3600,
		"tags":    []interface{}{"a", "b"},
		"link":    map[string]interface{}{"mac": "2899.3af8.5de8", "mtu": 1500},
	})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if w.Address.String() != "10.0.0.1" || *w.Uptime != time.Hour || len(w.Tags) != 2 {
		t.Errorf("fields not applied: %+v", w)
	}
	if w.Link == nil || w.Link.MAC.String() != "28-99-3A-F8-5D-E8" || w.Link.MTU != 1500 {
		t.Errorf("nested record not applied: %+v", w.Link)
	}

	if err := widgetSchema.Set(w, "uptime", nil); err != nil || w.Uptime != nil {
		t.Errorf("nil should clear an optional field: %v", err)
	}
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		values    map[string]interface{}
		wantField string
	}{
		{"bad address", map[string]interface{}{"address": "10.77.77.77.77"}, "address"},
		{"nested mac", map[string]interface{}{"link": map[string]interface{}{"mac": "28.99.3a.f8.5d.e8"}}, "link.mac"},
		{"unknown field", map[string]interface{}{"colour": "red"}, "colour"},
		{"bytes from text", map[string]interface{}{"link": map[string]interface{}{"mtu": "1500"}}, "link.mtu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := widgetSchema.Apply(newWidget("widget"), tt.values)
			var ve *util.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.wantField || ve.Entity != "widget" {
				t.Errorf("error names %s.%s, want widget.%s", ve.Entity, ve.Field, tt.wantField)
			}
		})
	}
}

func TestSchemaDeclarationOrder(t *testing.T) {
	want := []string{"name", "address", "uptime", "tags", "link", "extra_attributes"}
	got := widgetSchema.Fields()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
}

func TestExport(t *testing.T) {
	w := newWidget("widget")
	_ = widgetSchema.Apply(w, map[string]interface{}{
		"name":             "w1",
		"address":          "10.0.0.1",
		"uptime":           90,
		"link":             map[string]interface{}{"mac": "28:99:3a:f8:5d:e8", "mtu": 9214},
		"extra_attributes": map[string]interface{}{"route_leaked": false},
	})
	w.GetCmd = []string{"show widget"}
	w.Secret = "s"
	w.Dev = "ssh-session"
	w.Hidden = "h"

	out, err := w.CanonicalMapping()
	if err != nil {
		t.Fatalf("CanonicalMapping error: %v", err)
	}
	for _, skipped := range []string{"get_cmd", "_secret", "connector", "Hidden", "kind", "device"} {
		if _, ok := out[skipped]; ok {
			t.Errorf("export should omit %s", skipped)
		}
	}
	if out["address"] != "10.0.0.1" || out["uptime"] != "PT1M30S" {
		t.Errorf("domain values not externalized: %v", out)
	}
	link, ok := out["link"].(map[string]interface{})
	if !ok || link["mac"] != "28-99-3A-F8-5D-E8" || link["mtu"] != float64(9214) {
		t.Errorf("nested record export = %v", out["link"])
	}
	if out["tags"] != nil {
		t.Errorf("absent list should export as nil, got %v", out["tags"])
	}
	meta, ok := out["metadata"].(map[string]interface{})
	if !ok || meta["name"] != "widget" || meta["type"] != TypeEntity {
		t.Errorf("metadata export = %v", out["metadata"])
	}

	w.Name = ""
	if _, err := w.CanonicalMapping(); err == nil {
		t.Error("export should re-validate the entity")
	}
}

func TestAttachConnector(t *testing.T) {
	w := newWidget("widget")
	if err := w.AttachConnector(device{NewMetadata("device", TypeEntity)}); err != nil {
		t.Fatalf("AttachConnector error: %v", err)
	}
	if w.Connector() == nil {
		t.Error("connector not stored")
	}
	err := w.AttachConnector(device{NewMetadata("vlan", TypeEntity)})
	var ve *util.ValidationError
	if !errors.As(err, &ve) || ve.Field != "connector" {
		t.Errorf("non-device connector should be rejected, got %v", err)
	}
	if err := w.AttachConnector(nil); err == nil {
		t.Error("nil connector should be rejected")
	}
}

func TestBind(t *testing.T) {
	w := newWidget("widget")
	meta := NewMetadata("device", TypeEntity)
	meta.Implementation = "EOS-PYEAPI"
	cmds := []string{"show widget"}
	if err := w.Bind(device{meta}, cmds); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	cmds[0] = "changed"
	if w.Meta().Implementation != "EOS-PYEAPI" || w.GetCmd[0] != "show widget" {
		t.Errorf("Bind stamped %q with %v", w.Meta().Implementation, w.GetCmd)
	}
}

func TestCollection(t *testing.T) {
	vlan := func(name string) *widget {
		w := newWidget("vlan")
		w.Name = name
		return w
	}

	c, err := NewCollection("vlan", Item[int, *widget]{1, vlan("default")}, Item[int, *widget]{177, vlan("NATIVE")})
	if err != nil {
		t.Fatalf("NewCollection error: %v", err)
	}
	if c.Meta().Name != "vlans" || c.Meta().Type != TypeCollection {
		t.Errorf("collection metadata = %s/%s", c.Meta().Name, c.Meta().Type)
	}

	before := *c.Meta().UpdatedAt()
	time.Sleep(time.Millisecond)
	if err := c.Insert(70, vlan("DATA")); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if !c.Meta().UpdatedAt().After(before) {
		t.Error("Insert should bump updated_at")
	}
	if got, ok := c.Get(70); !ok || got.Name != "DATA" {
		t.Error("inserted member not retrievable")
	}
	if c.String() != "Vlans(1, 177, 70)" {
		t.Errorf("String() = %s", c.String())
	}

	// re-insert keeps position
	if err := c.Insert(1, vlan("DEFAULT")); err != nil {
		t.Fatal(err)
	}
	if keys := c.Keys(); keys[0] != 1 || c.Len() != 3 {
		t.Errorf("Keys() = %v", keys)
	}

	err = c.Insert(2, newWidget("interface"))
	var me *util.CollectionMembershipError
	if !errors.As(err, &me) || !errors.Is(err, util.ErrCollectionMembership) {
		t.Errorf("wrong kind should raise CollectionMembershipError, got %v", err)
	}
	if err := c.Insert(3, nil); !errors.Is(err, util.ErrCollectionMembership) {
		t.Errorf("nil member should raise CollectionMembershipError, got %v", err)
	}
	if err := c.Insert(4, vlan("")); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("invalid member should be rejected, got %v", err)
	}
	if _, err := NewCollection("vlan", Item[int, *widget]{9, newWidget("route")}); err == nil {
		t.Error("constructor should check every item")
	}

	if !c.Delete(177) || c.Delete(177) {
		t.Error("Delete should report presence")
	}
	var visited []int
	c.Range(func(k int, _ *widget) bool {
		visited = append(visited, k)
		return true
	})
	if len(visited) != 2 || visited[0] != 1 || visited[1] != 70 {
		t.Errorf("Range visited %v", visited)
	}

	out, err := c.CanonicalMapping()
	if err != nil || len(out) != 2 || out["70"] == nil {
		t.Errorf("CanonicalMapping = %v, %v", out, err)
	}
}

func TestCollectionItemsKeepOrder(t *testing.T) {
	c, err := NewCollection[int, *widget]("vlan")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int{10, 2, 1} {
		w := newWidget("vlan")
		w.Name = fmt.Sprintf("vlan%d", id)
		if err := c.Insert(id, w); err != nil {
			t.Fatal(err)
		}
	}
	items, err := c.CanonicalItems()
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	if a, b, d := strings.Index(string(data), `"10":`), strings.Index(string(data), `"2":`), strings.Index(string(data), `"1":`); !(a < b && b < d) || a < 0 {
		t.Errorf("JSON keys out of order: %s", data)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil || len(decoded) != 3 {
		t.Errorf("JSON output does not decode: %v", err)
	}

	out, err := yaml.Marshal(items)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" && !strings.HasPrefix(line, " ") {
			keys = append(keys, line)
		}
	}
	if strings.Join(keys, " ") != `"10": "2": "1":` {
		t.Errorf("YAML top-level keys = %q\n%s", keys, out)
	}
}
