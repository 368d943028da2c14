package net

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Vrrp is the canonical VRRP group on one interface. Timers are in
// seconds.
type Vrrp struct {
	entity.Base

	GroupID                  int                      `json:"group_id"`
	Interface                *string                  `json:"interface"`
	Description              *string                  `json:"description"`
	Version                  *int                     `json:"version"`
	StatusUp                 *bool                    `json:"status_up"`
	Status                   *string                  `json:"status"`
	Instance                 *string                  `json:"instance"`
	VirtualIP                *netip.Addr              `json:"virtual_ip"`
	VirtualIPSecondary       []string                 `json:"virtual_ip_secondary"`
	VirtualMAC               *units.MAC               `json:"virtual_mac"`
	Priority                 *int                     `json:"priority"`
	MasterIP                 *netip.Addr              `json:"master_ip"`
	MasterPriority           *int                     `json:"master_priority"`
	MasterInterval           *float64                 `json:"master_interval"`
	MACAdvertisementInterval *float64                 `json:"mac_advertisement_interval"`
	Preempt                  *bool                    `json:"preempt"`
	PreemptDelay             *float64                 `json:"preempt_delay"`
	MasterDownInterval       *float64                 `json:"master_down_interval"`
	SkewTime                 *float64                 `json:"skew_time"`
	TrackedObjects           []map[string]interface{} `json:"tracked_objects"`
	ExtraAttributes          map[string]interface{}   `json:"extra_attributes"`

	fetch retrieval[Fields]
}

var vrrpSchema = entity.NewSchema(KindVrrp,
	entity.Field[Vrrp]{Name: "group_id", Set: entity.Int(func(v *Vrrp) *int { return &v.GroupID })},
	entity.Field[Vrrp]{Name: "interface", Set: entity.Optional(func(v *Vrrp) **string { return &v.Interface }, interfaceName)},
	entity.Field[Vrrp]{Name: "description", Set: entity.OptString(func(v *Vrrp) **string { return &v.Description })},
	entity.Field[Vrrp]{Name: "version", Set: entity.OptInt(func(v *Vrrp) **int { return &v.Version })},
	entity.Field[Vrrp]{Name: "status_up", Set: entity.OptBool(func(v *Vrrp) **bool { return &v.StatusUp })},
	entity.Field[Vrrp]{Name: "status", Set: setVrrpStatus},
	entity.Field[Vrrp]{Name: "instance", Set: entity.OptString(func(v *Vrrp) **string { return &v.Instance })},
	entity.Field[Vrrp]{Name: "virtual_ip", Set: entity.Optional(func(v *Vrrp) **netip.Addr { return &v.VirtualIP }, units.ToIPAddress)},
	entity.Field[Vrrp]{Name: "virtual_ip_secondary", Set: entity.OptStrings(func(v *Vrrp) *[]string { return &v.VirtualIPSecondary })},
	entity.Field[Vrrp]{Name: "virtual_mac", Set: entity.Optional(func(v *Vrrp) **units.MAC { return &v.VirtualMAC }, units.ToMAC)},
	entity.Field[Vrrp]{Name: "priority", Set: entity.OptInt(func(v *Vrrp) **int { return &v.Priority })},
	entity.Field[Vrrp]{Name: "master_ip", Set: entity.Optional(func(v *Vrrp) **netip.Addr { return &v.MasterIP }, units.ToIPAddress)},
	entity.Field[Vrrp]{Name: "master_priority", Set: entity.OptInt(func(v *Vrrp) **int { return &v.MasterPriority })},
	entity.Field[Vrrp]{Name: "master_interval", Set: entity.OptFloat(func(v *Vrrp) **float64 { return &v.MasterInterval })},
	entity.Field[Vrrp]{Name: "mac_advertisement_interval", Set: entity.OptFloat(func(v *Vrrp) **float64 { return &v.MACAdvertisementInterval })},
	entity.Field[Vrrp]{Name: "preempt", Set: entity.OptBool(func(v *Vrrp) **bool { return &v.Preempt })},
	entity.Field[Vrrp]{Name: "preempt_delay", Set: entity.OptFloat(func(v *Vrrp) **float64 { return &v.PreemptDelay })},
	entity.Field[Vrrp]{Name: "master_down_interval", Set: entity.OptFloat(func(v *Vrrp) **float64 { return &v.MasterDownInterval })},
	entity.Field[Vrrp]{Name: "skew_time", Set: entity.OptFloat(func(v *Vrrp) **float64 { return &v.SkewTime })},
	entity.Field[Vrrp]{Name: "tracked_objects", Set: setTrackedObjects},
	entity.Field[Vrrp]{Name: "extra_attributes", Set: entity.Attrs(func(v *Vrrp) *map[string]interface{} { return &v.ExtraAttributes })},
)

func setVrrpStatus(v *Vrrp, raw interface{}) error {
	if raw == nil {
		v.Status, v.StatusUp = nil, nil
		return nil
	}
	s, err := units.ToString(raw)
	if err != nil {
		return err
	}
	status, up, err := VrrpStatus(s)
	if err != nil {
		return err
	}
	v.Status, v.StatusUp = &status, &up
	return nil
}

func setTrackedObjects(v *Vrrp, raw interface{}) error {
	if raw == nil {
		v.TrackedObjects = nil
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		if typed, ok := raw.([]map[string]interface{}); ok {
			v.TrackedObjects = typed
			return nil
		}
		return fmt.Errorf("tracked objects must be a list, got %T", raw)
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		m, err := units.ToStringMap(connector.Plain(item))
		if err != nil {
			return err
		}
		out = append(out, m)
	}
	v.TrackedObjects = out
	return nil
}

// NewVrrp creates an empty VRRP entity
func NewVrrp() *Vrrp {
	return &Vrrp{Base: entity.NewBase(KindVrrp), ExtraAttributes: map[string]interface{}{}}
}

// BuildVrrp creates a VRRP group from canonical fields
func BuildVrrp(fields Fields) (*Vrrp, error) {
	v := NewVrrp()
	if err := v.Update(fields); err != nil {
		return nil, err
	}
	return v, nil
}

// Kind returns "vrrp"
func (v *Vrrp) Kind() string { return KindVrrp }

// Set assigns one canonical field
func (v *Vrrp) Set(field string, value interface{}) error {
	return vrrpSchema.Set(v, field, value)
}

// Update assigns several canonical fields
func (v *Vrrp) Update(fields Fields) error {
	return vrrpSchema.Apply(v, fields)
}

// Validate checks the current field values
func (v *Vrrp) Validate() error {
	b := &util.ValidationBuilder{}
	b.Add(v.GroupID >= 0 && v.GroupID <= 255, fmt.Sprintf("vrrp group %d out of range", v.GroupID))
	if v.Status != nil {
		canonical, up, err := VrrpStatus(*v.Status)
		if err != nil {
			b.AddError(err.Error())
		} else {
			b.Add(canonical == *v.Status, fmt.Sprintf("vrrp status %q is not canonical", *v.Status))
			b.Add(v.StatusUp == nil || *v.StatusUp == up, "status_up does not match status "+*v.Status)
		}
	}
	return b.Build()
}

// Key returns the collection key of the group
func (v *Vrrp) Key() VrrpKey {
	k := VrrpKey{GroupID: v.GroupID}
	if v.Interface != nil {
		k.Interface = *v.Interface
	}
	return k
}

// CanonicalMapping exports the VRRP group
func (v *Vrrp) CanonicalMapping() (map[string]interface{}, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(v), nil
}

// Refresh re-runs the retrieval the group was built from
func (v *Vrrp) Refresh(ctx context.Context) error {
	return refreshEntity(ctx, v, v.fetch)
}

// VrrpKey identifies a VRRP group on an interface
type VrrpKey struct {
	GroupID   int
	Interface string
}

func (k VrrpKey) String() string {
	return fmt.Sprintf("(%d, %s)", k.GroupID, k.Interface)
}

// Vrrps is a collection of VRRP groups keyed by group and interface
type Vrrps = Collection[VrrpKey, *Vrrp]

// NewVrrps creates a VRRP collection
func NewVrrps(items ...entity.Item[VrrpKey, *Vrrp]) (*Vrrps, error) {
	return newCollection(KindVrrp, NewVrrp, items...)
}
