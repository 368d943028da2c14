package net

import (
	"context"
	"fmt"

	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Vlan is the canonical VLAN
type Vlan struct {
	entity.Base

	ID         int      `json:"id"`
	Name       *string  `json:"name"`
	Dynamic    *bool    `json:"dynamic"`
	StatusUp   *bool    `json:"status_up"`
	Status     *string  `json:"status"`
	Interfaces []string `json:"interfaces"`

	fetch retrieval[Fields]
}

var vlanSchema = entity.NewSchema(KindVlan,
	entity.Field[Vlan]{Name: "id", Set: entity.Int(func(v *Vlan) *int { return &v.ID })},
	entity.Field[Vlan]{Name: "name", Set: entity.OptString(func(v *Vlan) **string { return &v.Name })},
	entity.Field[Vlan]{Name: "dynamic", Set: entity.OptBool(func(v *Vlan) **bool { return &v.Dynamic })},
	entity.Field[Vlan]{Name: "status_up", Set: entity.OptBool(func(v *Vlan) **bool { return &v.StatusUp })},
	entity.Field[Vlan]{Name: "status", Set: setVlanStatus},
	entity.Field[Vlan]{Name: "interfaces", Set: entity.OptStrings(func(v *Vlan) *[]string { return &v.Interfaces })},
)

func setVlanStatus(v *Vlan, raw interface{}) error {
	if raw == nil {
		v.Status, v.StatusUp = nil, nil
		return nil
	}
	s, err := units.ToString(raw)
	if err != nil {
		return err
	}
	status, up, err := VlanStatus(s)
	if err != nil {
		return err
	}
	v.Status, v.StatusUp = &status, &up
	return nil
}

// NewVlan creates an empty VLAN entity
func NewVlan() *Vlan {
	return &Vlan{Base: entity.NewBase(KindVlan)}
}

// BuildVlan creates a VLAN from canonical fields
func BuildVlan(fields Fields) (*Vlan, error) {
	v := NewVlan()
	if err := v.Update(fields); err != nil {
		return nil, err
	}
	return v, nil
}

// Kind returns "vlan"
func (v *Vlan) Kind() string { return KindVlan }

// Set assigns one canonical field
func (v *Vlan) Set(field string, value interface{}) error {
	return vlanSchema.Set(v, field, value)
}

// Update assigns several canonical fields
func (v *Vlan) Update(fields Fields) error {
	return vlanSchema.Apply(v, fields)
}

// Validate checks the current field values
func (v *Vlan) Validate() error {
	b := &util.ValidationBuilder{}
	if err := util.ValidateVLANID(v.ID); err != nil {
		b.AddError(err.Error())
	}
	if v.Status != nil {
		canonical, up, err := VlanStatus(*v.Status)
		if err != nil {
			b.AddError(err.Error())
		} else {
			b.Add(canonical == *v.Status, fmt.Sprintf("vlan status %q is not canonical", *v.Status))
			b.Add(v.StatusUp == nil || *v.StatusUp == up, "status_up does not match status "+*v.Status)
		}
	}
	return b.Build()
}

// CanonicalMapping exports the VLAN
func (v *Vlan) CanonicalMapping() (map[string]interface{}, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(v), nil
}

// Refresh re-runs the retrieval the VLAN was built from
func (v *Vlan) Refresh(ctx context.Context) error {
	return refreshEntity(ctx, v, v.fetch)
}

// Vlans is a collection of VLANs keyed by id
type Vlans = Collection[int, *Vlan]

// NewVlans creates a VLAN collection
func NewVlans(items ...entity.Item[int, *Vlan]) (*Vlans, error) {
	return newCollection(KindVlan, NewVlan, items...)
}
