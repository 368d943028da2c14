package net

import (
	"context"
	"time"

	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Facts is the general inventory of a device
type Facts struct {
	entity.Base

	Hostname        *string        `json:"hostname"`
	OSVersion       *string        `json:"os_version"`
	Model           *string        `json:"model"`
	SerialNumber    *string        `json:"serial_number"`
	Uptime          *time.Duration `json:"uptime"`
	UpSince         *time.Time     `json:"up_since"`
	SystemMAC       *units.MAC     `json:"system_mac"`
	AvailableMemory *units.Bytes   `json:"available_memory"`
	TotalMemory     *units.Bytes   `json:"total_memory"`
	OSArch          *string        `json:"os_arch"`
	HWRevision      *string        `json:"hw_revision"`
	Interfaces      []string       `json:"interfaces"`

	fetch retrieval[Fields]
}

var factsSchema = entity.NewSchema(KindFacts,
	entity.Field[Facts]{Name: "hostname", Set: entity.OptString(func(f *Facts) **string { return &f.Hostname })},
	entity.Field[Facts]{Name: "os_version", Set: entity.OptString(func(f *Facts) **string { return &f.OSVersion })},
	entity.Field[Facts]{Name: "model", Set: entity.OptString(func(f *Facts) **string { return &f.Model })},
	entity.Field[Facts]{Name: "serial_number", Set: entity.OptString(func(f *Facts) **string { return &f.SerialNumber })},
	entity.Field[Facts]{Name: "uptime", Set: entity.Optional(func(f *Facts) **time.Duration { return &f.Uptime }, units.ToDuration)},
	entity.Field[Facts]{Name: "up_since", Set: entity.Optional(func(f *Facts) **time.Time { return &f.UpSince }, units.ToDateTime)},
	entity.Field[Facts]{Name: "system_mac", Set: entity.Optional(func(f *Facts) **units.MAC { return &f.SystemMAC }, units.ToMAC)},
	entity.Field[Facts]{Name: "available_memory", Set: entity.Optional(func(f *Facts) **units.Bytes { return &f.AvailableMemory }, units.ToBytes)},
	entity.Field[Facts]{Name: "total_memory", Set: entity.Optional(func(f *Facts) **units.Bytes { return &f.TotalMemory }, units.ToBytes)},
	entity.Field[Facts]{Name: "os_arch", Set: entity.OptString(func(f *Facts) **string { return &f.OSArch })},
	entity.Field[Facts]{Name: "hw_revision", Set: setHWRevision},
	entity.Field[Facts]{Name: "interfaces", Set: setFactsInterfaces},
)

func setHWRevision(f *Facts, raw interface{}) error {
	if raw == nil {
		f.HWRevision = nil
		return nil
	}
	s, err := units.ToString(raw)
	if err != nil {
		return err
	}
	if s == "" {
		f.HWRevision = nil
		return nil
	}
	f.HWRevision = &s
	return nil
}

func setFactsInterfaces(f *Facts, raw interface{}) error {
	names, err := units.ToStringSlice(raw)
	if err != nil {
		return err
	}
	f.Interfaces = util.NormalizeInterfaceNames(names)
	return nil
}

// NewFacts creates an empty facts entity
func NewFacts() *Facts {
	return &Facts{Base: entity.NewBase(KindFacts), Interfaces: []string{}}
}

// BuildFacts creates facts from canonical fields
func BuildFacts(fields Fields) (*Facts, error) {
	f := NewFacts()
	if err := f.Update(fields); err != nil {
		return nil, err
	}
	return f, nil
}

// Kind returns "facts"
func (f *Facts) Kind() string { return KindFacts }

// Set assigns one canonical field
func (f *Facts) Set(field string, value interface{}) error {
	return factsSchema.Set(f, field, value)
}

// Update assigns several canonical fields
func (f *Facts) Update(fields Fields) error {
	return factsSchema.Apply(f, fields)
}

// Validate checks the current field values
func (f *Facts) Validate() error {
	b := &util.ValidationBuilder{}
	if f.Uptime != nil {
		b.Add(*f.Uptime >= 0, "uptime cannot be negative")
	}
	if f.AvailableMemory != nil && f.TotalMemory != nil {
		b.Add(*f.AvailableMemory <= *f.TotalMemory, "available memory exceeds total memory")
	}
	return b.Build()
}

// CanonicalMapping exports the facts
func (f *Facts) CanonicalMapping() (map[string]interface{}, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(f), nil
}

// Refresh re-runs the retrieval the facts were built from
func (f *Facts) Refresh(ctx context.Context) error {
	return refreshEntity(ctx, f, f.fetch)
}
