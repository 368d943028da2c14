package net

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Physical holds the layer 1 attributes of an interface
type Physical struct {
	MTU       *units.Bytes `json:"mtu"`
	Bandwidth *units.Bits  `json:"bandwidth"`
	Duplex    *string      `json:"duplex"`
	MAC       *units.MAC   `json:"mac"`
}

var physicalSchema = entity.NewSchema("physical",
	entity.Field[Physical]{Name: "mtu", Set: entity.Optional(func(p *Physical) **units.Bytes { return &p.MTU }, units.ToBytes)},
	entity.Field[Physical]{Name: "bandwidth", Set: entity.Optional(func(p *Physical) **units.Bits { return &p.Bandwidth }, units.ToBits)},
	entity.Field[Physical]{Name: "duplex", Set: entity.OptString(func(p *Physical) **string { return &p.Duplex })},
	entity.Field[Physical]{Name: "mac", Set: entity.Optional(func(p *Physical) **units.MAC { return &p.MAC }, units.ToMAC)},
)

// Optical holds transceiver light levels in dBm and the alert flag
// derived from them
type Optical struct {
	Tx           *float64 `json:"tx"`
	Rx           *float64 `json:"rx"`
	Status       *string  `json:"status"`
	SerialNumber *string  `json:"serial_number"`
	MediaType    *string  `json:"media_type"`
}

var opticalSchema = entity.NewSchema("optical",
	entity.Field[Optical]{Name: "tx", Set: entity.OptFloat(func(o *Optical) **float64 { return &o.Tx })},
	entity.Field[Optical]{Name: "rx", Set: entity.OptFloat(func(o *Optical) **float64 { return &o.Rx })},
	entity.Field[Optical]{Name: "status", Set: entity.Optional(func(o *Optical) **string { return &o.Status }, lightFlag)},
	entity.Field[Optical]{Name: "serial_number", Set: entity.OptString(func(o *Optical) **string { return &o.SerialNumber })},
	entity.Field[Optical]{Name: "media_type", Set: entity.OptString(func(o *Optical) **string { return &o.MediaType })},
)

func lightFlag(raw interface{}) (string, error) {
	s, err := units.ToString(raw)
	if err != nil {
		return "", err
	}
	switch s {
	case LightGreen, LightYellow, LightRed:
		return s, nil
	}
	return "", util.NewValidationError("unknown light level flag: " + s)
}

// Addresses holds the IP configuration of an interface
type Addresses struct {
	IPv4          *netip.Prefix `json:"ipv4"`
	IPv6          *netip.Prefix `json:"ipv6"`
	SecondaryIPv4 []string      `json:"secondary_ipv4"`
	DHCP          *bool         `json:"dhcp"`
}

var addressesSchema = entity.NewSchema("addresses",
	entity.Field[Addresses]{Name: "ipv4", Set: entity.Optional(func(a *Addresses) **netip.Prefix { return &a.IPv4 }, units.ToIPNetwork)},
	entity.Field[Addresses]{Name: "ipv6", Set: entity.Optional(func(a *Addresses) **netip.Prefix { return &a.IPv6 }, units.ToIPNetwork)},
	entity.Field[Addresses]{Name: "secondary_ipv4", Set: entity.Strings(func(a *Addresses) *[]string { return &a.SecondaryIPv4 })},
	entity.Field[Addresses]{Name: "dhcp", Set: entity.OptBool(func(a *Addresses) **bool { return &a.DHCP })},
)

// Counters holds interface traffic and error counters. Rates are absent
// unless reported; every other counter defaults to zero.
type Counters struct {
	RxBitsRate                   *units.Bits `json:"rx_bits_rate"`
	TxBitsRate                   *units.Bits `json:"tx_bits_rate"`
	RxPktsRate                   *float64    `json:"rx_pkts_rate"`
	TxPktsRate                   *float64    `json:"tx_pkts_rate"`
	RxUnicastPkts                float64     `json:"rx_unicast_pkts"`
	TxUnicastPkts                float64     `json:"tx_unicast_pkts"`
	RxMulticastPkts              float64     `json:"rx_multicast_pkts"`
	TxMulticastPkts              float64     `json:"tx_multicast_pkts"`
	RxBroadcastPkts              float64     `json:"rx_broadcast_pkts"`
	TxBroadcastPkts              float64     `json:"tx_broadcast_pkts"`
	RxBytes                      units.Bytes `json:"rx_bytes"`
	TxBytes                      units.Bytes `json:"tx_bytes"`
	RxDiscards                   float64     `json:"rx_discards"`
	TxDiscards                   float64     `json:"tx_discards"`
	RxErrorsGeneral              float64     `json:"rx_errors_general"`
	TxErrorsGeneral              float64     `json:"tx_errors_general"`
	RxErrorsFCS                  float64     `json:"rx_errors_fcs"`
	RxErrorsCRC                  float64     `json:"rx_errors_crc"`
	RxErrorsRunt                 float64     `json:"rx_errors_runt"`
	RxErrorsRxPause              float64     `json:"rx_errors_rx_pause"`
	RxErrorsGiant                float64     `json:"rx_errors_giant"`
	RxErrorsSymbol               float64     `json:"rx_errors_symbol"`
	TxErrorsCollisions           float64     `json:"tx_errors_collisions"`
	TxErrorsLateCollisions       float64     `json:"tx_errors_late_collisions"`
	TxErrorsDeferredTransmission float64     `json:"tx_errors_deferred_transmissions"`
	TxErrorsTxPause              float64     `json:"tx_errors_tx_pause"`
}

func counter(name string, field func(*Counters) *float64) entity.Field[Counters] {
	return entity.Field[Counters]{Name: name, Set: entity.Float(field)}
}

var countersSchema = entity.NewSchema("counters",
	entity.Field[Counters]{Name: "rx_bits_rate", Set: entity.Optional(func(c *Counters) **units.Bits { return &c.RxBitsRate }, units.ToBits)},
	entity.Field[Counters]{Name: "tx_bits_rate", Set: entity.Optional(func(c *Counters) **units.Bits { return &c.TxBitsRate }, units.ToBits)},
	entity.Field[Counters]{Name: "rx_pkts_rate", Set: entity.OptFloat(func(c *Counters) **float64 { return &c.RxPktsRate })},
	entity.Field[Counters]{Name: "tx_pkts_rate", Set: entity.OptFloat(func(c *Counters) **float64 { return &c.TxPktsRate })},
	counter("rx_unicast_pkts", func(c *Counters) *float64 { return &c.RxUnicastPkts }),
	counter("tx_unicast_pkts", func(c *Counters) *float64 { return &c.TxUnicastPkts }),
	counter("rx_multicast_pkts", func(c *Counters) *float64 { return &c.RxMulticastPkts }),
	counter("tx_multicast_pkts", func(c *Counters) *float64 { return &c.TxMulticastPkts }),
	counter("rx_broadcast_pkts", func(c *Counters) *float64 { return &c.RxBroadcastPkts }),
	counter("tx_broadcast_pkts", func(c *Counters) *float64 { return &c.TxBroadcastPkts }),
	entity.Field[Counters]{Name: "rx_bytes", Set: entity.Value(func(c *Counters) *units.Bytes { return &c.RxBytes }, units.ToBytes)},
	entity.Field[Counters]{Name: "tx_bytes", Set: entity.Value(func(c *Counters) *units.Bytes { return &c.TxBytes }, units.ToBytes)},
	counter("rx_discards", func(c *Counters) *float64 { return &c.RxDiscards }),
	counter("tx_discards", func(c *Counters) *float64 { return &c.TxDiscards }),
	counter("rx_errors_general", func(c *Counters) *float64 { return &c.RxErrorsGeneral }),
	counter("tx_errors_general", func(c *Counters) *float64 { return &c.TxErrorsGeneral }),
	counter("rx_errors_fcs", func(c *Counters) *float64 { return &c.RxErrorsFCS }),
	counter("rx_errors_crc", func(c *Counters) *float64 { return &c.RxErrorsCRC }),
	counter("rx_errors_runt", func(c *Counters) *float64 { return &c.RxErrorsRunt }),
	counter("rx_errors_rx_pause", func(c *Counters) *float64 { return &c.RxErrorsRxPause }),
	counter("rx_errors_giant", func(c *Counters) *float64 { return &c.RxErrorsGiant }),
	counter("rx_errors_symbol", func(c *Counters) *float64 { return &c.RxErrorsSymbol }),
	counter("tx_errors_collisions", func(c *Counters) *float64 { return &c.TxErrorsCollisions }),
	counter("tx_errors_late_collisions", func(c *Counters) *float64 { return &c.TxErrorsLateCollisions }),
	counter("tx_errors_deferred_transmissions", func(c *Counters) *float64 { return &c.TxErrorsDeferredTransmission }),
	counter("tx_errors_tx_pause", func(c *Counters) *float64 { return &c.TxErrorsTxPause }),
)

// Interface is the canonical network interface
type Interface struct {
	entity.Base

	Name                string     `json:"name"`
	Description         *string    `json:"description"`
	Instance            *string    `json:"instance"`
	Members             []string   `json:"members"`
	Enabled             *bool      `json:"enabled"`
	StatusUp            *bool      `json:"status_up"`
	Status              *string    `json:"status"`
	LastStatusChange    *time.Time `json:"last_status_change"`
	NumberStatusChanges *int       `json:"number_status_changes"`
	LastClear           *time.Time `json:"last_clear"`
	UpdateInterval      *float64   `json:"update_interval"`
	ForwardingModel     *string    `json:"forwarding_model"`
	Physical            *Physical  `json:"physical"`
	Optical             *Optical   `json:"optical"`
	Addresses           *Addresses `json:"addresses"`
	Counters            *Counters  `json:"counters"`

	adminStatus string
	fetch       retrieval[Fields]
}

var interfaceSchema = entity.NewSchema(KindInterface,
	entity.Field[Interface]{Name: "name", Set: entity.Value(func(i *Interface) *string { return &i.Name }, interfaceName)},
	entity.Field[Interface]{Name: "description", Set: entity.OptString(func(i *Interface) **string { return &i.Description })},
	entity.Field[Interface]{Name: "instance", Set: entity.OptString(func(i *Interface) **string { return &i.Instance })},
	entity.Field[Interface]{Name: "members", Set: entity.Strings(func(i *Interface) *[]string { return &i.Members })},
	entity.Field[Interface]{Name: "admin_status", Set: entity.String(func(i *Interface) *string { return &i.adminStatus })},
	entity.Field[Interface]{Name: "enabled", Set: entity.OptBool(func(i *Interface) **bool { return &i.Enabled })},
	entity.Field[Interface]{Name: "status_up", Set: entity.OptBool(func(i *Interface) **bool { return &i.StatusUp })},
	entity.Field[Interface]{Name: "status", Set: setInterfaceStatus},
	entity.Field[Interface]{Name: "last_status_change", Set: entity.Optional(func(i *Interface) **time.Time { return &i.LastStatusChange }, units.ToDateTime)},
	entity.Field[Interface]{Name: "number_status_changes", Set: entity.OptInt(func(i *Interface) **int { return &i.NumberStatusChanges })},
	entity.Field[Interface]{Name: "last_clear", Set: entity.Optional(func(i *Interface) **time.Time { return &i.LastClear }, units.ToDateTime)},
	entity.Field[Interface]{Name: "update_interval", Set: entity.OptFloat(func(i *Interface) **float64 { return &i.UpdateInterval })},
	entity.Field[Interface]{Name: "forwarding_model", Set: entity.Optional(func(i *Interface) **string { return &i.ForwardingModel }, forwardingModel)},
	entity.Field[Interface]{Name: "physical", Set: entity.Record(func(i *Interface) **Physical { return &i.Physical }, physicalSchema)},
	entity.Field[Interface]{Name: "optical", Set: entity.Record(func(i *Interface) **Optical { return &i.Optical }, opticalSchema)},
	entity.Field[Interface]{Name: "addresses", Set: entity.Record(func(i *Interface) **Addresses { return &i.Addresses }, addressesSchema)},
	entity.Field[Interface]{Name: "counters", Set: entity.Record(func(i *Interface) **Counters { return &i.Counters }, countersSchema)},
)

func interfaceName(raw interface{}) (string, error) {
	s, err := units.ToString(raw)
	if err != nil {
		return "", err
	}
	return util.NormalizeInterfaceName(s), nil
}

func forwardingModel(raw interface{}) (string, error) {
	s, err := units.ToString(raw)
	if err != nil {
		return "", err
	}
	return ForwardingModel(s)
}

func setInterfaceStatus(i *Interface, raw interface{}) error {
	if raw == nil {
		i.Status, i.StatusUp, i.Enabled = nil, nil, nil
		return nil
	}
	s, err := units.ToString(raw)
	if err != nil {
		return err
	}
	status, up, enabled, err := InterfaceStatus(s, i.adminStatus)
	if err != nil {
		return err
	}
	i.Status, i.StatusUp, i.Enabled = &status, &up, &enabled
	return nil
}

// NewInterface creates an empty interface entity
func NewInterface() *Interface {
	return &Interface{Base: entity.NewBase(KindInterface), Members: []string{}}
}

// BuildInterface creates an interface from canonical fields
func BuildInterface(fields Fields) (*Interface, error) {
	i := NewInterface()
	if err := i.Update(fields); err != nil {
		return nil, err
	}
	return i, nil
}

// Kind returns "interface"
func (i *Interface) Kind() string { return KindInterface }

// Set assigns one canonical field
func (i *Interface) Set(field string, value interface{}) error {
	return interfaceSchema.Set(i, field, value)
}

// Update assigns several canonical fields; admin_status is applied before
// status
func (i *Interface) Update(fields Fields) error {
	return interfaceSchema.Apply(i, fields)
}

// Validate checks the current field values
func (i *Interface) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(i.Name != "", "interface name is required")
	v.Add(i.Name == util.NormalizeInterfaceName(i.Name), fmt.Sprintf("interface name %q is not normalized", i.Name))
	if i.Status != nil {
		canonical, up, enabled, err := InterfaceStatus(*i.Status, i.adminStatus)
		if err != nil {
			v.AddError(err.Error())
		} else {
			v.Add(canonical == *i.Status, fmt.Sprintf("interface status %q is not canonical", *i.Status))
			v.Add(i.StatusUp == nil || *i.StatusUp == up, "status_up does not match status "+*i.Status)
			v.Add(i.Enabled == nil || *i.Enabled == enabled, "enabled does not match status "+*i.Status)
		}
	}
	if i.ForwardingModel != nil {
		_, err := ForwardingModel(*i.ForwardingModel)
		v.Add(err == nil, "unknown forwarding model: "+*i.ForwardingModel)
	}
	if i.Optical != nil && i.Optical.Status != nil {
		_, err := lightFlag(*i.Optical.Status)
		v.Add(err == nil, "unknown light level flag: "+*i.Optical.Status)
	}
	return v.Build()
}

// CanonicalMapping exports the interface
func (i *Interface) CanonicalMapping() (map[string]interface{}, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(i), nil
}

// Refresh re-runs the retrieval the interface was built from
func (i *Interface) Refresh(ctx context.Context) error {
	return refreshEntity(ctx, i, i.fetch)
}

// Interfaces is a collection of interfaces keyed by name
type Interfaces = Collection[string, *Interface]

// NewInterfaces creates an interface collection
func NewInterfaces(items ...entity.Item[string, *Interface]) (*Interfaces, error) {
	return newCollection(KindInterface, NewInterface, items...)
}
