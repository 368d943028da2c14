package entity

import (
	"fmt"

	"github.com/netapi-network/netapi/pkg/util"
)

// DeviceKind is the metadata name every connector must carry
const DeviceKind = "device"

// Entity is implemented by every canonical record
type Entity interface {
	Kind() string
	Meta() *Metadata
	Validate() error
	CanonicalMapping() (map[string]interface{}, error)
}

// Device is the part of a connector an entity may hold on to
type Device interface {
	Meta() *Metadata
}

// Base holds the state shared by entities: identity, the non-owning
// connector reference and the commands last used to retrieve the data.
type Base struct {
	Metadata *Metadata `json:"metadata"`
	GetCmd   []string  `json:"get_cmd"`

	device Device
}

// NewBase creates the shared state for an entity of the given kind
func NewBase(kind string) Base {
	return Base{Metadata: NewMetadata(kind, TypeEntity)}
}

// Meta returns the entity metadata
func (b *Base) Meta() *Metadata { return b.Metadata }

// Connector returns the attached device, nil if none
func (b *Base) Connector() Device { return b.device }

// AttachConnector stores a non-owning device reference. The device must
// identify itself as a "device".
func (b *Base) AttachConnector(d Device) error {
	if err := CheckDevice(d); err != nil {
		return err
	}
	b.device = d
	return nil
}

// CheckDevice verifies that d can be attached to an entity or collection
func CheckDevice(d Device) error {
	if d == nil || d.Meta() == nil {
		return util.NewFieldError("", "connector", d, fmt.Errorf("no connector metadata"))
	}
	if d.Meta().Name != DeviceKind {
		return util.NewFieldError("", "connector", d.Meta().Name,
			fmt.Errorf("connector kind must be %q", DeviceKind))
	}
	return nil
}

// Bind attaches d, stamps its implementation tag on the metadata and
// records the commands the entity was retrieved with
func (b *Base) Bind(d Device, cmds []string) error {
	if err := b.AttachConnector(d); err != nil {
		return err
	}
	b.Metadata.Implementation = d.Meta().Implementation
	b.GetCmd = append([]string(nil), cmds...)
	return nil
}
