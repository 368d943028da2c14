package net

import (
	"fmt"
	"sort"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// Query carries the lookup keys of one retrieval. Each kind reads the keys
// it understands and ignores the rest.
type Query struct {
	// Name selects an interface
	Name string
	// Names selects several interfaces; drivers that cannot express a
	// list reject it
	Names []string
	// ID selects a VLAN
	ID int
	// IDs restricts a VLAN collection to the span of the listed ids
	IDs []int
	// Range restricts a collection with vendor range text, e.g. "1-10"
	// for VLANs or "Ethernet1-4" for interfaces
	Range string
	// Group selects a VRRP group
	Group int
	// Interface restricts VRRP retrieval to one interface
	Interface string
	// Instance is the VRF or routing instance
	Instance string
	// Protocol restricts a route collection to one protocol
	Protocol string
	// Dest is the address or prefix a route lookup resolves
	Dest string
	// VRFAll collects routes of every instance
	VRFAll bool
}

// EntityDriver generates the commands for a single entity and parses the
// outputs into canonical fields
type EntityDriver interface {
	EntityCommands(q Query) ([]string, error)
	Parse(raw connector.Results, q Query) (Fields, error)
}

// Driver is the full parser contract of one entity kind for one vendor
type Driver[K comparable] interface {
	EntityDriver
	CollectionCommands(q Query) ([]string, error)
	CollectorParse(raw connector.Results, q Query) ([]Record[K], error)
}

// RunOptioner is implemented by drivers that need non-default run options,
// e.g. silent pruning of commands some platforms reject
type RunOptioner interface {
	RunOptions() connector.RunOptions
}

func runOptions(d interface{}) connector.RunOptions {
	if o, ok := d.(RunOptioner); ok {
		return o.RunOptions()
	}
	return connector.RunOptions{}
}

// Registry maps (kind, implementation tag) to drivers. It is built once at
// startup and passed to Builders.
type Registry struct {
	drivers map[string]map[string]interface{}
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]map[string]interface{})}
}

// Register adds a driver. The driver must implement the contract of its
// kind: Driver[string] for interfaces, Driver[int] for VLANs,
// Driver[VrrpKey], Driver[RouteKey] and EntityDriver for facts.
// Registering a (kind, tag) pair twice panics.
func (r *Registry) Register(kind, tag string, driver interface{}) {
	if !fitsKind(kind, driver) {
		panic(fmt.Sprintf("net: %T is not a %s driver", driver, kind))
	}
	byTag, ok := r.drivers[kind]
	if !ok {
		byTag = make(map[string]interface{})
		r.drivers[kind] = byTag
	}
	if _, dup := byTag[tag]; dup {
		panic(fmt.Sprintf("net: %s driver for %s registered twice", kind, tag))
	}
	byTag[tag] = driver
}

// Tags lists the implementations registered for kind in sorted order
func (r *Registry) Tags(kind string) []string {
	tags := make([]string, 0, len(r.drivers[kind]))
	for t := range r.drivers[kind] {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func (r *Registry) lookup(kind, tag string) (interface{}, error) {
	d, ok := r.drivers[kind][tag]
	if !ok {
		return nil, util.NewUnimplementedError(kind, tag)
	}
	return d, nil
}

func fitsKind(kind string, d interface{}) bool {
	switch kind {
	case KindInterface:
		_, ok := d.(Driver[string])
		return ok
	case KindVlan:
		_, ok := d.(Driver[int])
		return ok
	case KindVrrp:
		_, ok := d.(Driver[VrrpKey])
		return ok
	case KindRoute:
		_, ok := d.(Driver[RouteKey])
		return ok
	case KindFacts:
		_, ok := d.(EntityDriver)
		return ok
	}
	return false
}

func entityDriver(r *Registry, kind, tag string) (EntityDriver, error) {
	d, err := r.lookup(kind, tag)
	if err != nil {
		return nil, err
	}
	return d.(EntityDriver), nil
}

func collectionDriver[K comparable](r *Registry, kind, tag string) (Driver[K], error) {
	d, err := r.lookup(kind, tag)
	if err != nil {
		return nil, err
	}
	cd, ok := d.(Driver[K])
	if !ok {
		return nil, util.NewUnimplementedError(kind+" collection", tag)
	}
	return cd, nil
}
