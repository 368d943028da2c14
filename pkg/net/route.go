package net

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

// Via is one next hop of a route
type Via struct {
	Interface *string     `json:"interface"`
	NextHop   *netip.Addr `json:"next_hop"`
}

var viaSchema = entity.NewSchema("via",
	entity.Field[Via]{Name: "interface", Set: entity.Optional(func(v *Via) **string { return &v.Interface }, interfaceName)},
	entity.Field[Via]{Name: "next_hop", Set: entity.Optional(func(v *Via) **netip.Addr { return &v.NextHop }, units.ToIPAddress)},
)

// Route is the canonical routing table entry for a destination
type Route struct {
	entity.Base

	Dest            string                 `json:"dest"`
	Instance        *string                `json:"instance"`
	Network         *netip.Prefix          `json:"network"`
	Protocol        *string                `json:"protocol"`
	Vias            []Via                  `json:"vias"`
	Metric          *int                   `json:"metric"`
	Preference      *int                   `json:"preference"`
	Active          *bool                  `json:"active"`
	InactiveReason  *string                `json:"inactive_reason"`
	Age             *time.Duration         `json:"age"`
	Tag             *int                   `json:"tag"`
	ExtraAttributes map[string]interface{} `json:"extra_attributes"`

	fetch retrieval[Fields]
}

var routeSchema = entity.NewSchema(KindRoute,
	entity.Field[Route]{Name: "dest", Set: entity.Value(func(r *Route) *string { return &r.Dest }, routeDest)},
	entity.Field[Route]{Name: "instance", Set: entity.OptString(func(r *Route) **string { return &r.Instance })},
	entity.Field[Route]{Name: "network", Set: entity.Optional(func(r *Route) **netip.Prefix { return &r.Network }, units.ToIPNetwork)},
	entity.Field[Route]{Name: "protocol", Set: entity.Optional(func(r *Route) **string { return &r.Protocol }, routeProtocol)},
	entity.Field[Route]{Name: "vias", Set: setVias},
	entity.Field[Route]{Name: "metric", Set: entity.OptInt(func(r *Route) **int { return &r.Metric })},
	entity.Field[Route]{Name: "preference", Set: entity.OptInt(func(r *Route) **int { return &r.Preference })},
	entity.Field[Route]{Name: "active", Set: entity.OptBool(func(r *Route) **bool { return &r.Active })},
	entity.Field[Route]{Name: "inactive_reason", Set: entity.OptString(func(r *Route) **string { return &r.InactiveReason })},
	entity.Field[Route]{Name: "age", Set: entity.Optional(func(r *Route) **time.Duration { return &r.Age }, routeAge)},
	entity.Field[Route]{Name: "tag", Set: entity.OptInt(func(r *Route) **int { return &r.Tag })},
	entity.Field[Route]{Name: "extra_attributes", Set: entity.Attrs(func(r *Route) *map[string]interface{} { return &r.ExtraAttributes })},
)

func routeDest(raw interface{}) (string, error) {
	s, err := units.ToString(raw)
	if err != nil {
		return "", err
	}
	if !util.IsValidIPOrPrefix(s) {
		return "", util.NewValidationError("not a valid IP address: " + s)
	}
	return s, nil
}

func routeProtocol(raw interface{}) (string, error) {
	s, err := units.ToString(raw)
	if err != nil {
		return "", err
	}
	return ResolveProtocol(s)
}

// routeAge reads a number of seconds; text is rejected
func routeAge(raw interface{}) (time.Duration, error) {
	switch raw.(type) {
	case time.Duration, int, int32, int64, uint, uint32, uint64, float32, float64:
		return units.ToDuration(raw)
	}
	return 0, fmt.Errorf("route age must be a number of seconds, got %T", raw)
}

func setVias(r *Route, raw interface{}) error {
	switch x := raw.(type) {
	case nil:
		r.Vias = []Via{}
		return nil
	case []Via:
		r.Vias = x
		return nil
	case []map[string]interface{}:
		list := make([]interface{}, len(x))
		for i, m := range x {
			list[i] = m
		}
		raw = list
	}
	list, ok := raw.([]interface{})
	if !ok {
		return fmt.Errorf("vias must be a list, got %T", raw)
	}
	vias := make([]Via, 0, len(list))
	for i, item := range list {
		if v, ok := item.(Via); ok {
			vias = append(vias, v)
			continue
		}
		values, err := units.ToStringMap(connector.Plain(item))
		if err != nil {
			return err
		}
		v, err := viaSchema.Build(values)
		if err != nil {
			return fmt.Errorf("via %d: %w", i, err)
		}
		vias = append(vias, *v)
	}
	r.Vias = vias
	return nil
}

// NewRoute creates an empty route entity
func NewRoute() *Route {
	return &Route{Base: entity.NewBase(KindRoute), Vias: []Via{}, ExtraAttributes: map[string]interface{}{}}
}

// BuildRoute creates a route from canonical fields
func BuildRoute(fields Fields) (*Route, error) {
	r := NewRoute()
	if err := r.Update(fields); err != nil {
		return nil, err
	}
	return r, nil
}

// Kind returns "route"
func (r *Route) Kind() string { return KindRoute }

// Set assigns one canonical field
func (r *Route) Set(field string, value interface{}) error {
	return routeSchema.Set(r, field, value)
}

// Update assigns several canonical fields
func (r *Route) Update(fields Fields) error {
	return routeSchema.Apply(r, fields)
}

// Validate checks the current field values
func (r *Route) Validate() error {
	b := &util.ValidationBuilder{}
	b.Add(util.IsValidIPOrPrefix(r.Dest), "not a valid IP address: "+r.Dest)
	if r.Protocol != nil {
		_, err := ResolveProtocol(*r.Protocol)
		b.Add(err == nil, "unknown protocol "+*r.Protocol)
	}
	if r.Age != nil {
		b.Add(*r.Age >= 0, "route age cannot be negative")
	}
	return b.Build()
}

// Key returns the collection key of the route
func (r *Route) Key() RouteKey {
	k := RouteKey{}
	if r.Instance != nil {
		k.Instance = *r.Instance
	}
	if r.Network != nil {
		k.Network = *r.Network
	}
	return k
}

// CanonicalMapping exports the route
func (r *Route) CanonicalMapping() (map[string]interface{}, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return entity.Export(r), nil
}

// Refresh re-runs the retrieval the route was built from
func (r *Route) Refresh(ctx context.Context) error {
	return refreshEntity(ctx, r, r.fetch)
}

// RouteKey identifies a route by routing instance and network
type RouteKey struct {
	Instance string
	Network  netip.Prefix
}

func (k RouteKey) String() string {
	return fmt.Sprintf("(%s, %s)", k.Instance, k.Network)
}

// Routes is a collection of routes keyed by instance and network
type Routes = Collection[RouteKey, *Route]

// NewRoutes creates a route collection
func NewRoutes(items ...entity.Item[RouteKey, *Route]) (*Routes, error) {
	return newCollection(KindRoute, NewRoute, items...)
}
