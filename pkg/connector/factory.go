package connector

import (
	"fmt"
	"sort"

	"github.com/netapi-network/netapi/pkg/util"
)

// Constructor creates a connector from its settings
type Constructor func(cfg Config) (Connector, error)

// Factory maps dispatch tags to connector constructors
type Factory struct {
	ctors map[string]Constructor
}

// NewFactory returns an empty factory
func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// Register adds a constructor. Registering a tag twice panics.
func (f *Factory) Register(tag string, ctor Constructor) {
	if _, dup := f.ctors[tag]; dup {
		panic(fmt.Sprintf("connector: %s registered twice", tag))
	}
	f.ctors[tag] = ctor
}

// Create builds the connector for an OS and provider pair
func (f *Factory) Create(os, provider string, cfg Config) (Connector, error) {
	tag := Tag(os, provider)
	ctor, ok := f.ctors[tag]
	if !ok {
		return nil, util.NewUnimplementedError("connector", tag)
	}
	util.WithImplementation(tag).Debugf("creating connector for %s", cfg.Host)
	return ctor(cfg)
}

// Tags lists the registered tags in sorted order
func (f *Factory) Tags() []string {
	tags := make([]string, 0, len(f.ctors))
	for t := range f.ctors {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
