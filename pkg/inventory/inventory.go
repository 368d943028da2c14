// Package inventory loads the YAML device inventory and turns its entries
// into connectors.
//
// An inventory names each device once and lets a defaults block supply
// the shared settings:
//
//	defaults:
//	  username: admin
//	  timeout: 30s
//	devices:
//	  leaf1:
//	    host: 10.0.0.11
//	    os: eos
//	  sonic1:
//	    host: 10.0.0.21
//	    os: sonic
//	    transport: direct
package inventory

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/connector/eapi"
	"github.com/netapi-network/netapi/pkg/connector/icmp"
	"github.com/netapi-network/netapi/pkg/connector/local"
	"github.com/netapi-network/netapi/pkg/connector/sonicdb"
	"github.com/netapi-network/netapi/pkg/connector/sshcli"
	"github.com/netapi-network/netapi/pkg/util"
)

// Device is one inventory entry. Zero fields inherit from the defaults.
type Device struct {
	Name       string        `yaml:"-" json:"name"`
	Host       string        `yaml:"host,omitempty" json:"host,omitempty"`
	Port       int           `yaml:"port,omitempty" json:"port,omitempty"`
	OS         string        `yaml:"os,omitempty" json:"os,omitempty"`
	Provider   string        `yaml:"provider,omitempty" json:"provider,omitempty"`
	Username   string        `yaml:"username,omitempty" json:"username,omitempty"`
	Password   string        `yaml:"password,omitempty" json:"-"`
	Transport  string        `yaml:"transport,omitempty" json:"transport,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Netns      string        `yaml:"netns,omitempty" json:"netns,omitempty"`
	Insecure   *bool         `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	KnownHosts string        `yaml:"known_hosts,omitempty" json:"known_hosts,omitempty"`
}

// Inventory is a loaded inventory file
type Inventory struct {
	Defaults Device             `yaml:"defaults"`
	Devices  map[string]*Device `yaml:"devices"`
}

// providers maps an OS to the provider used when none is given
var providers = map[string]string{
	"eos":   "pyeapi",
	"nxos":  "nxapi",
	"sonic": "redis",
	"ios":   "netmiko",
	"xe":    "netmiko",
	"xr":    "netmiko",
	"junos": "pyez",
	"linux": "subprocess",
}

// DefaultProvider returns the provider an OS uses when none is configured
func DefaultProvider(os string) string {
	return providers[strings.ToLower(os)]
}

// Load reads and validates an inventory file
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes an inventory document and merges the defaults into every
// device.
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing inventory YAML: %w", err)
	}
	if inv.Devices == nil {
		inv.Devices = make(map[string]*Device)
	}
	for name, d := range inv.Devices {
		if d == nil {
			d = &Device{}
			inv.Devices[name] = d
		}
		d.Name = name
		d.inherit(inv.Defaults)
	}
	if err := inv.validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (inv *Inventory) validate() error {
	vb := &util.ValidationBuilder{}
	for _, name := range inv.Names() {
		d := inv.Devices[name]
		vb.Add(d.OS != "", fmt.Sprintf("device %s: os is required", name))
		vb.Add(d.Host != "" || d.local(), fmt.Sprintf("device %s: host is required", name))
		vb.Add(d.Port >= 0 && d.Port <= 65535, fmt.Sprintf("device %s: invalid port %d", name, d.Port))
		vb.Add(d.Timeout >= 0, fmt.Sprintf("device %s: timeout must not be negative", name))
	}
	return vb.Build()
}

func (d *Device) inherit(def Device) {
	if d.Host == "" {
		d.Host = def.Host
	}
	if d.Port == 0 {
		d.Port = def.Port
	}
	if d.OS == "" {
		d.OS = def.OS
	}
	if d.Provider == "" {
		d.Provider = def.Provider
	}
	if d.Username == "" {
		d.Username = def.Username
	}
	if d.Password == "" {
		d.Password = def.Password
	}
	if d.Transport == "" {
		d.Transport = def.Transport
	}
	if d.Timeout == 0 {
		d.Timeout = def.Timeout
	}
	if d.Netns == "" {
		d.Netns = def.Netns
	}
	if d.Insecure == nil {
		d.Insecure = def.Insecure
	}
	if d.KnownHosts == "" {
		d.KnownHosts = def.KnownHosts
	}
	if d.Provider == "" {
		d.Provider = DefaultProvider(d.OS)
	}
}

// Names returns the device names in sorted order
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Devices))
	for n := range inv.Devices {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Device looks a device up by name
func (inv *Inventory) Device(name string) (*Device, error) {
	d, ok := inv.Devices[name]
	if !ok {
		return nil, fmt.Errorf("device %q not in inventory", name)
	}
	return d, nil
}

// Localhost is the implicit entry used to ping from the local machine
// when no device is given.
func Localhost() *Device {
	return &Device{Name: "localhost", Host: "localhost", OS: "linux", Provider: "probing"}
}

func (d *Device) local() bool {
	return strings.EqualFold(d.OS, "linux") &&
		(strings.EqualFold(d.Provider, "subprocess") || strings.EqualFold(d.Provider, "probing"))
}

// Tag returns the connector dispatch tag, e.g. EOS-PYEAPI
func (d *Device) Tag() string {
	return connector.Tag(d.OS, d.Provider)
}

// Config converts the entry to transport settings
func (d *Device) Config() connector.Config {
	return connector.Config{
		Name:       d.Name,
		Host:       d.Host,
		Port:       d.Port,
		Username:   d.Username,
		Password:   d.Password,
		Transport:  d.Transport,
		Timeout:    d.Timeout,
		Netns:      d.Netns,
		Insecure:   d.insecure(),
		KnownHosts: d.KnownHosts,
	}
}

// insecure defaults to true unless a known_hosts file is configured
func (d *Device) insecure() bool {
	if d.Insecure != nil {
		return *d.Insecure
	}
	return d.KnownHosts == ""
}

// Connect builds the device's connector from f
func (d *Device) Connect(f *connector.Factory) (connector.Connector, error) {
	util.WithDevice(d.Name).Debugf("connecting to %s as %s", d.Host, d.Tag())
	c, err := f.Create(d.OS, d.Provider, d.Config())
	if err != nil {
		return nil, fmt.Errorf("device %s: %w", d.Name, err)
	}
	return c, nil
}

// NewFactory returns a factory with every transport registered
func NewFactory() *connector.Factory {
	f := connector.NewFactory()
	eapi.Register(f)
	sshcli.Register(f)
	local.Register(f)
	icmp.Register(f)
	sonicdb.Register(f)
	return f
}
