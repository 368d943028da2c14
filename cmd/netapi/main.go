// Netapi - Multi-vendor Network State Tool
//
// Reads the operational state of network devices and prints it in one
// canonical shape regardless of vendor:
//   - EOS over eAPI, NX-OS over NX-API, SONiC over Redis
//   - Ping from any device, or from the local machine
//   - Table, JSON or YAML output
//
// Context flags select the device; commands name the entity to read:
//
//	netapi -d <device> <entity> [args] [--json|--yaml]
//
// Examples:
//
//	netapi -d leaf1 facts                        # Device facts
//	netapi -d leaf1 interface                    # All interfaces
//	netapi -d leaf1 interface Ethernet1          # One interface
//	netapi -d leaf1 vlan --range 10-20           # VLANs 10 to 20
//	netapi -d leaf1 route 10.1.1.1 --vrf blue    # Longest prefix match
//	netapi -d leaf1 ping 10.0.0.2 --vrf blue     # Ping from the device
//	netapi ping 8.8.8.8 --resolve                # Ping from this machine
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/entity"
	"github.com/netapi-network/netapi/pkg/inventory"
	"github.com/netapi-network/netapi/pkg/metrics"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/net/drivers"
	"github.com/netapi-network/netapi/pkg/probe"
	"github.com/netapi-network/netapi/pkg/settings"
	"github.com/netapi-network/netapi/pkg/util"
	"github.com/netapi-network/netapi/pkg/version"
)

// App holds the flag values and the state shared by all commands.
type App struct {
	// Context flags
	deviceName    string // -d, --device
	inventoryPath string // -i, --inventory

	// Option flags
	verbose     bool
	jsonOutput  bool
	yamlOutput  bool
	dumpMetrics bool

	settings *settings.Settings
	promReg  *prometheus.Registry
	metrics  *metrics.Collector
	builder  *net.Builder
	pinger   *probe.PingBuilder
	out      io.Writer
}

var app = &App{out: os.Stdout}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netapi",
	Short:             "Multi-vendor network state tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Netapi reads interfaces, VLANs, VRRP groups, routes and facts from
network devices and prints them in one vendor-neutral shape.

Devices come from a YAML inventory (-i, or 'netapi settings set inventory').

  netapi -d <device> <entity> [args] [--json|--yaml]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			s = &settings.Settings{}
		}
		app.settings = s

		if app.deviceName == "" {
			app.deviceName = s.DefaultDevice
		}
		if app.inventoryPath == "" {
			app.inventoryPath = s.GetInventory()
		}
		if !cmd.Flags().Changed("json") && !cmd.Flags().Changed("yaml") {
			switch s.GetOutput() {
			case settings.OutputJSON:
				app.jsonOutput = true
			case settings.OutputYAML:
				app.yamlOutput = true
			}
		}
		if app.jsonOutput && app.yamlOutput {
			return fmt.Errorf("--json and --yaml are mutually exclusive")
		}

		// Quiet by default, verbose on -v
		level := s.GetLogLevel()
		if app.verbose {
			level = "debug"
		}
		if err := util.SetLogLevel(level); err != nil {
			util.Warnf("Invalid log level %q: %v", level, err)
		}

		app.promReg = prometheus.NewRegistry()
		app.metrics = metrics.New(app.promReg)
		app.builder = net.NewBuilder(drivers.NewRegistry(), net.WithMetrics(app.metrics))
		app.pinger = probe.NewPingBuilder(nil, probe.WithMetrics(app.metrics))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if !app.dumpMetrics {
			return nil
		}
		return writeMetrics(app.out, app.promReg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&app.deviceName, "device", "d", "", "Device name from the inventory")
	rootCmd.PersistentFlags().StringVarP(&app.inventoryPath, "inventory", "i", "", "Inventory file")
	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&app.jsonOutput, "json", false, "JSON output")
	rootCmd.PersistentFlags().BoolVar(&app.yamlOutput, "yaml", false, "YAML output")
	rootCmd.PersistentFlags().BoolVar(&app.dumpMetrics, "metrics", false, "Print collected metrics after the command")

	rootCmd.AddGroup(
		&cobra.Group{ID: "state", Title: "Device State:"},
		&cobra.Group{ID: "probe", Title: "Probes:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{interfaceCmd, vlanCmd, vrrpCmd, routeCmd, factsCmd} {
		cmd.GroupID = "state"
		rootCmd.AddCommand(cmd)
	}

	pingCmd.GroupID = "probe"
	rootCmd.AddCommand(pingCmd)

	for _, cmd := range []*cobra.Command{settingsCmd, inventoryCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		b := version.Current()
		if app.jsonOutput || app.yamlOutput {
			return printStructured(b)
		}
		if b.Version == "dev" {
			fmt.Fprintf(app.out, "netapi dev build (%s, %s)\n", b.GitCommit, b.GoVersion)
		} else {
			fmt.Fprintf(app.out, "netapi %s (%s) built %s\n", b.Version, b.GitCommit, b.BuildDate)
		}
		return nil
	},
}

// ============================================================================
// Context Helpers
// ============================================================================

// loadInventory reads the inventory named by -i or the settings
func loadInventory() (*inventory.Inventory, error) {
	inv, err := inventory.Load(app.inventoryPath)
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}
	return inv, nil
}

// requireDevice connects to the device selected with -d
func requireDevice() (connector.Connector, error) {
	if app.deviceName == "" {
		return nil, fmt.Errorf("device required: use -d <device> flag or 'netapi settings set default_device <name>'")
	}
	inv, err := loadInventory()
	if err != nil {
		return nil, err
	}
	d, err := inv.Device(app.deviceName)
	if err != nil {
		return nil, err
	}
	return connect(d)
}

func connect(d *inventory.Device) (connector.Connector, error) {
	if d.Password == "" && d.Username != "" && term.IsTerminal(int(os.Stdin.Fd())) {
		pw, err := promptPassword(d)
		if err != nil {
			return nil, err
		}
		d.Password = pw
	}
	return d.Connect(inventory.NewFactory())
}

func promptPassword(d *inventory.Device) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s@%s: ", d.Username, d.Host)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// disconnect closes transports that hold a session open
func disconnect(c connector.Connector) {
	if closer, ok := c.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			util.WithImplementation(c.Meta().Implementation).Debugf("close: %v", err)
		}
	}
}

// withDevice connects to the selected device, runs fn and disconnects
func withDevice(cmd *cobra.Command, fn func(ctx context.Context, c connector.Connector) error) error {
	c, err := requireDevice()
	if err != nil {
		return err
	}
	defer disconnect(c)
	return fn(cmd.Context(), c)
}

// ============================================================================
// Output Helpers
// ============================================================================

// mapper is anything with a canonical export
type mapper interface {
	CanonicalMapping() (map[string]interface{}, error)
}

// structured reports whether a machine-readable format was requested
func structured() bool {
	return app.jsonOutput || app.yamlOutput
}

// orderedMapper is a collection that can export its members in order
type orderedMapper interface {
	CanonicalItems() (entity.Ordered, error)
}

// printMapping prints the canonical export of m in the requested format.
// Collections keep their member order.
func printMapping(m mapper) error {
	if o, ok := m.(orderedMapper); ok {
		items, err := o.CanonicalItems()
		if err != nil {
			return err
		}
		return printStructured(items)
	}
	data, err := m.CanonicalMapping()
	if err != nil {
		return err
	}
	return printStructured(data)
}

func printStructured(v interface{}) error {
	if app.yamlOutput {
		enc := yaml.NewEncoder(app.out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(app.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeMetrics prints the gathered metric families in the Prometheus text
// exposition format
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	sort.Slice(mfs, func(i, j int) bool { return mfs[i].GetName() < mfs[j].GetName() })
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Color helpers delegate to pkg/cli
func green(s string) string { return cli.Green(s) }
func red(s string) string   { return cli.Red(s) }
func bold(s string) string  { return cli.Bold(s) }
