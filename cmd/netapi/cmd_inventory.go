package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/inventory"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect the device inventory",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory devices",
	Long: `List the devices of the inventory with the defaults applied.

Examples:
  netapi inventory list
  netapi -i lab.yaml inventory list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := loadInventory()
		if err != nil {
			return err
		}
		devices := make([]*inventory.Device, 0, len(inv.Devices))
		for _, name := range inv.Names() {
			devices = append(devices, inv.Devices[name])
		}
		if structured() {
			return printStructured(deviceViews(devices))
		}
		if len(devices) == 0 {
			fmt.Fprintf(app.out, "No devices in %s\n", app.inventoryPath)
			return nil
		}

		t := newTable("NAME", "HOST", "PORT", "IMPLEMENTATION", "USERNAME", "TIMEOUT")
		for _, d := range devices {
			port, timeout := cli.Missing, cli.Missing
			if d.Port != 0 {
				port = strconv.Itoa(d.Port)
			}
			if d.Timeout != 0 {
				timeout = d.Timeout.String()
			}
			name := d.Name
			if name == app.deviceName {
				name = bold(name)
			}
			t.Row(name, d.Host, port, d.Tag(), d.Username, timeout)
		}
		t.Flush()
		return nil
	},
}

func init() {
	inventoryCmd.AddCommand(inventoryListCmd)
}

// deviceViews exports devices without their passwords
func deviceViews(devices []*inventory.Device) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(devices))
	for _, d := range devices {
		v := map[string]interface{}{
			"name":           d.Name,
			"host":           d.Host,
			"os":             d.OS,
			"provider":       d.Provider,
			"implementation": d.Tag(),
			"username":       d.Username,
		}
		if d.Port != 0 {
			v["port"] = d.Port
		}
		if d.Transport != "" {
			v["transport"] = d.Transport
		}
		if d.Timeout != 0 {
			v["timeout"] = d.Timeout.String()
		}
		if d.Netns != "" {
			v["netns"] = d.Netns
		}
		out = append(out, v)
	}
	return out
}
