package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show device facts",
	Long: `Show hostname, OS version, model, uptime and memory of the device.

Requires -d (device) flag.

Examples:
  netapi -d leaf1 facts
  netapi -d leaf1 facts --yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, c connector.Connector) error {
			f, err := app.builder.Facts(ctx, c)
			if err != nil {
				return err
			}
			if structured() {
				return printMapping(f)
			}

			d := newDetails(app.out, "Device: "+app.deviceName)
			d.field("Hostname", cli.Str(f.Hostname))
			d.field("Implementation", c.Meta().Implementation)
			d.field("OS version", cli.Str(f.OSVersion))
			d.field("OS architecture", cli.Str(f.OSArch))
			d.field("Model", cli.Str(f.Model))
			d.field("Hardware revision", cli.Str(f.HWRevision))
			d.field("Serial number", cli.Str(f.SerialNumber))
			d.field("System MAC", mac(f.SystemMAC))
			d.field("Uptime", cli.Duration(f.Uptime))
			d.field("Up since", cli.Age(f.UpSince))
			d.field("Total memory", cli.Bytes(f.TotalMemory))
			d.field("Available memory", cli.Bytes(f.AvailableMemory))
			d.field("Interfaces", cli.Int(intPtr(len(f.Interfaces))))
			return nil
		})
	},
}

func intPtr(n int) *int { return &n }
