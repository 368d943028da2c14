package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
)

var vlanRange string

var vlanCmd = &cobra.Command{
	Use:     "vlan [vlan-id]",
	Aliases: []string{"vlans"},
	Short:   "Show VLANs",
	Long: `Show one VLAN, or every VLAN of the device.

Requires -d (device) flag.

Examples:
  netapi -d leaf1 vlan
  netapi -d leaf1 vlan 100
  netapi -d leaf1 vlan --range 10-20,30`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, c connector.Connector) error {
			if len(args) == 1 {
				id, err := parseID("VLAN id", args[0])
				if err != nil {
					return err
				}
				return showVlan(ctx, c, id)
			}
			return listVlans(ctx, c)
		})
	},
}

func init() {
	vlanCmd.Flags().StringVar(&vlanRange, "range", "", "VLAN range, e.g. 10-20,30")
}

func listVlans(ctx context.Context, c connector.Connector) error {
	col, err := app.builder.Vlans(ctx, c, net.Query{Range: vlanRange})
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(col)
	}
	if col.Len() == 0 {
		fmt.Fprintln(app.out, "No VLANs configured")
		return nil
	}

	t := newTable("VLAN ID", "NAME", "STATUS", "DYNAMIC", "INTERFACES")
	for _, v := range col.Values() {
		t.Row(strconv.Itoa(v.ID), cli.Str(v.Name), statusCell(v.Status), cli.Bool(v.Dynamic), cli.List(v.Interfaces))
	}
	t.Flush()
	return nil
}

func showVlan(ctx context.Context, c connector.Connector, id int) error {
	v, err := app.builder.Vlan(ctx, c, net.Query{ID: id})
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(v)
	}

	d := newDetails(app.out, fmt.Sprintf("VLAN: %d", v.ID))
	d.field("Name", cli.Str(v.Name))
	d.field("Status", statusCell(v.Status))
	d.field("Dynamic", cli.Bool(v.Dynamic))
	d.field("Interfaces", cli.List(v.Interfaces))
	return nil
}
