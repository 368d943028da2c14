package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/util"
)

var (
	vrrpInterface string
	vrrpVRF       string
)

var vrrpCmd = &cobra.Command{
	Use:   "vrrp [group-id]",
	Short: "Show VRRP groups",
	Long: `Show one VRRP group, or every group of the device.

A group id may be configured on several interfaces; use -I to pick one.

Requires -d (device) flag.

Examples:
  netapi -d leaf1 vrrp
  netapi -d leaf1 vrrp 10 -I Vlan100
  netapi -d leaf1 vrrp --vrf blue`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := net.Query{Instance: vrrpVRF}
		if vrrpInterface != "" {
			q.Interface = util.NormalizeInterfaceName(vrrpInterface)
		}
		return withDevice(cmd, func(ctx context.Context, c connector.Connector) error {
			if len(args) == 1 {
				id, err := parseID("VRRP group", args[0])
				if err != nil {
					return err
				}
				q.Group = id
				return showVrrp(ctx, c, q)
			}
			return listVrrps(ctx, c, q)
		})
	},
}

func init() {
	vrrpCmd.Flags().StringVarP(&vrrpInterface, "interface", "I", "", "Restrict to one interface")
	vrrpCmd.Flags().StringVar(&vrrpVRF, "vrf", "", "Routing instance")
}

func listVrrps(ctx context.Context, c connector.Connector, q net.Query) error {
	col, err := app.builder.Vrrps(ctx, c, q)
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(col)
	}
	if col.Len() == 0 {
		fmt.Fprintln(app.out, "No VRRP groups configured")
		return nil
	}

	t := newTable("GROUP", "INTERFACE", "STATUS", "VIRTUAL IP", "PRIORITY", "MASTER", "PREEMPT")
	for _, v := range col.Values() {
		t.Row(strconv.Itoa(v.GroupID), cli.Str(v.Interface), statusCell(v.Status), addr(v.VirtualIP),
			cli.Int(v.Priority), addr(v.MasterIP), cli.Bool(v.Preempt))
	}
	t.Flush()
	return nil
}

func showVrrp(ctx context.Context, c connector.Connector, q net.Query) error {
	v, err := app.builder.Vrrp(ctx, c, q)
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(v)
	}

	d := newDetails(app.out, fmt.Sprintf("VRRP group: %d", v.GroupID))
	d.field("Interface", cli.Str(v.Interface))
	d.field("Description", cli.Str(v.Description))
	d.field("Version", cli.Int(v.Version))
	d.field("Status", statusCell(v.Status))
	d.field("Instance", cli.Str(v.Instance))
	d.field("Virtual IP", addr(v.VirtualIP))
	d.field("Secondary IPs", cli.List(v.VirtualIPSecondary))
	d.field("Virtual MAC", mac(v.VirtualMAC))
	d.field("Priority", cli.Int(v.Priority))
	d.field("Master IP", addr(v.MasterIP))
	d.field("Master priority", cli.Int(v.MasterPriority))
	d.field("Advertisement interval", float(v.MasterInterval, "s"))
	d.field("Preempt", cli.Bool(v.Preempt))
	d.field("Preempt delay", float(v.PreemptDelay, "s"))
	d.field("Master down interval", float(v.MasterDownInterval, "s"))
	d.field("Skew time", float(v.SkewTime, "s"))
	return nil
}
