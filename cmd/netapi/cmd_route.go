package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
)

var (
	routeVRF      string
	routeProtocol string
	routeAllVRFs  bool
)

var routeCmd = &cobra.Command{
	Use:     "route [destination]",
	Aliases: []string{"routes"},
	Short:   "Show routes",
	Long: `Resolve a destination to its route, or show the routing table.

A destination without a route is reported as inactive, not as an error.

Requires -d (device) flag.

Examples:
  netapi -d leaf1 route
  netapi -d leaf1 route --vrf blue --protocol bgp
  netapi -d leaf1 route 10.1.1.1
  netapi -d leaf1 route 10.1.0.0/16 --vrf blue`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := net.Query{Instance: routeVRF, Protocol: routeProtocol, VRFAll: routeAllVRFs}
		return withDevice(cmd, func(ctx context.Context, c connector.Connector) error {
			if len(args) == 1 {
				q.Dest = args[0]
				return showRoute(ctx, c, q)
			}
			return listRoutes(ctx, c, q)
		})
	},
}

func init() {
	routeCmd.Flags().StringVar(&routeVRF, "vrf", "", "Routing instance")
	routeCmd.Flags().StringVar(&routeProtocol, "protocol", "", "Only routes of this protocol")
	routeCmd.Flags().BoolVar(&routeAllVRFs, "all-vrfs", false, "Routes of every instance")
}

func listRoutes(ctx context.Context, c connector.Connector, q net.Query) error {
	col, err := app.builder.Routes(ctx, c, q)
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(col)
	}
	if col.Len() == 0 {
		fmt.Fprintln(app.out, "No routes found")
		return nil
	}

	t := newTable("INSTANCE", "NETWORK", "PROTOCOL", "VIAS", "METRIC", "PREF", "AGE")
	for _, r := range col.Values() {
		t.Row(cli.Str(r.Instance), prefix(r.Network), cli.Str(r.Protocol), vias(r.Vias),
			cli.Int(r.Metric), cli.Int(r.Preference), cli.Duration(r.Age))
	}
	t.Flush()
	return nil
}

func showRoute(ctx context.Context, c connector.Connector, q net.Query) error {
	r, err := app.builder.Route(ctx, c, q)
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(r)
	}

	d := newDetails(app.out, "Route: "+r.Dest)
	d.field("Instance", cli.Str(r.Instance))
	d.field("Network", prefix(r.Network))
	active := cli.Bool(r.Active)
	if r.Active != nil && !*r.Active {
		active = red(active)
		if r.InactiveReason != nil {
			active += " (" + *r.InactiveReason + ")"
		}
	} else if r.Active != nil {
		active = green(active)
	}
	d.field("Active", active)
	d.field("Protocol", cli.Str(r.Protocol))
	d.field("Vias", vias(r.Vias))
	d.field("Metric", cli.Int(r.Metric))
	d.field("Preference", cli.Int(r.Preference))
	d.field("Age", cli.Duration(r.Age))
	d.field("Tag", cli.Int(r.Tag))
	return nil
}

// vias renders next hops as "addr%intf" joined by commas
func vias(list []net.Via) string {
	if len(list) == 0 {
		return cli.Missing
	}
	parts := make([]string, 0, len(list))
	for _, v := range list {
		switch {
		case v.NextHop != nil && v.Interface != nil:
			parts = append(parts, v.NextHop.String()+"%"+*v.Interface)
		case v.NextHop != nil:
			parts = append(parts, v.NextHop.String())
		case v.Interface != nil:
			parts = append(parts, *v.Interface)
		}
	}
	return strings.Join(parts, ",")
}

