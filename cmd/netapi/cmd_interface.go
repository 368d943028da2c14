package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/net"
	"github.com/netapi-network/netapi/pkg/units"
	"github.com/netapi-network/netapi/pkg/util"
)

var interfaceRange string

var interfaceCmd = &cobra.Command{
	Use:     "interface [name]",
	Aliases: []string{"interfaces", "intf"},
	Short:   "Show interfaces",
	Long: `Show one interface, or every interface of the device.

Interface names are normalized, so Eth1 and Ethernet1 are the same.
--range restricts the list with vendor range text.

Requires -d (device) flag.

Examples:
  netapi -d leaf1 interface
  netapi -d leaf1 interface Ethernet1
  netapi -d leaf1 interface --range Ethernet1-4`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDevice(cmd, func(ctx context.Context, c connector.Connector) error {
			if len(args) == 1 {
				return showInterface(ctx, c, util.NormalizeInterfaceName(args[0]))
			}
			return listInterfaces(ctx, c)
		})
	},
}

func init() {
	interfaceCmd.Flags().StringVar(&interfaceRange, "range", "", "Interface range, e.g. Ethernet1-4")
}

func listInterfaces(ctx context.Context, c connector.Connector) error {
	col, err := app.builder.Interfaces(ctx, c, net.Query{Range: interfaceRange})
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(col)
	}
	if col.Len() == 0 {
		fmt.Fprintln(app.out, "No interfaces found")
		return nil
	}

	t := newTable("NAME", "STATUS", "ENABLED", "MTU", "SPEED", "IPV4", "LAST CHANGE", "DESCRIPTION")
	for _, i := range col.Values() {
		var mtu *units.Bytes
		var speed *units.Bits
		if i.Physical != nil {
			mtu, speed = i.Physical.MTU, i.Physical.Bandwidth
		}
		ipv4 := cli.Missing
		if i.Addresses != nil {
			ipv4 = prefix(i.Addresses.IPv4)
		}
		t.Row(i.Name, statusCell(i.Status), cli.Bool(i.Enabled), mtuCell(mtu), cli.BitRate(speed),
			ipv4, cli.Age(i.LastStatusChange), cli.Str(i.Description))
	}
	t.Flush()
	return nil
}

func showInterface(ctx context.Context, c connector.Connector, name string) error {
	i, err := app.builder.Interface(ctx, c, net.Query{Name: name})
	if err != nil {
		return err
	}
	if structured() {
		return printMapping(i)
	}

	d := newDetails(app.out, "Interface: "+i.Name)
	d.field("Description", cli.Str(i.Description))
	d.field("Status", statusCell(i.Status))
	d.field("Enabled", cli.Bool(i.Enabled))
	d.field("Instance", cli.Str(i.Instance))
	d.field("Forwarding model", cli.Str(i.ForwardingModel))
	d.field("Last status change", cli.Age(i.LastStatusChange))
	d.field("Status changes", cli.Int(i.NumberStatusChanges))
	d.field("Last clear", cli.Age(i.LastClear))
	if len(i.Members) > 0 {
		d.field("Members", cli.List(i.Members))
	}

	if p := i.Physical; p != nil {
		d.section("Physical")
		d.field("MTU", mtuCell(p.MTU))
		d.field("Bandwidth", cli.BitRate(p.Bandwidth))
		d.field("Duplex", cli.Str(p.Duplex))
		d.field("MAC", mac(p.MAC))
	}
	if a := i.Addresses; a != nil {
		d.section("Addresses")
		d.field("IPv4", prefix(a.IPv4))
		d.field("IPv6", prefix(a.IPv6))
		d.field("Secondary IPv4", cli.List(a.SecondaryIPv4))
		d.field("DHCP", cli.Bool(a.DHCP))
	}
	if o := i.Optical; o != nil {
		d.section("Optical")
		d.field("Tx", float(o.Tx, "dBm"))
		d.field("Rx", float(o.Rx, "dBm"))
		d.field("Light", statusCell(o.Status))
		d.field("Media type", cli.Str(o.MediaType))
		d.field("Serial number", cli.Str(o.SerialNumber))
	}
	if k := i.Counters; k != nil {
		d.section("Counters")
		d.field("Rx rate", cli.BitRate(k.RxBitsRate))
		d.field("Tx rate", cli.BitRate(k.TxBitsRate))
		d.field("Rx bytes", cli.Bytes(&k.RxBytes))
		d.field("Tx bytes", cli.Bytes(&k.TxBytes))
		d.field("Rx unicast packets", count(k.RxUnicastPkts))
		d.field("Tx unicast packets", count(k.TxUnicastPkts))
		d.field("Rx discards", count(k.RxDiscards))
		d.field("Tx discards", count(k.TxDiscards))
		d.field("Rx errors", count(k.RxErrorsGeneral))
		d.field("Tx errors", count(k.TxErrorsGeneral))
	}
	return nil
}

// mtuCell prints an MTU in plain bytes, as devices configure it
func mtuCell(b *units.Bytes) string {
	if b == nil {
		return cli.Missing
	}
	return fmt.Sprintf("%d", int64(*b))
}

func count(f float64) string {
	n := int(f)
	return cli.Int(&n)
}
