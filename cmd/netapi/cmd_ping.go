package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/inventory"
	"github.com/netapi-network/netapi/pkg/probe"
)

// pingFlags holds the ping command flags
type pingFlags struct {
	count    int
	timeout  int
	size     int
	interval float64
	ttl      int
	source   string
	sourceIP string
	vrf      string
	df       bool
	resolve  bool
	warning  int
	critical int
	local    bool
}

var pingOpts pingFlags

var pingCmd = &cobra.Command{
	Use:   "ping <target>",
	Short: "Ping a target from a device",
	Long: `Ping a target from a device, or from this machine when no device is
selected, and classify the packet loss.

Without thresholds any loss is a warning and total loss is critical.
--warning and --critical set loss percentages above which the result is
flagged instead.

Examples:
  netapi -d leaf1 ping 10.0.0.2
  netapi -d leaf1 ping 10.0.0.2 --vrf blue --source Loopback0
  netapi ping dns.google --resolve --warning 10 --critical 50
  netapi ping 192.0.2.1 --local --count 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPing(args[0], cmd)
		if err != nil {
			return err
		}
		c, err := pingSource()
		if err != nil {
			return err
		}
		defer disconnect(c)

		th := probe.NewThresholds(pingOpts.warning, pingOpts.critical)
		if _, err := app.pinger.Get(cmd.Context(), c, p, th); err != nil {
			return err
		}
		if structured() {
			return printMapping(p)
		}
		printPing(p)
		return nil
	},
}

func init() {
	f := pingCmd.Flags()
	f.IntVarP(&pingOpts.count, "count", "c", probe.DefaultCount, "Probes to send")
	f.IntVarP(&pingOpts.timeout, "timeout", "W", probe.DefaultTimeout, "Seconds to wait for each reply")
	f.IntVarP(&pingOpts.size, "size", "s", probe.DefaultSize, "Payload size in bytes")
	f.Float64Var(&pingOpts.interval, "interval", probe.DefaultInterval, "Seconds between probes")
	f.IntVar(&pingOpts.ttl, "ttl", 0, "IP time to live")
	f.StringVar(&pingOpts.source, "source", "", "Source interface")
	f.StringVar(&pingOpts.sourceIP, "source-ip", "", "Source address")
	f.StringVar(&pingOpts.vrf, "vrf", "", "Routing instance")
	f.BoolVar(&pingOpts.df, "df", false, "Set the don't-fragment bit")
	f.BoolVar(&pingOpts.resolve, "resolve", false, "Resolve the target before pinging")
	f.IntVar(&pingOpts.warning, "warning", -1, "Loss percentage above which the result is a warning")
	f.IntVar(&pingOpts.critical, "critical", -1, "Loss percentage above which the result is critical")
	f.BoolVar(&pingOpts.local, "local", false, "Use the system ping binary when no device is selected")
}

// buildPing turns the flags into a validated ping
func buildPing(target string, cmd *cobra.Command) (*probe.Ping, error) {
	fields := map[string]interface{}{
		"target":         target,
		"count":          pingOpts.count,
		"timeout":        pingOpts.timeout,
		"size":           pingOpts.size,
		"interval":       pingOpts.interval,
		"df_bit":         pingOpts.df,
		"resolve_target": pingOpts.resolve,
	}
	if cmd.Flags().Changed("ttl") {
		fields["ttl"] = pingOpts.ttl
	}
	if pingOpts.source != "" {
		fields["source"] = pingOpts.source
	}
	if pingOpts.sourceIP != "" {
		fields["source_ip"] = pingOpts.sourceIP
	}
	if pingOpts.vrf != "" {
		fields["instance"] = pingOpts.vrf
	}
	return probe.BuildPing(fields)
}

// pingSource connects to the selected device, or to this machine
func pingSource() (connector.Connector, error) {
	if app.deviceName != "" {
		return requireDevice()
	}
	d := inventory.Localhost()
	if pingOpts.local {
		d.Provider = "subprocess"
	}
	return connect(d)
}

func printPing(p *probe.Ping) {
	r := p.Result
	target := p.Target
	if p.TargetIP != nil && p.TargetIP.String() != p.Target {
		target += " (" + p.TargetIP.String() + ")"
	}

	t := newTable("TARGET", "SENT", "RECEIVED", "LOSS", "RTT MIN", "RTT AVG", "RTT MAX", "STATUS")
	t.Row(target, strconv.Itoa(r.ProbesSent), strconv.Itoa(r.ProbesReceived), cli.Percent(r.PacketLoss),
		cli.Millis(r.RTTMin), cli.Millis(r.RTTAvg), cli.Millis(r.RTTMax), statusCell(r.Status))
	t.Flush()

	if app.verbose {
		fmt.Fprintf(app.out, "\n%s\n", cli.Dim(p.PingCmd))
	}
}
