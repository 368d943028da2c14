package main

import (
	"fmt"
	"io"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/netapi-network/netapi/pkg/cli"
	"github.com/netapi-network/netapi/pkg/units"
)

// detailWidth is the dot-padded label width of detail views
const detailWidth = 26

// details prints label/value pairs as a dot-padded list
type details struct {
	w io.Writer
}

func newDetails(w io.Writer, title string) *details {
	fmt.Fprintln(w, bold(title))
	return &details{w: w}
}

func (d *details) field(label, value string) {
	fmt.Fprintf(d.w, "  %s %s\n", cli.DotPad(label, detailWidth), value)
}

func (d *details) section(title string) {
	fmt.Fprintf(d.w, "\n  %s\n", bold(title))
}

// parseID parses a positive integer argument such as a VLAN or group id
func parseID(what, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return id, nil
}

func addr(a *netip.Addr) string {
	if a == nil || !a.IsValid() {
		return cli.Missing
	}
	return a.String()
}

func prefix(p *netip.Prefix) string {
	if p == nil || !p.IsValid() {
		return cli.Missing
	}
	return p.String()
}

func mac(m *units.MAC) string {
	if m == nil {
		return cli.Missing
	}
	return m.String()
}

func float(f *float64, unit string) string {
	if f == nil {
		return cli.Missing
	}
	return strings.TrimSpace(strconv.FormatFloat(*f, 'f', -1, 64) + " " + unit)
}

// statusCell colors an optional status word
func statusCell(s *string) string {
	if s == nil {
		return cli.Missing
	}
	return cli.Status(*s)
}

// newTable writes to app.out, capped to the terminal when that is stdout
func newTable(headers ...string) *cli.Table {
	if app.out == os.Stdout {
		return cli.NewTable(headers...)
	}
	return cli.NewTableTo(app.out, headers...)
}
