// Package cli provides shared formatting helpers for the netapi CLI.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/netapi-network/netapi/pkg/units"
)

// colorEnabled is false when NO_COLOR env var is set (per no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Green wraps s in ANSI green. Returns s unchanged when NO_COLOR is set.
func Green(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

// Yellow wraps s in ANSI yellow. Returns s unchanged when NO_COLOR is set.
func Yellow(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

// Red wraps s in ANSI red. Returns s unchanged when NO_COLOR is set.
func Red(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}

// Bold wraps s in ANSI bold. Returns s unchanged when NO_COLOR is set.
func Bold(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

// Dim wraps s in ANSI dim. Returns s unchanged when NO_COLOR is set.
func Dim(s string) string {
	if !colorEnabled {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}

// DotPad pads name with dots to the given width.
// Example: DotPad("inventory", 30) → "boot-ssh ......................"
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	dots := width - len(name) - 1
	return name + " " + strings.Repeat(".", dots)
}

// Placeholder printed for values a device did not report.
const Missing = "-"

// Status colors a status word: green when healthy, yellow when degraded,
// red when failed. Unknown words are returned unchanged.
func Status(s string) string {
	switch strings.ToLower(s) {
	case "ok", "up", "connected", "active", "master":
		return Green(s)
	case "warning", "backup", "init", "notconnect":
		return Yellow(s)
	case "critical", "no-route", "down", "disabled", "errdisabled":
		return Red(s)
	}
	return s
}

// Str dereferences an optional string.
func Str(s *string) string {
	if s == nil || *s == "" {
		return Missing
	}
	return *s
}

// Bool renders an optional boolean as yes/no.
func Bool(b *bool) string {
	switch {
	case b == nil:
		return Missing
	case *b:
		return "yes"
	}
	return "no"
}

// Int renders an optional integer.
func Int(n *int) string {
	if n == nil {
		return Missing
	}
	return humanize.Comma(int64(*n))
}

// Bytes renders a byte quantity in IEC units (1.5 GiB).
func Bytes(b *units.Bytes) string {
	if b == nil {
		return Missing
	}
	if *b < 0 {
		return fmt.Sprintf("%g B", float64(*b))
	}
	return humanize.IBytes(uint64(*b))
}

// BitRate renders a bit quantity as a rate in SI units (10 Gbps).
func BitRate(b *units.Bits) string {
	if b == nil {
		return Missing
	}
	return humanize.SIWithDigits(float64(*b), 1, "bps")
}

// Percent renders a 0..1 ratio as a percentage.
func Percent(ratio float64) string {
	return humanize.FtoaWithDigits(ratio*100, 2) + "%"
}

// Millis renders an optional round-trip time given in milliseconds.
func Millis(ms *float64) string {
	if ms == nil {
		return Missing
	}
	return humanize.FtoaWithDigits(*ms, 3) + " ms"
}

// Age renders a timestamp relative to now (3 hours ago).
func Age(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Missing
	}
	return humanize.Time(*t)
}

// Duration renders an uptime-like duration relative to now (2 weeks).
func Duration(d *time.Duration) string {
	if d == nil {
		return Missing
	}
	now := time.Now()
	return strings.TrimSpace(humanize.RelTime(now.Add(-*d), now, "", ""))
}

// List joins values with commas.
func List(values []string) string {
	if len(values) == 0 {
		return Missing
	}
	return strings.Join(values, ",")
}
