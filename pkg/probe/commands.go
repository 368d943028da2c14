package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandFunc renders the ping command of one command syntax
type CommandFunc func(p *Ping) string

// vrfFirst renders "ping vrf V T", the EOS and IOS form
func vrfFirst(p *Ping) []string {
	if p.Instance != nil {
		return []string{"ping", "vrf " + *p.Instance, p.target()}
	}
	return []string{"ping", p.target()}
}

// vrfAfter renders "ping T <keyword> V"
func vrfAfter(keyword string) func(p *Ping) []string {
	return func(p *Ping) []string {
		base := []string{"ping", p.target()}
		if p.Instance != nil {
			base = append(base, keyword+" "+*p.Instance)
		}
		return base
	}
}

// sourceIPFirst prefers the source address over the source interface
func sourceIPFirst(p *Ping) string {
	if p.SourceIP != nil {
		return p.SourceIP.String()
	}
	if p.Source != nil {
		return *p.Source
	}
	return ""
}

// EOSCommand renders "ping [vrf V] T size .. repeat .. timeout .. source ..
// df-bit interval .."
func EOSCommand(p *Ping) string {
	var params []string
	if p.Size != 0 {
		params = append(params, fmt.Sprintf("size %d", p.Size))
	}
	if p.Count != 0 {
		params = append(params, fmt.Sprintf("repeat %d", p.Count))
	}
	if p.Timeout != 0 {
		params = append(params, fmt.Sprintf("timeout %d", p.Timeout))
	}
	if src := sourceIPFirst(p); src != "" {
		params = append(params, "source "+src)
	}
	if p.DFBit {
		params = append(params, "df-bit")
	}
	if p.Interval != 0 {
		params = append(params, "interval "+decimal(p.Interval))
	}
	return join(vrfFirst(p), params)
}

// IOSCommand renders the IOS and IOS-XE syntax, which has no interval
func IOSCommand(p *Ping) string {
	return join(vrfFirst(p), ciscoParams(p, "df-bit"))
}

// XRCommand renders "ping T [vrf V] ..." with donotfrag
func XRCommand(p *Ping) string {
	return join(vrfAfter("vrf")(p), ciscoParams(p, "donotfrag"))
}

func ciscoParams(p *Ping, dfKeyword string) []string {
	var params []string
	if p.Size != 0 {
		params = append(params, fmt.Sprintf("size %d", p.Size))
	}
	if p.Count != 0 {
		params = append(params, fmt.Sprintf("repeat %d", p.Count))
	}
	if p.Timeout != 0 {
		params = append(params, fmt.Sprintf("timeout %d", p.Timeout))
	}
	if src := sourceIPFirst(p); src != "" {
		params = append(params, "source "+src)
	}
	if p.DFBit {
		params = append(params, dfKeyword)
	}
	return params
}

// NXOSCommand renders "ping T [vrf V] packet-size .. count .. timeout ..
// source-interface .. source .. df-bit interval .."
func NXOSCommand(p *Ping) string {
	var params []string
	if p.Size != 0 {
		params = append(params, fmt.Sprintf("packet-size %d", p.Size))
	}
	if p.Count != 0 {
		params = append(params, fmt.Sprintf("count %d", p.Count))
	}
	if p.Timeout != 0 {
		params = append(params, fmt.Sprintf("timeout %d", p.Timeout))
	}
	if p.Source != nil {
		params = append(params, "source-interface "+*p.Source)
	}
	if p.SourceIP != nil {
		params = append(params, "source "+p.SourceIP.String())
	}
	if p.DFBit {
		params = append(params, "df-bit")
	}
	if p.Interval != 0 {
		params = append(params, "interval "+decimal(p.Interval))
	}
	return join(vrfAfter("vrf")(p), params)
}

// JunosCommand renders "ping T [routing-instance V] size .. count .. wait ..
// source .. do-not-fragment interval .. ttl .."
func JunosCommand(p *Ping) string {
	var params []string
	if p.Size != 0 {
		params = append(params, fmt.Sprintf("size %d", p.Size))
	}
	if p.Count != 0 {
		params = append(params, fmt.Sprintf("count %d", p.Count))
	}
	if p.Timeout != 0 {
		params = append(params, fmt.Sprintf("wait %d", p.Timeout))
	}
	if src := sourceIPFirst(p); src != "" {
		params = append(params, "source "+src)
	}
	if p.DFBit {
		params = append(params, "do-not-fragment")
	}
	if p.Interval != 0 {
		params = append(params, "interval "+decimal(p.Interval))
	}
	if p.TTL != nil && *p.TTL != 0 {
		params = append(params, fmt.Sprintf("ttl %d", *p.TTL))
	}
	return join(vrfAfter("routing-instance")(p), params)
}

// LinuxCommand renders "[ip netns exec V] ping T -s .. -c .. -W .. -I ..
// -i .. -t ..". iputils has no portable don't-fragment flag, so df_bit is
// not rendered.
func LinuxCommand(p *Ping) string {
	var base []string
	if p.Instance != nil {
		base = append(base, "ip netns exec "+*p.Instance)
	}
	base = append(base, "ping", p.target())

	var params []string
	if p.Size != 0 {
		params = append(params, fmt.Sprintf("-s %d", p.Size))
	}
	if p.Count != 0 {
		params = append(params, fmt.Sprintf("-c %d", p.Count))
	}
	if p.Timeout != 0 {
		params = append(params, fmt.Sprintf("-W %d", p.Timeout))
	}
	if src := sourceIPFirst(p); src != "" {
		params = append(params, "-I "+src)
	}
	if p.Interval != 0 {
		params = append(params, "-i "+decimal(p.Interval))
	}
	if p.TTL != nil && *p.TTL != 0 {
		params = append(params, fmt.Sprintf("-t %d", *p.TTL))
	}
	return join(base, params)
}

func join(base, params []string) string {
	return strings.Join(append(base, params...), " ")
}

// decimal formats f with at least one fractional digit, e.g. "1.0"
func decimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
