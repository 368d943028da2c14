package probe

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/netapi-network/netapi/pkg/util"
)

// Parser reads the summary of a ping command's text output
type Parser struct {
	name        string
	full        *regexp.Regexp
	timeout     *regexp.Regexp
	unreachable []string
	// rate derives the packet loss ratio from the matched groups
	rate func(groups map[string]string) (float64, error)
}

// IPUtils parses iputils and BSD style summaries (EOS, Linux, Junos)
var IPUtils = &Parser{
	name: "iputils",
	full: regexp.MustCompile(`(?P<tx>\d+) packets transmitted, (?P<rx>\d+) (packets )?` +
		`received,(\s+\+\d+\serrors,)? (?P<loss>\d+(\.\d+)?)% packet loss` +
		`(, time .*)?\n(rtt|round-trip) min/avg/max/(mdev|stddev) = ` +
		`(?P<min>\d+\.\d+)/(?P<avg>\d+\.\d+)/(?P<max>\d+\.\d+)/(?P<mdev>\d+\.\d+)`),
	timeout: regexp.MustCompile(`(?P<tx>\d+) packets transmitted, (?P<rx>\d+) (packets )?received,` +
		`(\s+\+\d+\serrors,)? (?P<loss>\d+(\.\d+)?)% packet loss`),
	unreachable: []string{"Network is unreachable"},
	rate:        percentLoss,
}

// NXOS parses NX-OS summaries
var NXOS = &Parser{
	name: "nxos",
	full: regexp.MustCompile(`(?P<tx>\d+) packets transmitted, (?P<rx>\d+) packets received, ` +
		`(?P<loss>\d+\.\d+)% packet loss\nround-trip min/avg/max = ` +
		`(?P<min>\d+(\.\d+)?)/(?P<avg>\d+(\.\d+)?)/(?P<max>\d+(\.\d+)?)`),
	timeout: regexp.MustCompile(`(?P<tx>\d+) packets transmitted, (?P<rx>\d+) packets received, ` +
		`(?P<loss>\d+\.\d+)% packet loss`),
	unreachable: []string{"Name or service not known"},
	rate:        percentLoss,
}

// Cisco parses IOS, IOS-XE and IOS-XR success rate summaries
var Cisco = &Parser{
	name: "cisco",
	full: regexp.MustCompile(`Success rate is (?P<rate>\d+) percent \((?P<tx>\d+)/(?P<rx>\d+)\),` +
		` round-trip min/avg/max = (?P<min>\d+)/(?P<avg>\d+)/(?P<max>\d+) `),
	timeout:     regexp.MustCompile(`Success rate is (?P<rate>\d+) percent \((?P<tx>\d+)/(?P<rx>\d+)\)`),
	unreachable: []string{"Name or service not known"},
	rate: func(g map[string]string) (float64, error) {
		rate, err := strconv.Atoi(g["rate"])
		if err != nil {
			return 0, err
		}
		return 1 - float64(rate)/100, nil
	},
}

func percentLoss(g map[string]string) (float64, error) {
	loss, err := strconv.ParseFloat(g["loss"], 64)
	if err != nil {
		return 0, err
	}
	return loss / 100, nil
}

// Name identifies the output format
func (p *Parser) Name() string { return p.name }

// Parse reads text and applies the threshold analysis. A known unreachable
// message yields a no-route result without probes.
func (p *Parser) Parse(text string, th Thresholds) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, util.NewParseError(p.name, "no data to be parsed", text)
	}
	for _, msg := range p.unreachable {
		if strings.Contains(text, msg) {
			r := &Result{}
			r.setStatus(StatusNoRoute)
			return r, nil
		}
	}
	r, err := p.Construct(text)
	if err != nil {
		return nil, err
	}
	r.Analyze(th)
	return r, nil
}

// Construct reads the probe counts, loss and round trip times without
// deriving a status
func (p *Parser) Construct(text string) (*Result, error) {
	groups := match(p.full, text)
	if groups == nil {
		groups = match(p.timeout, text)
	}
	if groups == nil {
		return nil, util.NewParseError(p.name, "not able to parse ping output", text)
	}

	r := &Result{}
	var err error
	if r.ProbesSent, err = strconv.Atoi(groups["tx"]); err != nil {
		return nil, util.NewParseError(p.name, err.Error(), text)
	}
	if r.ProbesReceived, err = strconv.Atoi(groups["rx"]); err != nil {
		return nil, util.NewParseError(p.name, err.Error(), text)
	}
	loss, err := p.rate(groups)
	if err != nil {
		return nil, util.NewParseError(p.name, err.Error(), text)
	}
	r.PacketLoss = math.Round(loss*1e4) / 1e4

	for name, dst := range map[string]**float64{"min": &r.RTTMin, "avg": &r.RTTAvg, "max": &r.RTTMax} {
		v, ok := groups[name]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, util.NewParseError(p.name, err.Error(), text)
		}
		*dst = &f
	}
	return r, nil
}

// match returns the named groups of the first match of re in text
func match(re *regexp.Regexp, text string) map[string]string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}
