// Package icmp sends pings natively through pro-bing (LINUX-PROBING).
// It accepts iputils-style ping commands and answers with iputils-style
// summary text so that the regular ping parsers can read the result.
package icmp

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the dispatch tag served by this transport
const Tag = "LINUX-PROBING"

// Request is a parsed ping command
type Request struct {
	Target   string
	Count    int
	Size     int
	Wait     time.Duration
	Interval time.Duration
	TTL      int
	Source   string
}

// Pinger sends ICMP echo requests
type Pinger struct {
	connector.Base

	privileged bool
	run        func(ctx context.Context, req Request) (*probing.Statistics, error)
}

// New creates a pinger. Transport "privileged" uses raw sockets instead of
// unprivileged datagram ICMP.
func New(cfg connector.Config) (*Pinger, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	p := &Pinger{
		Base:       connector.NewBase(Tag, cfg),
		privileged: cfg.Transport == "privileged" || runtime.GOOS == "windows",
	}
	p.run = p.probe
	return p, nil
}

// Register adds the pinger to a factory
func Register(f *connector.Factory) {
	f.Register(Tag, func(cfg connector.Config) (connector.Connector, error) {
		return New(cfg)
	})
}

// Run executes each ping command and returns its summary text
func (p *Pinger) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	return connector.Execute(ctx, commands, opts, connector.Sequential(p.exec))
}

func (p *Pinger) exec(ctx context.Context, cmd string) (interface{}, error) {
	req, err := ParseCommand(cmd)
	if err != nil {
		return nil, &connector.CommandError{Code: connector.CodeInvalidCommand, Command: cmd, Message: err.Error()}
	}
	util.WithImplementation(Tag).Debugf("probing %s count=%d", req.Target, req.Count)
	st, err := p.run(ctx, req)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unreachable") {
			return "connect: Network is unreachable\n", nil
		}
		return nil, fmt.Errorf("ping %s: %w", req.Target, err)
	}
	return Render(req.Target, req.Size, st), nil
}

func (p *Pinger) probe(ctx context.Context, req Request) (*probing.Statistics, error) {
	pinger, err := probing.NewPinger(req.Target)
	if err != nil {
		return nil, fmt.Errorf("create pinger: %w", err)
	}
	pinger.Count = req.Count
	pinger.Size = req.Size
	pinger.Interval = req.Interval
	pinger.Timeout = time.Duration(req.Count)*req.Interval + req.Wait
	if req.TTL > 0 {
		pinger.TTL = req.TTL
	}
	if req.Source != "" {
		pinger.Source = req.Source
	}
	pinger.SetPrivileged(p.privileged)

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		return pinger.Statistics(), nil
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return nil, ctx.Err()
	}
}

// ParseCommand reads "ping TARGET [-s size] [-c count] [-W wait] [-i interval]
// [-t ttl] [-I source]"
func ParseCommand(cmd string) (Request, error) {
	req := Request{Count: 5, Size: 56, Wait: 2 * time.Second, Interval: time.Second}
	fields := strings.Fields(cmd)
	if len(fields) < 2 || fields[0] != "ping" {
		return req, fmt.Errorf("not a ping command: %q", cmd)
	}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if !strings.HasPrefix(f, "-") {
			if req.Target != "" {
				return req, fmt.Errorf("unexpected argument %q", f)
			}
			req.Target = f
			continue
		}
		if i+1 >= len(fields) {
			return req, fmt.Errorf("flag %s needs a value", f)
		}
		val := fields[i+1]
		i++
		var err error
		switch f {
		case "-s":
			req.Size, err = strconv.Atoi(val)
		case "-c":
			req.Count, err = strconv.Atoi(val)
		case "-t":
			req.TTL, err = strconv.Atoi(val)
		case "-I":
			req.Source = val
		case "-W":
			req.Wait, err = seconds(val)
		case "-i":
			req.Interval, err = seconds(val)
		default:
			return req, fmt.Errorf("unsupported flag %s", f)
		}
		if err != nil {
			return req, fmt.Errorf("flag %s: %w", f, err)
		}
	}
	if req.Target == "" {
		return req, fmt.Errorf("no target in %q", cmd)
	}
	if req.Count <= 0 {
		return req, fmt.Errorf("count must be positive")
	}
	return req, nil
}

func seconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(f * float64(time.Second)), nil
}

// Render formats statistics the way iputils ping prints its summary
func Render(target string, size int, st *probing.Statistics) string {
	addr := target
	if st.IPAddr != nil {
		addr = st.IPAddr.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "PING %s (%s) %d(%d) bytes of data.\n\n", target, addr, size, size+28)
	fmt.Fprintf(&b, "--- %s ping statistics ---\n", target)
	fmt.Fprintf(&b, "%d packets transmitted, %d received, %s%% packet loss, time %dms\n",
		st.PacketsSent, st.PacketsRecv, strconv.FormatFloat(st.PacketLoss, 'g', 4, 64),
		totalRtt(st).Milliseconds())
	if st.PacketsRecv > 0 {
		fmt.Fprintf(&b, "rtt min/avg/max/mdev = %.3f/%.3f/%.3f/%.3f ms\n",
			ms(st.MinRtt), ms(st.AvgRtt), ms(st.MaxRtt), ms(st.StdDevRtt))
	}
	return b.String()
}

func totalRtt(st *probing.Statistics) time.Duration {
	var total time.Duration
	for _, r := range st.Rtts {
		total += r
	}
	return total
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
