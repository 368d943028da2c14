package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/netapi-network/netapi/pkg/util"
)

// Resolver looks up names and addresses; *net.Resolver satisfies it
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Name lookups are retried this many times on transient DNS failures
const resolveAttempts = 3

var resolveRetryDelay = 5 * time.Second

// Resolve fills TargetIP and TargetName. A host name keeps itself as the
// name and is looked up for the address; an address is reverse resolved,
// falling back to the address text when there is no PTR record.
func (p *Ping) Resolve(ctx context.Context, r Resolver) error {
	if p.TargetIP != nil && p.TargetName != nil {
		return nil
	}
	if r == nil {
		r = net.DefaultResolver
	}
	ip, name, err := resolveTarget(ctx, r, p.Target)
	if err != nil {
		return util.NewFieldError(Kind, "target", p.Target, err)
	}
	p.TargetIP, p.TargetName = &ip, &name
	return nil
}

func resolveTarget(ctx context.Context, r Resolver, target string) (netip.Addr, string, error) {
	if util.IsValidHostname(target) {
		ip, err := hostAddress(ctx, r, target)
		return ip, target, err
	}
	ip, err := hostAddress(ctx, r, target)
	if err != nil {
		return ip, "", err
	}
	names, err := r.LookupAddr(ctx, ip.String())
	if err != nil || len(names) == 0 {
		return ip, ip.String(), nil
	}
	return ip, strings.TrimSuffix(names[0], "."), nil
}

// hostAddress returns the address of host: loopback for the local host,
// the host itself when it is an address, else the first DNS answer
func hostAddress(ctx context.Context, r Resolver, host string) (netip.Addr, error) {
	if host == "local" || host == "localhost" {
		return netip.MustParseAddr("127.0.0.1"), nil
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return ip, nil
	}
	if prefix, err := netip.ParsePrefix(host); err == nil {
		return prefix.Addr(), nil
	}
	if !util.IsValidHostname(host) {
		return netip.Addr{}, fmt.Errorf("could not retrieve IP of %q", host)
	}

	var lastErr error
	for attempt := 1; attempt <= resolveAttempts; attempt++ {
		util.WithField("host", host).Debugf("resolving host, attempt %d", attempt)
		addrs, err := r.LookupHost(ctx, host)
		if err == nil && len(addrs) > 0 {
			return netip.ParseAddr(addrs[0])
		}
		lastErr = err
		var dnsErr *net.DNSError
		if err != nil && !(errors.As(err, &dnsErr) && (dnsErr.IsNotFound || dnsErr.IsTemporary)) {
			break
		}
		if attempt < resolveAttempts {
			select {
			case <-time.After(resolveRetryDelay):
			case <-ctx.Done():
				return netip.Addr{}, ctx.Err()
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no addresses")
	}
	return netip.Addr{}, fmt.Errorf("could not resolve %s: %w", host, lastErr)
}
