// Package sonicdb reads SONiC's Redis databases (SONIC-REDIS). Commands
// name a database and a key or key pattern, e.g. "CONFIG_DB PORT|Ethernet0"
// or "STATE_DB PORT_TABLE|*". Each result maps the matching Redis keys to
// their field hashes.
package sonicdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/connector/sshcli"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the dispatch tag served by this transport
const Tag = "SONIC-REDIS"

// RedisPort is the SONiC Redis port
const RedisPort = 6379

// Databases maps SONiC database names to Redis DB numbers
var Databases = map[string]int{
	"APPL_DB":     0,
	"ASIC_DB":     1,
	"COUNTERS_DB": 2,
	"CONFIG_DB":   4,
	"STATE_DB":    6,
}

// Client reads SONiC databases, through an SSH tunnel unless the transport
// is "direct"
type Client struct {
	connector.Base

	mu      sync.Mutex
	tunnel  *Tunnel
	addr    string
	clients map[int]*redis.Client
}

// New creates a client; connections open on first use
func New(cfg connector.Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("sonicdb: host is required")
	}
	return &Client{Base: connector.NewBase(Tag, cfg), clients: make(map[int]*redis.Client)}, nil
}

// Register adds the SONiC client to a factory
func Register(f *connector.Factory) {
	f.Register(Tag, func(cfg connector.Config) (connector.Connector, error) {
		return New(cfg)
	})
}

// ParseCommand splits "<DB> <key-or-pattern>" into a DB number and key
func ParseCommand(cmd string) (int, string, error) {
	name, key, ok := strings.Cut(strings.TrimSpace(cmd), " ")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return 0, "", fmt.Errorf("expected '<DB> <key>', got %q", cmd)
	}
	db, ok := Databases[strings.ToUpper(name)]
	if !ok {
		return 0, "", fmt.Errorf("unknown database %q", name)
	}
	return db, key, nil
}

// Run reads each command's keys
func (c *Client) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(); err != nil {
		return nil, err
	}
	return connector.Execute(ctx, commands, opts, connector.Sequential(c.exec))
}

// Close releases Redis clients and the tunnel
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for n, rc := range c.clients {
		rc.Close()
		delete(c.clients, n)
	}
	c.addr = ""
	if c.tunnel != nil {
		err := c.tunnel.Close()
		c.tunnel = nil
		return err
	}
	return nil
}

func (c *Client) connect() error {
	if c.addr != "" {
		return nil
	}
	cfg := c.Config()
	if cfg.Transport == "direct" {
		c.addr = c.Addr(RedisPort)
		return nil
	}
	sshCfg, err := sshcli.ClientConfig(cfg, c.Timeout(30*time.Second))
	if err != nil {
		return err
	}
	tunnel, err := OpenTunnel(c.Addr(22), fmt.Sprintf("127.0.0.1:%d", RedisPort), sshCfg)
	if err != nil {
		return err
	}
	util.WithImplementation(Tag).Debugf("tunnel %s -> %s:%d", tunnel.LocalAddr(), cfg.Host, RedisPort)
	c.tunnel = tunnel
	c.addr = tunnel.LocalAddr()
	return nil
}

func (c *Client) db(n int) *redis.Client {
	rc, ok := c.clients[n]
	if !ok {
		rc = redis.NewClient(&redis.Options{
			Addr:        c.addr,
			DB:          n,
			DialTimeout: c.Timeout(10 * time.Second),
		})
		c.clients[n] = rc
	}
	return rc
}

func (c *Client) exec(ctx context.Context, cmd string) (interface{}, error) {
	n, key, err := ParseCommand(cmd)
	if err != nil {
		return nil, &connector.CommandError{Code: connector.CodeInvalidCommand, Command: cmd, Message: err.Error()}
	}
	rc := c.db(n)

	keys := []string{key}
	if isPattern(key) {
		if keys, err = scanKeys(ctx, rc, key); err != nil {
			return nil, fmt.Errorf("scan %s: %w", cmd, err)
		}
	}

	out := connector.NewObject()
	for _, k := range keys {
		vals, err := rc.HGetAll(ctx, k).Result()
		if err != nil {
			return nil, fmt.Errorf("HGETALL %s: %w", k, err)
		}
		if len(vals) == 0 {
			continue
		}
		out.Set(k, vals)
	}
	return out, nil
}

func isPattern(key string) bool {
	return strings.ContainsAny(key, "*?[")
}

// scanKeys walks SCAN for pattern and returns the unique keys sorted
func scanKeys(ctx context.Context, rc *redis.Client, pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var cursor uint64
	for {
		keys, next, err := rc.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			seen[k] = true
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
