// Package eapi is the JSON-RPC command transport for Arista eAPI
// (EOS-PYEAPI) and Cisco NX-API (NXOS-NXAPI).
package eapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// Dispatch tags served by this transport
const (
	TagEOS  = "EOS-PYEAPI"
	TagNXOS = "NXOS-NXAPI"
)

// Dialect selects the request and response shape
type Dialect int

const (
	// EOS posts one runCmds request carrying the whole batch
	EOS Dialect = iota
	// NXOS posts a JSON-RPC batch with one cli request per command
	NXOS
)

var cliFailedRegexp = regexp.MustCompile(`CLI command (\d+) of \d+ '(.*)' failed`)

// Client talks to a device's JSON-RPC endpoint
type Client struct {
	connector.Base

	dialect  Dialect
	endpoint string
	http     *http.Client
}

// New creates a client. Transport "http" selects plain HTTP; anything else
// uses HTTPS.
func New(tag string, dialect Dialect, cfg connector.Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("eapi: host is required")
	}
	c := &Client{Base: connector.NewBase(tag, cfg), dialect: dialect}

	scheme, port := "https", 443
	if cfg.Transport == "http" {
		scheme, port = "http", 80
	}
	path := "/command-api"
	if dialect == NXOS {
		path = "/ins"
	}
	c.endpoint = scheme + "://" + c.Addr(port) + path

	c.http = &http.Client{
		Timeout: c.Timeout(30 * time.Second),
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, //nolint:gosec // lab devices use self-signed certificates
		},
	}
	return c, nil
}

// Register adds both dialects to a factory
func Register(f *connector.Factory) {
	f.Register(TagEOS, func(cfg connector.Config) (connector.Connector, error) {
		return New(TagEOS, EOS, cfg)
	})
	f.Register(TagNXOS, func(cfg connector.Config) (connector.Connector, error) {
		return New(TagNXOS, NXOS, cfg)
	})
}

// Run executes commands in one request, pruning rejected commands when
// opts.Silent is set.
func (c *Client) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "json"
	}
	return connector.Execute(ctx, commands, opts, func(ctx context.Context, cmds []string) (connector.Results, error) {
		return c.batch(ctx, cmds, encoding)
	})
}

func (c *Client) batch(ctx context.Context, cmds []string, encoding string) (connector.Results, error) {
	var body []byte
	var err error
	if c.dialect == NXOS {
		body, err = nxosRequest(cmds, encoding)
	} else {
		body, err = eosRequest(cmds, encoding)
	}
	if err != nil {
		return nil, err
	}

	raw, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}
	if c.dialect == NXOS {
		return nxosResponse(cmds, raw)
	}
	return eosResponse(cmds, raw)
}

func (c *Client) post(ctx context.Context, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	cfg := c.Config()
	req.SetBasicAuth(cfg.Username, cfg.Password)

	util.WithImplementation(c.Meta().Implementation).Debugf("POST %s", c.endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eapi request to %s: %w", cfg.Host, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("eapi read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("eapi: authentication failed for %s", cfg.Host)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("eapi: empty response (HTTP %d)", resp.StatusCode)
	}
	return connector.DecodeOrdered(data)
}

func requestID() string { return uuid.NewString() }

// errorCommand finds the failing command from an EOS error message
func errorCommand(cmds []string, message string) string {
	m := cliFailedRegexp.FindStringSubmatch(message)
	if m == nil {
		return ""
	}
	if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(cmds) && cmds[n-1] == m[2] {
		return cmds[n-1]
	}
	return m[2]
}
