// Package sshcli runs CLI commands over SSH for the text-screen platforms
// (IOS, IOS-XE, IOS-XR, Junos and remote Linux).
package sshcli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// Dispatch tags served by this transport
const (
	TagIOS   = "IOS-NETMIKO"
	TagXE    = "XE-NETMIKO"
	TagXR    = "XR-NETMIKO"
	TagJunos = "JUNOS-PYEZ"
	TagLinux = "LINUX-PARAMIKO"
)

// Tags lists every tag Register adds
var Tags = []string{TagIOS, TagXE, TagXR, TagJunos, TagLinux}

// Client runs each command in its own SSH session on a shared connection.
// Sessions are serialized per client.
type Client struct {
	connector.Base

	mu     sync.Mutex
	client *ssh.Client
	dial   func(network, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error)
}

// New creates a client; the SSH connection is opened on first use
func New(tag string, cfg connector.Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("sshcli: host is required")
	}
	return &Client{Base: connector.NewBase(tag, cfg), dial: ssh.Dial}, nil
}

// Register adds every SSH CLI tag to a factory
func Register(f *connector.Factory) {
	for _, tag := range Tags {
		tag := tag
		f.Register(tag, func(cfg connector.Config) (connector.Connector, error) {
			return New(tag, cfg)
		})
	}
}

// Run executes commands one session at a time
func (c *Client) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(); err != nil {
		return nil, err
	}
	return connector.Execute(ctx, commands, opts, connector.Sequential(c.exec))
}

// Close drops the SSH connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *Client) connect() error {
	if c.client != nil {
		return nil
	}
	cfg, err := ClientConfig(c.Config(), c.Timeout(30*time.Second))
	if err != nil {
		return err
	}
	addr := c.Addr(22)
	client, err := c.dial("tcp", addr, cfg)
	if err != nil {
		return fmt.Errorf("SSH dial %s: %w", addr, err)
	}
	util.WithImplementation(c.Meta().Implementation).Debugf("connected to %s", addr)
	c.client = client
	return nil
}

// exec runs one command. A non-zero exit status is an error only when the
// command printed nothing.
func (c *Client) exec(ctx context.Context, cmd string) (interface{}, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	type reply struct {
		out []byte
		err error
	}
	done := make(chan reply, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		done <- reply{out, err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return nil, ctx.Err()
	case r := <-done:
		var exitErr *ssh.ExitError
		if errors.As(r.err, &exitErr) {
			if len(r.out) == 0 {
				return nil, &connector.CommandError{
					Code:    connector.CodeCommandFailed,
					Command: cmd,
					Message: fmt.Sprintf("exit status %d", exitErr.ExitStatus()),
				}
			}
			return string(r.out), nil
		}
		if r.err != nil {
			return nil, fmt.Errorf("SSH exec '%s': %w", cmd, r.err)
		}
		return string(r.out), nil
	}
}

// ClientConfig builds the SSH client settings for a device. Host keys are
// checked against cfg.KnownHosts unless cfg.Insecure is set.
func ClientConfig(cfg connector.Config, timeout time.Duration) (*ssh.ClientConfig, error) {
	hostKey := ssh.InsecureIgnoreHostKey() //nolint:gosec // lab default unless KnownHosts is set
	if !cfg.Insecure && cfg.KnownHosts != "" {
		cb, err := knownhosts.New(cfg.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("known_hosts %s: %w", cfg.KnownHosts, err)
		}
		hostKey = cb
	}
	password := cfg.Password
	return &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}, nil
}
