// Package local runs commands as subprocesses of the current host
// (LINUX-SUBPROCESS).
package local

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// Tag is the dispatch tag served by this transport
const Tag = "LINUX-SUBPROCESS"

// Runner executes commands on the local host
type Runner struct {
	connector.Base
}

// New creates a local runner. Host defaults to localhost.
func New(cfg connector.Config) (*Runner, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	return &Runner{Base: connector.NewBase(Tag, cfg)}, nil
}

// Register adds the local runner to a factory
func Register(f *connector.Factory) {
	f.Register(Tag, func(cfg connector.Config) (connector.Connector, error) {
		return New(cfg)
	})
}

// Run executes each command, split on whitespace, without a shell
func (r *Runner) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	return connector.Execute(ctx, commands, opts, connector.Sequential(r.exec))
}

func (r *Runner) exec(ctx context.Context, command string) (interface{}, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, &connector.CommandError{Code: connector.CodeInvalidCommand, Command: command, Message: "empty command"}
	}
	if timeout := r.Timeout(0); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	util.WithImplementation(Tag).Debugf("exec %s", command)
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput()
	if err == nil {
		return string(out), nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(out) > 0 {
		return string(out), nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.As(err, &exitErr) {
		return nil, &connector.CommandError{Code: connector.CodeCommandFailed, Command: command, Message: err.Error()}
	}
	return nil, fmt.Errorf("exec '%s': %w", command, err)
}
