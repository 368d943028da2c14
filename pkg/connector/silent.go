package connector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/netapi-network/netapi/pkg/util"
)

// Device error codes that mark a single command as unusable
const (
	CodeCommandFailed  = 1000
	CodeInvalidCommand = 1002
)

// CommandError is a device rejecting one command of a batch
type CommandError struct {
	Code    int
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("[%d]: command '%s' failed: %s", e.Code, e.Command, e.Message)
}

// Prunable reports whether the command can be dropped from a silent run
func (e *CommandError) Prunable() bool {
	return e.Code == CodeCommandFailed || e.Code == CodeInvalidCommand
}

// BatchFunc executes a batch of commands as one request
type BatchFunc func(ctx context.Context, commands []string) (Results, error)

// CommandFunc executes a single command
type CommandFunc func(ctx context.Context, command string) (interface{}, error)

// SilentRun executes commands through exec, dropping each command the
// device rejects with a prunable CommandError and retrying the remainder.
// Every submitted command appears in the result; dropped ones have a nil
// output. It fails with util.ErrCommandsExhausted once no command is left.
func SilentRun(ctx context.Context, commands []string, exec BatchFunc) (Results, error) {
	pending := append([]string(nil), commands...)
	for {
		if len(pending) == 0 {
			return nil, fmt.Errorf("%w: %v", util.ErrCommandsExhausted, commands)
		}
		res, err := exec(ctx, pending)
		if err == nil {
			return align(commands, res), nil
		}
		var ce *CommandError
		if !errors.As(err, &ce) || !ce.Prunable() {
			return nil, err
		}
		idx := indexOf(pending, ce.Command)
		if idx < 0 {
			return nil, err
		}
		util.WithField("command", ce.Command).Warnf("pruning command: %s", ce.Message)
		pending = append(pending[:idx:idx], pending[idx+1:]...)
	}
}

// Sequential adapts a single-command runner into a batch runner. Outputs
// already collected are reused when a pruned batch is retried.
func Sequential(run CommandFunc) BatchFunc {
	done := make(map[string]interface{})
	return func(ctx context.Context, commands []string) (Results, error) {
		out := make(Results, 0, len(commands))
		for _, cmd := range commands {
			if v, ok := done[cmd]; ok {
				out = append(out, Result{Command: cmd, Output: v})
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			v, err := run(ctx, cmd)
			if err != nil {
				return nil, err
			}
			done[cmd] = v
			out = append(out, Result{Command: cmd, Output: v})
		}
		return out, nil
	}
}

// Execute runs commands through exec, pruning when opts.Silent is set
func Execute(ctx context.Context, commands []string, opts RunOptions, exec BatchFunc) (Results, error) {
	if opts.Silent {
		return SilentRun(ctx, commands, exec)
	}
	res, err := exec(ctx, commands)
	if err != nil {
		return nil, err
	}
	return align(commands, res), nil
}

// align orders res by the submitted commands
func align(commands []string, res Results) Results {
	out := make(Results, len(commands))
	for i, cmd := range commands {
		v, _ := res.Get(cmd)
		out[i] = Result{Command: cmd, Output: v}
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
