// Package testutil provides helpers shared by package tests: a scripted
// connector, payload decoding and, under the integration build tag, a
// SONiC Redis fixture.
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/netapi-network/netapi/pkg/connector"
)

// FakeConnector replays canned outputs per command. Commands listed in
// Rejected fail with a prunable CommandError the way a device rejects an
// unsupported command; unknown commands fail the same way.
type FakeConnector struct {
	connector.Base

	mu       sync.Mutex
	Outputs  map[string]interface{}
	Rejected map[string]bool
	// Err, when set, fails every Run
	Err error
	// Calls records the command batches passed to Run
	Calls [][]string
	// Options records the options of each Run
	Options []connector.RunOptions
}

// NewFakeConnector creates a fake device serving tag
func NewFakeConnector(tag string, outputs map[string]interface{}) *FakeConnector {
	if outputs == nil {
		outputs = make(map[string]interface{})
	}
	return &FakeConnector{
		Base:     connector.NewBase(tag, connector.Config{Name: "fake", Host: "192.0.2.1"}),
		Outputs:  outputs,
		Rejected: make(map[string]bool),
	}
}

// Set replaces the output of cmd
func (f *FakeConnector) Set(cmd string, output interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Outputs[cmd] = output
}

// Reject makes the device refuse cmd
func (f *FakeConnector) Reject(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rejected[cmd] = true
}

// Run implements connector.Connector
func (f *FakeConnector) Run(ctx context.Context, commands []string, opts connector.RunOptions) (connector.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, append([]string(nil), commands...))
	f.Options = append(f.Options, opts)
	if f.Err != nil {
		return nil, f.Err
	}
	return connector.Execute(ctx, commands, opts, f.batch)
}

// batch behaves like a JSON-RPC device: the first rejected command fails
// the whole request
func (f *FakeConnector) batch(ctx context.Context, commands []string) (connector.Results, error) {
	out := make(connector.Results, 0, len(commands))
	for _, cmd := range commands {
		v, ok := f.Outputs[cmd]
		if f.Rejected[cmd] || !ok {
			return nil, &connector.CommandError{Code: connector.CodeInvalidCommand, Command: cmd, Message: "invalid command"}
		}
		out = append(out, connector.Result{Command: cmd, Output: v})
	}
	return out, nil
}

// LastCall returns the commands of the most recent Run
func (f *FakeConnector) LastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	return f.Calls[len(f.Calls)-1]
}

// DecodeJSON decodes s preserving object key order, failing the test on
// malformed input
func DecodeJSON(t testing.TB, s string) interface{} {
	t.Helper()
	v, err := connector.DecodeOrdered([]byte(s))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

// LoadJSON decodes the testdata file name into command outputs. The file
// holds one object mapping each command to its reply.
func LoadJSON(t testing.TB, name string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	v, err := connector.DecodeOrdered(data)
	if err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	obj, ok := connector.AsObject(v)
	if !ok {
		t.Fatalf("fixture %s: top level must be an object", name)
	}
	out := make(map[string]interface{}, obj.Len())
	for _, k := range obj.Keys() {
		out[k], _ = obj.Get(k)
	}
	return out
}

// Results builds ordered results for cmds from outputs, the way a
// connector returns them
func Results(outputs map[string]interface{}, cmds ...string) connector.Results {
	res := make(connector.Results, len(cmds))
	for i, c := range cmds {
		res[i] = connector.Result{Command: c, Output: outputs[c]}
	}
	return res
}

// MustJSON marshals v, failing the test on error
func MustJSON(t testing.TB, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
