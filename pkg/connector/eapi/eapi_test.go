package eapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

// eosServer answers runCmds, rejecting any command listed in bad
func eosServer(t *testing.T, bad map[string]bool, requests *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/command-api" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			ID     string    `json:"id"`
			Params eosParams `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		var data []interface{}
		for i, cmd := range req.Params.Cmds {
			if bad[cmd] {
				data = append(data, map[string]interface{}{"errors": []string{"Interface does not exist"}})
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"jsonrpc": "2.0", "id": req.ID,
					"error": map[string]interface{}{
						"code":    1002,
						"message": fmt.Sprintf("CLI command %d of %d '%s' failed: invalid command", i+1, len(req.Params.Cmds), cmd),
						"data":    data,
					},
				})
				return
			}
			data = append(data, map[string]interface{}{"command": cmd})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": data})
	}))
}

func newTestClient(t *testing.T, srv *httptest.Server, tag string, d Dialect, pass string) *Client {
	u, _ := url.Parse(srv.URL)
	port, _ := strconv.Atoi(u.Port())
	c, err := New(tag, d, connector.Config{Host: u.Hostname(), Port: port, Transport: "http", Username: "admin", Password: pass})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return c
}

func TestEOSRun(t *testing.T) {
	var requests atomic.Int32
	srv := eosServer(t, map[string]bool{"show interfaces Loopback777": true}, &requests)
	defer srv.Close()
	c := newTestClient(t, srv, TagEOS, EOS, "secret")

	if c.Meta().Name != "device" || c.Meta().Implementation != TagEOS {
		t.Errorf("metadata = %+v", c.Meta())
	}

	res, err := c.Run(context.Background(), []string{"show version", "show hostname"}, connector.RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	out, ok := connector.AsObject(res.First())
	if !ok {
		t.Fatalf("output is %T", res.First())
	}
	if v, _ := out.Get("command"); v != "show version" {
		t.Errorf("first output = %v", v)
	}

	_, err = c.Run(context.Background(), []string{"show version", "show interfaces Loopback777"}, connector.RunOptions{})
	var ce *connector.CommandError
	if !errors.As(err, &ce) || ce.Code != 1002 || ce.Command != "show interfaces Loopback777" {
		t.Fatalf("expected CommandError for the bad command, got %v", err)
	}

	requests.Store(0)
	res, err = c.Run(context.Background(), []string{"show version", "show interfaces Loopback777"}, connector.RunOptions{Silent: true})
	if err != nil {
		t.Fatalf("silent Run error: %v", err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("expected a retry, got %d requests", n)
	}
	if v, ok := res.Get("show interfaces Loopback777"); !ok || v != nil {
		t.Errorf("pruned command output = %v", v)
	}

	_, err = c.Run(context.Background(), []string{"show interfaces Loopback777"}, connector.RunOptions{Silent: true})
	if !errors.Is(err, util.ErrCommandsExhausted) {
		t.Errorf("expected exhaustion, got %v", err)
	}
}

func TestEOSAuthFailure(t *testing.T) {
	var requests atomic.Int32
	srv := eosServer(t, nil, &requests)
	defer srv.Close()
	c := newTestClient(t, srv, TagEOS, EOS, "wrong")
	if _, err := c.Run(context.Background(), []string{"show version"}, connector.RunOptions{}); err == nil {
		t.Error("expected authentication failure")
	}
}

func TestNXOSRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ins" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var reqs []struct {
			ID     int        `json:"id"`
			Method string     `json:"method"`
			Params nxosParams `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		var replies []interface{}
		for _, req := range reqs {
			if req.Params.Cmd == "show bogus" {
				replies = append(replies, map[string]interface{}{
					"jsonrpc": "2.0", "id": req.ID,
					"error": map[string]interface{}{"code": -32602, "message": "Invalid params", "data": map[string]interface{}{"msg": "% Invalid command\n"}},
				})
				continue
			}
			replies = append(replies, map[string]interface{}{
				"jsonrpc": "2.0", "id": req.ID,
				"result": map[string]interface{}{"body": map[string]interface{}{"cmd": req.Params.Cmd, "method": req.Method}},
			})
		}
		if len(replies) == 1 {
			_ = json.NewEncoder(w).Encode(replies[0])
			return
		}
		_ = json.NewEncoder(w).Encode(replies)
	}))
	defer srv.Close()
	c := newTestClient(t, srv, TagNXOS, NXOS, "secret")

	res, err := c.Run(context.Background(), []string{"show hostname"}, connector.RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	body, _ := connector.AsObject(res.First())
	if v, _ := body.Get("cmd"); v != "show hostname" {
		t.Errorf("single reply body = %v", v)
	}

	res, err = c.Run(context.Background(), []string{"show version", "show bogus"}, connector.RunOptions{Silent: true, Encoding: "text"})
	if err != nil {
		t.Fatalf("silent Run error: %v", err)
	}
	body, _ = connector.AsObject(res.First())
	if v, _ := body.Get("method"); v != "cli_ascii" {
		t.Errorf("text encoding should use cli_ascii, got %v", v)
	}
	if v, _ := res.Get("show bogus"); v != nil {
		t.Errorf("rejected command should be pruned")
	}
}

func TestRegister(t *testing.T) {
	f := connector.NewFactory()
	Register(f)
	if tags := f.Tags(); len(tags) != 2 || tags[0] != TagEOS || tags[1] != TagNXOS {
		t.Errorf("Tags() = %v", tags)
	}
	if _, err := f.Create("eos", "pyeapi", connector.Config{}); err == nil {
		t.Error("missing host should fail")
	}
}

func TestErrorCommand(t *testing.T) {
	cmds := []string{"show version", "show interfaces Loopback777"}
	got := errorCommand(cmds, "CLI command 2 of 2 'show interfaces Loopback777' failed: invalid command")
	if got != "show interfaces Loopback777" {
		t.Errorf("errorCommand = %q", got)
	}
	if errorCommand(cmds, "unrelated") != "" {
		t.Error("unmatched message should give no command")
	}
}
