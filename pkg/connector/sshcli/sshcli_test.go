package sshcli

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"

	"github.com/netapi-network/netapi/pkg/connector"
	"github.com/netapi-network/netapi/pkg/util"
)

type cannedReply struct {
	out    string
	status uint32
}

// startServer runs an SSH server answering exec requests from replies.
// Unknown commands exit 127 without output.
func startServer(t *testing.T, replies map[string]cannedReply) (host string, port int) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == "admin" && string(pass) == "secret" {
				return nil, nil
			}
			return nil, fmt.Errorf("denied")
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go serveConn(nc, cfg, replies)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func serveConn(nc net.Conn, cfg *ssh.ServerConfig, replies map[string]cannedReply) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)
	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "session only")
			continue
		}
		ch, requests, err := nch.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer ch.Close()
			for req := range requests {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				cmd := string(req.Payload[4:])
				_ = req.Reply(true, nil)
				r, ok := replies[cmd]
				if !ok {
					r = cannedReply{status: 127}
				}
				_, _ = ch.Write([]byte(r.out))
				status := make([]byte, 4)
				binary.BigEndian.PutUint32(status, r.status)
				_, _ = ch.SendRequest("exit-status", false, status)
				return
			}
		}()
	}
}

func TestRun(t *testing.T) {
	host, port := startServer(t, map[string]cannedReply{
		"ping 10.77.77.1 size 692 repeat 5 timeout 2": {out: "Success rate is 100 percent (5/5)"},
		"ping 10.77.77.99":                            {out: "5 packets transmitted, 0 received, 100% packet loss", status: 1},
	})
	c, err := New(TagIOS, connector.Config{Host: host, Port: port, Username: "admin", Password: "secret", Insecure: true})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	res, err := c.Run(context.Background(), []string{"ping 10.77.77.1 size 692 repeat 5 timeout 2"}, connector.RunOptions{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(res.First().(string), "Success rate is 100 percent") {
		t.Errorf("output = %v", res.First())
	}

	res, err = c.Run(context.Background(), []string{"ping 10.77.77.99"}, connector.RunOptions{})
	if err != nil {
		t.Fatalf("non-zero exit with output should succeed: %v", err)
	}
	if !strings.Contains(res.First().(string), "100% packet loss") {
		t.Errorf("output = %v", res.First())
	}

	_, err = c.Run(context.Background(), []string{"show bogus"}, connector.RunOptions{})
	var ce *connector.CommandError
	if !errors.As(err, &ce) || ce.Command != "show bogus" {
		t.Errorf("failing command should raise CommandError, got %v", err)
	}

	res, err = c.Run(context.Background(), []string{"show bogus", "ping 10.77.77.99"}, connector.RunOptions{Silent: true})
	if err != nil {
		t.Fatalf("silent Run error: %v", err)
	}
	if v, _ := res.Get("show bogus"); v != nil {
		t.Errorf("pruned output = %v", v)
	}

	_, err = c.Run(context.Background(), []string{"show bogus"}, connector.RunOptions{Silent: true})
	if !errors.Is(err, util.ErrCommandsExhausted) {
		t.Errorf("expected exhaustion, got %v", err)
	}
}

func TestAuthFailure(t *testing.T) {
	host, port := startServer(t, nil)
	c, _ := New(TagLinux, connector.Config{Host: host, Port: port, Username: "admin", Password: "nope", Insecure: true})
	if _, err := c.Run(context.Background(), []string{"uname"}, connector.RunOptions{}); err == nil {
		t.Error("expected authentication failure")
	}
}

func TestRegister(t *testing.T) {
	f := connector.NewFactory()
	Register(f)
	if len(f.Tags()) != len(Tags) {
		t.Errorf("Tags() = %v", f.Tags())
	}
	c, err := f.Create("xr", "netmiko", connector.Config{Host: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if c.Meta().Implementation != TagXR {
		t.Errorf("implementation = %s", c.Meta().Implementation)
	}
	if _, err := New(TagXR, connector.Config{}); err == nil {
		t.Error("missing host should fail")
	}
}

func TestClientConfig(t *testing.T) {
	cfg, err := ClientConfig(connector.Config{Username: "admin", Password: "x"}, 0)
	if err != nil || cfg.User != "admin" || len(cfg.Auth) != 2 {
		t.Errorf("ClientConfig = %+v, %v", cfg, err)
	}
	if _, err := ClientConfig(connector.Config{KnownHosts: "/nonexistent/known_hosts"}, 0); err == nil {
		t.Error("unreadable known_hosts should fail")
	}
}
