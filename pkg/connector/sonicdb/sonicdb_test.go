package sonicdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/netapi-network/netapi/pkg/connector"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		cmd     string
		wantDB  int
		wantKey string
		wantErr bool
	}{
		{"CONFIG_DB PORT|Ethernet0", 4, "PORT|Ethernet0", false},
		{"state_db PORT_TABLE|*", 6, "PORT_TABLE|*", false},
		{"APPL_DB ROUTE_TABLE:10.0.0.0/24", 0, "ROUTE_TABLE:10.0.0.0/24", false},
		{"COUNTERS_DB  COUNTERS:oid:0x1000000000002 ", 2, "COUNTERS:oid:0x1000000000002", false},
		{"FLEX_DB KEY", 0, "", true},
		{"CONFIG_DB", 0, "", true},
		{"", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			db, key, err := ParseCommand(tt.cmd)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.cmd, err, tt.wantErr)
			}
			if !tt.wantErr && (db != tt.wantDB || key != tt.wantKey) {
				t.Errorf("ParseCommand(%q) = %d, %q", tt.cmd, db, key)
			}
		})
	}
}

func TestIsPattern(t *testing.T) {
	for key, want := range map[string]bool{
		"PORT|Ethernet0":     false,
		"PORT|*":             true,
		"VLAN_MEMBER|Vlan?":  true,
		"PORT|Ethernet[0-4]": true,
	} {
		if got := isPattern(key); got != want {
			t.Errorf("isPattern(%q) = %v", key, got)
		}
	}
}

func TestInvalidCommandIsPrunable(t *testing.T) {
	c, err := New(connector.Config{Host: "127.0.0.1", Port: 1, Transport: "direct", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	_, err = c.exec(context.Background(), "FLEX_DB KEY")
	var ce *connector.CommandError
	if !errors.As(err, &ce) || !ce.Prunable() {
		t.Errorf("bad database should be a prunable CommandError, got %v", err)
	}
}

func TestConnectDirect(t *testing.T) {
	c, _ := New(connector.Config{Host: "10.0.0.5", Transport: "direct"})
	if err := c.connect(); err != nil {
		t.Fatalf("connect error: %v", err)
	}
	if c.addr != "10.0.0.5:6379" || c.tunnel != nil {
		t.Errorf("direct transport should skip the tunnel, addr=%s", c.addr)
	}
	if c.db(4) != c.db(4) || c.db(4) == c.db(6) {
		t.Error("one Redis client per database expected")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestRegister(t *testing.T) {
	f := connector.NewFactory()
	Register(f)
	c, err := f.Create("sonic", "redis", connector.Config{Host: "10.0.0.5"})
	if err != nil || c.Meta().Implementation != Tag {
		t.Errorf("Create = %v, %v", c, err)
	}
	if _, err := New(connector.Config{}); err == nil {
		t.Error("missing host should fail")
	}
}
