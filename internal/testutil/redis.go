//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the address of the test Redis instance from
// NETAPI_TEST_REDIS_ADDR, "" when unset
func RedisAddr() string {
	return os.Getenv("NETAPI_TEST_REDIS_ADDR")
}

// RedisHost returns the host part of RedisAddr
func RedisHost() string {
	addr := RedisAddr()
	if idx := strings.LastIndex(addr, ":"); idx > 0 {
		return addr[:idx]
	}
	return addr
}

// SkipIfNoRedis skips the test if the test Redis instance is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set NETAPI_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// Seed maps SONiC database numbers to Redis keys and their field hashes.
// Keys are written verbatim, so CONFIG_DB entries use "TABLE|key" and
// APPL_DB entries "TABLE:key".
type Seed map[int]map[string]map[string]string

// LoadSeed reads a seed from testdata/name. The file maps database names
// (CONFIG_DB, STATE_DB, APPL_DB) to keys and field hashes.
func LoadSeed(t *testing.T, name string, databases map[string]int) Seed {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("reading seed file %s: %v", name, err)
	}
	var byName map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &byName); err != nil {
		t.Fatalf("parsing seed file %s: %v", name, err)
	}
	seed := make(Seed, len(byName))
	for db, keys := range byName {
		n, ok := databases[db]
		if !ok {
			t.Fatalf("seed file %s: unknown database %s", name, db)
		}
		seed[n] = keys
	}
	return seed
}

// SeedRedis flushes every database in seed and writes its hashes. The
// databases are flushed again when the test ends.
func SeedRedis(t *testing.T, seed Seed) {
	t.Helper()

	addr := RedisAddr()
	ctx := context.Background()
	for db, keys := range seed {
		FlushDB(t, addr, db)
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		for key, fields := range keys {
			args := make([]interface{}, 0, len(fields)*2)
			for k, v := range fields {
				args = append(args, k, v)
			}
			if len(args) == 0 {
				// SONiC stores field-less entries with a NULL placeholder
				args = append(args, "NULL", "NULL")
			}
			if err := client.HSet(ctx, key, args...).Err(); err != nil {
				client.Close()
				t.Fatalf("seeding %s: %v", key, err)
			}
		}
		client.Close()
		db := db
		t.Cleanup(func() { FlushDB(t, addr, db) })
	}
}

// FlushDB flushes a specific Redis database.
func FlushDB(t *testing.T, addr string, db int) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
}
