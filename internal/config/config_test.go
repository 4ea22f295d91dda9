package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadWith("", env(nil))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestExplicitPathMustExist(t *testing.T) {
	if _, err := LoadWith(filepath.Join(t.TempDir(), "missing.toml"), env(nil)); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "config.toml", `
[cache]
backend = "redis"
ttl = "1h30m"

[cache.redis]
addr = "localhost:6379"
db = 2

[store]
backend = "mongo"

[store.mongo]
uri = "mongodb://localhost:27017"
timeout = "5s"

[s3]
endpoint = "localhost:9000"
use_ssl = false

[server]
addr = ":9090"
`)
	cfg, err := LoadWith(path, env(nil))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	co := cfg.CacheOptions()
	if co.RedisAddr != "localhost:6379" || co.RedisDB != 2 {
		t.Errorf("CacheOptions() = %+v", co)
	}
	so := cfg.StoreOptions()
	if so.Backend != "mongo" || so.Mongo.Timeout != 5*time.Second {
		t.Errorf("StoreOptions() = %+v", so)
	}
	r := cfg.Resolver()
	if r.S3 == nil || r.S3.Endpoint != "localhost:9000" || r.S3.UseSSL || r.S3.Region != "us-east-1" {
		t.Errorf("Resolver().S3 = %+v", r.S3)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	// Untouched sections keep defaults.
	if cfg.Fetch.Attempts != Default().Fetch.Attempts {
		t.Errorf("fetch attempts = %d", cfg.Fetch.Attempts)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.toml", "[server]\naddr = \":9090\"\n")
	cfg, err := LoadWith(path, env(map[string]string{
		"FETCHTREE_ADDR":           ":7070",
		"FETCHTREE_EXPORT_DIR":     "/srv/exports",
		"FETCHTREE_CACHE_BACKEND":  "memory",
		"FETCHTREE_CACHE_SIZE":     "64",
		"FETCHTREE_FETCH_ATTEMPTS": "5",
		"FETCHTREE_FETCH_TIMEOUT":  "2s",
		"FETCHTREE_S3_USE_SSL":     "false",
		"FETCHTREE_STORE_DIR":      "  ",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ExportDir != "/srv/exports" {
		t.Errorf("export dir = %q", cfg.Server.ExportDir)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.Size != 64 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Fetch.Attempts != 5 || cfg.Fetch.Timeout.Duration != 2*time.Second {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if cfg.S3.UseSSL {
		t.Error("use_ssl not overridden")
	}
	if cfg.Store.Dir != "" {
		t.Errorf("blank env var applied: %q", cfg.Store.Dir)
	}
	if cfg.Resolver().S3 != nil {
		t.Error("S3 enabled without endpoint")
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		want string
	}{
		{"unknown cache", "[cache]\nbackend = \"disk\"\n", nil, "unknown cache backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", nil, "cache.redis.addr"},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", nil, "store.mongo.uri"},
		{"unknown store", "[store]\nbackend = \"sqlite\"\n", nil, "unknown store backend"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", nil, "read config"},
		{"bad toml", "[cache\n", nil, "read config"},
		{"bad env int", "", map[string]string{"FETCHTREE_REDIS_DB": "two"}, "FETCHTREE_REDIS_DB"},
		{"bad env bool", "", map[string]string{"FETCHTREE_S3_USE_SSL": "maybe"}, "FETCHTREE_S3_USE_SSL"},
		{"zero attempts", "[fetch]\nattempts = 0\n", nil, "fetch.attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "config.toml", tt.file)
			_, err := LoadWith(path, env(tt.env))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = "memory"
	cfg.Cache.TTL = Duration{45 * time.Second}
	cfg.S3.Endpoint = "minio:9000"

	path := filepath.Join(t.TempDir(), "nested", FileName)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadWith(path, env(nil))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("FETCHTREE_ADDR", "")
	os.Unsetenv("FETCHTREE_ADDR")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	envFile := writeFile(t, ".env", "FETCHTREE_ADDR=:6060\n")
	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":6060" {
		t.Errorf("addr = %q, want :6060 from .env", cfg.Server.Addr)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "fetchtree", FileName); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
