// Package config loads fetchtree settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults
//  2. the TOML file at ~/.config/fetchtree/config.toml (or --config)
//  3. FETCHTREE_* environment variables, including ones set by a .env file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/fetchtree/pkg/cache"
	"github.com/matzehuels/fetchtree/pkg/httputil"
	"github.com/matzehuels/fetchtree/pkg/server"
	"github.com/matzehuels/fetchtree/pkg/sink"
	"github.com/matzehuels/fetchtree/pkg/store"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the complete set of settings.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Fetch  FetchConfig  `toml:"fetch"`
	Store  StoreConfig  `toml:"store"`
	S3     S3Config     `toml:"s3"`
	Server ServerConfig `toml:"server"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir,omitempty"`
	Size    int         `toml:"size,omitempty"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr,omitempty"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db,omitempty"`
	Prefix   string `toml:"prefix,omitempty"`
}

type FetchConfig struct {
	Timeout  Duration `toml:"timeout"`
	Attempts int      `toml:"attempts"`
}

type StoreConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir,omitempty"`
	Mongo   MongoConfig `toml:"mongo"`
}

type MongoConfig struct {
	URI      string   `toml:"uri,omitempty"`
	Database string   `toml:"database,omitempty"`
	Timeout  Duration `toml:"timeout"`
}

// S3Config enables s3:// export destinations when Endpoint is set.
type S3Config struct {
	Endpoint  string `toml:"endpoint,omitempty"`
	Region    string `toml:"region,omitempty"`
	AccessKey string `toml:"access_key,omitempty"`
	SecretKey string `toml:"secret_key,omitempty"`
	UseSSL    bool   `toml:"use_ssl"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// ExportDir confines server-side file exports; empty disables them.
	ExportDir string `toml:"export_dir,omitempty"`
}

// Duration is a time.Duration written as text ("24h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			TTL:     Duration{httputil.DefaultTTL},
		},
		Fetch: FetchConfig{
			Timeout:  Duration{httputil.DefaultTimeout},
			Attempts: httputil.DefaultAttempts,
		},
		Store:  StoreConfig{Backend: store.BackendFile},
		S3:     S3Config{Region: "us-east-1", UseSSL: true},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/fetchtree/config.toml, falling back
// to ~/.config/fetchtree/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fetchtree", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fetchtree", FileName), nil
}

// Load reads settings. An empty path means [DefaultPath], which may be
// absent; an explicit path must exist. envFiles are loaded with godotenv
// first (".env" when none are given) and never override variables already
// set in the environment.
func Load(path string, envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is [Load] with an explicit environment lookup and no .env
// handling.
func LoadWith(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Validate checks backend names and their required settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendMemory:
	case cache.BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache backend redis requires cache.redis.addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case store.BackendFile:
	case store.BackendMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store backend mongo requires store.mongo.uri")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1, got %d", c.Fetch.Attempts)
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c *Config) CacheOptions() cache.Config {
	return cache.Config{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		Size:          c.Cache.Size,
		RedisAddr:     c.Cache.Redis.Addr,
		RedisPassword: c.Cache.Redis.Password,
		RedisDB:       c.Cache.Redis.DB,
		RedisPrefix:   c.Cache.Redis.Prefix,
	}
}

// StoreOptions converts the store section for [store.Open].
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		Backend: c.Store.Backend,
		Dir:     c.Store.Dir,
		Mongo: store.MongoConfig{
			URI:      c.Store.Mongo.URI,
			Database: c.Store.Mongo.Database,
			Timeout:  c.Store.Mongo.Timeout.Duration,
		},
	}
}

// Resolver returns the export destination resolver. s3:// destinations are
// only enabled when an endpoint is configured.
func (c *Config) Resolver() *sink.Resolver {
	r := &sink.Resolver{Stdout: os.Stdout}
	if c.S3.Endpoint != "" {
		r.S3 = &sink.S3Config{
			Endpoint:  c.S3.Endpoint,
			Region:    c.S3.Region,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			UseSSL:    c.S3.UseSSL,
		}
	}
	return r
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []string
	num := func(name string, dst *int) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *Duration) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			if err := dst.UnmarshalText([]byte(strings.TrimSpace(v))); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
				return
			}
			*dst = b
		}
	}

	str("FETCHTREE_CACHE_BACKEND", &c.Cache.Backend)
	str("FETCHTREE_CACHE_DIR", &c.Cache.Dir)
	num("FETCHTREE_CACHE_SIZE", &c.Cache.Size)
	dur("FETCHTREE_CACHE_TTL", &c.Cache.TTL)
	str("FETCHTREE_REDIS_ADDR", &c.Cache.Redis.Addr)
	str("FETCHTREE_REDIS_PASSWORD", &c.Cache.Redis.Password)
	num("FETCHTREE_REDIS_DB", &c.Cache.Redis.DB)
	str("FETCHTREE_REDIS_PREFIX", &c.Cache.Redis.Prefix)

	dur("FETCHTREE_FETCH_TIMEOUT", &c.Fetch.Timeout)
	num("FETCHTREE_FETCH_ATTEMPTS", &c.Fetch.Attempts)

	str("FETCHTREE_STORE_BACKEND", &c.Store.Backend)
	str("FETCHTREE_STORE_DIR", &c.Store.Dir)
	str("FETCHTREE_MONGO_URI", &c.Store.Mongo.URI)
	str("FETCHTREE_MONGO_DATABASE", &c.Store.Mongo.Database)

	str("FETCHTREE_S3_ENDPOINT", &c.S3.Endpoint)
	str("FETCHTREE_S3_REGION", &c.S3.Region)
	str("FETCHTREE_S3_ACCESS_KEY", &c.S3.AccessKey)
	str("FETCHTREE_S3_SECRET_KEY", &c.S3.SecretKey)
	boolean("FETCHTREE_S3_USE_SSL", &c.S3.UseSSL)

	str("FETCHTREE_ADDR", &c.Server.Addr)
	str("FETCHTREE_EXPORT_DIR", &c.Server.ExportDir)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}
