package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Keyer builds cache keys for each kind of cached value.
type Keyer interface {
	// HTTPKey is the key for a fetched response body.
	HTTPKey(namespace, key string) string

	// DocumentKey is the key for a project tree encoded in format.
	DocumentKey(checksum, format string) string

	// RenderKey is the key for a rendered artifact (kind is "svg", "dot", ...).
	RenderKey(checksum, kind string) string
}

// Key kinds, used as prefixes and reported to cache hooks.
const (
	kindHTTP     = "http"
	kindDocument = "doc"
	kindRender   = "render"
)

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>". Response keys stay readable so
// that `redis-cli keys 'http:*'` is useful.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return kindHTTP + ":" + namespace + ":" + key
}

// DocumentKey returns "doc:<digest>" over the checksum and format.
func (DefaultKeyer) DocumentKey(checksum, format string) string {
	return digestKey(kindDocument, checksum, format)
}

// RenderKey returns "render:<digest>" over the checksum and kind.
func (DefaultKeyer) RenderKey(checksum, kind string) string {
	return digestKey(kindRender, checksum, kind)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several users of one
// Redis database do not see each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.Prefix + k.Inner.HTTPKey(namespace, key)
}

func (k ScopedKeyer) DocumentKey(checksum, format string) string {
	return k.Prefix + k.Inner.DocumentKey(checksum, format)
}

func (k ScopedKeyer) RenderKey(checksum, kind string) string {
	return k.Prefix + k.Inner.RenderKey(checksum, kind)
}

// KeyType reports which kind of value a key holds: "http", "doc", "render",
// the text before the first colon for foreign keys, or "other". Scoped keys
// report their innermost kind.
func KeyType(key string) string {
	for _, kind := range []string{kindHTTP, kindDocument, kindRender} {
		if strings.Contains(key, kind+":") {
			return kind
		}
	}
	if prefix, _, ok := strings.Cut(key, ":"); ok && prefix != "" {
		return prefix
	}
	return "other"
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// digestKey hashes the lower-cased parts, NUL separated, under kind.
func digestKey(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(p)))
		h.Write([]byte{0})
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
