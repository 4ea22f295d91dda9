package store

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config selects a store backend.
type Config struct {
	Backend string // "" means file
	Dir     string // file backend
	Mongo   MongoConfig
}

// Open creates the configured store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
