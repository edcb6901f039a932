package refcache

import (
	"github.com/rs/zerolog"

	"modelcache/internal/require"
	"modelcache/pkg/types"
)

// CacheConfig encapsulates all tunables for Cache construction.
type CacheConfig struct {
	// Loader materializes models on a miss. Required.
	Loader types.Loader
	// Catalog supplies the superset load shape. Defaults to require.Default().
	Catalog *require.Catalog
	// DisableTrim keeps every solution array after load instead of
	// discarding the ones no comparison metric reads.
	DisableTrim bool
	// TelemetryFile, when set, receives per-key access counts as JSON on
	// release/clear.
	TelemetryFile string
	// Logger is optional; unset means no logging.
	Logger *zerolog.Logger
}

// NewWithConfig constructs a Cache from CacheConfig.
func NewWithConfig(cfg CacheConfig) *Cache {
	c := &Cache{
		loader:        cfg.Loader,
		catalog:       cfg.Catalog,
		disableTrim:   cfg.DisableTrim,
		telemetryFile: cfg.TelemetryFile,
		entries:       make(map[string]*entry),
		log:           zerolog.Nop(),
	}
	if c.catalog == nil {
		c.catalog = require.Default()
	}
	if cfg.Logger != nil {
		c.log = *cfg.Logger
	}
	return c
}

// New constructs a Cache with default catalog and trimming enabled.
func New(loader types.Loader) *Cache {
	return NewWithConfig(CacheConfig{Loader: loader})
}
