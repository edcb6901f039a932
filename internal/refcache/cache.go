package refcache

import (
	"context"
	"runtime"
	"weak"

	"github.com/rs/zerolog"

	"modelcache/internal/require"
	"modelcache/pkg/types"
)

// entry is one cached model: a non-owning weak pointer that answers "is the
// model still alive", an owning strong slot that pins it during a metric
// batch, and a hit count kept for telemetry.
type entry struct {
	weak   weak.Pointer[types.SolvedModel]
	strong *types.SolvedModel
	hits   int
}

// Cache memoizes reference-model loads per cache key. Not safe for
// concurrent use; see the package documentation.
type Cache struct {
	loader        types.Loader
	catalog       *require.Catalog
	disableTrim   bool
	telemetryFile string
	entries       map[string]*entry
	log           zerolog.Logger
}

// Stats is a read-only projection of cache state.
type Stats struct {
	Entries      int            `json:"entries"`
	StrongRefs   int            `json:"strong_refs"`
	AccessCounts map[string]int `json:"access_counts"`
}

// Get returns the reference model for x, loading it on a miss.
//
// On a hit with a live weak pointer the cached instance is returned and its
// access count incremented. On a miss (including a collected weak target)
// the loader is invoked with the catalog superset requirement, the result is
// trimmed and stored under weak + strong references with an access count of
// one. Loader failures are propagated unchanged and nothing is cached.
//
// req is the caller's declared need and is accepted for documentation and
// future selective loading; the load shape and the key are always the
// superset, so every metric and method shares one entry per parameter point.
func (c *Cache) Get(ctx context.Context, rc types.RunContext, x types.ParameterVector, req types.LoadRequirement) (*types.SolvedModel, error) {
	_ = req
	key := DeriveReferenceKey(rc, x)

	if e, ok := c.entries[key]; ok {
		if m := e.weak.Value(); m != nil {
			e.hits++
			cacheHitsTotal.Inc()
			c.log.Debug().Str("key", key).Int("hits", e.hits).Msg("reference cache hit")
			return m, nil
		}
		// Weak target collected: fall through to a fresh load.
		delete(c.entries, key)
	}
	cacheMissesTotal.Inc()

	c.log.Info().Str("key", key).Msg("loading reference model with superset requirements")
	m, err := c.loader.LoadModel(ctx, x, c.catalog.Superset())
	if err != nil {
		loadFailuresTotal.WithLabelValues(failureKind(err)).Inc()
		return nil, err
	}
	loadsTotal.Inc()

	if !c.disableTrim {
		rep := Trim(m)
		if rep.Failed() {
			trimFailuresTotal.Add(float64(len(rep.Failures)))
			c.log.Warn().Strs("perches", rep.Failures).Msg("reference model only partially trimmed")
		} else {
			c.log.Debug().Int("trimmed", rep.Trimmed).Msg("reference model trimmed for metrics")
		}
	}

	c.entries[key] = &entry{weak: weak.Make(m), strong: m, hits: 1}
	c.updateGauges()
	return m, nil
}

// ReleaseStrongRefs drops every strong pin, retaining weak pointers and
// access counts. Call once per batch of metric evaluations; models not kept
// alive by any other owner become eligible for collection.
func (c *Cache) ReleaseStrongRefs() {
	n := 0
	for key, e := range c.entries {
		if e.strong != nil {
			e.strong = nil
			n++
		}
		c.log.Debug().Str("key", key).Int("hits", e.hits).Msg("released strong reference")
	}
	c.log.Info().Int("released", n).Msg("cleared strong references")
	c.saveTelemetry()
	c.updateGauges()
}

// Clear drops all state and requests an immediate collection pass. Call at
// run boundaries to guarantee no cross-run leakage.
func (c *Cache) Clear() {
	c.saveTelemetry()
	c.entries = make(map[string]*entry)
	c.updateGauges()
	runtime.GC()
}

// Stats reports entry and pin counts plus per-key access counts. Read-only.
func (c *Cache) Stats() Stats {
	s := Stats{AccessCounts: make(map[string]int, len(c.entries))}
	for key, e := range c.entries {
		s.Entries++
		if e.strong != nil {
			s.StrongRefs++
		}
		s.AccessCounts[key] = e.hits
	}
	return s
}

func (c *Cache) updateGauges() {
	strong := 0
	for _, e := range c.entries {
		if e.strong != nil {
			strong++
		}
	}
	cachedEntries.Set(float64(len(c.entries)))
	strongRefs.Set(float64(strong))
}
