// Package registry reconciles the two paths a solved model can enter the
// system through: as a competing baseline method's own working model, or as
// a metric's reference model. Looking both up in one place avoids loading
// the identical artifact twice.
package registry

import (
	"context"
	"runtime"
	"weak"

	"github.com/rs/zerolog"

	"modelcache/internal/refcache"
	"modelcache/internal/require"
	"modelcache/pkg/types"
)

// entry mirrors the reference-cache slot shape: non-owning weak pointer,
// optional strong pin, hit count.
type entry struct {
	weak   weak.Pointer[types.SolvedModel]
	strong *types.SolvedModel
	hits   int
}

// Unified caches models keyed both by method name and by reference identity.
// Like refcache.Cache it is single-goroutine by contract.
type Unified struct {
	loader     types.Loader
	catalog    *require.Catalog
	entries    map[string]*entry
	methodKeys map[string]string
	log        zerolog.Logger
}

// Config encapsulates Unified construction tunables.
type Config struct {
	// Loader materializes models when no registration or cached entry
	// matches. Required.
	Loader types.Loader
	// Catalog supplies the superset load shape. Defaults to require.Default().
	Catalog *require.Catalog
	// Logger is optional; unset means no logging.
	Logger *zerolog.Logger
}

// New constructs a Unified registry.
func New(cfg Config) *Unified {
	u := &Unified{
		loader:     cfg.Loader,
		catalog:    cfg.Catalog,
		entries:    make(map[string]*entry),
		methodKeys: make(map[string]string),
		log:        zerolog.Nop(),
	}
	if u.catalog == nil {
		u.catalog = require.Default()
	}
	if cfg.Logger != nil {
		u.log = *cfg.Logger
	}
	return u
}

// Stats is a read-only projection of registry state.
type Stats struct {
	Entries      int            `json:"entries"`
	StrongRefs   int            `json:"strong_refs"`
	MethodModels int            `json:"method_models"`
	AccessCounts map[string]int `json:"access_counts"`
}

// RegisterMethodModel records a model that a baseline method loaded for its
// own purposes so it can be reused as the reference model.
//
// The model identity is its bundle path when known, else the synthetic
// "<method>_bundle". The entry key is scoped to the exact periods loaded
// (nil meaning all). When the loaded periods cover the canonical superset
// (nil or {0,1}), the model is additionally registered under the
// superset-suffixed key so reference-key lookups find it directly.
// A later registration under the same method name overwrites the earlier one.
func (u *Unified) RegisterMethodModel(method string, m *types.SolvedModel, periods []int) {
	modelID, ok := m.Bundle()
	if !ok {
		modelID = method + "_bundle"
	}
	key := refcache.ModelKey(modelID, periods)

	u.entries[key] = &entry{weak: weak.Make(m), strong: m, hits: 1}
	u.methodKeys[method] = key
	u.log.Info().Str("method", method).Str("key", key).Msg("registered method model")

	if periods == nil || coversSuperset(periods) {
		alias := refcache.SupersetKey(modelID)
		// Weak-only: the pin lives with the method-scoped entry.
		u.entries[alias] = &entry{weak: weak.Make(m)}
		u.log.Debug().Str("key", alias).Msg("registered superset reference alias")
	}
	u.updateGauges()
}

// GetReferenceModel returns the reference model for x, reusing a baseline
// method's registration when possible.
//
// Lookup order: a live registration under the context's baseline method
// name (pure reuse, no load and no trim); a live entry under the derived
// superset reference key; the external loader with the fixed superset
// requirement, cached under that key.
func (u *Unified) GetReferenceModel(ctx context.Context, rc types.RunContext, x types.ParameterVector, req types.LoadRequirement) (*types.SolvedModel, error) {
	_ = req // superset is always loaded; see refcache.Cache.Get

	if method := rc.BaselineMethod(); method != "" {
		if key, ok := u.methodKeys[method]; ok {
			if e, ok := u.entries[key]; ok {
				if m := e.weak.Value(); m != nil {
					e.hits++
					lookupsTotal.WithLabelValues("baseline").Inc()
					u.log.Info().Str("method", method).Str("key", key).Msg("using baseline model as reference")
					return m, nil
				}
			}
		}
	}

	key := refcache.DeriveReferenceKey(rc, x)
	if e, ok := u.entries[key]; ok {
		if m := e.weak.Value(); m != nil {
			e.hits++
			lookupsTotal.WithLabelValues("cached").Inc()
			u.log.Info().Str("key", key).Msg("using cached reference model")
			return m, nil
		}
		delete(u.entries, key)
	}

	u.log.Info().Str("key", key).Msg("reference model not in registry, loading")
	m, err := u.loader.LoadModel(ctx, x, u.catalog.Superset())
	if err != nil {
		return nil, err
	}
	lookupsTotal.WithLabelValues("loaded").Inc()
	u.entries[key] = &entry{weak: weak.Make(m), strong: m, hits: 1}
	u.updateGauges()
	return m, nil
}

// ClearStrongRefs drops every strong pin, retaining weak pointers, access
// counts and method registrations.
func (u *Unified) ClearStrongRefs() {
	n := 0
	for key, e := range u.entries {
		if e.strong != nil {
			e.strong = nil
			n++
		}
		u.log.Debug().Str("key", key).Int("hits", e.hits).Msg("released strong reference")
	}
	u.log.Info().Int("released", n).Msg("cleared strong references")
	u.updateGauges()
}

// Clear drops all registry state and requests an immediate collection pass.
func (u *Unified) Clear() {
	u.entries = make(map[string]*entry)
	u.methodKeys = make(map[string]string)
	u.updateGauges()
	runtime.GC()
}

// Stats reports entry, pin and registration counts plus per-key access
// counts. Read-only.
func (u *Unified) Stats() Stats {
	s := Stats{
		MethodModels: len(u.methodKeys),
		AccessCounts: make(map[string]int, len(u.entries)),
	}
	for key, e := range u.entries {
		s.Entries++
		if e.strong != nil {
			s.StrongRefs++
		}
		s.AccessCounts[key] = e.hits
	}
	return s
}

func (u *Unified) updateGauges() {
	strong := 0
	for _, e := range u.entries {
		if e.strong != nil {
			strong++
		}
	}
	registryEntries.Set(float64(len(u.entries)))
	registryStrongRefs.Set(float64(strong))
}

// coversSuperset reports whether the loaded periods are exactly the
// canonical superset {0, 1}.
func coversSuperset(periods []int) bool {
	if len(periods) != 2 {
		return false
	}
	return (periods[0] == 0 && periods[1] == 1) || (periods[0] == 1 && periods[1] == 0)
}
