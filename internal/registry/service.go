package registry

import (
	"context"

	"modelcache/internal/refcache"
	"modelcache/pkg/types"
)

// Service is the surface the batch driver talks to. It consults the unified
// registry first, so a model already loaded by a baseline method is reused
// as the reference model; without a unified registry it falls back to the
// plain reference cache.
type Service struct {
	unified *Unified
	refs    *refcache.Cache
}

// NewService composes a unified registry and a reference cache. Either may
// be nil, but not both.
func NewService(u *Unified, refs *refcache.Cache) *Service {
	return &Service{unified: u, refs: refs}
}

// RegisterBaselineModel records a baseline method's own loaded model for
// reuse as the reference model. No-op when no unified registry is configured.
func (s *Service) RegisterBaselineModel(method string, m *types.SolvedModel, periods []int) {
	if s.unified != nil {
		s.unified.RegisterMethodModel(method, m, periods)
	}
}

// GetCachedReferenceModel returns the reference model for x, loading at most
// once per run for a given reference identity.
func (s *Service) GetCachedReferenceModel(ctx context.Context, rc types.RunContext, x types.ParameterVector, req types.LoadRequirement) (*types.SolvedModel, error) {
	if s.unified != nil {
		return s.unified.GetReferenceModel(ctx, rc, x, req)
	}
	return s.refs.Get(ctx, rc, x, req)
}

// ReleaseAllStrongReferences drops every strong pin in both caches. Call
// after all metrics needing the current batch's reference models have run.
func (s *Service) ReleaseAllStrongReferences() {
	if s.unified != nil {
		s.unified.ClearStrongRefs()
	}
	if s.refs != nil {
		s.refs.ReleaseStrongRefs()
	}
}

// ClearAllCaches drops all cache state. Call at run boundaries.
func (s *Service) ClearAllCaches() {
	if s.unified != nil {
		s.unified.Clear()
	}
	if s.refs != nil {
		s.refs.Clear()
	}
}

// Statistics aggregates both caches' read-only stats.
type Statistics struct {
	Reference refcache.Stats `json:"reference"`
	Unified   Stats          `json:"unified"`
}

// CacheStatistics reports both caches' state. Read-only, no side effects.
func (s *Service) CacheStatistics() Statistics {
	var out Statistics
	if s.refs != nil {
		out.Reference = s.refs.Stats()
	}
	if s.unified != nil {
		out.Unified = s.unified.Stats()
	}
	return out
}
