package refcache

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"modelcache/pkg/types"
)

// countingLoader fabricates models and records invocations. It keeps no
// reference to what it returns, so cached models are collectable once the
// cache releases them.
type countingLoader struct {
	calls   int
	lastReq types.LoadRequirement
	err     error
	bundle  string
}

func (l *countingLoader) LoadModel(ctx context.Context, x types.ParameterVector, req types.LoadRequirement) (*types.SolvedModel, error) {
	l.calls++
	l.lastReq = req
	if l.err != nil {
		return nil, l.err
	}
	return testModel(l.bundle), nil
}

func TestGet_SharedAcrossMetricsAndMethods(t *testing.T) {
	ld := &countingLoader{bundle: "/runs/ref/bundle"}
	c := New(ld)
	rc := fakeContext{path: "/runs/ref/bundle"}
	ctx := context.Background()

	m1, err := c.Get(ctx, rc, types.ParameterVector{1, 2}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// A second method's request resolving to the same bundle path reuses
	// the identical instance, whatever its own parameter vector says.
	m2, err := c.Get(ctx, rc, types.ParameterVector{3, 4}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m1 != m2 {
		t.Fatalf("expected identical instance on hit")
	}
	if ld.calls != 1 {
		t.Fatalf("loader calls = %d, want 1", ld.calls)
	}

	s := c.Stats()
	if s.Entries != 1 || s.StrongRefs != 1 {
		t.Fatalf("stats = %+v", s)
	}
	key := DeriveReferenceKey(rc, nil)
	if s.AccessCounts[key] != 2 {
		t.Fatalf("access count = %d, want 2 (population + one hit)", s.AccessCounts[key])
	}
}

func TestGet_LoadsSupersetRegardlessOfRequest(t *testing.T) {
	ld := &countingLoader{}
	c := New(ld)
	narrow := types.Requirement([]int{0}, map[int]types.StageSet{0: types.Stages("OWNC")})
	if _, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, narrow); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ld.lastReq.Equal(c.catalog.Superset()) {
		t.Fatalf("loaded %+v, want superset %+v", ld.lastReq, c.catalog.Superset())
	}
}

func TestGet_TrimsFreshLoadOnly(t *testing.T) {
	ld := &countingLoader{}
	c := New(ld)
	m, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	a := m.Periods[0].Stages["OWNC"].Perches["arvl"].Sol.Arrays()
	if a.Value != nil || a.EGM != nil {
		t.Fatalf("fresh load not trimmed: %+v", a)
	}
	if a.Policy == nil {
		t.Fatalf("policy array discarded")
	}
}

func TestGet_DisableTrim(t *testing.T) {
	ld := &countingLoader{}
	c := NewWithConfig(CacheConfig{Loader: ld, DisableTrim: true})
	m, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.Periods[0].Stages["OWNC"].Perches["arvl"].Sol.Arrays().Value == nil {
		t.Fatalf("arrays trimmed despite DisableTrim")
	}
}

func TestGet_LoaderFailureNotCached(t *testing.T) {
	ld := &countingLoader{err: types.ErrModelUnavailable("bundle missing")}
	c := New(ld)
	_, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, types.LoadRequirement{})
	if err == nil || !types.IsModelUnavailable(err) {
		t.Fatalf("err = %v, want model-unavailable", err)
	}
	if s := c.Stats(); s.Entries != 0 {
		t.Fatalf("failed load was cached: %+v", s)
	}
	// The failure kind propagates unchanged on retry too.
	ld.err = types.ErrInvalidParameters("x out of range")
	if _, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, types.LoadRequirement{}); !types.IsInvalidParameters(err) {
		t.Fatalf("err = %v, want invalid-parameters", err)
	}
	if ld.calls != 2 {
		t.Fatalf("loader calls = %d, want 2 (nothing cached)", ld.calls)
	}
}

func TestReleaseStrongRefs_AllowsReload(t *testing.T) {
	ld := &countingLoader{}
	c := New(ld)
	rc := fakeContext{path: "/runs/ref/bundle"}
	ctx := context.Background()

	m, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ld.calls != 1 {
		t.Fatalf("loader calls = %d, want 1", ld.calls)
	}

	c.ReleaseStrongRefs()
	if s := c.Stats(); s.StrongRefs != 0 || s.Entries != 1 {
		t.Fatalf("stats after release = %+v", s)
	}

	// Drop the only external holder; the weak target becomes collectable.
	m = nil
	_ = m
	runtime.GC()
	runtime.GC()

	if _, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{}); err != nil {
		t.Fatalf("Get after release: %v", err)
	}
	if ld.calls != 2 {
		t.Fatalf("loader calls = %d, want 2 (dead weak ref is a cold miss)", ld.calls)
	}
}

func TestReleaseStrongRefs_KeepsLiveModelsShared(t *testing.T) {
	ld := &countingLoader{}
	c := New(ld)
	rc := fakeContext{path: "/runs/ref/bundle"}
	ctx := context.Background()

	m, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.ReleaseStrongRefs()
	runtime.GC()

	// m is still held here, so the weak reference must still resolve.
	m2, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m2 != m {
		t.Fatalf("live model was reloaded instead of reused")
	}
	if ld.calls != 1 {
		t.Fatalf("loader calls = %d, want 1", ld.calls)
	}
}

func TestClear_Idempotent(t *testing.T) {
	ld := &countingLoader{}
	c := New(ld)
	if _, err := c.Get(context.Background(), fakeContext{}, types.ParameterVector{1}, types.LoadRequirement{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Clear()
	c.Clear()
	s := c.Stats()
	if s.Entries != 0 || s.StrongRefs != 0 {
		t.Fatalf("stats after double clear = %+v", s)
	}
}

func TestTelemetrySidecar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.json")
	ld := &countingLoader{}
	c := NewWithConfig(CacheConfig{Loader: ld, TelemetryFile: path})
	rc := fakeContext{path: "/runs/ref/bundle"}
	ctx := context.Background()
	if _, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := c.Get(ctx, rc, types.ParameterVector{1}, types.LoadRequirement{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.ReleaseStrongRefs()

	counts, err := LoadTelemetry(path)
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}
	key := DeriveReferenceKey(rc, nil)
	if counts[key] != 2 {
		t.Fatalf("telemetry counts = %v, want %q -> 2", counts, key)
	}
}

func TestLoadTelemetry_MissingFile(t *testing.T) {
	counts, err := LoadTelemetry(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadTelemetry: %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("counts = %v, want empty", counts)
	}
}
