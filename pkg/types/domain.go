package types

import (
	"context"
	"fmt"
	"sort"
)

// ParameterVector identifies one point in parameter space. It is the sole
// external input that determines which solved model should be loaded.
type ParameterVector []float64

// StageSet names the stages required within one period. All=true means every
// stage of the period is needed and absorbs any finite set on merge.
type StageSet struct {
	All   bool     `json:"all,omitempty" yaml:"all,omitempty" toml:"all,omitempty"`
	Names []string `json:"names,omitempty" yaml:"names,omitempty" toml:"names,omitempty"`
}

// AllStages is the absorbing "every stage" set.
func AllStages() StageSet { return StageSet{All: true} }

// Stages builds a finite, sorted, de-duplicated stage set.
func Stages(names ...string) StageSet {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return StageSet{Names: out}
}

// Union merges two stage sets. "All" absorbs any finite set.
func (s StageSet) Union(o StageSet) StageSet {
	if s.All || o.All {
		return StageSet{All: true}
	}
	return Stages(append(append([]string(nil), s.Names...), o.Names...)...)
}

// Equal reports whether two stage sets describe the same stages.
func (s StageSet) Equal(o StageSet) bool {
	if s.All != o.All {
		return false
	}
	if len(s.Names) != len(o.Names) {
		return false
	}
	for i := range s.Names {
		if s.Names[i] != o.Names[i] {
			return false
		}
	}
	return true
}

// LoadRequirement declares the minimal (periods, stages-per-period) slice of
// a solved model some consumer needs. The zero value is the empty requirement.
type LoadRequirement struct {
	Periods []int            `json:"periods" yaml:"periods" toml:"periods"`
	Stages  map[int]StageSet `json:"stages,omitempty" yaml:"stages,omitempty" toml:"stages,omitempty"`
}

// Requirement builds a LoadRequirement with sorted periods.
func Requirement(periods []int, stages map[int]StageSet) LoadRequirement {
	p := append([]int(nil), periods...)
	sort.Ints(p)
	return LoadRequirement{Periods: p, Stages: stages}
}

// Empty reports whether the requirement asks for nothing.
func (r LoadRequirement) Empty() bool { return len(r.Periods) == 0 && len(r.Stages) == 0 }

// Validate checks the structural invariant: every period referenced in
// Stages must be listed in Periods.
func (r LoadRequirement) Validate() error {
	listed := make(map[int]bool, len(r.Periods))
	for _, p := range r.Periods {
		listed[p] = true
	}
	for p := range r.Stages {
		if !listed[p] {
			return fmt.Errorf("requirement references stages for period %d which is not in periods %v", p, r.Periods)
		}
	}
	return nil
}

// Merge unions two requirements: set union over periods, per-period union
// over stage sets with "All" absorbing.
func (r LoadRequirement) Merge(o LoadRequirement) LoadRequirement {
	periods := make(map[int]bool, len(r.Periods)+len(o.Periods))
	for _, p := range r.Periods {
		periods[p] = true
	}
	for _, p := range o.Periods {
		periods[p] = true
	}
	out := LoadRequirement{}
	for p := range periods {
		out.Periods = append(out.Periods, p)
	}
	sort.Ints(out.Periods)
	if len(r.Stages) > 0 || len(o.Stages) > 0 {
		out.Stages = make(map[int]StageSet, len(r.Stages)+len(o.Stages))
		for p, s := range r.Stages {
			out.Stages[p] = s
		}
		for p, s := range o.Stages {
			if cur, ok := out.Stages[p]; ok {
				out.Stages[p] = cur.Union(s)
			} else {
				out.Stages[p] = s
			}
		}
	}
	return out
}

// Equal reports whether two requirements describe the same load shape.
func (r LoadRequirement) Equal(o LoadRequirement) bool {
	if len(r.Periods) != len(o.Periods) || len(r.Stages) != len(o.Stages) {
		return false
	}
	for i := range r.Periods {
		if r.Periods[i] != o.Periods[i] {
			return false
		}
	}
	for p, s := range r.Stages {
		os, ok := o.Stages[p]
		if !ok || !s.Equal(os) {
			return false
		}
	}
	return true
}

// RunContext is the slice of the batch-run context the cache layer consumes.
// Implementations typically wrap the pipeline's runner object.
type RunContext interface {
	// ReferenceBundlePath resolves the on-disk bundle location of the
	// reference model implied by x. Absence (ok=false) is a valid,
	// non-error outcome: the context simply has no configured reference
	// parameter set.
	ReferenceBundlePath(x ParameterVector) (string, bool)
	// ReferenceParams returns the explicit reference-parameter record, if
	// the context carries one.
	ReferenceParams() (ParameterVector, bool)
	// BaselineMethod names the competing baseline method whose own loaded
	// model doubles as the reference model, e.g. "VFI_HD_GRID".
	BaselineMethod() string
}

// Loader materializes a solved model from persisted storage, honoring
// selective period/stage loading. Loading blocks for the duration of the
// disk I/O and deserialization.
type Loader interface {
	LoadModel(ctx context.Context, x ParameterVector, req LoadRequirement) (*SolvedModel, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, x ParameterVector, req LoadRequirement) (*SolvedModel, error)

func (f LoaderFunc) LoadModel(ctx context.Context, x ParameterVector, req LoadRequirement) (*SolvedModel, error) {
	return f(ctx, x, req)
}
