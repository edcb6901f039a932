package require

import (
	"fmt"

	"modelcache/internal/config"
	"modelcache/pkg/types"
)

// fileEntry is the on-disk form of one catalog entry.
type fileEntry struct {
	Periods []int               `json:"periods" yaml:"periods" toml:"periods"`
	Stages  map[int]stagesEntry `json:"stages,omitempty" yaml:"stages,omitempty" toml:"stages,omitempty"`
}

type stagesEntry struct {
	All   bool     `json:"all,omitempty" yaml:"all,omitempty" toml:"all,omitempty"`
	Names []string `json:"names,omitempty" yaml:"names,omitempty" toml:"names,omitempty"`
}

// LoadFile reads a metric requirement catalog from a yaml/json/toml file
// keyed by metric name. Each entry must satisfy the requirement invariant
// (stage periods listed in periods).
func LoadFile(path string) (*Catalog, error) {
	var raw map[string]fileEntry
	if err := config.Decode(path, &raw); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	reqs := make(map[string]types.LoadRequirement, len(raw))
	for name, e := range raw {
		var stages map[int]types.StageSet
		if len(e.Stages) > 0 {
			stages = make(map[int]types.StageSet, len(e.Stages))
			for p, s := range e.Stages {
				if s.All {
					stages[p] = types.AllStages()
				} else {
					stages[p] = types.Stages(s.Names...)
				}
			}
		}
		r := types.Requirement(e.Periods, stages)
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %q: %w", name, err)
		}
		reqs[name] = r
	}
	return New(reqs), nil
}
