// Package require declares which periods and stages each comparison metric
// needs from a reference model, enabling the cache layer to load one
// superset-shaped model shared by every metric in a run.
package require

import (
	"sort"
	"strings"

	"modelcache/pkg/types"
)

// comparisonPrefixes mark metric names that need a reference model at all.
var comparisonPrefixes = []string{"dev_", "plot_"}

// unknownMetricError signals a metric name absent from the catalog.
// Combiners treat absence as "no requirement contributed", not a hard error.
type unknownMetricError struct{ name string }

func (e unknownMetricError) Error() string { return "unknown metric: " + e.name }

// IsUnknownMetric reports whether err indicates a metric missing from the catalog.
func IsUnknownMetric(err error) bool {
	_, ok := err.(unknownMetricError)
	return ok
}

// Catalog maps metric names to their minimal load requirements. The superset
// union over every entry is precomputed at construction.
type Catalog struct {
	reqs     map[string]types.LoadRequirement
	superset types.LoadRequirement
}

// New builds a catalog from a metric -> requirement table.
func New(reqs map[string]types.LoadRequirement) *Catalog {
	c := &Catalog{reqs: make(map[string]types.LoadRequirement, len(reqs))}
	for name, r := range reqs {
		c.reqs[name] = r
		c.superset = c.superset.Merge(r)
	}
	return c
}

// Default returns the catalog of all currently known comparison metrics.
func Default() *Catalog {
	ownc := map[int]types.StageSet{0: types.Stages("OWNC")}
	return New(map[string]types.LoadRequirement{
		// Euler error compares against next-period solutions as well.
		"euler_error": types.Requirement([]int{0, 1}, map[int]types.StageSet{
			0: types.Stages("OWNC"),
			1: types.AllStages(),
		}),
		// Deviation metrics compare period-0 consumption-stage arrays.
		"dev_c_L2":     types.Requirement([]int{0}, ownc),
		"dev_c_Linf":   types.Requirement([]int{0}, ownc),
		"dev_a_L2":     types.Requirement([]int{0}, ownc),
		"dev_a_Linf":   types.Requirement([]int{0}, ownc),
		"dev_v_L2":     types.Requirement([]int{0}, ownc),
		"dev_v_Linf":   types.Requirement([]int{0}, ownc),
		"dev_pol_L2":   types.Requirement([]int{0}, ownc),
		"dev_pol_Linf": types.Requirement([]int{0}, ownc),
		// Plot metrics.
		"plot_egm": types.Requirement([]int{0}, ownc),
		"plot_policy": types.Requirement([]int{0}, map[int]types.StageSet{
			0: types.Stages("TENU", "OWNH", "OWNC", "RNTH", "RNTC"),
		}),
		"plot_value_q":      types.Requirement([]int{0}, ownc),
		"plot_c_comparison": types.Requirement([]int{0}, ownc),
		"plot_v_comparison": types.Requirement([]int{0}, ownc),
		"plot_a_comparison": types.Requirement([]int{0}, ownc),
		"plot_h_comparison": types.Requirement([]int{0}, map[int]types.StageSet{
			0: types.Stages("OWNH"),
		}),
	})
}

// For returns the declared minimal requirement for one metric. Absence is
// reported via an IsUnknownMetric error; callers combining metric sets
// should prefer Combined, which skips unknown names.
func (c *Catalog) For(name string) (types.LoadRequirement, error) {
	r, ok := c.reqs[name]
	if !ok {
		return types.LoadRequirement{}, unknownMetricError{name: name}
	}
	return r, nil
}

// Combined unions the requirements of the named metrics. Metric sets evolve,
// so names missing from the catalog contribute nothing rather than failing.
// An empty input yields the empty requirement.
func (c *Catalog) Combined(names []string) types.LoadRequirement {
	var out types.LoadRequirement
	for _, n := range names {
		if r, ok := c.reqs[n]; ok {
			out = out.Merge(r)
		}
	}
	return out
}

// Superset is the precomputed union across every catalog entry: the single
// load shape under which all metrics can share one cached model.
func (c *Catalog) Superset() types.LoadRequirement { return c.superset }

// Metrics lists the catalog's metric names, sorted.
func (c *Catalog) Metrics() []string {
	out := make([]string, 0, len(c.reqs))
	for n := range c.reqs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsComparison reports whether a metric needs a reference model at all,
// by the dev_/plot_ naming convention.
func IsComparison(name string) bool {
	for _, p := range comparisonPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
