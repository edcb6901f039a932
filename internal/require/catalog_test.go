package require

import (
	"testing"

	"modelcache/pkg/types"
)

func TestFor_KnownMetricMatchesSingleCombined(t *testing.T) {
	cat := Default()
	for _, name := range cat.Metrics() {
		r, err := cat.For(name)
		if err != nil {
			t.Fatalf("For(%q): %v", name, err)
		}
		combined := cat.Combined([]string{name})
		if !r.Equal(combined) {
			t.Fatalf("Combined([%q]) = %+v, want %+v", name, combined, r)
		}
	}
}

func TestFor_UnknownMetric(t *testing.T) {
	cat := Default()
	_, err := cat.For("no_such_metric")
	if err == nil {
		t.Fatalf("expected error for unknown metric")
	}
	if !IsUnknownMetric(err) {
		t.Fatalf("IsUnknownMetric(%v) = false", err)
	}
}

func TestCombined_AllKnownEqualsSuperset(t *testing.T) {
	cat := Default()
	combined := cat.Combined(cat.Metrics())
	if !combined.Equal(cat.Superset()) {
		t.Fatalf("Combined(all) = %+v, want superset %+v", combined, cat.Superset())
	}
}

func TestCombined_EmptyInput(t *testing.T) {
	cat := Default()
	r := cat.Combined(nil)
	if !r.Empty() {
		t.Fatalf("Combined(nil) = %+v, want empty", r)
	}
}

func TestCombined_UnknownNamesContributeNothing(t *testing.T) {
	cat := Default()
	want := cat.Combined([]string{"dev_c_L2"})
	got := cat.Combined([]string{"dev_c_L2", "metric_from_the_future"})
	if !got.Equal(want) {
		t.Fatalf("unknown name changed the union: %+v vs %+v", got, want)
	}
}

func TestSuperset_TwoMetricScenario(t *testing.T) {
	cat := New(map[string]types.LoadRequirement{
		"euler_error": types.Requirement([]int{0, 1}, map[int]types.StageSet{
			0: types.Stages("OWNC"),
			1: types.AllStages(),
		}),
		"dev_c_L2": types.Requirement([]int{0}, map[int]types.StageSet{
			0: types.Stages("OWNC"),
		}),
	})
	want := types.Requirement([]int{0, 1}, map[int]types.StageSet{
		0: types.Stages("OWNC"),
		1: types.AllStages(),
	})
	if !cat.Superset().Equal(want) {
		t.Fatalf("superset = %+v, want %+v", cat.Superset(), want)
	}
}

func TestSuperset_AllAbsorbsFiniteSets(t *testing.T) {
	cat := Default()
	ss := cat.Superset()
	s, ok := ss.Stages[1]
	if !ok || !s.All {
		t.Fatalf("superset period 1 = %+v, want all stages", s)
	}
	s0 := ss.Stages[0]
	if s0.All {
		t.Fatalf("superset period 0 unexpectedly all stages")
	}
	want := types.Stages("OWNC", "OWNH", "TENU", "RNTH", "RNTC")
	if !s0.Equal(want) {
		t.Fatalf("superset period 0 stages = %v, want %v", s0.Names, want.Names)
	}
}

func TestIsComparison(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"dev_c_L2", true},
		{"plot_policy", true},
		{"euler_error", false},
		{"runtime", false},
		{"dev", false},
	}
	for _, c := range cases {
		if got := IsComparison(c.name); got != c.want {
			t.Fatalf("IsComparison(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestRequirement_ValidateInvariant(t *testing.T) {
	bad := types.LoadRequirement{
		Periods: []int{0},
		Stages:  map[int]types.StageSet{2: types.Stages("OWNC")},
	}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected invariant violation for stage period not in periods")
	}
	good := types.Requirement([]int{0, 2}, map[int]types.StageSet{2: types.Stages("OWNC")})
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
