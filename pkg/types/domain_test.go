package types

import "testing"

func TestStageSet_UnionAbsorbs(t *testing.T) {
	finite := Stages("OWNC", "OWNH")
	if got := finite.Union(AllStages()); !got.All {
		t.Fatalf("union with all = %+v, want all", got)
	}
	if got := AllStages().Union(finite); !got.All {
		t.Fatalf("all union finite = %+v, want all", got)
	}
	got := finite.Union(Stages("TENU", "OWNC"))
	want := Stages("OWNC", "OWNH", "TENU")
	if !got.Equal(want) {
		t.Fatalf("union = %v, want %v", got.Names, want.Names)
	}
}

func TestStages_SortedDeduplicated(t *testing.T) {
	got := Stages("RNTC", "OWNC", "RNTC")
	want := Stages("OWNC", "RNTC")
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.Names, want.Names)
	}
}

func TestLoadRequirement_Merge(t *testing.T) {
	a := Requirement([]int{0}, map[int]StageSet{0: Stages("OWNC")})
	b := Requirement([]int{0, 1}, map[int]StageSet{0: Stages("OWNH"), 1: AllStages()})
	got := a.Merge(b)
	want := Requirement([]int{0, 1}, map[int]StageSet{0: Stages("OWNC", "OWNH"), 1: AllStages()})
	if !got.Equal(want) {
		t.Fatalf("merge = %+v, want %+v", got, want)
	}
	// Merge with the empty requirement is identity.
	if !a.Merge(LoadRequirement{}).Equal(a) {
		t.Fatalf("merge with empty changed requirement")
	}
	if !a.Equal(LoadRequirement{}.Merge(a)) {
		t.Fatalf("empty merge not symmetric")
	}
}

func TestSolvedModel_Bundle(t *testing.T) {
	m := &SolvedModel{BundlePath: "/runs/b"}
	if p, ok := m.Bundle(); !ok || p != "/runs/b" {
		t.Fatalf("Bundle = %q, %v", p, ok)
	}
	if _, ok := (&SolvedModel{}).Bundle(); ok {
		t.Fatalf("empty bundle path reported as present")
	}
	var nilModel *SolvedModel
	if _, ok := nilModel.Bundle(); ok {
		t.Fatalf("nil model reported a bundle")
	}
}
