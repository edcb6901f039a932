package require

import (
	"os"
	"path/filepath"
	"testing"

	"modelcache/pkg/types"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadFile_YAML(t *testing.T) {
	p := writeTemp(t, "catalog.yaml", `
euler_error:
  periods: [0, 1]
  stages:
    0: {names: [OWNC]}
    1: {all: true}
dev_c_L2:
  periods: [0]
  stages:
    0: {names: [OWNC]}
`)
	cat, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := types.Requirement([]int{0, 1}, map[int]types.StageSet{
		0: types.Stages("OWNC"),
		1: types.AllStages(),
	})
	if !cat.Superset().Equal(want) {
		t.Fatalf("superset = %+v, want %+v", cat.Superset(), want)
	}
	r, err := cat.For("dev_c_L2")
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if len(r.Periods) != 1 || r.Periods[0] != 0 {
		t.Fatalf("dev_c_L2 periods = %v", r.Periods)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	p := writeTemp(t, "catalog.json", `{
  "dev_c_L2": {"periods": [0], "stages": {"0": {"names": ["OWNC"]}}}
}`)
	cat, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := cat.Metrics(); len(got) != 1 || got[0] != "dev_c_L2" {
		t.Fatalf("metrics = %v", got)
	}
}

func TestLoadFile_InvariantViolation(t *testing.T) {
	p := writeTemp(t, "catalog.yaml", `
bad_metric:
  periods: [0]
  stages:
    3: {names: [OWNC]}
`)
	if _, err := LoadFile(p); err == nil {
		t.Fatalf("expected invariant violation")
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	p := writeTemp(t, "catalog.ini", "whatever")
	if _, err := LoadFile(p); err == nil {
		t.Fatalf("expected unsupported-extension error")
	}
}
