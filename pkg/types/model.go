package types

// SolvedModel is the in-memory form of one solved model bundle: a sequence
// of periods, each subdivided into named stages, each stage holding named
// perches that carry a solution payload. The cache layer treats everything
// below the structural shape as opaque.
type SolvedModel struct {
	// BundlePath is the persisted bundle this model was loaded from, when
	// known. Empty means the loader could not attribute one.
	BundlePath string
	Periods    []*Period
}

// Bundle returns the persisted bundle path and whether one is known.
func (m *SolvedModel) Bundle() (string, bool) {
	if m == nil || m.BundlePath == "" {
		return "", false
	}
	return m.BundlePath, true
}

// Period is one time step of a solved model.
type Period struct {
	Index  int
	Stages map[string]*Stage
}

// Stage is a sub-phase within a period (e.g. tenure, ownership, rental).
type Stage struct {
	Perches map[string]*Perch
}

// Perch is a named slot within a stage. Sol may be nil when the perch
// carries no solution payload.
type Perch struct {
	Sol Solution
}

// Solution exposes the mutable array slots of one perch's solution payload.
// Arrays must return a pointer into the payload so that trimming can null
// fields in place.
type Solution interface {
	Arrays() *SolutionArrays
}

// SolutionArrays holds the optionally-present large arrays of a solution.
// Nil means absent. The policy grid is the only array every comparison
// metric reads; the rest exist to be discarded after load.
type SolutionArrays struct {
	Policy     *Grid
	Value      *Grid
	QFunc      *Grid
	Multiplier *Grid
	EGM        *EGMGrid
}

// Grid is a dense multi-dimensional numeric array.
type Grid struct {
	Shape []int
	Data  []float64
}

// EGMGrid carries endogenous-grid-method auxiliary data produced by the
// solver, never needed for metric comparison.
type EGMGrid struct {
	Endogenous *Grid
	Exogenous  *Grid
}

// BasicSolution is the plain struct-backed Solution used by loaders that
// deserialize bundles directly.
type BasicSolution struct {
	SolutionArrays
}

func (s *BasicSolution) Arrays() *SolutionArrays { return &s.SolutionArrays }
