package refcache

import (
	"fmt"

	"modelcache/pkg/types"
)

// TrimReport records what a trim pass cleared and which perches it could not
// walk. Trimming is best-effort: a partially trimmed model is still usable,
// just heavier.
type TrimReport struct {
	// Trimmed counts perches whose arrays were cleared.
	Trimmed int
	// Failures lists "period/stage/perch: reason" for perches whose
	// solution payload misbehaved.
	Failures []string
}

// Failed reports whether any perch could not be trimmed.
func (r TrimReport) Failed() bool { return len(r.Failures) > 0 }

// Trim discards the large solution arrays no comparison metric reads: the
// value function, Q-function and multiplier arrays, plus any endogenous-grid
// auxiliary data. The policy array is kept. Runs exactly once, immediately
// after a fresh load, never on a cache hit.
func Trim(m *types.SolvedModel) TrimReport {
	var rep TrimReport
	if m == nil {
		return rep
	}
	for _, period := range m.Periods {
		if period == nil {
			continue
		}
		for stageName, stage := range period.Stages {
			if stage == nil {
				continue
			}
			for perchName, perch := range stage.Perches {
				if perch == nil || perch.Sol == nil {
					continue
				}
				if err := trimPerch(perch); err != nil {
					rep.Failures = append(rep.Failures,
						fmt.Sprintf("%d/%s/%s: %v", period.Index, stageName, perchName, err))
					continue
				}
				rep.Trimmed++
			}
		}
	}
	return rep
}

// trimPerch clears one perch's disposable arrays. A panicking solution
// payload is contained here so the rest of the model still gets trimmed.
func trimPerch(perch *types.Perch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("solution payload: %v", r)
		}
	}()
	arrays := perch.Sol.Arrays()
	if arrays == nil {
		return nil
	}
	// Keep policy: the only array every comparison metric reads.
	arrays.Value = nil
	arrays.QFunc = nil
	arrays.Multiplier = nil
	arrays.EGM = nil
	return nil
}
