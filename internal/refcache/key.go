package refcache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"modelcache/pkg/types"
)

// SupersetSuffix marks keys for superset-shaped loads (periods 0 and 1, all
// stages any metric needs). Every reference load currently uses this shape,
// so every key carries it.
const SupersetSuffix = "_superset_p0-1"

const (
	refMarker      = "ref_"
	fallbackMarker = "ref_fallback_"
)

// DeriveReferenceKey produces the cache key identifying "the reference model
// these parameters would produce", independent of which metric or method is
// asking. Priority: the reference bundle path when the context can resolve
// one; else a content hash of the context's reference-parameter record; else
// a content hash of the raw vector under a distinct marker.
//
// The raw-vector fallback aliases two logical reference configurations that
// share parameter values but differ in unrecorded context; contexts that can
// resolve a bundle path or carry reference params are never affected.
func DeriveReferenceKey(rc types.RunContext, x types.ParameterVector) string {
	if path, ok := rc.ReferenceBundlePath(x); ok {
		return path + SupersetSuffix
	}
	if ref, ok := rc.ReferenceParams(); ok {
		return refMarker + hashVector(ref) + SupersetSuffix
	}
	return fallbackMarker + hashVector(x) + SupersetSuffix
}

// ModelKey scopes a model identity to the periods that were loaded.
// nil periods means the full model.
func ModelKey(modelID string, periods []int) string {
	if periods == nil {
		return modelID + "_full"
	}
	p := append([]int(nil), periods...)
	sort.Ints(p)
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return modelID + "_p" + strings.Join(parts, "-")
}

// SupersetKey is the key under which a full or periods-{0,1} model is
// findable by reference lookups: the same form DeriveReferenceKey produces
// when the model identity is a bundle path.
func SupersetKey(modelID string) string {
	return modelID + SupersetSuffix
}

// hashVector content-addresses a parameter vector: stable across process
// runs, 16 hex chars.
func hashVector(x types.ParameterVector) string {
	buf := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:8])
}
