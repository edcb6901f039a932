package refcache

import (
	"encoding/json"
	"os"
)

// telemetryRecord is the sidecar form of one cache entry's usage.
type telemetryRecord struct {
	Hits   int  `json:"hits"`
	Pinned bool `json:"pinned"`
}

// saveTelemetry writes per-key access counts to the configured sidecar file.
// Best effort: diagnostics must never fail a batch.
func (c *Cache) saveTelemetry() {
	if c.telemetryFile == "" {
		return
	}
	snap := make(map[string]telemetryRecord, len(c.entries))
	for key, e := range c.entries {
		snap[key] = telemetryRecord{Hits: e.hits, Pinned: e.strong != nil}
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.telemetryFile, b, 0o644)
}

// LoadTelemetry reads a previously written telemetry sidecar, for the
// inspection CLI. Missing file yields an empty map.
func LoadTelemetry(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int{}, nil
		}
		return nil, err
	}
	defer f.Close()
	var data map[string]telemetryRecord
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(data))
	for key, rec := range data {
		out[key] = rec.Hits
	}
	return out, nil
}
