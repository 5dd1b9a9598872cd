package domain

// RunInfo describes one simulation run. Stored as metadata next to the event log.
type RunInfo struct {
	RunID          string `json:"run_id"`
	Seed           uint64 `json:"seed,string"`
	Households     int    `json:"households"`
	Houses         int    `json:"houses"`
	QualityBands   int    `json:"quality_bands"`
	StartedAtUnixM int64  `json:"started_at_unix,string"` // microseconds
}
