package migration

// RunOptions control a single migration run
type RunOptions struct {
	// DryRun stages records and finalizes them as skipped without calling
	// the destination API.
	DryRun bool
	// Mode selects strict or lenient reference resolution. Strict is the
	// default for coupon and discount-rule migration.
	Mode ResolutionMode
}

// Summary aggregates per-entity outcomes of one migration run
type Summary struct {
	EntityType EntityType `json:"entity_type"`
	Imported   int        `json:"imported"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
}

// Total returns the number of entities processed
func (s Summary) Total() int {
	return s.Imported + s.Failed + s.Skipped
}

// Record tallies one finalized record into the summary
func (s *Summary) Record(status Status) {
	switch status {
	case StatusSuccess:
		s.Imported++
	case StatusFailed:
		s.Failed++
	case StatusSkipped:
		s.Skipped++
	}
}
