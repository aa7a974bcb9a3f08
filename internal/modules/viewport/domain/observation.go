package domain

// Observation describes one page's intersection with the viewport at a
// single instant. Observations are ephemeral: they are consumed by the
// tracker as they arrive and never stored.
type Observation struct {
	PageIndex    int
	Ratio        float64
	Intersecting bool
}

// Elect picks the most visible page from a batch of observations: the
// intersecting observation with the greatest ratio, ties broken by the
// smallest page index. The second return is false when nothing intersects.
func Elect(observations []Observation) (int, bool) {
	best := -1
	bestRatio := -1.0
	for _, o := range observations {
		if !o.Intersecting {
			continue
		}
		if o.Ratio > bestRatio || (o.Ratio == bestRatio && (best == -1 || o.PageIndex < best)) {
			best = o.PageIndex
			bestRatio = o.Ratio
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
