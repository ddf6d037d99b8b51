package rank

// Tier labels assigned from threshold flags. T1 (p95) strictly outranks
// T2 (bestF1): a gene meeting both criteria is always T1.
const (
	TierOne = "T1"
	TierTwo = "T2"
)

// Thresholds carries optional global scalar thresholds for the functional
// probability channel, typically parsed from a threshold document.
type Thresholds struct {
	P95       float64
	BestF1    float64
	HasP95    bool
	HasBestF1 bool
}

// ApplyFlagsAndTiers populates missing p95/bestF1 flags and the tier for
// each record. A flag becomes 1 iff the functional probability is at or
// above the threshold, preferring a per-gene threshold column over the
// global scalar. Caller-supplied flags and tiers are never overwritten;
// with no threshold source at all, a flag stays absent (zero).
func ApplyFlagsAndTiers(records []*Record, thr Thresholds) {
	for _, r := range records {
		if !r.HasP95Flag {
			switch {
			case r.HasP95Thr:
				r.P95Flag = flagAt(r.YProbMax, r.P95Thr)
				r.HasP95Flag = true
			case thr.HasP95:
				r.P95Flag = flagAt(r.YProbMax, thr.P95)
				r.HasP95Flag = true
			}
		}
		if !r.HasBestF1Flag {
			switch {
			case r.HasBestF1Thr:
				r.BestF1Flag = flagAt(r.YProbMax, r.BestF1Thr)
				r.HasBestF1Flag = true
			case thr.HasBestF1:
				r.BestF1Flag = flagAt(r.YProbMax, thr.BestF1)
				r.HasBestF1Flag = true
			}
		}
		if !r.HasTier {
			switch {
			case r.P95Flag == 1:
				r.Tier = TierOne
			case r.BestF1Flag == 1:
				r.Tier = TierTwo
			default:
				r.Tier = ""
			}
		}
	}
}

func flagAt(prob, threshold float64) int {
	if prob >= threshold {
		return 1
	}
	return 0
}
