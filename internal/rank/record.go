// Package rank normalizes per-gene evidence channels, fuses them into a
// single display score, and assigns confidence tiers. All channel math is
// deterministic; the tie-breaking jitter draws from an injectable seeded
// source so identical inputs always produce identical rankings.
package rank

import "sort"

// Evidence channel names. Weight overrides are keyed by these.
const (
	ChannelFunc  = "FUNC"
	ChannelNet   = "NET"
	ChannelPath  = "PATH"
	ChannelNovel = "NOVEL"
	ChannelHPO   = "HPO"
)

// Record is the row-level aggregate for one gene. Raw channel values are
// populated by the evidence loaders and the diffusion pass; FinalRaw, Score,
// flags, tier, and rank are computed here.
type Record struct {
	Gene string

	// Raw evidence channels, pre-normalization.
	Func  float64
	Net   float64
	Path  float64
	Novel float64
	HPO   float64

	// Functional probability used for flagging and tie-breaking.
	YProbMax float64

	// Optional per-gene thresholds carried by the base table.
	P95Thr       float64
	BestF1Thr    float64
	HasP95Thr    bool
	HasBestF1Thr bool

	// Flags and tier; Has* records whether the caller supplied them.
	P95Flag       int
	BestF1Flag    int
	HasP95Flag    bool
	HasBestF1Flag bool
	Tier          string
	HasTier       bool

	ClinvarPLP int

	// Fusion outputs.
	FinalRaw float64
	Score    float64
	Rank     int
	Disease  string
}

// Sort orders records for the final report: display score descending, then
// raw functional probability descending. The sort is stable, so remaining
// ties keep the original collection order. Rank is assigned as the
// post-sort position.
func Sort(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].YProbMax > records[j].YProbMax
	})
	for i, r := range records {
		r.Rank = i
	}
}
