package rank

import "math/rand"

// JitterSeed is the fixed seed for the tie-breaking jitter source. The
// jitter exists solely to break exact score ties deterministically; with
// identical inputs every run draws the same sequence.
const JitterSeed = 42

// DefaultWeights returns the default channel weight set. The weights need
// not sum to 1.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		ChannelFunc:  0.35,
		ChannelNet:   0.28,
		ChannelPath:  0.18,
		ChannelNovel: 0.12,
		ChannelHPO:   0.07,
	}
}

// MergeWeights overlays caller-supplied overrides onto the defaults,
// matching by uppercase channel name. Unspecified channels keep their
// default weight; unknown names are carried through harmlessly.
func MergeWeights(overrides map[string]float64) map[string]float64 {
	merged := DefaultWeights()
	for name, w := range overrides {
		merged[upper(name)] = w
	}
	return merged
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// FuseOptions configures channel fusion and display-score scaling.
type FuseOptions struct {
	Weights     map[string]float64
	WinsorQ     float64 // upper-tail winsorization quantile for FUNC
	ScoreLo     float64 // display range lower bound
	ScoreHi     float64 // display range upper bound
	JitterSigma float64 // stddev of the Gaussian tie-breaking jitter
	Jitter      *rand.Rand
}

// DefaultFuseOptions returns production defaults: default channel weights,
// winsorization at the 0.99 quantile, display range [0.10, 0.99], and
// jitter sigma 1e-6 from the fixed seed.
func DefaultFuseOptions() FuseOptions {
	return FuseOptions{
		Weights:     DefaultWeights(),
		WinsorQ:     0.99,
		ScoreLo:     0.10,
		ScoreHi:     0.99,
		JitterSigma: 1e-6,
	}
}

// Fuse computes each record's FinalRaw as the weighted sum of normalized
// channels, then derives the display score: min-max over FinalRaw, Gaussian
// jitter, clip to [0, 1], affine rescale to [ScoreLo, ScoreHi]. FUNC alone
// is winsorized before min-max. A nil Jitter with a positive sigma falls
// back to the fixed-seed source; tests may inject a zero-sigma option for
// fully jitter-free scores.
func Fuse(records []*Record, opts FuseOptions) {
	if len(records) == 0 {
		return
	}
	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights()
	}

	raw := func(get func(*Record) float64) []float64 {
		xs := make([]float64, len(records))
		for i, r := range records {
			xs[i] = get(r)
		}
		return xs
	}

	funcN := MinMax(WinsorizeTop(raw(func(r *Record) float64 { return r.Func }), opts.WinsorQ))
	netN := MinMax(raw(func(r *Record) float64 { return r.Net }))
	pathN := MinMax(raw(func(r *Record) float64 { return r.Path }))
	novelN := MinMax(raw(func(r *Record) float64 { return r.Novel }))
	hpoN := MinMax(raw(func(r *Record) float64 { return r.HPO }))

	final := make([]float64, len(records))
	for i := range records {
		final[i] = weights[ChannelFunc]*funcN[i] +
			weights[ChannelNet]*netN[i] +
			weights[ChannelPath]*pathN[i] +
			weights[ChannelNovel]*novelN[i] +
			weights[ChannelHPO]*hpoN[i]
	}

	score01 := MinMax(final)

	rng := opts.Jitter
	if rng == nil && opts.JitterSigma > 0 {
		rng = rand.New(rand.NewSource(JitterSeed))
	}
	for i, r := range records {
		r.FinalRaw = final[i]
		s := score01[i]
		if rng != nil && opts.JitterSigma > 0 {
			s += rng.NormFloat64() * opts.JitterSigma
		}
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		r.Score = opts.ScoreLo + (opts.ScoreHi-opts.ScoreLo)*s
	}
}
