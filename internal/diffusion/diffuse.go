package diffusion

import "math"

// Options configures the personalized power iteration.
type Options struct {
	Gamma         float64 // damping toward the graph walk; typically 0.60-0.85
	MaxIterations int     // upper bound on iterations
	Tolerance     float64 // L1 convergence threshold
}

// DefaultOptions returns production defaults: gamma 0.60, tolerance 1e-6,
// max 100 iterations.
func DefaultOptions() Options {
	return Options{
		Gamma:         0.60,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// Diffuse runs personalized PageRank over the graph with the given seed
// genes and returns a per-gene relevance score min-max scaled to [0, 1]
// across all graph nodes (an all-equal vector maps to all zeros).
//
// The iteration is r ← γ·Wᵗr + (1−γ)·p, where p is uniform over the seeds
// present in the graph and Wᵗr scatters each node's mass across its
// normalized outgoing transitions. Mass arriving at a node with no outgoing
// transitions is not redistributed; this leakage is accepted behavior, not
// corrected by renormalization. If the iteration cap is reached before the
// L1 change drops below tolerance, the last iterate is accepted silently.
//
// An empty graph or a seed set with no overlap with graph nodes yields an
// empty map.
func Diffuse(g *Graph, seeds map[string]bool, opts Options) map[string]float64 {
	n := g.Len()
	if n == 0 {
		return map[string]float64{}
	}

	p := make([]float64, n)
	seedCount := 0
	for gene := range seeds {
		if i, ok := g.index[gene]; ok {
			p[i] = 1.0
			seedCount++
		}
	}
	if seedCount == 0 {
		return map[string]float64{}
	}
	for i := range p {
		p[i] /= float64(seedCount)
	}

	r := make([]float64, n)
	copy(r, p)
	next := make([]float64, n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		for i := range next {
			next[i] = (1.0 - opts.Gamma) * p[i]
		}
		for i, arcs := range g.arcs {
			mass := r[i]
			if mass == 0 {
				continue
			}
			for _, a := range arcs {
				next[a.to] += opts.Gamma * mass * a.prob
			}
		}

		var delta float64
		for i := range r {
			delta += math.Abs(next[i] - r[i])
		}
		r, next = next, r
		if delta < opts.Tolerance {
			break
		}
	}

	return minMaxByNode(g, r)
}

// minMaxByNode scales the relevance vector to [0, 1] and keys it by gene
// symbol. A constant vector carries no rank information and maps to zeros.
func minMaxByNode(g *Graph, r []float64) map[string]float64 {
	lo, hi := r[0], r[0]
	for _, v := range r[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	scores := make(map[string]float64, len(r))
	for i, gene := range g.nodes {
		if hi > lo {
			scores[gene] = (r[i] - lo) / (hi - lo)
		} else {
			scores[gene] = 0.0
		}
	}
	return scores
}
