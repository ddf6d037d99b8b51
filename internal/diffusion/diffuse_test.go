package diffusion

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const floatTol = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTol
}

func seeds(genes ...string) map[string]bool {
	m := make(map[string]bool, len(genes))
	for _, g := range genes {
		m[g] = true
	}
	return m
}

// buildTriangle creates A—B, B—C, A—C with unit weights.
func buildTriangle() *Graph {
	return BuildGraph([]Edge{
		{Source: "A", Target: "B", Weight: 1.0},
		{Source: "B", Target: "C", Weight: 1.0},
		{Source: "A", Target: "C", Weight: 1.0},
	})
}

func TestDiffuse_EmptyGraph(t *testing.T) {
	t.Parallel()
	got := Diffuse(BuildGraph(nil), seeds("A"), DefaultOptions())
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestDiffuse_NoSeedOverlap(t *testing.T) {
	t.Parallel()
	g := BuildGraph([]Edge{{Source: "A", Target: "B", Weight: 1.0}})
	got := Diffuse(g, seeds("ZZZ"), DefaultOptions())
	if len(got) != 0 {
		t.Errorf("expected empty result for disjoint seeds, got %v", got)
	}
}

func TestDiffuse_TwoNodeSeedRetainsRestartMass(t *testing.T) {
	t.Parallel()
	// A—B with weight 1.0 and seed on A only converges to the fixed point
	// r_A = 1/(1+γ), r_B = γ/(1+γ): the seed keeps the (1−γ) restart mass,
	// so after min-max A maps to 1.0 and B to 0.0 — never NaN.
	g := BuildGraph([]Edge{{Source: "A", Target: "B", Weight: 1.0}})
	got := Diffuse(g, seeds("A"), Options{Gamma: 0.60, MaxIterations: 1000, Tolerance: 1e-12})
	if len(got) != 2 {
		t.Fatalf("result = %v, want 2 nodes", got)
	}
	if !approxEqual(got["A"], 1.0) || !approxEqual(got["B"], 0.0) {
		t.Errorf("result = %v, want A=1.0 B=0.0", got)
	}
	for gene, v := range got {
		if math.IsNaN(v) {
			t.Errorf("score[%s] is NaN", gene)
		}
	}
}

func TestDiffuse_AllSeedsUniformCollapsesToZero(t *testing.T) {
	t.Parallel()
	// Seeding every node of a symmetric graph uniformly makes the iterate
	// constant; the degenerate min-max maps a constant vector to all zeros
	// rather than NaN or a spurious uniform nonzero value.
	g := BuildGraph([]Edge{{Source: "A", Target: "B", Weight: 1.0}})
	got := Diffuse(g, seeds("A", "B"), Options{Gamma: 0.60, MaxIterations: 1000, Tolerance: 1e-12})
	if got["A"] != 0.0 || got["B"] != 0.0 {
		t.Errorf("result = %v, want all zeros after degenerate min-max", got)
	}
}

func TestDiffuse_SeedNeighborhoodRanksHigher(t *testing.T) {
	t.Parallel()
	// Chain A—B—C—D seeded at A: relevance must decay with distance from
	// the seed, so A > B > C > D before scaling and A maps to 1.0 after.
	g := BuildGraph([]Edge{
		{Source: "A", Target: "B", Weight: 1.0},
		{Source: "B", Target: "C", Weight: 1.0},
		{Source: "C", Target: "D", Weight: 1.0},
	})
	got := Diffuse(g, seeds("A"), DefaultOptions())

	if !approxEqual(got["A"], 1.0) {
		t.Errorf("score[A] = %v, want 1.0 (max after min-max)", got["A"])
	}
	if !(got["A"] > got["B"] && got["B"] > got["C"] && got["C"] > got["D"]) {
		t.Errorf("expected decay A>B>C>D, got %v", got)
	}
	if !approxEqual(got["D"], 0.0) {
		t.Errorf("score[D] = %v, want 0.0 (min after min-max)", got["D"])
	}
}

func TestDiffuse_SymmetricSeedsSymmetricScores(t *testing.T) {
	t.Parallel()
	// In a triangle, B and C are interchangeable when seeded at A.
	got := Diffuse(buildTriangle(), seeds("A"), DefaultOptions())
	if !approxEqual(got["B"], got["C"]) {
		t.Errorf("expected score[B] == score[C], got %v vs %v", got["B"], got["C"])
	}
	if got["A"] <= got["B"] {
		t.Errorf("expected seed A to rank highest, got %v", got)
	}
}

func TestDiffuse_DanglingMassLeaks(t *testing.T) {
	t.Parallel()
	// Every node in an undirected graph built from edges has outgoing
	// transitions, so leakage only occurs for isolated constructions; the
	// iteration must still behave when a node's mass round-trips. Verify the
	// iterate stays finite and bounded under a long run.
	g := buildTriangle()
	got := Diffuse(g, seeds("A", "B", "C"), Options{Gamma: 0.85, MaxIterations: 500, Tolerance: 0})
	for gene, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			t.Errorf("score[%s] = %v, outside [0,1]", gene, v)
		}
	}
}

func TestDiffuse_IterationCapAcceptedSilently(t *testing.T) {
	t.Parallel()
	g := buildTriangle()
	// One iteration with an unreachable tolerance: result is the first
	// iterate, accepted without error.
	got := Diffuse(g, seeds("A"), Options{Gamma: 0.60, MaxIterations: 1, Tolerance: 0})
	if len(got) != 3 {
		t.Fatalf("result = %v, want 3 nodes", got)
	}
}

func TestBuildGraph_AccumulatesParallelEdges(t *testing.T) {
	t.Parallel()
	g := BuildGraph([]Edge{
		{Source: "A", Target: "B", Weight: 0.3},
		{Source: "A", Target: "B", Weight: 0.2},
	})
	if g.Len() != 2 {
		t.Fatalf("Len = %d, want 2", g.Len())
	}
	// A's transitions: two arcs to B whose probabilities sum to 1.
	var sum float64
	for _, a := range g.arcs[g.index["A"]] {
		if g.nodes[a.to] != "B" {
			t.Errorf("unexpected arc target %s", g.nodes[a.to])
		}
		sum += a.prob
	}
	if !approxEqual(sum, 1.0) {
		t.Errorf("A's outgoing probabilities sum to %v, want 1.0", sum)
	}
}

func TestLoadEdges(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "net.tsv")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("alias resolution and clamping", func(t *testing.T) {
		t.Parallel()
		path := write(t, "protein1\tprotein2\tcombined_score\n"+
			"tp53\tmdm2\t0.95\n"+
			"tp53\tbrca1\t2.5\n"+ // clamped to 1.0
			"tp53\tatm\t0\n"+ // non-positive, dropped
			"tp53\tatm\t-1\n") // non-positive, dropped
		edges, err := LoadEdges(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(edges) != 2 {
			t.Fatalf("edges = %v, want 2", edges)
		}
		if edges[0].Source != "TP53" || edges[0].Target != "MDM2" {
			t.Errorf("edge[0] = %v, want uppercased TP53-MDM2", edges[0])
		}
		if edges[1].Weight != 1.0 {
			t.Errorf("edge[1].Weight = %v, want clamped 1.0", edges[1].Weight)
		}
	})

	t.Run("missing weight column defaults to 1.0", func(t *testing.T) {
		t.Parallel()
		path := write(t, "source\ttarget\nA\tB\n")
		edges, err := LoadEdges(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(edges) != 1 || edges[0].Weight != 1.0 {
			t.Errorf("edges = %v, want single edge with weight 1.0", edges)
		}
	})

	t.Run("unresolvable endpoint columns yield no edges", func(t *testing.T) {
		t.Parallel()
		path := write(t, "foo\tbar\nA\tB\n")
		edges, err := LoadEdges(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(edges) != 0 {
			t.Errorf("edges = %v, want none", edges)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		path := write(t, "")
		edges, err := LoadEdges(path)
		if err != nil {
			t.Fatal(err)
		}
		if len(edges) != 0 {
			t.Errorf("edges = %v, want none", edges)
		}
	})
}
