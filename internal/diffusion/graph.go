// Package diffusion scores genes by diffusing a seed-gene signal across a
// weighted gene-gene interaction network with personalized PageRank. An
// absent network, an edgeless network, or a seed set disjoint from the graph
// is a documented no-signal case that yields an empty result, not an error.
package diffusion

import (
	"strings"

	"github.com/rivetbio/rivet/internal/tsv"
)

// Edge is one validated input row: an undirected interaction between two
// genes with a confidence weight in (0, 1].
type Edge struct {
	Source string
	Target string
	Weight float64
}

// arc is one outgoing transition with its row-normalized probability.
type arc struct {
	to   int
	prob float64
}

// Graph is a sparse adjacency-list representation over gene symbols. Each
// input edge contributes transitions in both directions; parallel edges
// accumulate. The per-source transition probabilities are normalized once at
// construction. Nodes whose accumulated out-weight is zero keep no outgoing
// arcs and sink probability mass during iteration.
type Graph struct {
	nodes []string
	index map[string]int
	arcs  [][]arc
}

// Edge-table column fields. Names are matched case-insensitively; the weight
// column is optional and defaults to 1.0.
var (
	sourceField = tsv.Field{
		Name:     "source gene",
		Aliases:  []string{"geneA", "source", "a", "node1", "protein1"},
		Fallback: -1,
	}
	targetField = tsv.Field{
		Name:     "target gene",
		Aliases:  []string{"geneB", "target", "b", "node2", "protein2"},
		Fallback: -1,
	}
	weightField = tsv.Field{
		Name:     "edge weight",
		Aliases:  []string{"weight", "w", "score", "combined_score", "s"},
		Fallback: -1,
	}
)

// LoadEdges reads a tab-separated edge table (header required) into
// validated edges. Weights are coerced to [0, 1]; rows with a non-positive
// weight or a blank endpoint are dropped. When the source or target column
// cannot be resolved, the table carries no usable edges and an empty slice
// is returned.
func LoadEdges(path string) ([]Edge, error) {
	table, err := tsv.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 {
		return nil, nil
	}

	srcIdx, err := tsv.Resolve(table.Header, sourceField)
	if err != nil {
		return nil, nil
	}
	dstIdx, err := tsv.Resolve(table.Header, targetField)
	if err != nil {
		return nil, nil
	}
	wIdx, wErr := tsv.Resolve(table.Header, weightField)

	edges := make([]Edge, 0, len(table.Rows))
	for _, row := range table.Rows {
		src := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, srcIdx)))
		dst := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, dstIdx)))
		if src == "" || dst == "" {
			continue
		}
		w := 1.0
		if wErr == nil {
			w = tsv.Float01(tsv.Cell(row, wIdx))
		}
		if w <= 0 {
			continue
		}
		edges = append(edges, Edge{Source: src, Target: dst, Weight: w})
	}
	return edges, nil
}

// BuildGraph symmetrizes the edge list into a row-normalized transition
// structure. Node order is first-seen order across edge endpoints.
func BuildGraph(edges []Edge) *Graph {
	g := &Graph{index: make(map[string]int)}

	intern := func(gene string) int {
		if i, ok := g.index[gene]; ok {
			return i
		}
		i := len(g.nodes)
		g.index[gene] = i
		g.nodes = append(g.nodes, gene)
		return i
	}

	type halfEdge struct {
		from, to int
		w        float64
	}
	half := make([]halfEdge, 0, 2*len(edges))
	outWeight := make(map[int]float64)

	for _, e := range edges {
		a, b := intern(e.Source), intern(e.Target)
		half = append(half, halfEdge{a, b, e.Weight}, halfEdge{b, a, e.Weight})
		outWeight[a] += e.Weight
		outWeight[b] += e.Weight
	}

	g.arcs = make([][]arc, len(g.nodes))
	for _, h := range half {
		total := outWeight[h.from]
		if total <= 0 {
			continue
		}
		g.arcs[h.from] = append(g.arcs[h.from], arc{to: h.to, prob: h.w / total})
	}
	return g
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns node symbols in build order.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Contains reports whether the gene is a graph node.
func (g *Graph) Contains(gene string) bool {
	_, ok := g.index[gene]
	return ok
}
