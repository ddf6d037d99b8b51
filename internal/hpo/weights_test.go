package hpo

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeGenesTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genes_to_phenotype.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func terms(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestGeneWeights_UniformHitsAllOne(t *testing.T) {
	t.Parallel()
	path := writeGenesTable(t,
		"1\tFBN1\tHP:0001166\n"+
			"2\tTGFBR2\tHP:0001166\n")

	w, err := GeneWeights(path, terms("HP:0001166"))
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 2 {
		t.Fatalf("weights = %v, want 2 genes", w)
	}
	for gene, v := range w {
		if v != 1.0 {
			t.Errorf("weight[%s] = %v, want 1.0", gene, v)
		}
	}
}

func TestGeneWeights_MinHitFlooredToPointTwo(t *testing.T) {
	t.Parallel()
	// FBN1 has 3 hits, TGFBR2 has 1: TGFBR2 min-maxes to 0 and must be
	// floored to 0.2.
	path := writeGenesTable(t,
		"1\tFBN1\tHP:0001166\n"+
			"1\tFBN1\tHP:0001519\n"+
			"1\tFBN1\tHP:0000545\n"+
			"2\tTGFBR2\tHP:0001166\n")

	w, err := GeneWeights(path, terms("HP:0001166", "HP:0001519", "HP:0000545"))
	if err != nil {
		t.Fatal(err)
	}
	if w["FBN1"] != 1.0 {
		t.Errorf("weight[FBN1] = %v, want 1.0", w["FBN1"])
	}
	if w["TGFBR2"] != 0.2 {
		t.Errorf("weight[TGFBR2] = %v, want floor 0.2", w["TGFBR2"])
	}
}

func TestGeneWeights_IntermediateLinearScale(t *testing.T) {
	t.Parallel()
	// Hits 1, 2, 3 -> weights 0.2 (floored), 0.5, 1.0.
	path := writeGenesTable(t,
		"1\tA\tHP:0000001\n"+
			"2\tB\tHP:0000001\n"+
			"2\tB\tHP:0000002\n"+
			"3\tC\tHP:0000001\n"+
			"3\tC\tHP:0000002\n"+
			"3\tC\tHP:0000003\n")

	w, err := GeneWeights(path, terms("HP:0000001", "HP:0000002", "HP:0000003"))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w["B"]-0.5) > 1e-9 {
		t.Errorf("weight[B] = %v, want 0.5", w["B"])
	}
	if w["A"] != 0.2 || w["C"] != 1.0 {
		t.Errorf("weights = %v, want A=0.2 C=1.0", w)
	}
}

func TestGeneWeights_EmptyMatchYieldsEmptyMap(t *testing.T) {
	t.Parallel()
	path := writeGenesTable(t, "1\tFBN1\tHP:0001166\n")

	w, err := GeneWeights(path, terms("HP:9999999"))
	if err != nil {
		t.Fatal(err)
	}
	if w == nil {
		t.Fatal("weights map is nil, want empty non-nil map")
	}
	if len(w) != 0 {
		t.Errorf("weights = %v, want empty", w)
	}
}

func TestGeneWeights_HeaderByName(t *testing.T) {
	t.Parallel()
	path := writeGenesTable(t,
		"ncbi_gene_id\tgene_symbol\thpo_id\thpo_name\n"+
			"1\tfbn1\tHP:0001166\tArachnodactyly\n")

	w, err := GeneWeights(path, terms("HP:0001166"))
	if err != nil {
		t.Fatal(err)
	}
	if w["FBN1"] != 1.0 {
		t.Errorf("weights = %v, want FBN1 uppercased with weight 1.0", w)
	}
}

func TestGeneWeights_HeaderPositionalFallback(t *testing.T) {
	t.Parallel()
	// Header mentions "gene" but no column name resolves the term id by
	// name; the term column falls back to position 2.
	path := writeGenesTable(t,
		"id\tgene\tterm\n"+
			"1\tFBN1\tHP:0001166\n")

	w, err := GeneWeights(path, terms("HP:0001166"))
	if err != nil {
		t.Fatal(err)
	}
	if w["FBN1"] != 1.0 {
		t.Errorf("weights = %v, want FBN1=1.0 via positional fallback", w)
	}
}

func TestSeedGenes_PositiveWeightsOnly(t *testing.T) {
	t.Parallel()
	seeds := SeedGenes(map[string]float64{"A": 1.0, "B": 0.2, "C": 0.0})
	if !seeds["A"] || !seeds["B"] || seeds["C"] {
		t.Errorf("seeds = %v, want A and B only", seeds)
	}
}
