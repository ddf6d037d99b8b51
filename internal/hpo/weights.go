package hpo

import (
	"strings"

	"github.com/rivetbio/rivet/internal/tsv"
)

// Floor applied to gene weights that min-max scale to exactly zero. A gene
// matched by at least one phenotype term must stay distinguishable from an
// unmatched gene, which defaults to 0.0 downstream.
const minPositiveWeight = 0.2

// Headerless gene-to-phenotype layout (zero-indexed): col 1 = gene symbol,
// col 2 = phenotype term id.
const (
	fallbackGeneCol = 1
	fallbackTermCol = 2
)

// GeneWeights maps each gene annotated with at least one term in terms to a
// weight in (0, 1]. Hit counts per gene are min-max scaled across the
// matched set: an all-equal distribution yields 1.0 everywhere, and weights
// that scale to exactly zero are floored to 0.2. Genes with no matching
// rows are absent from the result; an empty match yields an empty, non-nil
// map.
func GeneWeights(genesPath string, terms map[string]bool) (map[string]float64, error) {
	rows, err := tsv.ReadRows(genesPath)
	if err != nil {
		return nil, err
	}

	geneCol, termCol, body := resolveGenePhenotypeSchema(rows)

	hits := make(map[string]int)
	for _, row := range body {
		term := strings.TrimSpace(tsv.Cell(row, termCol))
		if !terms[term] {
			continue
		}
		gene := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, geneCol)))
		if gene == "" {
			continue
		}
		hits[gene]++
	}

	weights := make(map[string]float64, len(hits))
	if len(hits) == 0 {
		return weights, nil
	}

	minHits, maxHits := -1, 0
	for _, h := range hits {
		if minHits < 0 || h < minHits {
			minHits = h
		}
		if h > maxHits {
			maxHits = h
		}
	}

	for gene, h := range hits {
		if maxHits == minHits {
			weights[gene] = 1.0
			continue
		}
		w := float64(h-minHits) / float64(maxHits-minHits)
		if w == 0.0 {
			w = minPositiveWeight
		}
		weights[gene] = w
	}
	return weights, nil
}

// SeedGenes returns the genes carrying a strictly positive phenotype weight,
// used to personalize network diffusion.
func SeedGenes(weights map[string]float64) map[string]bool {
	seeds := make(map[string]bool, len(weights))
	for gene, w := range weights {
		if w > 0 {
			seeds[gene] = true
		}
	}
	return seeds
}

// resolveGenePhenotypeSchema decides whether the first row is a header and
// locates the gene-symbol and term-id columns. A first row containing a
// token that mentions "gene" or "hpo" is treated as a header; named columns
// are then resolved with a positional fallback. Headerless tables use the
// fixed positional layout.
func resolveGenePhenotypeSchema(rows [][]string) (geneCol, termCol int, body [][]string) {
	geneCol, termCol = fallbackGeneCol, fallbackTermCol
	if len(rows) == 0 {
		return geneCol, termCol, nil
	}

	headerLike := false
	for _, cell := range rows[0] {
		lc := strings.ToLower(cell)
		if strings.Contains(lc, "gene") || strings.Contains(lc, "hpo") {
			headerLike = true
			break
		}
	}
	if !headerLike {
		return geneCol, termCol, rows
	}

	header := rows[0]
	if idx, err := tsv.Resolve(header, tsv.Field{
		Name:     "gene_symbol",
		Aliases:  []string{"gene", "gene_symbol", "entrez_gene_symbol"},
		Fallback: fallbackGeneCol,
	}); err == nil {
		geneCol = idx
	}
	if idx, ok := tsv.ResolveContains(header, "hpo", "id"); ok {
		termCol = idx
	}
	return geneCol, termCol, rows[1:]
}
