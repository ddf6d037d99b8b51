package evidence

import (
	"math"
	"regexp"
	"strings"

	"github.com/rivetbio/rivet/internal/rank"
	"github.com/rivetbio/rivet/internal/tsv"
)

var pmidSeparator = regexp.MustCompile(`[,\s]+`)

// countAliases are accepted names for a literature mention-count column,
// tried after "count" and "pmids".
var countAliases = []string{"n", "n_mentions", "papers", "hits"}

// LoadNovelty converts a literature table into a per-gene novelty score in
// [0, 1], higher meaning less studied. Mention counts come from a "count"
// column, a token-counted "pmids" column, or a count alias, in that order.
// Counts are optionally log1p-scaled, inverted when invert is set (more
// mentions means lower novelty), then min-max scaled. A table with no gene
// or count source yields an empty map.
func LoadNovelty(path string, logScale, invert bool) (map[string]float64, error) {
	table, err := tsv.ReadTable(path)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64)
	if len(table.Header) == 0 {
		return scores, nil
	}

	geneIdx, ok := optionalColumn(table.Header, "gene")
	if !ok {
		return scores, nil
	}

	counts := extractCounts(table, geneIdx)
	if counts == nil {
		return scores, nil
	}

	genes := make([]string, 0, len(counts))
	vals := make([]float64, 0, len(counts))
	for _, c := range counts {
		v := c.count
		if logScale {
			v = math.Log1p(v)
		}
		genes = append(genes, c.gene)
		vals = append(vals, v)
	}

	if invert {
		maxV := vals[0]
		for _, v := range vals[1:] {
			if v > maxV {
				maxV = v
			}
		}
		for i := range vals {
			vals[i] = maxV - vals[i]
		}
	}

	for i, v := range rank.MinMax(vals) {
		scores[genes[i]] = v
	}
	return scores, nil
}

type geneCount struct {
	gene  string
	count float64
}

// extractCounts pulls (gene, count) pairs from the table, preserving row
// order so min-max output stays aligned. Returns nil when no count source
// exists.
func extractCounts(table *tsv.Table, geneIdx int) []geneCount {
	countIdx, hasCount := optionalColumn(table.Header, "count")
	pmidIdx, hasPMIDs := optionalColumn(table.Header, "pmids")
	if !hasCount && !hasPMIDs {
		if idx, ok := optionalColumn(table.Header, countAliases...); ok {
			countIdx, hasCount = idx, true
		} else {
			return nil
		}
	}

	var counts []geneCount
	for _, row := range table.Rows {
		gene := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, geneIdx)))
		if gene == "" {
			continue
		}
		var c float64
		if hasCount {
			c = tsv.Float(tsv.Cell(row, countIdx))
		} else {
			c = float64(countTokens(tsv.Cell(row, pmidIdx)))
		}
		counts = append(counts, geneCount{gene: gene, count: c})
	}
	return counts
}

// countTokens counts comma- or whitespace-separated identifiers.
func countTokens(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n := 0
	for _, tok := range pmidSeparator.Split(s, -1) {
		if tok != "" {
			n++
		}
	}
	return n
}
