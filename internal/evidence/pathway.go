package evidence

import (
	"strings"

	"github.com/rivetbio/rivet/internal/tsv"
)

// LoadPathway reads per-gene pathway summary scores. The gene column is
// matched by name with a fallback to the first column; the score column is a
// case-insensitive "PATH" with a fallback to the second column. Values are
// coerced into [0, 1]. A table too narrow to hold a score yields an empty
// map.
func LoadPathway(path string) (map[string]float64, error) {
	table, err := tsv.ReadTable(path)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64)
	if len(table.Header) < 2 {
		return scores, nil
	}

	geneIdx, err := tsv.Resolve(table.Header, tsv.Field{
		Name: "gene", Aliases: []string{"gene"}, Fallback: 0,
	})
	if err != nil {
		return scores, nil
	}
	pathIdx, err := tsv.Resolve(table.Header, tsv.Field{
		Name: "PATH", Aliases: []string{"path"}, Fallback: 1,
	})
	if err != nil {
		return scores, nil
	}

	for _, row := range table.Rows {
		gene := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, geneIdx)))
		if gene == "" {
			continue
		}
		scores[gene] = tsv.Float01(tsv.Cell(row, pathIdx))
	}
	return scores, nil
}
