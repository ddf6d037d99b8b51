// Package evidence loads the precomputed per-gene evidence tables: the base
// gene-score table, pathway scores, literature novelty, the threshold
// document, and manual seed lists. Loaders coerce rather than fail: a value
// that cannot be parsed is no evidence, not an error.
package evidence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivetbio/rivet/internal/rank"
	"github.com/rivetbio/rivet/internal/tsv"
)

// ErrNoGeneColumn is returned when a required table has no resolvable gene
// column.
var ErrNoGeneColumn = errors.New("no gene column")

// optionalColumn resolves a column by exact case-insensitive name, with no
// positional fallback. ok is false when the column is absent.
func optionalColumn(header []string, names ...string) (int, bool) {
	idx, err := tsv.Resolve(header, tsv.Field{Name: names[0], Aliases: names, Fallback: -1})
	if err != nil {
		return -1, false
	}
	return idx, true
}

// BaseTable is the loaded base gene-evidence table plus which optional
// channel columns it carried, so the pipeline can decide whether computed
// channels may fill them.
type BaseTable struct {
	Records  []*rank.Record
	HasNet   bool
	HasPath  bool
	HasNovel bool
}

// LoadBase reads the base gene-evidence table into one Record per unique
// gene symbol (first occurrence wins; later duplicates are dropped). The
// gene set of this table is authoritative for the run: genes appearing only
// in other channels are never added.
//
// FUNC is synthesized from the functional-probability column when absent,
// and vice versa. Flag, tier, per-gene threshold, and raw channel columns
// are carried through when present.
func LoadBase(path string) (*BaseTable, error) {
	table, err := tsv.ReadTable(path)
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 {
		return nil, fmt.Errorf("base gene table %s is empty", path)
	}

	geneIdx, ok := optionalColumn(table.Header, "gene")
	if !ok {
		return nil, fmt.Errorf("%w: base gene table %s", ErrNoGeneColumn, path)
	}

	probIdx, hasProb := optionalColumn(table.Header, "y_prob_max")
	funcIdx, hasFunc := optionalColumn(table.Header, "FUNC")
	netIdx, hasNet := optionalColumn(table.Header, "NET")
	pathIdx, hasPath := optionalColumn(table.Header, "PATH")
	novelIdx, hasNovel := optionalColumn(table.Header, "NOVEL")
	p95FlagIdx, hasP95Flag := optionalColumn(table.Header, "p95_flag")
	bf1FlagIdx, hasBF1Flag := optionalColumn(table.Header, "bestF1_flag")
	tierIdx, hasTier := optionalColumn(table.Header, "tier")
	plpIdx, hasPLP := optionalColumn(table.Header, "clinvar_plp_flag")
	p95ThrIdx, hasP95Thr := optionalColumn(table.Header, "P95_thr")
	bf1ThrIdx, hasBF1Thr := optionalColumn(table.Header, "BestF1_thr")

	var records []*rank.Record
	seen := make(map[string]bool)
	for _, row := range table.Rows {
		gene := strings.ToUpper(strings.TrimSpace(tsv.Cell(row, geneIdx)))
		if gene == "" || seen[gene] {
			continue
		}
		seen[gene] = true

		r := &rank.Record{Gene: gene}
		if hasFunc {
			r.Func = tsv.Float(tsv.Cell(row, funcIdx))
		}
		if hasProb {
			r.YProbMax = tsv.Float(tsv.Cell(row, probIdx))
		}
		switch {
		case !hasFunc && hasProb:
			r.Func = tsv.Clamp01(r.YProbMax)
		case hasFunc && !hasProb:
			r.YProbMax = r.Func
		}
		if hasNet {
			r.Net = tsv.Float01(tsv.Cell(row, netIdx))
		}
		if hasPath {
			r.Path = tsv.Float01(tsv.Cell(row, pathIdx))
		}
		if hasNovel {
			r.Novel = tsv.Float01(tsv.Cell(row, novelIdx))
		}
		if hasP95Flag {
			r.P95Flag = intFlag(tsv.Cell(row, p95FlagIdx))
			r.HasP95Flag = true
		}
		if hasBF1Flag {
			r.BestF1Flag = intFlag(tsv.Cell(row, bf1FlagIdx))
			r.HasBestF1Flag = true
		}
		if hasTier {
			r.Tier = strings.TrimSpace(tsv.Cell(row, tierIdx))
			r.HasTier = true
		}
		if hasPLP {
			r.ClinvarPLP = intFlag(tsv.Cell(row, plpIdx))
		}
		if hasP95Thr {
			r.P95Thr = tsv.Float(tsv.Cell(row, p95ThrIdx))
			r.HasP95Thr = true
		}
		if hasBF1Thr {
			r.BestF1Thr = tsv.Float(tsv.Cell(row, bf1ThrIdx))
			r.HasBestF1Thr = true
		}
		records = append(records, r)
	}
	return &BaseTable{
		Records:  records,
		HasNet:   hasNet,
		HasPath:  hasPath,
		HasNovel: hasNovel,
	}, nil
}

// intFlag coerces a cell to a 0/1 flag; anything non-positive or unparsable
// is 0.
func intFlag(s string) int {
	if tsv.Float(s) >= 1 {
		return 1
	}
	return 0
}
