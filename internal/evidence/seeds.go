package evidence

import (
	"strings"

	"github.com/rivetbio/rivet/internal/tsv"
)

// LoadSeeds reads a manual seed-gene list, one symbol per line, uppercased.
// Blank lines and '#' comments are skipped.
func LoadSeeds(path string) (map[string]bool, error) {
	seeds := make(map[string]bool)
	err := tsv.Scan(path, func(cells []string) error {
		gene := strings.ToUpper(strings.TrimSpace(cells[0]))
		if gene != "" {
			seeds[gene] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seeds, nil
}
