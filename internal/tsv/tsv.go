// Package tsv provides streamed reading of tab-separated evidence tables
// and an explicit column-resolution strategy: each logical field declares a
// prioritized alias list and an optional positional fallback, and resolution
// either succeeds deterministically or fails loudly.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// ErrColumnNotFound is returned when no alias of a field matches the header
// and the field has no positional fallback.
var ErrColumnNotFound = errors.New("column not found")

// Field describes one logical column of a table. Aliases are matched
// case-insensitively against trimmed header cells, in order; the first match
// wins. Fallback is a zero-based positional index used when no alias
// matches, or -1 to disable positional fallback.
type Field struct {
	Name     string
	Aliases  []string
	Fallback int
}

// Table holds a fully-read tab-separated table. Header may be empty for
// headerless tables.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable reads a tab-separated file with a header row. Blank lines and
// lines starting with '#' are skipped.
func ReadTable(path string) (*Table, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// ReadRows reads every non-blank, non-comment line of a tab-separated file
// as a slice of cells. No header interpretation is applied.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	return rows, nil
}

// Scan streams a tab-separated file row by row, invoking fn for each
// non-blank, non-comment line. Used for tables too large to hold in memory.
func Scan(path string, fn func(cells []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open table %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(strings.Split(line, "\t")); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read table %s: %w", path, err)
	}
	return nil
}

// Resolve locates a field's column index in the header. Aliases win over the
// positional fallback; a fallback outside the header width is an error.
func Resolve(header []string, f Field) (int, error) {
	for _, alias := range f.Aliases {
		for i, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), alias) {
				return i, nil
			}
		}
	}
	if f.Fallback >= 0 && f.Fallback < len(header) {
		return f.Fallback, nil
	}
	return -1, fmt.Errorf("%w: %s (aliases %v)", ErrColumnNotFound, f.Name, f.Aliases)
}

// ResolveContains locates the first header cell whose lowercase form contains
// every given substring. Used for schema sniffing where aliases are not
// exact (e.g. "hpo_term_id" vs "HPO-ID").
func ResolveContains(header []string, substrings ...string) (int, bool) {
	for i, cell := range header {
		lc := strings.ToLower(strings.TrimSpace(cell))
		ok := true
		for _, sub := range substrings {
			if !strings.Contains(lc, sub) {
				ok = false
				break
			}
		}
		if ok {
			return i, true
		}
	}
	return -1, false
}

// Float coerces a cell to float64. Non-numeric, empty, NaN, and infinite
// values all map to 0.0: an evidence gap is structurally "no evidence",
// never an error.
func Float(s string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0.0
	}
	return v
}

// Float01 coerces like Float and clamps the result to [0, 1].
func Float01(s string) float64 {
	return Clamp01(Float(s))
}

// Clamp01 clamps a float to the unit interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Cell returns the idx-th cell of a row, or "" when the row is too short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
