// Package hpo maps a free-text disease name to phenotype-ontology terms and
// derives a per-gene phenotype weight from a gene-to-phenotype annotation
// table. It performs flat term matching only; no ontology graph traversal.
package hpo

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rivetbio/rivet/internal/tsv"
)

// TermPrefix is the identifier prefix of a phenotype-ontology term.
const TermPrefix = "HP:"

// ErrDiseaseNotFound is returned when no tier of the matching cascade
// produces a term set for the query.
var ErrDiseaseNotFound = errors.New("disease not found")

// ErrAmbiguousDisease is returned when substring containment matches more
// than one distinct disease label.
var ErrAmbiguousDisease = errors.New("ambiguous disease name")

// maxSuggestions caps the candidate labels listed in an ambiguity error.
const maxSuggestions = 10

// Annotation table layout (tab-separated, zero-indexed):
// col 1 = disease label, col 3 = phenotype term id.
const (
	colDiseaseLabel = 1
	colTermID       = 3
)

// Resolve maps a disease name to the set of phenotype terms annotated to it.
// Matching proceeds in strict precedence: exact label match, then
// punctuation-insensitive normalized match, then substring containment of
// the normalized query. Containment matching more than one distinct label is
// an ambiguity error, never a guess.
func Resolve(diseaseName, annotationsPath string) (map[string]bool, error) {
	queryNorm := normalizeLabel(diseaseName)

	exact := make(map[string]bool)
	normalized := make(map[string]bool)
	contains := make(map[string]map[string]bool) // original label -> term set
	var containsOrder []string

	err := scanAnnotations(annotationsPath, func(label, term string) {
		if label == diseaseName {
			exact[term] = true
		}
		labelNorm := normalizeLabel(label)
		if labelNorm == queryNorm {
			normalized[term] = true
		}
		if queryNorm != "" && strings.Contains(labelNorm, queryNorm) {
			if _, seen := contains[label]; !seen {
				contains[label] = make(map[string]bool)
				containsOrder = append(containsOrder, label)
			}
			contains[label][term] = true
		}
	})
	if err != nil {
		return nil, err
	}

	if len(exact) > 0 {
		return exact, nil
	}
	if len(normalized) > 0 {
		return normalized, nil
	}
	if len(contains) == 1 {
		return contains[containsOrder[0]], nil
	}
	if len(contains) > 1 {
		suggestions := containsOrder
		if len(suggestions) > maxSuggestions {
			suggestions = suggestions[:maxSuggestions]
		}
		return nil, fmt.Errorf("%w %q: did you mean one of: %s",
			ErrAmbiguousDisease, diseaseName, strings.Join(suggestions, ", "))
	}
	return nil, fmt.Errorf("%w: %q is not a label in %s; try a canonical phenotype-ontology disease name",
		ErrDiseaseNotFound, diseaseName, annotationsPath)
}

// ListDiseases returns distinct disease labels from the annotation table in
// first-seen order. A limit <= 0 means unlimited.
func ListDiseases(annotationsPath string, limit int) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	err := scanAnnotations(annotationsPath, func(label, _ string) {
		if seen[label] {
			return
		}
		seen[label] = true
		if limit <= 0 || len(names) < limit {
			names = append(names, label)
		}
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// scanAnnotations streams the phenotype-annotation table, invoking fn for
// every valid (disease label, term) pair. Rows with fewer than four fields
// or whose term id lacks the HP: prefix are skipped.
func scanAnnotations(path string, fn func(label, term string)) error {
	return tsv.Scan(path, func(cells []string) error {
		if len(cells) < 4 {
			return nil
		}
		term := cells[colTermID]
		if !strings.HasPrefix(term, TermPrefix) {
			return nil
		}
		fn(cells[colDiseaseLabel], term)
		return nil
	})
}

// normalizeLabel lowercases a label and strips everything but letters,
// digits, and spaces.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
