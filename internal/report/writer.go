// Package report writes the ranked results of a run to a timestamped
// directory: a curated report table, a top-N view, a full top-N view
// carrying every evidence channel, and a run.json metadata document.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rivetbio/rivet/internal/rank"
)

// Columns of the curated report tables, in order.
var ReportColumns = []string{
	"gene", "y_prob_max", "p95_flag", "bestF1_flag",
	"rank", "clinvar_plp_flag", "tier", "score", "disease",
}

// Columns of the full top-N table: the curated set plus the raw evidence
// channels and the pre-rescale fused score.
var fullColumns = []string{
	"gene", "y_prob_max", "FUNC", "NET", "PATH", "NOVEL", "HPO",
	"FINAL_score", "score", "rank",
	"p95_flag", "bestF1_flag", "clinvar_plp_flag", "tier", "disease",
}

// InputPaths records which tables fed a run, for run.json.
type InputPaths struct {
	GeneScores    string `json:"gene_scores"`
	Thresholds    string `json:"thresholds"`
	HPOGenes      string `json:"hpo_genes"`
	PhenotypeHPOA string `json:"phenotype_hpoa"`
	Extras        struct {
		StringNet  string `json:"string_net,omitempty"`
		PathScores string `json:"path_scores,omitempty"`
		Literature string `json:"literature,omitempty"`
	} `json:"extras"`
}

// RerankKnobs records the fusion parameters of a run.
type RerankKnobs struct {
	WinsorQ  float64 `json:"winsor_q"`
	Gamma    float64 `json:"gamma"`
	NovelLog bool    `json:"novel_log"`
	ScoreLo  float64 `json:"score_lo"`
	ScoreHi  float64 `json:"score_hi"`
	Jitter   float64 `json:"jitter"`
}

// Metadata is the run.json document.
type Metadata struct {
	Disease      string             `json:"disease"`
	DiseaseLabel string             `json:"disease_label"`
	Paths        InputPaths         `json:"paths"`
	Weights      map[string]float64 `json:"weights"`
	Rerank       RerankKnobs        `json:"rerank"`
	TopN         int                `json:"top_n"`
	RowsOut      int                `json:"rows_out"`
	Timestamp    string             `json:"timestamp"`
}

// Paths names the artifacts produced by WriteOutputs.
type Paths struct {
	RunDir  string
	Final   string
	Top     string
	TopFull string
	Meta    string
}

// Slugify lowercases a label and replaces every non-alphanumeric rune with
// an underscore, trimming leading and trailing underscores. An empty result
// falls back to "disease" so the run directory always has a name.
func Slugify(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "disease"
	}
	return slug
}

// WriteOutputs creates a <slug>_<timestamp> directory under outdir and
// writes the report artifacts. Records are written in the order given; the
// caller is expected to have sorted them. meta.RowsOut and meta.Timestamp
// are filled in here.
func WriteOutputs(outdir, label string, records []*rank.Record, topN int, meta Metadata) (*Paths, error) {
	if topN <= 0 {
		topN = len(records)
	}
	now := time.Now()
	slug := Slugify(label)
	runDir := filepath.Join(outdir, fmt.Sprintf("%s_%s", slug, now.Format("20060102_150405")))
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create run dir: %w", err)
	}

	p := &Paths{
		RunDir:  runDir,
		Final:   filepath.Join(runDir, fmt.Sprintf("final_for_report_%s.tsv", slug)),
		Top:     filepath.Join(runDir, fmt.Sprintf("top%d_%s.tsv", topN, slug)),
		TopFull: filepath.Join(runDir, fmt.Sprintf("top%d_full_%s.tsv", topN, slug)),
		Meta:    filepath.Join(runDir, "run.json"),
	}

	head := records
	if len(head) > topN {
		head = head[:topN]
	}
	if err := writeTable(p.Final, ReportColumns, records, reportRow); err != nil {
		return nil, err
	}
	if err := writeTable(p.Top, ReportColumns, head, reportRow); err != nil {
		return nil, err
	}
	if err := writeTable(p.TopFull, fullColumns, head, fullRow); err != nil {
		return nil, err
	}

	meta.RowsOut = len(records)
	meta.Timestamp = now.Format("2006-01-02T15:04:05")
	doc, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal run metadata: %w", err)
	}
	if err := os.WriteFile(p.Meta, append(doc, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("report: write run metadata: %w", err)
	}
	return p, nil
}

func writeTable(path string, columns []string, records []*rank.Record, row func(*rank.Record) []string) error {
	var b strings.Builder
	b.WriteString(strings.Join(columns, "\t"))
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(strings.Join(row(r), "\t"))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

func reportRow(r *rank.Record) []string {
	return []string{
		r.Gene,
		num(r.YProbMax),
		strconv.Itoa(r.P95Flag),
		strconv.Itoa(r.BestF1Flag),
		strconv.Itoa(r.Rank),
		strconv.Itoa(r.ClinvarPLP),
		r.Tier,
		num(r.Score),
		r.Disease,
	}
}

func fullRow(r *rank.Record) []string {
	return []string{
		r.Gene,
		num(r.YProbMax),
		num(r.Func),
		num(r.Net),
		num(r.Path),
		num(r.Novel),
		num(r.HPO),
		num(r.FinalRaw),
		num(r.Score),
		strconv.Itoa(r.Rank),
		strconv.Itoa(r.P95Flag),
		strconv.Itoa(r.BestF1Flag),
		strconv.Itoa(r.ClinvarPLP),
		r.Tier,
		r.Disease,
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
