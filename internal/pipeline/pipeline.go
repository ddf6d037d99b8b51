// Package pipeline wires the full ranking run: disease resolution,
// phenotype weighting, network diffusion, channel ingestion, fusion, and
// tier assignment. A run is a bounded, single-threaded batch computation;
// every stage receives immutable inputs and returns fresh mappings.
package pipeline

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rivetbio/rivet/internal/diffusion"
	"github.com/rivetbio/rivet/internal/evidence"
	"github.com/rivetbio/rivet/internal/hpo"
	"github.com/rivetbio/rivet/internal/rank"
	"github.com/rivetbio/rivet/internal/telemetry"
)

// Inputs names every table a run consumes. The first four are required;
// extras and seeds may be empty.
type Inputs struct {
	Disease      string
	DiseaseLabel string

	PhenotypeHPOA string
	HPOGenes      string
	GeneScores    string
	Thresholds    string

	StringNet  string
	PathScores string
	Literature string
	Seeds      string
}

// Params holds the ranking knobs.
type Params struct {
	Weights   map[string]float64
	WinsorQ   float64
	Diffusion diffusion.Options
	NovelLog  bool

	ScoreLo     float64
	ScoreHi     float64
	JitterSigma float64

	MinScore    float64
	HasMinScore bool
}

// DefaultParams returns the production defaults used when the caller
// overrides nothing.
func DefaultParams() Params {
	return Params{
		Weights:     rank.DefaultWeights(),
		WinsorQ:     0.99,
		Diffusion:   diffusion.DefaultOptions(),
		NovelLog:    true,
		ScoreLo:     0.10,
		ScoreHi:     0.99,
		JitterSigma: 1e-6,
	}
}

// Result is the outcome of a run: the ranked records plus stage counters
// for reporting.
type Result struct {
	Records    []*rank.Record
	Label      string
	TermCount  int
	SeedCount  int
	GraphNodes int
}

// Runner executes ranking runs. Log must be non-nil; Emit may be nil for a
// telemetry-free run.
type Runner struct {
	Log  *zap.Logger
	Emit *telemetry.Emitter
}

// Run executes the full pipeline for one disease. Resolution failures and
// unreadable required tables are fatal; absent optional channels degrade to
// zero-valued evidence.
func (rn *Runner) Run(in Inputs, p Params) (*Result, error) {
	label := in.DiseaseLabel
	if label == "" {
		label = in.Disease
	}
	rn.emit(telemetry.Event{Kind: telemetry.KindRunStart, Disease: in.Disease})

	terms, err := hpo.Resolve(in.Disease, in.PhenotypeHPOA)
	if err != nil {
		return nil, err
	}
	rn.Log.Info("disease resolved",
		zap.String("disease", in.Disease),
		zap.Int("terms", len(terms)))
	rn.emit(telemetry.Event{Kind: telemetry.KindResolveDone, Disease: in.Disease,
		Data: map[string]int{"terms": len(terms)}})

	hpoWeights, err := hpo.GeneWeights(in.HPOGenes, terms)
	if err != nil {
		return nil, err
	}
	rn.Log.Info("phenotype weights computed", zap.Int("genes", len(hpoWeights)))
	rn.emit(telemetry.Event{Kind: telemetry.KindWeightsDone, Disease: in.Disease,
		Data: map[string]int{"genes": len(hpoWeights)}})

	base, err := evidence.LoadBase(in.GeneScores)
	if err != nil {
		return nil, err
	}
	records := base.Records
	if len(records) == 0 {
		return nil, fmt.Errorf("base gene table %s has no usable rows", in.GeneScores)
	}

	thr := rn.loadThresholds(in.Thresholds)
	rank.ApplyFlagsAndTiers(records, thr)

	seeds := rn.resolveSeeds(in.Seeds, hpoWeights)
	graphNodes := rn.applyNetwork(in, records, base, seeds, p.Diffusion)
	rn.applyPathway(in.PathScores, records)
	rn.applyNovelty(in.Literature, records, p.NovelLog)
	rn.emit(telemetry.Event{Kind: telemetry.KindChannelsDone, Disease: in.Disease,
		Data: map[string]int{"graph_nodes": graphNodes}})

	for _, r := range records {
		r.HPO = hpoWeights[r.Gene]
	}

	rank.Fuse(records, rank.FuseOptions{
		Weights:     rank.MergeWeights(p.Weights),
		WinsorQ:     p.WinsorQ,
		ScoreLo:     p.ScoreLo,
		ScoreHi:     p.ScoreHi,
		JitterSigma: p.JitterSigma,
	})
	rn.emit(telemetry.Event{Kind: telemetry.KindFuseDone, Disease: in.Disease,
		Data: map[string]int{"genes": len(records)}})

	if p.HasMinScore {
		kept := records[:0]
		for _, r := range records {
			if r.FinalRaw >= p.MinScore {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	// HPO-only disease labeling: genes reaching a high score purely through
	// network, pathway, or novelty evidence keep an empty label.
	for _, r := range records {
		if hpoWeights[r.Gene] > 0 {
			r.Disease = label
		}
	}

	rank.Sort(records)
	rn.Log.Info("ranking complete", zap.Int("genes", len(records)))
	rn.emit(telemetry.Event{Kind: telemetry.KindRunDone, Disease: in.Disease,
		Data: map[string]int{"genes": len(records)}})

	return &Result{
		Records:    records,
		Label:      label,
		TermCount:  len(terms),
		SeedCount:  len(seeds),
		GraphNodes: graphNodes,
	}, nil
}

// loadThresholds parses the threshold document; a malformed document is
// logged and treated as absent rather than failing the run.
func (rn *Runner) loadThresholds(path string) rank.Thresholds {
	if path == "" {
		return rank.Thresholds{}
	}
	thr, err := evidence.LoadThresholds(path)
	if err != nil {
		rn.Log.Warn("thresholds unusable, flags will rely on per-gene columns",
			zap.String("path", path), zap.Error(err))
		return rank.Thresholds{}
	}
	return thr
}

// resolveSeeds derives diffusion seeds from positive phenotype weights,
// replaced by the manual seed file when one is readable.
func (rn *Runner) resolveSeeds(seedsPath string, hpoWeights map[string]float64) map[string]bool {
	seeds := hpo.SeedGenes(hpoWeights)
	if seedsPath == "" {
		return seeds
	}
	manual, err := evidence.LoadSeeds(seedsPath)
	if err != nil {
		rn.Log.Warn("seed file unreadable, falling back to phenotype seeds",
			zap.String("path", seedsPath), zap.Error(err))
		return seeds
	}
	rn.Log.Info("manual seeds override phenotype seeds", zap.Int("seeds", len(manual)))
	return manual
}

// applyNetwork runs diffusion and fills the NET channel. A base table that
// already carries a NET column wins over the computed scores; an absent or
// empty network is the documented no-signal case.
func (rn *Runner) applyNetwork(in Inputs, records []*rank.Record, base *evidence.BaseTable,
	seeds map[string]bool, opts diffusion.Options) int {

	if in.StringNet == "" {
		return 0
	}
	if _, err := os.Stat(in.StringNet); err != nil {
		rn.Log.Warn("network table not found, NET channel stays zero",
			zap.String("path", in.StringNet))
		return 0
	}
	edges, err := diffusion.LoadEdges(in.StringNet)
	if err != nil {
		rn.Log.Warn("network table unreadable, NET channel stays zero",
			zap.String("path", in.StringNet), zap.Error(err))
		return 0
	}
	g := diffusion.BuildGraph(edges)
	scores := diffusion.Diffuse(g, seeds, opts)
	rn.Log.Info("network diffusion done",
		zap.Int("nodes", g.Len()), zap.Int("scored", len(scores)))
	rn.emit(telemetry.Event{Kind: telemetry.KindDiffuseDone, Disease: in.Disease,
		Data: map[string]int{"nodes": g.Len(), "scored": len(scores)}})

	if base.HasNet {
		// The base table supplied its own NET column; keep it.
		return g.Len()
	}
	for _, r := range records {
		if v, ok := scores[r.Gene]; ok {
			r.Net = v
		}
	}
	return g.Len()
}

// applyPathway overlays pathway scores onto records present in the table.
func (rn *Runner) applyPathway(path string, records []*rank.Record) {
	if path == "" {
		return
	}
	scores, err := evidence.LoadPathway(path)
	if err != nil {
		rn.Log.Warn("pathway table unreadable, PATH channel unchanged",
			zap.String("path", path), zap.Error(err))
		return
	}
	for _, r := range records {
		if v, ok := scores[r.Gene]; ok {
			r.Path = v
		}
	}
}

// applyNovelty overlays literature novelty onto records present in the table.
func (rn *Runner) applyNovelty(path string, records []*rank.Record, logScale bool) {
	if path == "" {
		return
	}
	scores, err := evidence.LoadNovelty(path, logScale, true)
	if err != nil {
		rn.Log.Warn("literature table unreadable, NOVEL channel unchanged",
			zap.String("path", path), zap.Error(err))
		return
	}
	for _, r := range records {
		if v, ok := scores[r.Gene]; ok {
			r.Novel = v
		}
	}
}

func (rn *Runner) emit(evt telemetry.Event) {
	if rn.Emit == nil {
		return
	}
	if err := rn.Emit.Emit(evt); err != nil {
		rn.Log.Warn("telemetry emit failed", zap.Error(err))
	}
}
