package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rivetbio/rivet/internal/config"
	"github.com/rivetbio/rivet/internal/diffusion"
	"github.com/rivetbio/rivet/internal/logging"
	"github.com/rivetbio/rivet/internal/pipeline"
	"github.com/rivetbio/rivet/internal/rank"
	"github.com/rivetbio/rivet/internal/report"
	"github.com/rivetbio/rivet/internal/telemetry"
	"github.com/rivetbio/rivet/internal/watch"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidate genes for a disease",
	RunE:  runRank,
}

func init() {
	f := rankCmd.Flags()
	f.String("disease", "", "disease name as registered in the phenotype annotation table")
	f.String("outdir", "", "output directory (a timestamped subdir is created per run)")
	f.String("disease-label", "", "label for the report (default: same as --disease)")

	f.String("weights", "", `channel weights, e.g. "FUNC:0.35,NET:0.28,PATH:0.18,NOVEL:0.12,HPO:0.07"`)
	f.Int("top", 0, "top-N rows for the report views")
	f.Float64("min-score", 0, "keep only genes with a raw fused score at or above this")

	f.String("string-net", "", "network edge table (source\\ttarget\\tweight)")
	f.String("path-scores", "", "pathway summary scores per gene")
	f.String("literature", "", "literature counts/PMIDs table")
	f.String("seeds", "", "manual seed gene list, one gene per line (overrides phenotype seeds)")

	f.Float64("winsor-q", 0, "winsorization quantile for the functional channel")
	f.Float64("gamma", 0, "network diffusion damping factor")
	f.Bool("novel-log", true, "log-scale literature counts")
	f.Bool("no-novel-log", false, "disable log scaling of literature counts")
	f.Float64("score-lo", 0, "lower bound of the display score band")
	f.Float64("score-hi", 0, "upper bound of the display score band")
	f.Float64("jitter", 0, "tie-breaking jitter sigma")

	f.String("telemetry", "", "append run telemetry events to this JSONL file")
	f.Bool("watch", false, "re-run automatically when an input table changes")

	_ = rankCmd.MarkFlagRequired("disease")
	_ = rankCmd.MarkFlagRequired("outdir")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New(cfg.Verbose)
	defer log.Sync()

	in, params, topN, err := assembleRun(cmd, cfg)
	if err != nil {
		return err
	}
	if err := checkRequiredTables(in); err != nil {
		return err
	}
	log.Info("input tables resolved",
		zap.String("gene_scores", in.GeneScores),
		zap.String("thresholds", in.Thresholds),
		zap.String("hpo_genes", in.HPOGenes),
		zap.String("phenotype_hpoa", in.PhenotypeHPOA))

	var emit *telemetry.Emitter
	if path, _ := cmd.Flags().GetString("telemetry"); path != "" {
		emit, err = telemetry.NewEmitter(path)
		if err != nil {
			return err
		}
		defer emit.Close()
	}

	outdir, _ := cmd.Flags().GetString("outdir")
	runner := &pipeline.Runner{Log: log, Emit: emit}

	execute := func() error {
		res, err := runner.Run(in, params)
		if err != nil {
			return err
		}
		paths, err := report.WriteOutputs(outdir, res.Label, res.Records, topN, buildMetadata(in, params, topN))
		if err != nil {
			return err
		}
		log.Info("run written",
			zap.String("run_dir", paths.RunDir),
			zap.Int("rows", len(res.Records)),
			zap.Int("seeds", res.SeedCount),
			zap.Int("graph_nodes", res.GraphNodes))
		fmt.Printf("final (report): %s\n", paths.Final)
		fmt.Printf("topN (report) : %s\n", paths.Top)
		fmt.Printf("topN (full)   : %s\n", paths.TopFull)
		fmt.Printf("meta          : %s\n", paths.Meta)
		return nil
	}

	if err := execute(); err != nil {
		return err
	}
	if doWatch, _ := cmd.Flags().GetBool("watch"); doWatch {
		return watchAndRerun(log, in, execute)
	}
	return nil
}

// watchAndRerun blocks, repeating the run whenever an input table settles
// after an edit. A failed re-run is logged and watching continues.
func watchAndRerun(log *zap.Logger, in pipeline.Inputs, execute func() error) error {
	w, err := watch.NewWatcher(
		in.GeneScores, in.Thresholds, in.HPOGenes, in.PhenotypeHPOA,
		in.StringNet, in.PathScores, in.Literature, in.Seeds,
	)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	log.Info("watching input tables for changes")
	for change := range w.Changes {
		log.Info("input changed, re-running", zap.String("file", change.File))
		if err := execute(); err != nil {
			log.Error("re-run failed", zap.Error(err))
		}
	}
	return nil
}

// assembleRun merges config values with CLI flags (flags win) into the
// pipeline inputs and parameters.
func assembleRun(cmd *cobra.Command, cfg config.Config) (pipeline.Inputs, pipeline.Params, int, error) {
	f := cmd.Flags()

	in := pipeline.Inputs{
		PhenotypeHPOA: cfg.PhenotypeHPOA,
		HPOGenes:      cfg.HPOGenes,
		GeneScores:    cfg.GeneScores,
		Thresholds:    cfg.Thresholds,
		StringNet:     cfg.Extras.StringNet,
		PathScores:    cfg.Extras.PathScores,
		Literature:    cfg.Extras.Literature,
	}
	in.Disease, _ = f.GetString("disease")
	in.DiseaseLabel, _ = f.GetString("disease-label")
	if v, _ := f.GetString("string-net"); v != "" {
		in.StringNet = v
	}
	if v, _ := f.GetString("path-scores"); v != "" {
		in.PathScores = v
	}
	if v, _ := f.GetString("literature"); v != "" {
		in.Literature = v
	}
	in.Seeds, _ = f.GetString("seeds")

	diff := diffusion.DefaultOptions()
	diff.Gamma = cfg.Gamma
	p := pipeline.Params{
		WinsorQ:     cfg.WinsorQ,
		Diffusion:   diff,
		NovelLog:    cfg.NovelLog,
		ScoreLo:     cfg.ScoreLo,
		ScoreHi:     cfg.ScoreHi,
		JitterSigma: cfg.Jitter,
	}
	if f.Changed("winsor-q") {
		p.WinsorQ, _ = f.GetFloat64("winsor-q")
	}
	if f.Changed("gamma") {
		p.Diffusion.Gamma, _ = f.GetFloat64("gamma")
	}
	if f.Changed("score-lo") {
		p.ScoreLo, _ = f.GetFloat64("score-lo")
	}
	if f.Changed("score-hi") {
		p.ScoreHi, _ = f.GetFloat64("score-hi")
	}
	if f.Changed("jitter") {
		p.JitterSigma, _ = f.GetFloat64("jitter")
	}
	if f.Changed("no-novel-log") {
		p.NovelLog = false
	} else if f.Changed("novel-log") {
		p.NovelLog, _ = f.GetBool("novel-log")
	}
	if f.Changed("min-score") {
		p.MinScore, _ = f.GetFloat64("min-score")
		p.HasMinScore = true
	}

	spec, _ := f.GetString("weights")
	overrides, err := ParseWeights(spec)
	if err != nil {
		return in, p, 0, err
	}
	p.Weights = rank.MergeWeights(cfg.Weights)
	for ch, w := range overrides {
		p.Weights[ch] = w
	}

	topN := cfg.TopN
	if f.Changed("top") {
		topN, _ = f.GetInt("top")
	}
	return in, p, topN, nil
}

// checkRequiredTables verifies the four mandatory inputs exist, mirroring
// the documented configuration sources in the error text.
func checkRequiredTables(in pipeline.Inputs) error {
	required := []struct{ name, path, env string }{
		{"gene score table", in.GeneScores, "RIVET_GENE_SCORES"},
		{"thresholds document", in.Thresholds, "RIVET_THRESHOLDS"},
		{"gene-to-phenotype table", in.HPOGenes, "RIVET_HPO_GENES"},
		{"phenotype annotation table", in.PhenotypeHPOA, "RIVET_PHENOTYPE_HPOA"},
	}
	for _, r := range required {
		if r.path == "" {
			return fmt.Errorf("%s not set; set it in .rivet.yaml or %s", r.name, r.env)
		}
		if _, err := os.Stat(r.path); err != nil {
			return fmt.Errorf("%s not found at %s; set it in .rivet.yaml or %s", r.name, r.path, r.env)
		}
	}
	return nil
}

// ParseWeights parses a "CHANNEL:weight,CHANNEL:weight" flag value into a
// weight map with uppercase channel keys. An empty spec yields an empty map.
func ParseWeights(spec string) (map[string]float64, error) {
	weights := make(map[string]float64)
	if strings.TrimSpace(spec) == "" {
		return weights, nil
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		channel, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("weight %q is not CHANNEL:value", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", part, err)
		}
		weights[strings.ToUpper(strings.TrimSpace(channel))] = w
	}
	return weights, nil
}

func buildMetadata(in pipeline.Inputs, p pipeline.Params, topN int) report.Metadata {
	meta := report.Metadata{
		Disease:      in.Disease,
		DiseaseLabel: in.DiseaseLabel,
		Weights:      p.Weights,
		Rerank: report.RerankKnobs{
			WinsorQ:  p.WinsorQ,
			Gamma:    p.Diffusion.Gamma,
			NovelLog: p.NovelLog,
			ScoreLo:  p.ScoreLo,
			ScoreHi:  p.ScoreHi,
			Jitter:   p.JitterSigma,
		},
		TopN: topN,
	}
	if meta.DiseaseLabel == "" {
		meta.DiseaseLabel = in.Disease
	}
	meta.Paths.GeneScores = in.GeneScores
	meta.Paths.Thresholds = in.Thresholds
	meta.Paths.HPOGenes = in.HPOGenes
	meta.Paths.PhenotypeHPOA = in.PhenotypeHPOA
	meta.Paths.Extras.StringNet = in.StringNet
	meta.Paths.Extras.PathScores = in.PathScores
	meta.Paths.Extras.Literature = in.Literature
	return meta
}
