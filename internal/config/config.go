// Package config resolves input table paths and ranking defaults from the
// config file, RIVET_* environment variables, and CLI flags, in that
// precedence order (flags win).
package config

import "github.com/spf13/viper"

// Extras holds paths to the optional evidence channels. Any of them may be
// empty, in which case the corresponding channel stays all-zero.
type Extras struct {
	StringNet  string `mapstructure:"string_net"`
	PathScores string `mapstructure:"path_scores"`
	Literature string `mapstructure:"literature"`
}

// Config holds all runtime configuration for a ranking run. Values are
// populated from .rivet.yaml, RIVET_* env vars, and CLI flags.
type Config struct {
	// Required input tables.
	GeneScores    string `mapstructure:"gene_scores"`
	Thresholds    string `mapstructure:"thresholds"`
	HPOGenes      string `mapstructure:"hpo_genes"`
	PhenotypeHPOA string `mapstructure:"phenotype_hpoa"`

	Extras Extras `mapstructure:"extras"`

	// Ranking defaults, overridable per run.
	Weights  map[string]float64 `mapstructure:"weights"`
	TopN     int                `mapstructure:"top_n"`
	WinsorQ  float64            `mapstructure:"winsor_q"`
	Gamma    float64            `mapstructure:"gamma"`
	NovelLog bool               `mapstructure:"novel_log"`
	ScoreLo  float64            `mapstructure:"score_lo"`
	ScoreHi  float64            `mapstructure:"score_hi"`
	Jitter   float64            `mapstructure:"jitter"`

	Verbose bool `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("gene_scores", "")
	viper.SetDefault("thresholds", "")
	viper.SetDefault("hpo_genes", "")
	viper.SetDefault("phenotype_hpoa", "")
	viper.SetDefault("extras.string_net", "")
	viper.SetDefault("extras.path_scores", "")
	viper.SetDefault("extras.literature", "")
	viper.SetDefault("top_n", 1000)
	viper.SetDefault("winsor_q", 0.99)
	viper.SetDefault("gamma", 0.60)
	viper.SetDefault("novel_log", true)
	viper.SetDefault("score_lo", 0.10)
	viper.SetDefault("score_hi", 0.99)
	viper.SetDefault("jitter", 1e-6)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
