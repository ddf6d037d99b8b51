package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rivetbio/rivet/internal/config"
	"github.com/rivetbio/rivet/internal/hpo"
)

var diseasesCmd = &cobra.Command{
	Use:   "diseases",
	Short: "List disease labels known to the phenotype annotation table",
	RunE:  runDiseases,
}

func init() {
	diseasesCmd.Flags().Int("limit", 50, "maximum labels to print (0 for all)")
	diseasesCmd.Flags().String("phenotype-hpoa", "", "phenotype annotation table (overrides config)")

	rootCmd.AddCommand(diseasesCmd)
}

func runDiseases(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	path, _ := cmd.Flags().GetString("phenotype-hpoa")
	if path == "" {
		path = cfg.PhenotypeHPOA
	}
	if path == "" {
		return fmt.Errorf("phenotype annotation table not set; set it in .rivet.yaml or RIVET_PHENOTYPE_HPOA")
	}

	limit, _ := cmd.Flags().GetInt("limit")
	names, err := hpo.ListDiseases(path, limit)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
