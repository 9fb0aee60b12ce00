/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/assembly"
	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// loadConditions reads every grouping saved under the experiment's groupings
// directory, one condition per subdirectory.
func loadConditions(cfg utils.Config) ([]assembly.Condition, error) {
	groupingsRoot := filepath.Join(cfg.OutputDir, "groupings")
	entries, err := os.ReadDir(groupingsRoot)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v (generate groupings first)", groupingsRoot, err)
	}

	var conditions []assembly.Condition
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(groupingsRoot, entry.Name(), "assembly_recommendations.json")
		g, gErr := grouping.Load(path)
		if gErr != nil {
			fmt.Printf("Warning: skipping condition %s: %v\n", entry.Name(), gErr)
			continue
		}
		conditions = append(conditions, assembly.Condition{Name: entry.Name(), Grouping: g})
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("no valid groupings under %s", groupingsRoot)
	}
	sort.Slice(conditions, func(i, j int) bool { return conditions[i].Name < conditions[j].Name })
	return conditions, nil
}

// megahitParams applies the config's contig length cutoff to the fixed
// assembly parameter set.
func megahitParams(cfg utils.Config) assembly.Params {
	params := assembly.DefaultParams()
	if cfg.MinContigLen > 0 {
		params.MinContigLen = cfg.MinContigLen
	}
	return params
}

var generateJobsCmd = &cobra.Command{
	Use:   "generateJobs",
	Short: "Generate SLURM batch scripts for all assembly stages",
	Long: `Reads every saved grouping and writes the staged SLURM array scripts:
per-group MEGAHIT assemblies split by resource class, per-condition contig
concatenation, and the Flye meta-assembly stage. Scripts carry completion
markers; they are submitted separately (runPipeline) or by hand.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		conditions, err := loadConditions(cfg)
		if err != nil {
			log.Fatalf("Loading groupings: %v", err)
		}
		fmt.Printf("Loaded %d conditions\n\n", len(conditions))

		plan, err := assembly.BuildPlan(conditions, selectedSamplesDir(cfg), assembliesDir(cfg),
			cfg.ReadSuffix, megahitParams(cfg), cfg.Account, cfg.Partition, cfg.MailUser)
		if err != nil {
			log.Fatalf("Building assembly plan: %v", err)
		}

		for _, stage := range plan.Scripts() {
			for _, script := range stage {
				if _, wErr := script.Write(scriptsDir(cfg)); wErr != nil {
					log.Fatalf("Writing script %s: %v", script.Name, wErr)
				}
			}
		}
		fmt.Printf("\nScripts written to %s\n", scriptsDir(cfg))
		fmt.Println("Submit stages in order (megahit, concatenate, flye_meta), or use runPipeline.")
	},
}

func init() {
	rootCmd.AddCommand(generateJobsCmd)
}
