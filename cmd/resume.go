/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/assembly"
	"github.com/megjohnson1999/assembly-clustering-validation/assess"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// nextStep inspects which outputs exist and returns the stage to run next
// with the command that runs it.
func nextStep(cfg utils.Config) (stage, command string) {
	if !exists(filepath.Join(selectedSamplesDir(cfg), "selected_samples.txt")) {
		return "sample selection", "coassembly-validate selectSamples -c <config>"
	}
	if !exists(filepath.Join(groupingDir(cfg, "kmer"), "assembly_recommendations.json")) {
		return "k-mer grouping", "coassembly-validate kmerGroups -c <config>"
	}
	if !exists(filepath.Join(groupingDir(cfg, "individual"), "assembly_recommendations.json")) {
		return "random groupings", "coassembly-validate randomGroups -c <config>"
	}
	if !exists(filepath.Join(scriptsDir(cfg), "run_flye_meta.sh")) {
		return "script generation", "coassembly-validate generateJobs -c <config>"
	}

	conditions := assess.ExpectedConditions(cfg.RandomSeeds)
	var missingFinal []string
	for _, cond := range conditions {
		if !exists(assembly.FinalAssembly(assembliesDir(cfg), cond)) {
			missingFinal = append(missingFinal, cond)
		}
	}
	if len(missingFinal) > 0 {
		// Concatenated contigs present means MEGAHIT finished for that
		// condition and the run stopped during or before meta-assembly.
		// Resubmit the script matching the unfinished condition's class.
		for _, cond := range missingFinal {
			if cond == "global" {
				if !exists(assembly.ContigsFile(assembliesDir(cfg), "global", "global_all_samples")) {
					return "assembly (megahit stage, global unfinished)",
						"sbatch " + filepath.Join(scriptsDir(cfg), "run_megahit_global.sh")
				}
				continue
			}
			if !exists(assembly.ConcatFile(assembliesDir(cfg), cond)) {
				script := "run_megahit_grouped.sh"
				if cond == "individual" {
					script = "run_megahit_individual.sh"
				}
				return fmt.Sprintf("assembly (megahit stage, %s unfinished)", cond),
					"sbatch " + filepath.Join(scriptsDir(cfg), script)
			}
		}
		script := "run_flye_meta.sh"
		if len(missingFinal) == 1 && missingFinal[0] == "global" {
			script = "run_copy_global.sh"
		}
		return fmt.Sprintf("assembly (flye stage, %d conditions unfinished)", len(missingFinal)),
			"sbatch " + filepath.Join(scriptsDir(cfg), script)
	}

	if !exists(filepath.Join(analysisDir(cfg), "final_assembly_comparison_report.txt")) {
		return "assessment", "coassembly-validate assess -c <config>"
	}
	return "", ""
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show which experiment stage to run next",
	Long: `Inspects the experiment's output tree, reports which stages have finished
and prints the command for the next one. Nothing is executed; this is the
manual-recovery companion to runPipeline.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}
		if cfg.OutputDir == "" {
			fmt.Println("Please provide OutputDir in the config file")
			return
		}

		fmt.Printf("Experiment directory: %s\n\n", cfg.OutputDir)
		stage, command := nextStep(cfg)
		if stage == "" {
			fmt.Println("All stages complete. See the report under the analysis directory.")
			return
		}
		fmt.Printf("Next stage: %s\n", stage)
		fmt.Printf("Run: %s\n", command)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
