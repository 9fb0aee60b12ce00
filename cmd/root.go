/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coassembly-validate",
	Short: "Validation framework for k-mer guided metagenomic co-assembly",
	Long: `An experimental validation framework for metagenomic co-assembly grouping:
1.	Sample selection: reproducible random subset of a read directory
2.	Grouping strategies: individual, random seeds, k-mer similarity, global
3.	Staged assembly: MEGAHIT per group, then Flye meta-assembly, via SLURM
4.	Quality assessment: seqkit/CheckV parsing and k-mer vs random comparison
5.	Verdict: four-category recommendation with configurable thresholds
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file ")
}

// loadConfig resolves the effective configuration: defaults, overridden by
// the config file when one is given.
func loadConfig() (utils.Config, error) {
	if cfgFile == "" {
		return utils.DefaultConfig(), nil
	}
	return utils.ReadConfig(cfgFile)
}

// Experiment directory layout under OutputDir. Everything a run produces
// lives below one root so a whole experiment can be archived or deleted
// as a unit.

func selectedSamplesDir(cfg utils.Config) string {
	return filepath.Join(cfg.OutputDir, "samples")
}

func groupingDir(cfg utils.Config, condition string) string {
	return filepath.Join(cfg.OutputDir, "groupings", condition)
}

func assembliesDir(cfg utils.Config) string {
	return filepath.Join(cfg.OutputDir, "assemblies")
}

// scriptsDir holds generated sbatch scripts and their logs. WorkDir moves
// them onto scratch storage when set.
func scriptsDir(cfg utils.Config) string {
	if cfg.WorkDir != "" {
		return filepath.Join(cfg.WorkDir, "scripts")
	}
	return filepath.Join(cfg.OutputDir, "scripts")
}

func analysisDir(cfg utils.Config) string {
	return filepath.Join(cfg.OutputDir, "analysis")
}

func pipelineLog(cfg utils.Config) string {
	return filepath.Join(cfg.OutputDir, "pipeline.log")
}
