/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/samples"
)

var selectSamplesCmd = &cobra.Command{
	Use:   "selectSamples",
	Short: "Select a reproducible random subset of samples",
	Long: `Selects a random subset of paired-end samples from the input directory,
symlinks the read files into the experiment's samples directory and writes
a selected_samples.txt manifest. The same seed always selects the same
samples.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		inputDir, iErr := cmd.Flags().GetString("input_dir")
		if iErr != nil {
			log.Fatalf("Error getting input dir flag: %v", iErr)
		}
		count, nErr := cmd.Flags().GetInt("count")
		if nErr != nil {
			log.Fatalf("Error getting count flag: %v", nErr)
		}
		seed, sErr := cmd.Flags().GetInt("seed")
		if sErr != nil {
			log.Fatalf("Error getting seed flag: %v", sErr)
		}
		useAll, aErr := cmd.Flags().GetBool("all")
		if aErr != nil {
			log.Fatalf("Error getting all flag: %v", aErr)
		}

		if inputDir != "" {
			cfg.SamplesDir = inputDir
		}
		if count > 0 {
			cfg.SampleCount = count
		}
		if useAll {
			cfg.SampleCount = 0
		}
		if seed != 0 {
			cfg.Seed = seed
		}
		if cfg.SamplesDir == "" {
			fmt.Println("Please provide an input directory with -i or SamplesDir in the config")
			return
		}
		if cfg.OutputDir == "" {
			fmt.Println("Please provide OutputDir in the config")
			return
		}

		if cfg.SampleCount > 0 {
			fmt.Printf("Selecting %d samples from %s (seed %d) ...\n", cfg.SampleCount, cfg.SamplesDir, cfg.Seed)
		} else {
			fmt.Printf("Selecting all samples from %s ...\n", cfg.SamplesDir)
		}
		selected, err := samples.Select(cfg.SamplesDir, selectedSamplesDir(cfg), cfg.ReadSuffix, cfg.SampleCount, uint64(cfg.Seed))
		if err != nil {
			log.Fatalf("Sample selection failed: %v", err)
		}
		fmt.Printf("Selected %d samples into %s\n", len(selected), selectedSamplesDir(cfg))
	},
}

func init() {
	rootCmd.AddCommand(selectSamplesCmd)
	selectSamplesCmd.Flags().StringP("input_dir", "i", "", "directory with paired-end fastq files ")
	selectSamplesCmd.Flags().IntP("count", "n", 0, "number of samples to select ")
	selectSamplesCmd.Flags().IntP("seed", "s", 0, "random seed for selection ")
	selectSamplesCmd.Flags().Bool("all", false, "select every available sample ")
}
