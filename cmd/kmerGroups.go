/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/samples"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

var kmerGroupsCmd = &cobra.Command{
	Use:   "kmerGroups",
	Short: "Group samples by k-mer similarity clustering",
	Long: `Builds sourmash sketches for every selected sample, computes the pairwise
similarity matrix and clusters samples by average-linkage agglomeration.
Clusters outside the configured size range dissolve into individual
samples. Zero clusters is a valid outcome: every sample then becomes its
own singleton group, reported as a degenerate fallback.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Checking dependencies ...\n\n")
		if err := utils.CheckDeps("sourmash"); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}
		fmt.Printf("Dependencies OK\n\n----------------------------------------------------------\n\n")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		threshold, tErr := cmd.Flags().GetFloat64("threshold")
		if tErr != nil {
			log.Fatalf("Error getting threshold flag: %v", tErr)
		}
		if threshold > 0 {
			cfg.SimilarityThreshold = threshold
		}

		pairs, missing, err := samples.FindPairs(selectedSamplesDir(cfg), cfg.ReadSuffix)
		if err != nil {
			log.Fatalf("Finding selected samples: %v (run selectSamples first)", err)
		}
		if len(missing) > 0 {
			fmt.Printf("Warning: %d samples missing R2 mates were skipped\n", len(missing))
		}
		if len(pairs) == 0 {
			log.Fatalf("No sample pairs found in %s", selectedSamplesDir(cfg))
		}

		dir := groupingDir(cfg, "kmer")
		g, err := grouping.KmerGrouping(pairs, dir,
			grouping.SketchParams{Ksize: cfg.KmerSize, Scaled: cfg.Scaled, Jobs: cfg.Threads},
			cfg.SimilarityThreshold, cfg.MinGroupSize, cfg.MaxGroupSize)
		if err != nil {
			log.Fatalf("K-mer grouping failed: %v", err)
		}

		if err := g.Validate(samples.IDs(pairs)); err != nil {
			log.Fatalf("Invalid k-mer grouping: %v", err)
		}
		path, err := g.Write(dir)
		if err != nil {
			log.Fatalf("Writing k-mer grouping: %v", err)
		}
		if err := g.WriteSummary(dir); err != nil {
			log.Fatalf("Writing k-mer grouping summary: %v", err)
		}

		if g.DegenerateFallback {
			fmt.Println("\nNOTE: no clusters met the similarity threshold; singleton fallback applied")
		}
		fmt.Printf("K-mer grouping saved to %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(kmerGroupsCmd)
	kmerGroupsCmd.Flags().Float64P("threshold", "t", 0, "similarity threshold for clustering ")
}
