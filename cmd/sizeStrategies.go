/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/samples"
)

var sizeStrategiesCmd = &cobra.Command{
	Use:   "sizeStrategies",
	Short: "Generate the group-size sweep groupings",
	Long: `Generates one random grouping per requested group size, plus the
individual and global baselines, for the group-size sweep experiment.
Each size uses the first configured random seed.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		sizes, sErr := cmd.Flags().GetIntSlice("sizes")
		if sErr != nil {
			log.Fatalf("Error getting sizes flag: %v", sErr)
		}
		if len(sizes) == 0 {
			sizes = []int{3, 5, 10}
		}

		manifest := filepath.Join(selectedSamplesDir(cfg), "selected_samples.txt")
		ids, err := samples.ReadManifest(manifest)
		if err != nil {
			log.Fatalf("Reading sample manifest %s: %v (run selectSamples first)", manifest, err)
		}

		groupings := grouping.SizeStrategies(ids, sizes, []int{cfg.Seed})
		for _, g := range groupings {
			if err := g.Validate(ids); err != nil {
				log.Fatalf("Invalid grouping %s: %v", g.Strategy, err)
			}
			dir := groupingDir(cfg, g.Strategy)
			path, wErr := g.Write(dir)
			if wErr != nil {
				log.Fatalf("Writing grouping %s: %v", g.Strategy, wErr)
			}
			if sumErr := g.WriteSummary(dir); sumErr != nil {
				log.Fatalf("Writing summary %s: %v", g.Strategy, sumErr)
			}
			fmt.Printf("  %s: %d groups -> %s\n", g.Strategy, g.Summary.TotalGroups, path)
		}
		fmt.Printf("\nGenerated %d size-sweep groupings\n", len(groupings))
	},
}

func init() {
	rootCmd.AddCommand(sizeStrategiesCmd)
	sizeStrategiesCmd.Flags().IntSlice("sizes", nil, "group sizes to sweep, e.g. --sizes 3,5,10 ")
}
