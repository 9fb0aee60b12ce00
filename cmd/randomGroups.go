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

var randomGroupsCmd = &cobra.Command{
	Use:   "randomGroups",
	Short: "Generate random grouping replicates plus baselines",
	Long: `Generates the null-hypothesis groupings: one random partition per seed,
plus the individual and global baseline groupings. If a k-mer grouping
already exists, each random replicate matches its group-size structure so
the comparison isolates membership, not group size.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		manifest := filepath.Join(selectedSamplesDir(cfg), "selected_samples.txt")
		ids, err := samples.ReadManifest(manifest)
		if err != nil {
			log.Fatalf("Reading sample manifest %s: %v (run selectSamples first)", manifest, err)
		}
		fmt.Printf("Loaded %d selected samples\n", len(ids))

		// Match the k-mer grouping's structure when it is available.
		var kmerRef *grouping.Grouping
		kmerPath := filepath.Join(groupingDir(cfg, "kmer"), "assembly_recommendations.json")
		if ref, refErr := grouping.Load(kmerPath); refErr == nil {
			fmt.Println("Matching random replicates to the k-mer group-size structure")
			kmerRef = ref
		}

		write := func(condition string, g *grouping.Grouping) {
			if err := g.Validate(ids); err != nil {
				log.Fatalf("Invalid grouping for %s: %v", condition, err)
			}
			dir := groupingDir(cfg, condition)
			path, wErr := g.Write(dir)
			if wErr != nil {
				log.Fatalf("Writing grouping for %s: %v", condition, wErr)
			}
			if sErr := g.WriteSummary(dir); sErr != nil {
				log.Fatalf("Writing summary for %s: %v", condition, sErr)
			}
			fmt.Printf("  %s: %d groups, %d individual -> %s\n",
				condition, g.Summary.TotalGroups, g.Summary.IndividualSamples, path)
		}

		write("individual", grouping.Individuals(ids))
		for _, seed := range cfg.RandomSeeds {
			var g *grouping.Grouping
			if kmerRef != nil {
				g = grouping.RandomMatched(kmerRef, seed)
			} else {
				g = grouping.RandomPartition(ids, cfg.GroupSize, seed)
			}
			write(fmt.Sprintf("random_%d", seed), g)
		}
		write("global", grouping.Global(ids))

		fmt.Printf("\nGenerated %d groupings under %s\n", len(cfg.RandomSeeds)+2, filepath.Join(cfg.OutputDir, "groupings"))
	},
}

func init() {
	rootCmd.AddCommand(randomGroupsCmd)
}
