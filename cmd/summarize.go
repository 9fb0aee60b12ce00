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
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize seqkit and CheckV results across strategies",
	Long: `Reads seqkit stats output and per-strategy CheckV quality summaries from
the analysis directory and writes a combined comparison table. This is the
lightweight summary; the assess command produces the full verdict.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		statsFile, sErr := cmd.Flags().GetString("seqkit_stats")
		if sErr != nil {
			log.Fatalf("Error getting seqkit_stats flag: %v", sErr)
		}
		if statsFile == "" {
			statsFile = filepath.Join(analysisDir(cfg), "seqkit_stats.tsv")
		}

		records, err := assembly.ParseSeqkitStats(statsFile)
		if err != nil {
			log.Fatalf("Reading seqkit stats %s: %v", statsFile, err)
		}
		fmt.Printf("Loaded seqkit stats for %d assemblies\n\n", len(records))

		checkvDir := filepath.Join(analysisDir(cfg), "checkv")

		outPath := filepath.Join(analysisDir(cfg), "comparison_summary.tsv")
		out, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Creating %s: %v", outPath, err)
		}
		defer out.Close()

		fmt.Fprintf(out, "strategy\tnum_seqs\tsum_len\tn50\tmax_len\tcheckv_contigs\tcomplete\thigh_quality\tcompleteness_mean\n")
		for _, rec := range records {
			strategy := rec.Condition()

			summary, cErr := assess.SummarizeCheckv(checkvDir, strategy)
			if cErr != nil {
				log.Fatalf("Reading CheckV results for %s: %v", strategy, cErr)
			}

			fmt.Printf("%s: %d contigs, %d bp, N50 %d\n", strategy, rec.NumSeqs, rec.SumLen, rec.N50)
			if summary != nil {
				fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.1f\n",
					strategy, rec.NumSeqs, rec.SumLen, rec.N50, rec.MaxLen,
					summary.TotalContigs, summary.Complete, summary.HighQuality, summary.CompletenessMean)
			} else {
				fmt.Fprintf(out, "%s\t%d\t%d\t%d\t%d\t0\t0\t0\t0.0\n",
					strategy, rec.NumSeqs, rec.SumLen, rec.N50, rec.MaxLen)
			}
		}
		fmt.Printf("\nComparison summary saved to %s\n", outPath)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringP("seqkit_stats", "s", "", "path to seqkit stats -T output ")
}
