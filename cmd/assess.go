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

	"github.com/megjohnson1999/assembly-clustering-validation/assess"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// runAssessment loads the final assemblies, compares k-mer against the
// random replicates and writes the CSV, text report and charts.
func runAssessment(cfg utils.Config, rules assess.VerdictRules) (assess.Verdict, error) {
	outDir := analysisDir(cfg)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return assess.AnalysisFailed, err
	}

	conditions := assess.ExpectedConditions(cfg.RandomSeeds)
	fmt.Println("Analyzing final assemblies ...")
	all, err := assess.LoadConditionStats(assembliesDir(cfg), conditions)
	if err != nil {
		return assess.AnalysisFailed, err
	}

	if err := assess.WriteStatsCSV(all, filepath.Join(outDir, "final_assembly_statistics.csv")); err != nil {
		return assess.AnalysisFailed, err
	}

	// CheckV summaries are optional context: absent results are skipped.
	checkvDir := filepath.Join(outDir, "checkv")
	var checkvSummaries []*assess.CheckvSummary
	for _, cond := range conditions {
		summary, cErr := assess.SummarizeCheckv(checkvDir, cond)
		if cErr != nil {
			return assess.AnalysisFailed, cErr
		}
		checkvSummaries = append(checkvSummaries, summary)
	}

	verdict, err := assess.WriteReport(all, checkvSummaries, rules, outDir)
	if err != nil {
		return verdict, err
	}

	if htmlFile, cErr := assess.PlotComparisonCharts(all, outDir); cErr != nil {
		fmt.Printf("Warning: could not render charts: %v\n", cErr)
	} else if htmlFile != "" {
		fmt.Printf("Charts saved to: %s\n", htmlFile)
	}
	return verdict, nil
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Compare final assemblies and produce the verdict",
	Long: `Computes contig statistics for every final assembly, places the k-mer
condition inside the random replicate distribution metric by metric, and
writes the comparison report, raw metrics CSV and HTML charts. Missing
assemblies are reported and excluded rather than failing the analysis.

Verdict thresholds are configurable; the defaults require a consistent
signal across at least four metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		rules := assess.DefaultVerdictRules()
		if v, fErr := cmd.Flags().GetInt("strong-min"); fErr == nil && v > 0 {
			rules.StronglyPromisingMin = v
		}
		if v, fErr := cmd.Flags().GetInt("promising-min"); fErr == nil && v > 0 {
			rules.PromisingMin = v
		}
		if v, fErr := cmd.Flags().GetInt("mixed-min"); fErr == nil && v > 0 {
			rules.MixedMin = v
		}

		verdict, err := runAssessment(cfg, rules)
		if err != nil {
			log.Fatalf("Assessment failed: %v", err)
		}

		fmt.Printf("\n==========================================================\n")
		fmt.Printf("Overall assessment: %s\n", verdict)
		fmt.Printf("==========================================================\n")
	},
}

func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.Flags().Int("strong-min", 0, "metrics beating all replicates required for STRONGLY PROMISING ")
	assessCmd.Flags().Int("promising-min", 0, "metrics beating most replicates required for PROMISING ")
	assessCmd.Flags().Int("mixed-min", 0, "metrics beating the average required for MIXED ")
}
