package assess

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/megjohnson1999/assembly-clustering-validation/assembly"
)

// ConditionStats pairs a condition name with its final-assembly statistics.
// Stats is nil when the assembly file was missing or empty.
type ConditionStats struct {
	Condition string
	Stats     *assembly.FastaStats
}

// ExpectedConditions lists every condition the standard experiment produces,
// given the random seeds that were run.
func ExpectedConditions(seeds []int) []string {
	conditions := []string{"individual"}
	for _, seed := range seeds {
		conditions = append(conditions, fmt.Sprintf("random_%d", seed))
	}
	return append(conditions, "kmer", "global")
}

// LoadConditionStats computes statistics for each condition's final
// assembly. Missing conditions are kept with nil stats so the report can
// name them; they are excluded from comparisons.
func LoadConditionStats(outDir string, conditions []string) ([]ConditionStats, error) {
	var all []ConditionStats
	for _, cond := range conditions {
		path := assembly.FinalAssembly(outDir, cond)
		fmt.Printf("  Processing %s: %s\n", cond, path)
		s, err := assembly.ComputeFastaStats(path)
		if err != nil {
			return nil, err
		}
		all = append(all, ConditionStats{Condition: cond, Stats: s})
	}
	return all, nil
}

func split(all []ConditionStats) (kmer *assembly.FastaStats, randoms []*assembly.FastaStats, missing []string) {
	for _, cs := range all {
		if cs.Stats == nil {
			missing = append(missing, cs.Condition)
			continue
		}
		switch {
		case cs.Condition == "kmer":
			kmer = cs.Stats
		case strings.HasPrefix(cs.Condition, "random_"):
			randoms = append(randoms, cs.Stats)
		}
	}
	return kmer, randoms, missing
}

type statsRow struct {
	Condition    string  `dataframe:"condition"`
	NumContigs   int     `dataframe:"n_contigs"`
	TotalLength  int     `dataframe:"total_length"`
	N50          int     `dataframe:"n50"`
	N75          int     `dataframe:"n75"`
	N90          int     `dataframe:"n90"`
	MaxContig    int     `dataframe:"max_contig"`
	MeanContig   float64 `dataframe:"mean_contig"`
	MedianContig float64 `dataframe:"median_contig"`
	Contigs1kb   int     `dataframe:"contigs_1kb"`
	Contigs10kb  int     `dataframe:"contigs_10kb"`
	Contigs50kb  int     `dataframe:"contigs_50kb"`
	Contigs100kb int     `dataframe:"contigs_100kb"`
	Longest10Sum int     `dataframe:"longest_10_sum"`
}

// WriteStatsCSV writes the raw per-condition metric table.
func WriteStatsCSV(all []ConditionStats, path string) error {
	var rows []statsRow
	for _, cs := range all {
		if cs.Stats == nil {
			continue
		}
		s := cs.Stats
		rows = append(rows, statsRow{
			Condition:    cs.Condition,
			NumContigs:   s.NumContigs,
			TotalLength:  s.TotalLength,
			N50:          s.N50,
			N75:          s.N75,
			N90:          s.N90,
			MaxContig:    s.MaxLength,
			MeanContig:   s.MeanLength,
			MedianContig: s.MedianLen,
			Contigs1kb:   s.Contigs1kb,
			Contigs10kb:  s.Contigs10kb,
			Contigs50kb:  s.Contigs50kb,
			Contigs100kb: s.Contigs100kb,
			Longest10Sum: s.Longest10Sum,
		})
	}
	if len(rows) == 0 {
		return fmt.Errorf("no assembly statistics to write")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return df.Err
	}
	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("writing %s: %v", path, err)
	}
	fmt.Printf("Detailed statistics saved: %s\n", path)
	return nil
}

func metricLabel(metric string) string {
	return strings.ToUpper(strings.ReplaceAll(metric, "_", " "))
}

// WriteReport generates the human-readable comparison report and returns the
// verdict. Conditions with missing assemblies are listed, not fatal.
func WriteReport(all []ConditionStats, checkv []*CheckvSummary, rules VerdictRules, outputDir string) (Verdict, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return AnalysisFailed, err
	}

	kmer, randoms, missing := split(all)
	results := CompareKmerVsRandom(kmer, randoms)
	verdict := Decide(results, rules)

	reportFile := filepath.Join(outputDir, "final_assembly_comparison_report.txt")
	f, err := os.Create(reportFile)
	if err != nil {
		return verdict, err
	}
	defer f.Close()

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f, "Assembly Clustering Validation: Final Results\n%s\n\n", rule)
	fmt.Fprintf(f, "Analysis Date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(f, "FINAL ASSEMBLIES ANALYZED:\n%s\n", strings.Repeat("-", 40))
	for _, cs := range all {
		if cs.Stats == nil {
			fmt.Fprintf(f, "  %-12s MISSING\n", cs.Condition)
		} else {
			fmt.Fprintf(f, "  %-12s %d contigs, N50 %d\n", cs.Condition, cs.Stats.NumContigs, cs.Stats.N50)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(f, "\nWarning: %d conditions excluded (missing assemblies): %s\n",
			len(missing), strings.Join(missing, ", "))
	}

	fmt.Fprintf(f, "\n%s\nKEY QUESTION: DOES K-MER CLUSTERING BEAT RANDOM?\n%s\n\n", rule, rule)

	if len(results) == 0 {
		fmt.Fprintf(f, "ERROR: Could not perform k-mer vs random comparison\n")
		fmt.Printf("Report saved to: %s\n", reportFile)
		return AnalysisFailed, nil
	}

	t := Count(results, rules)
	fmt.Fprintf(f, "QUICK SUMMARY:\n%s\n", strings.Repeat("-", 20))
	fmt.Fprintf(f, "K-mer beats random average: %d/%d metrics\n", t.BeatsAverage, t.TotalMetrics)
	fmt.Fprintf(f, "K-mer beats ALL random assemblies: %d/%d metrics\n\n", t.BeatsAll, t.TotalMetrics)

	fmt.Fprintf(f, "DETAILED COMPARISON:\n%s\n", strings.Repeat("-", 40))
	for _, r := range results {
		fmt.Fprintf(f, "\n%s:\n", metricLabel(r.Metric))
		fmt.Fprintf(f, "  K-mer value: %.0f\n", r.KmerValue)
		fmt.Fprintf(f, "  Random mean +/- std: %.0f +/- %.0f\n", r.RandomMean, r.RandomStd)
		fmt.Fprintf(f, "  Random range: %.0f - %.0f\n", r.RandomMin, r.RandomMax)
		fmt.Fprintf(f, "  K-mer percentile: %.1f%%\n", r.Percentile)
		fmt.Fprintf(f, "  Improvement ratio: %.2fx\n", r.ImprovementRatio)
		fmt.Fprintf(f, "  Beats %d/%d random assemblies\n", r.BeatsN, r.Replicates)
		if r.HasZScore {
			fmt.Fprintf(f, "  Z-score: %.2f\n", r.ZScore)
		}
		if r.HasPValue {
			fmt.Fprintf(f, "  Approx. p-value: %.3f\n", r.PValue)
		}

		switch {
		case r.BetterThanBest:
			fmt.Fprintf(f, "  -> K-mer BETTER than ALL random assemblies\n")
		case r.BeatsN >= rules.PromisingBeats:
			fmt.Fprintf(f, "  -> K-mer beats most random assemblies\n")
		case r.WorseThanWorst:
			fmt.Fprintf(f, "  -> K-mer WORSE than ALL random assemblies\n")
		default:
			fmt.Fprintf(f, "  -> K-mer within random range\n")
		}
	}

	fmt.Fprintf(f, "\n%s\nOVERALL ASSESSMENT\n%s\n", rule, rule)
	fmt.Fprintf(f, "Metrics where k-mer beats ALL random: %d/%d\n", t.BeatsAll, t.TotalMetrics)
	fmt.Fprintf(f, "Metrics where k-mer beats %d+ random: %d/%d\n", rules.PromisingBeats, t.BeatsMost, t.TotalMetrics)
	fmt.Fprintf(f, "Metrics where k-mer beats average: %d/%d\n", t.BeatsAverage, t.TotalMetrics)
	fmt.Fprintf(f, "Metrics where k-mer worse than ALL: %d/%d\n\n", t.WorseThanWorst, t.TotalMetrics)

	fmt.Fprintf(f, "RECOMMENDATION: %s\n", verdict)
	switch verdict {
	case StronglyPromising:
		fmt.Fprintf(f, "K-mer clustering consistently produces better meta-assemblies than even\n")
		fmt.Fprintf(f, "the best random groupings across multiple quality metrics.\n")
	case Promising:
		fmt.Fprintf(f, "K-mer clustering consistently beats most random groupings,\n")
		fmt.Fprintf(f, "indicating the approach has merit.\n")
	case Mixed:
		fmt.Fprintf(f, "K-mer clustering shows some advantages but inconsistent performance.\n")
		fmt.Fprintf(f, "Results suggest potential but need refinement.\n")
	case NotPromising:
		fmt.Fprintf(f, "K-mer clustering does not consistently outperform random grouping\n")
		fmt.Fprintf(f, "for meta-assembly quality.\n")
	}

	writeContext(f, all)
	writeCheckvSection(f, checkv)

	fmt.Printf("Report saved to: %s\n", reportFile)
	return verdict, nil
}

// writeContext adds the individual-vs-grouping and global comparisons. These
// contextualise the verdict but never change it.
func writeContext(f *os.File, all []ConditionStats) {
	byName := make(map[string]*assembly.FastaStats, len(all))
	for _, cs := range all {
		byName[cs.Condition] = cs.Stats
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f, "\n%s\nCONTEXTUAL COMPARISONS\n%s\n", rule, rule)

	ind, kmer := byName["individual"], byName["kmer"]
	if ind != nil && kmer != nil {
		fmt.Fprintf(f, "\nGrouping vs Individual Assembly:\n%s\n", strings.Repeat("-", 35))
		rows := []struct {
			name     string
			ind, kmr float64
		}{
			{"total_length", float64(ind.TotalLength), float64(kmer.TotalLength)},
			{"n50", float64(ind.N50), float64(kmer.N50)},
			{"max_contig", float64(ind.MaxLength), float64(kmer.MaxLength)},
		}
		for _, row := range rows {
			ratio := 0.0
			if row.ind > 0 {
				ratio = row.kmr / row.ind
			}
			fmt.Fprintf(f, "%s: Individual=%.0f, K-mer=%.0f (%.2fx)\n", row.name, row.ind, row.kmr, ratio)
		}
	}

	if global := byName["global"]; global != nil {
		fmt.Fprintf(f, "\nGlobal Assembly (Maximum Cooperation):\n%s\n", strings.Repeat("-", 40))
		fmt.Fprintf(f, "Global assembly represents the maximum possible cooperation\n")
		fmt.Fprintf(f, "but also maximum contamination risk.\n")
		fmt.Fprintf(f, "total_length: %d\nn50: %d\nn_contigs: %d\n",
			global.TotalLength, global.N50, global.NumContigs)
	}
}

func writeCheckvSection(f *os.File, summaries []*CheckvSummary) {
	var present []*CheckvSummary
	for _, s := range summaries {
		if s != nil {
			present = append(present, s)
		}
	}
	if len(present) == 0 {
		return
	}
	sort.Slice(present, func(i, j int) bool { return present[i].Strategy < present[j].Strategy })

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f, "\n%s\nVIRAL GENOME QUALITY (CheckV)\n%s\n", rule, rule)
	fmt.Fprintf(f, "%-14s %8s %9s %6s %7s %5s %13s %9s\n",
		"strategy", "contigs", "complete", "high", "medium", "low", "completeness", "quality%")
	for _, s := range present {
		fmt.Fprintf(f, "%-14s %8d %9d %6d %7d %5d %12.1f%% %8.1f%%\n",
			s.Strategy, s.TotalContigs, s.Complete, s.HighQuality, s.MediumQuality,
			s.LowQuality, s.CompletenessMean, s.QualityPct())
	}
}
