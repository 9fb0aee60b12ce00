package assess

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/megjohnson1999/assembly-clustering-validation/assembly"
)

// Metrics compared between the k-mer condition and the random replicates.
// Larger is treated as better for every one of them; contig count is
// deliberately absent because its direction is ambiguous for co-assembly.
var ComparedMetrics = []string{
	"total_length", "n50", "n75", "n90", "max_contig",
	"contigs_1kb", "contigs_10kb", "contigs_50kb", "contigs_100kb",
}

func metricValue(s *assembly.FastaStats, metric string) float64 {
	switch metric {
	case "total_length":
		return float64(s.TotalLength)
	case "n_contigs":
		return float64(s.NumContigs)
	case "n50":
		return float64(s.N50)
	case "n75":
		return float64(s.N75)
	case "n90":
		return float64(s.N90)
	case "max_contig":
		return float64(s.MaxLength)
	case "contigs_1kb":
		return float64(s.Contigs1kb)
	case "contigs_10kb":
		return float64(s.Contigs10kb)
	case "contigs_50kb":
		return float64(s.Contigs50kb)
	case "contigs_100kb":
		return float64(s.Contigs100kb)
	case "longest_10_sum":
		return float64(s.Longest10Sum)
	}
	return math.NaN()
}

// MetricComparison places the k-mer value inside the random replicate
// distribution for one metric.
type MetricComparison struct {
	Metric           string  `json:"metric"`
	KmerValue        float64 `json:"kmer_value"`
	RandomMean       float64 `json:"random_mean"`
	RandomStd        float64 `json:"random_std"`
	RandomMedian     float64 `json:"random_median"`
	RandomMin        float64 `json:"random_min"`
	RandomMax        float64 `json:"random_max"`
	Percentile       float64 `json:"kmer_percentile"`
	ImprovementRatio float64 `json:"improvement_ratio"`
	ZScore           float64 `json:"z_score"`
	HasZScore        bool    `json:"has_z_score"`
	PValue           float64 `json:"p_value"`
	HasPValue        bool    `json:"has_p_value"`
	BeatsN           int     `json:"beats_n_random"`
	Replicates       int     `json:"replicates"`
	BetterThanAvg    bool    `json:"better_than_avg"`
	BetterThanMedian bool    `json:"better_than_median"`
	BetterThanBest   bool    `json:"better_than_best"`
	WorseThanWorst   bool    `json:"worse_than_worst"`
}

// CompareMetric places one k-mer value in a random replicate distribution.
func CompareMetric(metric string, kmerValue float64, randomValues []float64) MetricComparison {
	c := MetricComparison{
		Metric:     metric,
		KmerValue:  kmerValue,
		Replicates: len(randomValues),
	}

	c.RandomMean, _ = stats.Mean(randomValues)
	c.RandomStd, _ = stats.StandardDeviation(randomValues)
	c.RandomMedian, _ = stats.Median(randomValues)
	c.RandomMin, _ = stats.Min(randomValues)
	c.RandomMax, _ = stats.Max(randomValues)

	sorted := append([]float64{}, randomValues...)
	sort.Float64s(sorted)
	for _, rv := range sorted {
		if kmerValue > rv {
			c.BeatsN++
		}
	}
	c.Percentile = float64(c.BeatsN) / float64(len(sorted)) * 100

	if c.RandomMean > 0 {
		c.ImprovementRatio = kmerValue / c.RandomMean
	} else {
		c.ImprovementRatio = math.Inf(1)
	}

	if c.RandomStd > 0 && len(randomValues) >= 3 {
		c.ZScore = (kmerValue - c.RandomMean) / c.RandomStd
		c.HasZScore = true
		// Two-sided normal approximation; with only a handful of
		// replicates this is indicative, not confirmatory.
		normal := distuv.Normal{Mu: 0, Sigma: 1}
		c.PValue = 2 * normal.Survival(math.Abs(c.ZScore))
		c.HasPValue = true
	}

	c.BetterThanAvg = kmerValue > c.RandomMean
	c.BetterThanMedian = kmerValue > c.RandomMedian
	c.BetterThanBest = kmerValue > c.RandomMax
	c.WorseThanWorst = kmerValue < c.RandomMin
	return c
}

// CompareKmerVsRandom builds the per-metric comparison of the k-mer assembly
// against all available random replicate assemblies. It returns nil when
// either side is missing, which downstream maps to the failed-analysis
// verdict.
func CompareKmerVsRandom(kmer *assembly.FastaStats, randoms []*assembly.FastaStats) []MetricComparison {
	if kmer == nil {
		return nil
	}
	var present []*assembly.FastaStats
	for _, r := range randoms {
		if r != nil {
			present = append(present, r)
		}
	}
	if len(present) == 0 {
		return nil
	}

	var results []MetricComparison
	for _, metric := range ComparedMetrics {
		kv := metricValue(kmer, metric)
		if math.IsNaN(kv) {
			continue
		}
		values := make([]float64, len(present))
		for i, r := range present {
			values[i] = metricValue(r, metric)
		}
		results = append(results, CompareMetric(metric, kv, values))
	}
	return results
}
