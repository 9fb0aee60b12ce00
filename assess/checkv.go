package assess

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
)

// CheckvSummary aggregates one CheckV quality_summary.tsv into per-strategy
// counts and means.
type CheckvSummary struct {
	Strategy         string  `json:"strategy"`
	TotalContigs     int     `json:"total_contigs"`
	Complete         int     `json:"complete"`
	HighQuality      int     `json:"high_quality"`
	MediumQuality    int     `json:"medium_quality"`
	LowQuality       int     `json:"low_quality"`
	NotDetermined    int     `json:"not_determined"`
	ViralGenesMean   float64 `json:"viral_genes_mean"`
	HostGenesMean    float64 `json:"host_genes_mean"`
	CompletenessMean float64 `json:"completeness_mean"`
}

// QualityPct returns the share of contigs classified Medium-quality or
// better, as a percentage.
func (s CheckvSummary) QualityPct() float64 {
	if s.TotalContigs == 0 {
		return 0
	}
	return float64(s.Complete+s.HighQuality+s.MediumQuality) / float64(s.TotalContigs) * 100
}

func colMean(df dataframe.DataFrame, name string) float64 {
	for _, n := range df.Names() {
		if n != name {
			continue
		}
		var sum float64
		var count int
		for _, v := range df.Col(name).Float() {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			return 0
		}
		return sum / float64(count)
	}
	return 0
}

// SummarizeCheckv reads a CheckV quality_summary.tsv and aggregates its
// per-contig records. A missing file returns nil with a warning so one
// strategy without viral assessment does not abort the summary.
func SummarizeCheckv(checkvDir, strategy string) (*CheckvSummary, error) {
	path := filepath.Join(checkvDir, strategy, "quality_summary.tsv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Warning: CheckV results not found for %s\n", strategy)
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.WithDelimiter('\t'))
	if df.Err != nil {
		return nil, fmt.Errorf("reading %s: %v", path, df.Err)
	}

	summary := &CheckvSummary{Strategy: strategy, TotalContigs: df.Nrow()}
	if df.Nrow() == 0 {
		return summary, nil
	}

	for _, quality := range df.Col("checkv_quality").Records() {
		switch quality {
		case "Complete":
			summary.Complete++
		case "High-quality":
			summary.HighQuality++
		case "Medium-quality":
			summary.MediumQuality++
		case "Low-quality":
			summary.LowQuality++
		default:
			summary.NotDetermined++
		}
	}
	summary.ViralGenesMean = colMean(df, "viral_genes")
	summary.HostGenesMean = colMean(df, "host_genes")
	summary.CompletenessMean = colMean(df, "completeness")
	return summary, nil
}
