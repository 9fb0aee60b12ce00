package assess

import (
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

func createMetricBar(metric string, conditions []string, values []float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: metricLabel(metric)}),
		charts.WithYAxisOpts(opts.YAxis{Name: metricLabel(metric)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Condition"}),
	)
	var data []opts.BarData
	for _, v := range values {
		data = append(data, opts.BarData{Value: v})
	}
	bar.SetXAxis(conditions).AddSeries(metric, data)
	return bar
}

// PlotComparisonCharts renders one bar chart per compared metric across all
// conditions into a single HTML page.
func PlotComparisonCharts(all []ConditionStats, outputDir string) (string, error) {
	var conditions []string
	var present []ConditionStats
	for _, cs := range all {
		if cs.Stats == nil {
			continue
		}
		conditions = append(conditions, cs.Condition)
		present = append(present, cs)
	}
	if len(present) == 0 {
		return "", nil
	}

	page := components.NewPage()
	for _, metric := range ComparedMetrics {
		values := make([]float64, len(present))
		for i, cs := range present {
			values[i] = metricValue(cs.Stats, metric)
		}
		page.AddCharts(createMetricBar(metric, conditions, values))
	}

	htmlFile := filepath.Join(outputDir, "comparison_charts.html")
	f, err := os.Create(htmlFile)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return "", err
	}
	return htmlFile, nil
}
