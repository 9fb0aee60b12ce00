package assess

// Verdict is the categorical outcome of the k-mer vs random comparison.
type Verdict string

const (
	StronglyPromising Verdict = "STRONGLY PROMISING"
	Promising         Verdict = "PROMISING"
	Mixed             Verdict = "MIXED"
	NotPromising      Verdict = "NOT PROMISING"
	AnalysisFailed    Verdict = "ANALYSIS_FAILED"
)

// VerdictRules are the thresholds that map per-metric comparison outcomes to
// a verdict. They are configurable because the appropriate cutoffs depend on
// how many metrics and replicates an experiment runs; the defaults encode
// the rules this study was designed with.
type VerdictRules struct {
	// StronglyPromisingMin: metrics where k-mer beats ALL replicates.
	StronglyPromisingMin int
	// PromisingBeats: per-metric replicate count counted as "beats most".
	PromisingBeats int
	// PromisingMin: metrics beating PromisingBeats replicates, with no
	// metric worse than the worst replicate.
	PromisingMin int
	// MixedMin / MixedMaxWorse: metrics beating the replicate average,
	// tolerating up to MixedMaxWorse metrics below the worst replicate.
	MixedMin      int
	MixedMaxWorse int
}

func DefaultVerdictRules() VerdictRules {
	return VerdictRules{
		StronglyPromisingMin: 4,
		PromisingBeats:       4,
		PromisingMin:         4,
		MixedMin:             4,
		MixedMaxWorse:        1,
	}
}

// Tally counts the comparison signals the verdict rules look at.
type Tally struct {
	TotalMetrics   int
	BeatsAll       int
	BeatsMost      int
	BeatsAverage   int
	WorseThanWorst int
}

func Count(results []MetricComparison, rules VerdictRules) Tally {
	t := Tally{TotalMetrics: len(results)}
	for _, r := range results {
		if r.BetterThanBest {
			t.BeatsAll++
		}
		if r.BeatsN >= rules.PromisingBeats {
			t.BeatsMost++
		}
		if r.BetterThanAvg {
			t.BeatsAverage++
		}
		if r.WorseThanWorst {
			t.WorseThanWorst++
		}
	}
	return t
}

// Decide maps the tally to the four-category verdict. A nil or empty
// comparison means the analysis could not be performed at all.
func Decide(results []MetricComparison, rules VerdictRules) Verdict {
	if len(results) == 0 {
		return AnalysisFailed
	}
	t := Count(results, rules)
	switch {
	case t.BeatsAll >= rules.StronglyPromisingMin:
		return StronglyPromising
	case t.BeatsMost >= rules.PromisingMin && t.WorseThanWorst == 0:
		return Promising
	case t.BeatsAverage >= rules.MixedMin && t.WorseThanWorst <= rules.MixedMaxWorse:
		return Mixed
	}
	return NotPromising
}
