package grouping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Group is one co-assembly unit: a named, ordered list of sample IDs.
type Group struct {
	ID       string   `json:"group_id"`
	Samples  []string `json:"samples"`
	Size     int      `json:"size"`
	Strategy string   `json:"assembly_strategy"`
}

type Summary struct {
	TotalSamples      int `json:"total_samples"`
	GroupedSamples    int `json:"grouped_samples"`
	IndividualSamples int `json:"individual_samples"`
	TotalGroups       int `json:"total_groups"`
}

// Grouping is a named partition of the sample set. Samples live either in
// exactly one group or in the Individual list, never both. The JSON layout
// is the assembly_recommendations.json format consumed by the job generator.
type Grouping struct {
	Strategy           string   `json:"strategy"`
	Tool               string   `json:"tool,omitempty"`
	Seed               int      `json:"seed,omitempty"`
	Confidence         float64  `json:"confidence"`
	Groups             []Group  `json:"groups"`
	Individual         []string `json:"individual_samples"`
	Summary            Summary  `json:"summary"`
	DegenerateFallback bool     `json:"degenerate_fallback,omitempty"`
}

// AllSamples returns every sample of the grouping, grouped ones first.
func (g *Grouping) AllSamples() []string {
	var all []string
	for _, group := range g.Groups {
		all = append(all, group.Samples...)
	}
	all = append(all, g.Individual...)
	return all
}

func (g *Grouping) summarize() {
	grouped := 0
	for _, group := range g.Groups {
		grouped += len(group.Samples)
	}
	g.Summary = Summary{
		TotalSamples:      grouped + len(g.Individual),
		GroupedSamples:    grouped,
		IndividualSamples: len(g.Individual),
		TotalGroups:       len(g.Groups),
	}
}

// Validate checks the partition invariant: every sample of sampleIDs appears
// exactly once across groups and the individual list, with no strangers.
func (g *Grouping) Validate(sampleIDs []string) error {
	want := make(map[string]bool, len(sampleIDs))
	for _, id := range sampleIDs {
		want[id] = true
	}
	seen := make(map[string]bool, len(sampleIDs))
	for _, id := range g.AllSamples() {
		if !want[id] {
			return fmt.Errorf("grouping %s contains unknown sample %s", g.Strategy, id)
		}
		if seen[id] {
			return fmt.Errorf("grouping %s contains sample %s more than once", g.Strategy, id)
		}
		seen[id] = true
	}
	if len(seen) != len(want) {
		var missing []string
		for id := range want {
			if !seen[id] {
				missing = append(missing, id)
			}
		}
		sort.Strings(missing)
		return fmt.Errorf("grouping %s omits %d samples: %v", g.Strategy, len(missing), missing)
	}
	return nil
}

// Load reads an assembly_recommendations.json produced by this package or by
// an external clustering tool. The contents are accepted as-is.
func Load(path string) (*Grouping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Grouping
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing %s: %v", path, err)
	}
	if len(g.Groups) == 0 && len(g.Individual) == 0 {
		return nil, fmt.Errorf("no groups found in %s", path)
	}
	return &g, nil
}

// Write saves the grouping as assembly_recommendations.json under dir.
func (g *Grouping) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	g.summarize()
	path := filepath.Join(dir, "assembly_recommendations.json")
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary writes the human-readable grouping summary next to the JSON.
func (g *Grouping) WriteSummary(dir string) error {
	path := filepath.Join(dir, "grouping_summary.txt")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "%s grouping summary\n", g.Strategy)
	fmt.Fprintf(f, "========================================\n\n")
	fmt.Fprintf(f, "Total samples: %d\n", g.Summary.TotalSamples)
	fmt.Fprintf(f, "Groups: %d\n", g.Summary.TotalGroups)
	fmt.Fprintf(f, "Grouped samples: %d\n", g.Summary.GroupedSamples)
	fmt.Fprintf(f, "Individual samples: %d\n", g.Summary.IndividualSamples)
	if g.DegenerateFallback {
		fmt.Fprintf(f, "\nNOTE: clustering found no valid groups; every sample was\n")
		fmt.Fprintf(f, "assigned its own singleton group. This is a valid outcome,\n")
		fmt.Fprintf(f, "not a tool failure.\n")
	}
	fmt.Fprintf(f, "\nGroup details:\n")
	for _, group := range g.Groups {
		fmt.Fprintf(f, "  %s: %d samples", group.ID, len(group.Samples))
		for i, s := range group.Samples {
			if i == 0 {
				fmt.Fprintf(f, " - %s", s)
			} else {
				fmt.Fprintf(f, ", %s", s)
			}
		}
		fmt.Fprintln(f)
	}
	if len(g.Individual) > 0 {
		fmt.Fprintf(f, "\nIndividual samples: %d\n", len(g.Individual))
	}
	return nil
}
