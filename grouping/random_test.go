package grouping

import (
	"fmt"
	"testing"
)

func sampleIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("sample_%02d", i+1)
	}
	return ids
}

func membership(g *Grouping) string {
	s := ""
	for _, group := range g.Groups {
		s += fmt.Sprintf("%v;", group.Samples)
	}
	return s
}

func TestRandomPartitionReproducible(t *testing.T) {
	ids := sampleIDs(12)

	a := RandomPartition(ids, 5, 42)
	b := RandomPartition(ids, 5, 42)
	if membership(a) != membership(b) {
		t.Error("same seed must give identical group membership")
	}

	c := RandomPartition(ids, 5, 43)
	if membership(a) == membership(c) {
		t.Error("different seeds must give different membership")
	}
}

func TestRandomPartitionSizes(t *testing.T) {
	ids := sampleIDs(12)
	g := RandomPartition(ids, 5, 42)

	// ceil(12/5) = 3 groups, last holds the remainder of 2
	if len(g.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(g.Groups))
	}
	if len(g.Groups[0].Samples) != 5 || len(g.Groups[1].Samples) != 5 || len(g.Groups[2].Samples) != 2 {
		t.Errorf("group sizes wrong: %d %d %d",
			len(g.Groups[0].Samples), len(g.Groups[1].Samples), len(g.Groups[2].Samples))
	}
	if err := g.Validate(ids); err != nil {
		t.Errorf("partition invariant violated: %v", err)
	}
	if g.Summary.TotalSamples != 12 || g.Summary.TotalGroups != 3 {
		t.Errorf("summary wrong: %+v", g.Summary)
	}
}

func TestRandomMatchedStructure(t *testing.T) {
	ids := sampleIDs(10)
	ref := &Grouping{
		Strategy: "kmer_grouped",
		Groups: []Group{
			{ID: "group_1", Samples: ids[0:4], Size: 4},
			{ID: "group_2", Samples: ids[4:7], Size: 3},
		},
		Individual: ids[7:],
	}

	g := RandomMatched(ref, 42)
	if len(g.Groups) != 2 {
		t.Fatalf("expected 2 groups matching the reference, got %d", len(g.Groups))
	}
	if len(g.Groups[0].Samples) != 4 || len(g.Groups[1].Samples) != 3 {
		t.Errorf("group sizes must match the reference: %d %d",
			len(g.Groups[0].Samples), len(g.Groups[1].Samples))
	}
	if len(g.Individual) != 3 {
		t.Errorf("leftover samples must go individual, got %d", len(g.Individual))
	}
	if err := g.Validate(ids); err != nil {
		t.Errorf("matched grouping invalid: %v", err)
	}
}

func TestBaselines(t *testing.T) {
	ids := sampleIDs(6)

	ind := Individuals(ids)
	if len(ind.Groups) != 0 || len(ind.Individual) != 6 {
		t.Errorf("individual baseline wrong: %+v", ind.Summary)
	}

	glob := Global(ids)
	if len(glob.Groups) != 1 || glob.Groups[0].ID != "global_all_samples" {
		t.Fatalf("global baseline wrong: %+v", glob.Groups)
	}
	if len(glob.Groups[0].Samples) != 6 {
		t.Errorf("global group must hold all samples, got %d", len(glob.Groups[0].Samples))
	}
}

func TestSizeStrategies(t *testing.T) {
	ids := sampleIDs(10)
	groupings := SizeStrategies(ids, []int{3, 5}, []int{42})

	// individual + one per size + global
	if len(groupings) != 4 {
		t.Fatalf("expected 4 groupings, got %d", len(groupings))
	}
	if groupings[1].Strategy != "groups_size_3" || groupings[2].Strategy != "groups_size_5" {
		t.Errorf("strategy names wrong: %s %s", groupings[1].Strategy, groupings[2].Strategy)
	}
	for _, g := range groupings {
		if err := g.Validate(ids); err != nil {
			t.Errorf("grouping %s invalid: %v", g.Strategy, err)
		}
	}
}
