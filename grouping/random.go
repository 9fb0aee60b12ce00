package grouping

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
)

func shuffled(sampleIDs []string, seed int) []string {
	ids := make([]string, len(sampleIDs))
	copy(ids, sampleIDs)
	sort.Strings(ids)
	rng := rand.New(rand.NewSource(uint64(seed)))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

// RandomPartition deterministically partitions the samples into groups of
// groupSize. The same seed always yields the same membership; N samples give
// ceil(N/g) groups with the last group holding the remainder.
func RandomPartition(sampleIDs []string, groupSize, seed int) *Grouping {
	ids := shuffled(sampleIDs, seed)

	g := &Grouping{
		Strategy:   "random_grouped",
		Tool:       "random_partition",
		Seed:       seed,
		Confidence: 0.5,
	}
	for start := 0; start < len(ids); start += groupSize {
		end := start + groupSize
		if end > len(ids) {
			end = len(ids)
		}
		members := make([]string, end-start)
		copy(members, ids[start:end])
		g.Groups = append(g.Groups, Group{
			ID:       fmt.Sprintf("random_seed%d_group_%d", seed, len(g.Groups)+1),
			Samples:  members,
			Size:     len(members),
			Strategy: "grouped",
		})
	}
	g.summarize()
	return g
}

// RandomMatched builds a random grouping with the same group-size structure
// as the reference grouping, for null-hypothesis replicates: the reference's
// samples are shuffled and sliced into groups of identical sizes.
func RandomMatched(ref *Grouping, seed int) *Grouping {
	ids := shuffled(ref.AllSamples(), seed)

	g := &Grouping{
		Strategy:   "random_grouped",
		Tool:       "random_matched",
		Seed:       seed,
		Confidence: 0.5,
	}
	idx := 0
	for i, refGroup := range ref.Groups {
		size := len(refGroup.Samples)
		members := make([]string, size)
		copy(members, ids[idx:idx+size])
		idx += size
		g.Groups = append(g.Groups, Group{
			ID:       fmt.Sprintf("random_seed%d_group_%d", seed, i+1),
			Samples:  members,
			Size:     size,
			Strategy: "grouped",
		})
	}
	g.Individual = append(g.Individual, ids[idx:]...)
	g.summarize()
	return g
}

// Individuals is the baseline strategy: every sample assembled on its own.
func Individuals(sampleIDs []string) *Grouping {
	ids := make([]string, len(sampleIDs))
	copy(ids, sampleIDs)
	sort.Strings(ids)
	g := &Grouping{
		Strategy:   "individual",
		Tool:       "individual_assembly",
		Confidence: 1.0,
		Individual: ids,
	}
	g.summarize()
	return g
}

// Global puts every sample into one group: maximum co-assembly cooperation,
// maximum contamination risk.
func Global(sampleIDs []string) *Grouping {
	ids := make([]string, len(sampleIDs))
	copy(ids, sampleIDs)
	sort.Strings(ids)
	g := &Grouping{
		Strategy:   "global",
		Tool:       "global_assembly",
		Confidence: 1.0,
		Groups: []Group{{
			ID:       "global_all_samples",
			Samples:  ids,
			Size:     len(ids),
			Strategy: "grouped",
		}},
	}
	g.summarize()
	return g
}

// SizeStrategies generates one random grouping per requested group size for
// each seed, plus the individual and global baselines. Used for the
// literature-informed group-size sweep.
func SizeStrategies(sampleIDs []string, sizes []int, seeds []int) []*Grouping {
	groupings := []*Grouping{Individuals(sampleIDs)}
	for _, size := range sizes {
		for _, seed := range seeds {
			g := RandomPartition(sampleIDs, size, seed)
			g.Strategy = fmt.Sprintf("groups_size_%d", size)
			groupings = append(groupings, g)
		}
	}
	groupings = append(groupings, Global(sampleIDs))
	return groupings
}
