package grouping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	"github.com/megjohnson1999/assembly-clustering-validation/samples"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// SketchParams are the sourmash sketch settings shared by all samples.
// Jobs caps how many sketch processes run at once.
type SketchParams struct {
	Ksize  int
	Scaled int
	Jobs   int
}

// BuildSketches runs `sourmash sketch dna` for every sample pair, writing one
// .sig file per sample under outDir/sketches. Sketches are independent, so
// params.Jobs of them run at once. Existing sketches are reused.
func BuildSketches(pairs []samples.Pair, outDir string, params SketchParams) ([]string, error) {
	sketchesDir := filepath.Join(outDir, "sketches")
	if err := os.MkdirAll(sketchesDir, 0755); err != nil {
		return nil, err
	}

	fmt.Printf("Creating sourmash sketches for %d samples ...\n", len(pairs))
	sketchFiles := make([]string, len(pairs))

	jobs := params.Jobs
	if jobs <= 0 {
		jobs = 4
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i := range pairs {
		i := i
		pair := pairs[i]
		sketchFile := filepath.Join(sketchesDir, pair.ID+".sig")
		sketchFiles[i] = sketchFile

		if _, err := os.Stat(sketchFile); err == nil {
			fmt.Printf("Sketch exists for %s, skipping\n", pair.ID)
			continue
		}

		g.Go(func() error {
			cmdStr := fmt.Sprintf(`sourmash sketch dna %s %s -o %s --name %s -p k=%d,scaled=%d`,
				pair.R1, pair.R2, sketchFile, pair.ID, params.Ksize, params.Scaled)
			fmt.Println(cmdStr)
			if err := utils.RunBashCmdVerbose(cmdStr); err != nil {
				return fmt.Errorf("sourmash sketch failed for %s: %v", pair.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sketchFiles, nil
}

// CompareSketches runs `sourmash compare --csv` over the sketches and
// returns the path of the similarity matrix CSV. An existing matrix is kept.
func CompareSketches(sketchFiles []string, outDir string) (string, error) {
	matrixFile := filepath.Join(outDir, "sourmash_compare.csv")
	if _, err := os.Stat(matrixFile); err == nil {
		fmt.Println("Similarity matrix exists, reusing ...")
		return matrixFile, nil
	}

	fmt.Println("Computing pairwise similarities ...")
	cmdStr := fmt.Sprintf(`sourmash compare --csv %s %s`, matrixFile, strings.Join(sketchFiles, " "))
	if err := utils.RunBashCmdVerbose(cmdStr); err != nil {
		return "", fmt.Errorf("sourmash compare failed: %v", err)
	}
	return matrixFile, nil
}

// LoadSimilarityMatrix reads a sourmash compare CSV (header row of sample
// names, then a square matrix of similarities) into names and matrix form.
func LoadSimilarityMatrix(path string) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("reading similarity matrix %s: %v", path, df.Err)
	}

	names := df.Names()
	n := len(names)
	if df.Nrow() != n {
		return nil, nil, fmt.Errorf("similarity matrix %s is %dx%d, expected square", path, df.Nrow(), n)
	}

	sim := make([][]float64, n)
	for i := 0; i < n; i++ {
		sim[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			sim[i][j] = df.Elem(i, j).Float()
		}
	}
	return names, sim, nil
}

// ClusterBySimilarity merges samples by average-linkage agglomeration: the
// most similar cluster pair is merged while the average pairwise similarity
// stays at or above the threshold and the merged cluster fits maxSize.
// Clusters outside [minSize, maxSize] dissolve into individual samples.
func ClusterBySimilarity(names []string, sim [][]float64, threshold float64, minSize, maxSize int) (groups [][]string, individual []string) {
	clusters := make([][]int, len(names))
	for i := range names {
		clusters[i] = []int{i}
	}

	avgSim := func(a, b []int) float64 {
		total := 0.0
		for _, i := range a {
			for _, j := range b {
				total += sim[i][j]
			}
		}
		return total / float64(len(a)*len(b))
	}

	for {
		bestI, bestJ := -1, -1
		bestSim := threshold
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if len(clusters[i])+len(clusters[j]) > maxSize {
					continue
				}
				if s := avgSim(clusters[i], clusters[j]); s >= bestSim {
					bestSim = s
					bestI, bestJ = i, j
				}
			}
		}
		if bestI < 0 {
			break
		}
		merged := append(append([]int{}, clusters[bestI]...), clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
		clusters[bestI] = merged
	}

	for _, cluster := range clusters {
		members := make([]string, len(cluster))
		for i, idx := range cluster {
			members[i] = names[idx]
		}
		sort.Strings(members)
		if len(members) >= minSize && len(members) <= maxSize {
			groups = append(groups, members)
		} else {
			individual = append(individual, members...)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	sort.Strings(individual)
	return groups, individual
}

// KmerGrouping runs the full similarity-grouping step: sketch, compare,
// cluster. Zero valid clusters is a valid, informative outcome, not an
// error: every sample becomes its own singleton group and the grouping is
// marked DegenerateFallback.
func KmerGrouping(pairs []samples.Pair, outDir string, params SketchParams, threshold float64, minSize, maxSize int) (*Grouping, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	sketchFiles, err := BuildSketches(pairs, outDir, params)
	if err != nil {
		return nil, err
	}
	if len(sketchFiles) == 0 {
		return nil, fmt.Errorf("no sketches created - check input directory and file format")
	}

	matrixFile, err := CompareSketches(sketchFiles, outDir)
	if err != nil {
		return nil, err
	}

	names, sim, err := LoadSimilarityMatrix(matrixFile)
	if err != nil {
		return nil, err
	}

	fmt.Printf("Clustering %d samples (threshold=%.2f) ...\n", len(names), threshold)
	groups, individual := ClusterBySimilarity(names, sim, threshold, minSize, maxSize)

	g := &Grouping{
		Strategy:   "kmer_grouped",
		Tool:       "sourmash",
		Confidence: 0.85,
	}

	if len(groups) == 0 {
		fmt.Println("No sample pairs met the similarity threshold; falling back to singleton groups")
		sorted := make([]string, len(names))
		copy(sorted, names)
		sort.Strings(sorted)
		for i, name := range sorted {
			g.Groups = append(g.Groups, Group{
				ID:       fmt.Sprintf("group_%d", i+1),
				Samples:  []string{name},
				Size:     1,
				Strategy: "grouped",
			})
		}
		g.DegenerateFallback = true
	} else {
		for i, members := range groups {
			g.Groups = append(g.Groups, Group{
				ID:       fmt.Sprintf("group_%d", i+1),
				Samples:  members,
				Size:     len(members),
				Strategy: "grouped",
			})
		}
		g.Individual = individual
	}
	g.summarize()

	fmt.Printf("Created %d groups, %d individual samples\n", g.Summary.TotalGroups, g.Summary.IndividualSamples)
	return g, nil
}
