package samples

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
)

// Pair is one paired-end sample: an identifier plus absolute paths to its
// R1 and R2 read files. Immutable once selected.
type Pair struct {
	ID string
	R1 string
	R2 string
}

// FindPairs discovers paired-end samples named {id}{suffix}_R1.fastq (plain
// or .gz) with a matching _R2 mate. Returns pairs in sorted ID order plus
// the IDs whose R2 mate is missing.
func FindPairs(inputDir, suffix string) ([]Pair, []string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading samples directory: %v", err)
	}

	var pairs []Pair
	var missingR2 []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := ".fastq"
		if strings.HasSuffix(name, ".fastq.gz") {
			ext = ".fastq.gz"
		}
		r1Tail := suffix + "_R1" + ext
		if !strings.HasSuffix(name, r1Tail) {
			continue
		}
		sampleID := strings.TrimSuffix(name, r1Tail)
		r1Path := filepath.Join(inputDir, name)
		r2Path := filepath.Join(inputDir, sampleID+suffix+"_R2"+ext)
		if _, err := os.Stat(r2Path); err != nil {
			missingR2 = append(missingR2, sampleID)
			continue
		}
		pairs = append(pairs, Pair{ID: sampleID, R1: r1Path, R2: r2Path})
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].ID < pairs[j].ID })
	sort.Strings(missingR2)
	return pairs, missingR2, nil
}

// Select deterministically picks n samples from inputDir (same seed gives
// the same selection), symlinks their read files into outputDir and writes
// a selected_samples.txt manifest. Fails if fewer than n pairs exist;
// n <= 0 selects all of them.
func Select(inputDir, outputDir, suffix string, n int, seed uint64) ([]Pair, error) {
	pairs, missingR2, err := FindPairs(inputDir, suffix)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found %d valid paired samples\n", len(pairs))
	if len(missingR2) > 0 {
		fmt.Printf("Warning: %d samples missing R2 files\n", len(missingR2))
		if len(missingR2) <= 10 {
			fmt.Println("Missing R2 for:", missingR2)
		}
	}

	// n <= 0 selects every available sample
	if n <= 0 {
		n = len(pairs)
	}
	if len(pairs) < n {
		return nil, fmt.Errorf("only %d samples available, %d requested", len(pairs), n)
	}

	rng := rand.New(rand.NewSource(seed))
	shuffled := make([]Pair, len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	selected := shuffled[:n]
	sort.Slice(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %v", err)
	}

	fmt.Printf("Creating symlinks for %d samples ...\n", len(selected))
	for _, pair := range selected {
		for _, src := range []string{pair.R1, pair.R2} {
			absSrc, aErr := filepath.Abs(src)
			if aErr != nil {
				return nil, aErr
			}
			link := filepath.Join(outputDir, filepath.Base(src))
			if _, lErr := os.Lstat(link); lErr == nil {
				if rmErr := os.Remove(link); rmErr != nil {
					return nil, rmErr
				}
			}
			if sErr := os.Symlink(absSrc, link); sErr != nil {
				return nil, fmt.Errorf("linking %s: %v", link, sErr)
			}
		}
	}

	manifest := filepath.Join(outputDir, "selected_samples.txt")
	f, err := os.Create(manifest)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fmt.Fprintf(f, "# Selected samples for clustering validation\n")
	fmt.Fprintf(f, "# Total: %d samples\n", len(selected))
	fmt.Fprintf(f, "# Seed: %d\n\n", seed)
	for _, pair := range selected {
		fmt.Fprintln(f, pair.ID)
	}

	fmt.Printf("Selected %d samples, symlinks in %s\n", len(selected), outputDir)
	fmt.Printf("Sample list saved to %s\n", manifest)
	return selected, nil
}

// IDs returns the sample identifiers of pairs, in order.
func IDs(pairs []Pair) []string {
	ids := make([]string, len(pairs))
	for i, pair := range pairs {
		ids[i] = pair.ID
	}
	return ids
}

// ReadManifest loads the sample IDs from a selected_samples.txt file.
func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, nil
}
