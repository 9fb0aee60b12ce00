package assembly

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/montanaflynn/stats"
)

// FastaStats summarises one assembly FASTA. Lengths are in bases.
type FastaStats struct {
	File        string  `json:"file"`
	NumContigs  int     `json:"num_contigs"`
	TotalLength int     `json:"total_length"`
	MinLength   int     `json:"min_length"`
	MaxLength   int     `json:"max_length"`
	MeanLength  float64 `json:"mean_length"`
	MedianLen   float64 `json:"median_length"`
	N50         int     `json:"n50"`
	N75         int     `json:"n75"`
	N90         int     `json:"n90"`

	Contigs1kb   int `json:"contigs_1kb"`
	Contigs5kb   int `json:"contigs_5kb"`
	Contigs10kb  int `json:"contigs_10kb"`
	Contigs50kb  int `json:"contigs_50kb"`
	Contigs100kb int `json:"contigs_100kb"`

	Longest10Sum int `json:"longest_10_sum"`
}

// nx returns the Nx statistic: the length of the contig at which the
// cumulative length of contigs, longest first, reaches frac of the total.
func nx(descLens []int, total int, frac float64) int {
	target := float64(total) * frac
	cum := 0
	for _, l := range descLens {
		cum += l
		if float64(cum) >= target {
			return l
		}
	}
	return 0
}

// ComputeFastaStats scans a (possibly gzipped) FASTA and computes contig
// statistics. A missing file returns nil with a warning so one failed
// condition does not abort the comparison of the others.
func ComputeFastaStats(path string) (*FastaStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Warning: assembly not found: %s\n", path)
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %v", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	r := fasta.NewReader(reader, linear.NewSeq("", nil, alphabet.DNA))
	sc := seqio.NewScanner(r)

	var lens []int
	for sc.Next() {
		lens = append(lens, sc.Seq().Len())
	}
	if err := sc.Error(); err != nil {
		return nil, fmt.Errorf("scanning %s: %v", path, err)
	}
	if len(lens) == 0 {
		fmt.Printf("Warning: no contigs in %s\n", path)
		return nil, nil
	}

	sort.Sort(sort.Reverse(sort.IntSlice(lens)))

	s := &FastaStats{
		File:       path,
		NumContigs: len(lens),
		MaxLength:  lens[0],
		MinLength:  lens[len(lens)-1],
	}
	data := make([]float64, len(lens))
	for i, l := range lens {
		s.TotalLength += l
		data[i] = float64(l)
		switch {
		case l >= 100000:
			s.Contigs100kb++
			fallthrough
		case l >= 50000:
			s.Contigs50kb++
			fallthrough
		case l >= 10000:
			s.Contigs10kb++
			fallthrough
		case l >= 5000:
			s.Contigs5kb++
			fallthrough
		case l >= 1000:
			s.Contigs1kb++
		}
	}
	s.MeanLength, _ = stats.Mean(data)
	s.MedianLen, _ = stats.Median(data)
	s.N50 = nx(lens, s.TotalLength, 0.5)
	s.N75 = nx(lens, s.TotalLength, 0.75)
	s.N90 = nx(lens, s.TotalLength, 0.9)

	top := lens
	if len(top) > 10 {
		top = top[:10]
	}
	for _, l := range top {
		s.Longest10Sum += l
	}
	return s, nil
}

// SeqkitRecord is one row of `seqkit stats -T` output.
type SeqkitRecord struct {
	File    string
	NumSeqs int
	SumLen  int
	MinLen  int
	AvgLen  float64
	MaxLen  int
	N50     int
}

// Condition derives the experimental condition from the assembly filename.
func (r SeqkitRecord) Condition() string {
	base := filepath.Base(r.File)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSuffix(base, "_meta_assembly")
	return strings.TrimSuffix(base, "_assembly")
}

// ParseSeqkitStats parses tab-separated `seqkit stats -T -a` output. Columns
// beyond the ones used here are ignored.
func ParseSeqkitStats(path string) ([]SeqkitRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("seqkit stats file %s has no data rows", path)
	}

	header := strings.Split(lines[0], "\t")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"file", "num_seqs", "sum_len"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("seqkit stats file %s missing column %q", path, required)
		}
	}

	intAt := func(fields []string, name string) int {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return 0
		}
		v, _ := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(fields[i]), ",", ""))
		return v
	}
	floatAt := func(fields []string, name string) float64 {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return 0
		}
		v, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(fields[i]), ",", ""), 64)
		return v
	}

	var records []SeqkitRecord
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		records = append(records, SeqkitRecord{
			File:    strings.TrimSpace(fields[col["file"]]),
			NumSeqs: intAt(fields, "num_seqs"),
			SumLen:  intAt(fields, "sum_len"),
			MinLen:  intAt(fields, "min_len"),
			AvgLen:  floatAt(fields, "avg_len"),
			MaxLen:  intAt(fields, "max_len"),
			N50:     intAt(fields, "N50"),
		})
	}
	return records, nil
}
