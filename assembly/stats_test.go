package assembly

import (
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fastaContent(lengths []int) string {
	var b strings.Builder
	for i, n := range lengths {
		fmt.Fprintf(&b, ">contig_%d\n", i+1)
		seq := strings.Repeat("ACGT", (n+3)/4)[:n]
		for len(seq) > 60 {
			b.WriteString(seq[:60] + "\n")
			seq = seq[60:]
		}
		b.WriteString(seq + "\n")
	}
	return b.String()
}

func TestComputeFastaStats(t *testing.T) {
	lengths := []int{1000, 800, 600, 400, 200}
	path := filepath.Join(t.TempDir(), "assembly.fasta")
	if err := os.WriteFile(path, []byte(fastaContent(lengths)), 0644); err != nil {
		t.Fatalf("writing fasta: %v", err)
	}

	s, err := ComputeFastaStats(path)
	if err != nil {
		t.Fatalf("ComputeFastaStats: %v", err)
	}
	if s == nil {
		t.Fatal("expected stats, got nil")
	}

	if s.NumContigs != 5 || s.TotalLength != 3000 {
		t.Errorf("contigs/total wrong: %d/%d", s.NumContigs, s.TotalLength)
	}
	if s.MaxLength != 1000 || s.MinLength != 200 {
		t.Errorf("min/max wrong: %d/%d", s.MinLength, s.MaxLength)
	}
	if s.MeanLength != 600 || s.MedianLen != 600 {
		t.Errorf("mean/median wrong: %v/%v", s.MeanLength, s.MedianLen)
	}
	if s.N50 != 800 {
		t.Errorf("N50 = %d, want 800", s.N50)
	}
	if s.N75 != 600 {
		t.Errorf("N75 = %d, want 600", s.N75)
	}
	if s.N90 != 400 {
		t.Errorf("N90 = %d, want 400", s.N90)
	}
	if s.Contigs1kb != 1 || s.Contigs5kb != 0 {
		t.Errorf("size classes wrong: 1kb=%d 5kb=%d", s.Contigs1kb, s.Contigs5kb)
	}
	if s.Longest10Sum != 3000 {
		t.Errorf("Longest10Sum = %d, want 3000", s.Longest10Sum)
	}
}

func TestComputeFastaStatsSizeClasses(t *testing.T) {
	lengths := []int{120000, 60000, 12000, 6000, 1500, 700}
	path := filepath.Join(t.TempDir(), "assembly.fasta")
	if err := os.WriteFile(path, []byte(fastaContent(lengths)), 0644); err != nil {
		t.Fatalf("writing fasta: %v", err)
	}
	s, err := ComputeFastaStats(path)
	if err != nil {
		t.Fatalf("ComputeFastaStats: %v", err)
	}
	// classes are cumulative: a 120kb contig counts in every class
	if s.Contigs100kb != 1 || s.Contigs50kb != 2 || s.Contigs10kb != 3 || s.Contigs5kb != 4 || s.Contigs1kb != 5 {
		t.Errorf("size classes wrong: %d %d %d %d %d",
			s.Contigs1kb, s.Contigs5kb, s.Contigs10kb, s.Contigs50kb, s.Contigs100kb)
	}
}

func TestComputeFastaStatsGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assembly.fasta.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating gz: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(fastaContent([]int{500, 300}))); err != nil {
		t.Fatalf("writing gz: %v", err)
	}
	gz.Close()
	f.Close()

	s, err := ComputeFastaStats(path)
	if err != nil {
		t.Fatalf("ComputeFastaStats: %v", err)
	}
	if s.NumContigs != 2 || s.TotalLength != 800 {
		t.Errorf("gzip stats wrong: %d contigs, %d bp", s.NumContigs, s.TotalLength)
	}
}

func TestComputeFastaStatsMissing(t *testing.T) {
	s, err := ComputeFastaStats(filepath.Join(t.TempDir(), "nope.fasta"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if s != nil {
		t.Error("missing file should yield nil stats")
	}
}

func TestParseSeqkitStats(t *testing.T) {
	tsv := "file\tformat\ttype\tnum_seqs\tsum_len\tmin_len\tavg_len\tmax_len\tN50\n" +
		"final_assemblies/kmer_meta_assembly.fasta\tFASTA\tDNA\t100\t500000\t500\t5000.0\t60000\t12000\n" +
		"final_assemblies/global_assembly.fasta\tFASTA\tDNA\t220\t900000\t500\t4090.9\t80000\t9000\n"
	path := filepath.Join(t.TempDir(), "seqkit_stats.tsv")
	if err := os.WriteFile(path, []byte(tsv), 0644); err != nil {
		t.Fatalf("writing tsv: %v", err)
	}

	records, err := ParseSeqkitStats(path)
	if err != nil {
		t.Fatalf("ParseSeqkitStats: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	r := records[0]
	if r.NumSeqs != 100 || r.SumLen != 500000 || r.N50 != 12000 || r.AvgLen != 5000.0 {
		t.Errorf("first record wrong: %+v", r)
	}
	if r.Condition() != "kmer" {
		t.Errorf("condition for %s = %q, want kmer", r.File, r.Condition())
	}
	if records[1].Condition() != "global" {
		t.Errorf("condition for %s = %q, want global", records[1].File, records[1].Condition())
	}
}

func TestParseSeqkitStatsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tsv")
	if err := os.WriteFile(path, []byte("file\tformat\nx\ty\n"), 0644); err != nil {
		t.Fatalf("writing tsv: %v", err)
	}
	if _, err := ParseSeqkitStats(path); err == nil {
		t.Error("missing num_seqs column must be rejected")
	}
}
