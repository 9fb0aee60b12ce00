package assembly

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/jobs"
)

func writeReads(t *testing.T, dir, id, suffix string) {
	t.Helper()
	for _, mate := range []string{"_R1", "_R2"} {
		path := filepath.Join(dir, id+suffix+mate+".fastq")
		if err := os.WriteFile(path, []byte("@r\nACGT\n+\nIIII\n"), 0644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
}

func TestMegahitTask(t *testing.T) {
	samplesDir := t.TempDir()
	suffix := "_rrna_removed"
	writeReads(t, samplesDir, "s1", suffix)
	writeReads(t, samplesDir, "s2", suffix)

	group := grouping.Group{ID: "group_1", Samples: []string{"s1", "s2", "s_missing"}, Size: 3}
	task, err := MegahitTask(group, "kmer", samplesDir, "/out", suffix, 16, DefaultParams())
	if err != nil {
		t.Fatalf("MegahitTask: %v", err)
	}

	// member reads are comma-joined, missing member skipped
	r1 := filepath.Join(samplesDir, "s1"+suffix+"_R1.fastq") + "," + filepath.Join(samplesDir, "s2"+suffix+"_R1.fastq")
	if !strings.Contains(task.Command, "-1 "+r1) {
		t.Errorf("R1 list wrong in command: %s", task.Command)
	}
	if strings.Contains(task.Command, "s_missing") {
		t.Errorf("missing sample must be skipped: %s", task.Command)
	}
	for _, want := range []string{
		"--min-contig-len 500", "--k-min 45", "--k-max 225", "--k-step 26", "--min-count 2", "-t 16",
		"--out-prefix group_1",
	} {
		if !strings.Contains(task.Command, want) {
			t.Errorf("command missing %q: %s", want, task.Command)
		}
	}
	if task.Info != "group_1 (2 samples)" {
		t.Errorf("task info wrong: %s", task.Info)
	}
	if task.DoneMarker == "" {
		t.Error("task must carry a completion marker")
	}
}

func TestMegahitTaskMissingR2(t *testing.T) {
	samplesDir := t.TempDir()
	suffix := "_rrna_removed"
	writeReads(t, samplesDir, "s1", suffix)
	// s2 has an R1 but no mate
	orphan := filepath.Join(samplesDir, "s2"+suffix+"_R1.fastq")
	if err := os.WriteFile(orphan, []byte("@r\nACGT\n+\nIIII\n"), 0644); err != nil {
		t.Fatalf("writing orphan: %v", err)
	}

	group := grouping.Group{ID: "group_1", Samples: []string{"s1", "s2"}, Size: 2}
	task, err := MegahitTask(group, "kmer", samplesDir, "/out", suffix, 8, DefaultParams())
	if err != nil {
		t.Fatalf("MegahitTask: %v", err)
	}
	if strings.Contains(task.Command, "s2") {
		t.Errorf("sample without an R2 mate must be skipped: %s", task.Command)
	}
	if task.Info != "group_1 (1 samples)" {
		t.Errorf("task info wrong: %s", task.Info)
	}
}

func TestMegahitTaskAllMissing(t *testing.T) {
	group := grouping.Group{ID: "group_1", Samples: []string{"nope"}, Size: 1}
	if _, err := MegahitTask(group, "kmer", t.TempDir(), "/out", "_rrna_removed", 8, DefaultParams()); err == nil {
		t.Error("a group with no readable samples must error")
	}
}

func TestFinalAssemblyPaths(t *testing.T) {
	if got := FinalAssembly("/out", "kmer"); got != "/out/final_assemblies/kmer_meta_assembly.fasta" {
		t.Errorf("kmer path wrong: %s", got)
	}
	if got := FinalAssembly("/out", "global"); got != "/out/final_assemblies/global_assembly.fasta" {
		t.Errorf("global path wrong: %s", got)
	}
	if got := FinalAssembly("/out", "random_42"); got != "/out/final_assemblies/random_42_meta_assembly.fasta" {
		t.Errorf("random path wrong: %s", got)
	}
}

func TestConcatAndFlyeTasks(t *testing.T) {
	cond := Condition{
		Name: "kmer",
		Grouping: &grouping.Grouping{
			Strategy:   "kmer_grouped",
			Groups:     []grouping.Group{{ID: "group_1", Samples: []string{"s1", "s2"}}},
			Individual: []string{"s3"},
		},
	}

	concat := ConcatTask(cond, "/out")
	if !strings.HasPrefix(concat.Command, "cat ") {
		t.Errorf("concat command wrong: %s", concat.Command)
	}
	// grouped contigs plus the individual sample's contigs
	if !strings.Contains(concat.Command, "group_1.contigs.fa") || !strings.Contains(concat.Command, "s3.contigs.fa") {
		t.Errorf("concat inputs wrong: %s", concat.Command)
	}
	if !strings.Contains(concat.Command, "> /out/concatenated/kmer_all_contigs.fasta") {
		t.Errorf("concat output wrong: %s", concat.Command)
	}

	flye := FlyeTask(cond, "/out", 16)
	for _, want := range []string{
		"flye --subassemblies /out/concatenated/kmer_all_contigs.fasta",
		"--plasmids", "-g 1g",
		"cp /out/flye_meta/kmer/assembly.fasta /out/final_assemblies/kmer_meta_assembly.fasta",
	} {
		if !strings.Contains(flye.Command, want) {
			t.Errorf("flye command missing %q: %s", want, flye.Command)
		}
	}
}

func TestBuildPlan(t *testing.T) {
	samplesDir := t.TempDir()
	outDir := t.TempDir()
	suffix := "_rrna_removed"
	for _, id := range []string{"s1", "s2", "s3", "s4"} {
		writeReads(t, samplesDir, id, suffix)
	}

	conditions := []Condition{
		{Name: "individual", Grouping: &grouping.Grouping{Strategy: "individual", Individual: []string{"s1", "s2", "s3", "s4"}}},
		{Name: "kmer", Grouping: &grouping.Grouping{
			Strategy: "kmer_grouped",
			Groups:   []grouping.Group{{ID: "group_1", Samples: []string{"s1", "s2", "s3"}}},
		}},
		{Name: "global", Grouping: &grouping.Grouping{
			Strategy: "global",
			Groups:   []grouping.Group{{ID: "global_all_samples", Samples: []string{"s1", "s2", "s3", "s4"}}},
		}},
	}

	plan, err := BuildPlan(conditions, samplesDir, outDir, suffix, DefaultParams(), "", "", "")
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	if len(plan.MegahitScripts) != 3 {
		t.Fatalf("expected individual/grouped/global scripts, got %d", len(plan.MegahitScripts))
	}
	byName := map[string]int{}
	for _, s := range plan.MegahitScripts {
		byName[s.JobName] = len(s.Tasks)
	}
	if byName["megahit_individual"] != 4 {
		t.Errorf("individual tasks = %d, want 4", byName["megahit_individual"])
	}
	if byName["megahit_grouped"] != 1 {
		t.Errorf("grouped tasks = %d, want 1", byName["megahit_grouped"])
	}
	if byName["megahit_global"] != 1 {
		t.Errorf("global tasks = %d, want 1", byName["megahit_global"])
	}

	if plan.ConcatScript == nil || len(plan.ConcatScript.Tasks) != 2 {
		t.Fatalf("concat stage should cover individual and kmer conditions: %+v", plan.ConcatScript)
	}
	// flye covers the individual + kmer meta-assemblies; the global copy
	// rides its own lightweight script in the same stage
	if plan.FlyeScript == nil || len(plan.FlyeScript.Tasks) != 2 {
		t.Fatalf("flye stage should have 2 tasks: %+v", plan.FlyeScript)
	}
	if plan.CopyScript == nil || len(plan.CopyScript.Tasks) != 1 {
		t.Fatalf("global copy should have its own script with 1 task: %+v", plan.CopyScript)
	}
	if plan.CopyScript.Resources != jobs.CopyOnly {
		t.Errorf("global copy should use the copy-only resource class: %+v", plan.CopyScript.Resources)
	}

	stages := plan.Scripts()
	if len(stages) != 3 {
		t.Errorf("expected 3 submission stages, got %d", len(stages))
	}
	if got := len(stages[2]); got != 2 {
		t.Errorf("final stage should submit flye and the global copy together, got %d scripts", got)
	}

	// output scaffolding is created up front
	for _, sub := range []string{"concatenated", "flye_meta", "final_assemblies"} {
		if _, err := os.Stat(filepath.Join(outDir, sub)); err != nil {
			t.Errorf("missing output dir %s: %v", sub, err)
		}
	}
}
