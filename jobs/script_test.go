package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testScript() *Script {
	return &Script{
		Name:      "run_megahit_grouped.sh",
		JobName:   "megahit_grouped",
		Stage:     "megahit",
		Resources: MegahitGrouped,
		Tool:      "megahit",
		Tasks: []Task{
			{Command: "megahit -1 a_R1.fastq -2 a_R2.fastq -o out/g1", OutputDir: "out/g1", Info: "group_1 (3 samples)", DoneMarker: "out/g1/.megahit.done"},
			{Command: "megahit -1 b_R1.fastq -2 b_R2.fastq -o out/g2", OutputDir: "out/g2", Info: "group_2 (2 samples)", DoneMarker: "out/g2/.megahit.done"},
		},
	}
}

func TestScriptWrite(t *testing.T) {
	dir := t.TempDir()
	s := testScript()

	path, err := s.Write(dir)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("script should be executable")
	}
	if _, err := os.Stat(filepath.Join(dir, "logs")); err != nil {
		t.Errorf("logs directory should be created: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading script: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"#SBATCH --job-name=megahit_grouped",
		"#SBATCH --array=1-2",
		"#SBATCH --mem=64G",
		"#SBATCH --cpus-per-task=16",
		"#SBATCH --time=24:00:00",
		"command -v megahit",
		`"group_1 (3 samples)"`,
		"TASK_ID=$((SLURM_ARRAY_TASK_ID - 1))",
		`touch "$DONE_MARKER"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("script missing %q", want)
		}
	}
	// no account/partition flags unless configured
	if strings.Contains(text, "--account") || strings.Contains(text, "--partition") {
		t.Error("unset account/partition must not appear in the script")
	}
}

func TestScriptWriteAccountPartition(t *testing.T) {
	s := testScript()
	s.Account = "lab_alloc"
	s.Partition = "general"
	s.MailUser = "user@example.edu"

	path, err := s.Write(t.TempDir())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	text := string(data)
	for _, want := range []string{
		"#SBATCH --account=lab_alloc",
		"#SBATCH --partition=general",
		"#SBATCH --mail-user=user@example.edu",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestScriptWriteEmpty(t *testing.T) {
	s := &Script{Name: "empty.sh", JobName: "empty"}
	if _, err := s.Write(t.TempDir()); err == nil {
		t.Error("a script with no tasks must fail to write")
	}
}
