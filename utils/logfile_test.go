package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseLogFile(t *testing.T) {
	logContent := `{"time":"2025-11-03T10:11:02.572267197-06:00","level":"INFO","msg":"PIPELINE","PROGRAM":"INITIALISE","CONDITION":"ALL","GROUP":"ALL","STATUS":"STARTED","CMD":"ALL"}
{"time":"2025-11-03T10:11:03.397122518-06:00","level":"INFO","msg":"PIPELINE","PROGRAM":"SELECT","CONDITION":"ALL","GROUP":"ALL","STATUS":"STARTED","CMD":"ALL"}
{"time":"2025-11-03T10:12:05.019476930-06:00","level":"INFO","msg":"PIPELINE","PROGRAM":"SELECT","CONDITION":"ALL","GROUP":"ALL","STATUS":"COMPLETED","CMD":"ALL"}
{"time":"2025-11-03T10:12:06.687393372-06:00","level":"INFO","msg":"PIPELINE","PROGRAM":"KMER_GROUPING","CONDITION":"kmer","GROUP":"ALL","STATUS":"STARTED","CMD":"ALL"}
{"time":"2025-11-03T11:20:17.308876904-06:00","level":"INFO","msg":"PIPELINE","PROGRAM":"SUBMIT_megahit","CONDITION":"kmer","GROUP":"group_1","STATUS":"COMPLETED","CMD":"ALL"}
not json at all
{"time":"2025-11-03T11:23:58.626151562-06:00","level":"ERROR","msg":"PIPELINE","PROGRAM":"SUBMIT_flye_meta","CONDITION":"kmer","GROUP":"ALL","STATUS":"FAILED","CMD":"ALL"}`

	logFilePath := filepath.Join(t.TempDir(), "pipeline.log")
	if err := os.WriteFile(logFilePath, []byte(logContent), 0644); err != nil {
		t.Fatalf("writing log file: %v", err)
	}

	entries := ParseLogFile(logFilePath)
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries (malformed line skipped), got %d", len(entries))
	}
	if entries[0].Program != "INITIALISE" || entries[0].Tool != "PIPELINE" {
		t.Errorf("first entry parsed wrong: %+v", entries[0])
	}
	if entries[4].Group != "group_1" {
		t.Errorf("expected GROUP group_1, got %q", entries[4].Group)
	}
}

func TestParseLogFileMissing(t *testing.T) {
	entries := ParseLogFile(filepath.Join(t.TempDir(), "does-not-exist.log"))
	if entries != nil {
		t.Errorf("missing log file should yield an empty log, got %d entries", len(entries))
	}
}

func TestStageHasCompleted(t *testing.T) {
	entries := []LogEntry{
		{Program: "SELECT", Condition: "ALL", Group: "ALL", Status: "COMPLETED"},
		{Program: "KMER_GROUPING", Condition: "kmer", Group: "ALL", Status: "STARTED"},
		{Program: "SUBMIT_megahit", Condition: "kmer", Group: "group_1", Status: "COMPLETED"},
	}

	if !StageHasCompleted(entries, "SELECT", "ALL", "ALL") {
		t.Error("SELECT should be completed")
	}
	if StageHasCompleted(entries, "KMER_GROUPING", "kmer", "ALL") {
		t.Error("KMER_GROUPING only started, must not count as completed")
	}
	if !StageHasCompleted(entries, "SUBMIT_megahit", "kmer", "group_1") {
		t.Error("SUBMIT_megahit for group_1 should be completed")
	}
	if StageHasCompleted(entries, "SUBMIT_megahit", "kmer", "group_2") {
		t.Error("group_2 never completed")
	}
	// ALL on the query side matches any logged group
	if !StageHasCompleted(entries, "SUBMIT_megahit", "kmer", "ALL") {
		t.Error("ALL query should match the group_1 completion")
	}
}
