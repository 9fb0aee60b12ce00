package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// LogEntry is one JSON line of a pipeline stage log, as written by
// slog.NewJSONHandler with the PROGRAM/CONDITION/GROUP/STATUS keys.
type LogEntry struct {
	Timestamp string `json:"time"`
	Level     string `json:"level"`
	Tool      string `json:"msg"`
	Program   string `json:"PROGRAM"`
	Condition string `json:"CONDITION"`
	Group     string `json:"GROUP"`
	Status    string `json:"STATUS"`
	Cmd       string `json:"CMD"`
}

// ParseLogFile reads a stage log back into entries. A missing file is an
// empty log, not an error, so a fresh run starts with nothing completed.
func ParseLogFile(logFilePath string) []LogEntry {
	logFile, err := os.Open(logFilePath)
	if err != nil {
		return nil
	}
	defer logFile.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(logFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			fmt.Printf("Skipping malformed log line: %v\n", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// StageHasCompleted reports whether the given program has a COMPLETED entry
// for the condition and group. "ALL" matches any value on either side.
func StageHasCompleted(entries []LogEntry, program, condition, group string) bool {
	for _, entry := range entries {
		if entry.Program != program || entry.Status != "COMPLETED" {
			continue
		}
		if condition != "ALL" && entry.Condition != "ALL" && entry.Condition != condition {
			continue
		}
		if group != "ALL" && entry.Group != "ALL" && entry.Group != group {
			continue
		}
		return true
	}
	return false
}
