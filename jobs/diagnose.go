package jobs

import (
	"fmt"
	"os"
	"strings"

	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// Cause is the closed taxonomy of job-failure causes. Structured scheduler
// accounting is consulted first; log-pattern matching is only a fallback.
type Cause string

const (
	CauseMemory     Cause = "memory"
	CauseTimeout    Cause = "timeout"
	CauseDisk       Cause = "disk"
	CausePermission Cause = "permission"
	CauseMissingDep Cause = "missing_dependency"
	CauseUnknown    Cause = "unknown"
	CauseNone       Cause = "none"
)

// Diagnosis explains a failed job and suggests the manual remediation: the
// pipeline never retries automatically.
type Diagnosis struct {
	JobID    string
	State    JobState
	ExitCode string
	Cause    Cause
	Hint     string
	Resubmit string
}

var logPatterns = []struct {
	cause    Cause
	patterns []string
	hint     string
}{
	{CauseMemory, []string{"out of memory", "oom-kill", "oom_kill", "cannot allocate memory", "killed", "memoryerror", "std::bad_alloc"},
		"increase --mem in the batch script and resubmit"},
	{CauseTimeout, []string{"due to time limit", "time limit", "walltime"},
		"increase --time in the batch script and resubmit"},
	{CauseDisk, []string{"no space left on device", "disk quota exceeded", "quota exceeded"},
		"free disk space or point OutputDir at a larger filesystem"},
	{CausePermission, []string{"permission denied", "read-only file system", "operation not permitted"},
		"check directory ownership and permissions under the output tree"},
	{CauseMissingDep, []string{"command not found", "no such file or directory", "modulenotfounderror", "importerror"},
		"activate the analysis environment or install the missing tool"},
}

// Diagnose classifies a failure from the scheduler state and exit code
// first, then from captured log text.
func Diagnose(state JobState, exitCode string, logText string) Diagnosis {
	d := Diagnosis{State: state, ExitCode: exitCode, Cause: CauseUnknown}

	switch state {
	case StateCompleted:
		d.Cause = CauseNone
		return d
	case StateOutOfMemory:
		d.Cause = CauseMemory
		d.Hint = "scheduler reported OUT_OF_MEMORY; increase --mem and resubmit"
		return d
	case StateTimeout:
		d.Cause = CauseTimeout
		d.Hint = "scheduler reported TIMEOUT; increase --time and resubmit"
		return d
	}

	// Exit code 125+n means the shell saw signal n; 137 is SIGKILL, which
	// on a SLURM node is almost always the OOM killer.
	code := strings.SplitN(strings.TrimSpace(exitCode), ":", 2)[0]
	if code == "137" {
		d.Cause = CauseMemory
		d.Hint = "process was SIGKILLed (exit 137), typically the OOM killer; increase --mem"
		return d
	}

	lower := strings.ToLower(logText)
	for _, entry := range logPatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lower, pattern) {
				d.Cause = entry.cause
				d.Hint = entry.hint
				return d
			}
		}
	}

	d.Hint = "no known failure signature; inspect the job log manually"
	return d
}

// DiagnoseJob pulls State/ExitCode from sacct, reads the captured log if
// present, and returns the classification plus a suggested resubmission.
func DiagnoseJob(jobID, logPath, scriptPath string) (Diagnosis, error) {
	out, err := utils.RunBashCmdCapture(fmt.Sprintf("sacct -j %s --format=State,ExitCode,MaxRSS --noheader --parsable2", jobID))
	if err != nil {
		return Diagnosis{}, fmt.Errorf("sacct for job %s: %v", jobID, err)
	}

	state := StateUnknown
	exitCode := ""
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		lineState := ParseState(fields[0])
		state = worse(state, lineState)
		if lineState != StateCompleted && exitCode == "" {
			exitCode = strings.TrimSpace(fields[1])
		}
	}

	var logText string
	if logPath != "" {
		if data, rErr := os.ReadFile(logPath); rErr == nil {
			logText = string(data)
		} else {
			fmt.Printf("Warning: could not read log %s: %v\n", logPath, rErr)
		}
	}

	d := Diagnose(state, exitCode, logText)
	d.JobID = jobID
	if d.Cause != CauseNone && scriptPath != "" {
		d.Resubmit = fmt.Sprintf("sbatch %s", scriptPath)
	}
	return d, nil
}

// Report prints the diagnosis in the operator-facing console format.
func (d Diagnosis) Report() {
	fmt.Printf("Job %s: state=%s exit=%s\n", d.JobID, d.State, d.ExitCode)
	fmt.Printf("  Cause: %s\n", d.Cause)
	if d.Hint != "" {
		fmt.Printf("  Hint: %s\n", d.Hint)
	}
	if d.Resubmit != "" {
		fmt.Printf("  Resubmit with: %s\n", d.Resubmit)
	}
}
