package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

// JobState is the scheduler's view of a job. Array jobs collapse to the
// worst state of their elements.
type JobState string

const (
	StatePending     JobState = "PENDING"
	StateRunning     JobState = "RUNNING"
	StateCompleted   JobState = "COMPLETED"
	StateFailed      JobState = "FAILED"
	StateCancelled   JobState = "CANCELLED"
	StateTimeout     JobState = "TIMEOUT"
	StateOutOfMemory JobState = "OUT_OF_MEMORY"
	StateNodeFail    JobState = "NODE_FAIL"
	StateUnknown     JobState = "UNKNOWN"
)

// Terminal reports whether the job will make no further progress.
func (s JobState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimeout, StateOutOfMemory, StateNodeFail:
		return true
	}
	return false
}

// ParseState normalises a raw sacct/squeue state string. SLURM suffixes
// cancelled states with "by <uid>" and array summaries with "+".
func ParseState(raw string) JobState {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return StateUnknown
	}
	state := strings.TrimSuffix(fields[0], "+")
	switch state {
	case "PENDING", "REQUEUED", "RESIZING", "SUSPENDED":
		return StatePending
	case "RUNNING", "COMPLETING":
		return StateRunning
	case "COMPLETED":
		return StateCompleted
	case "FAILED":
		return StateFailed
	case "CANCELLED":
		return StateCancelled
	case "TIMEOUT", "DEADLINE":
		return StateTimeout
	case "OUT_OF_MEMORY":
		return StateOutOfMemory
	case "NODE_FAIL", "BOOT_FAIL", "PREEMPTED":
		return StateNodeFail
	}
	return StateUnknown
}

// worse orders states so an array job reports its most severe element.
func worse(a, b JobState) JobState {
	rank := map[JobState]int{
		StateCompleted:   0,
		StateUnknown:     1,
		StatePending:     2,
		StateRunning:     3,
		StateCancelled:   4,
		StateNodeFail:    5,
		StateTimeout:     6,
		StateOutOfMemory: 7,
		StateFailed:      8,
	}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// StatusFunc returns the current state of a job id. The production
// implementation queries SLURM; tests inject their own.
type StatusFunc func(ctx context.Context, jobID string) (JobState, error)

// Scheduler wraps job submission and poll-with-backoff completion waiting.
type Scheduler struct {
	Status       StatusFunc
	PollInterval time.Duration
	MaxInterval  time.Duration
}

// NewSlurmScheduler returns a scheduler backed by sbatch/sacct/squeue.
func NewSlurmScheduler() *Scheduler {
	return &Scheduler{
		Status:       SacctStatus,
		PollInterval: 30 * time.Second,
		MaxInterval:  5 * time.Minute,
	}
}

// Submit hands a batch script to sbatch and returns the opaque job id.
func (s *Scheduler) Submit(scriptPath string) (string, error) {
	out, err := utils.RunBashCmdCapture(fmt.Sprintf("sbatch --parsable %s", scriptPath))
	if err != nil {
		return "", fmt.Errorf("sbatch %s: %v", scriptPath, err)
	}
	jobID := strings.TrimSpace(out)
	// --parsable may append ";cluster" on multi-cluster setups
	if i := strings.IndexByte(jobID, ';'); i >= 0 {
		jobID = jobID[:i]
	}
	if jobID == "" {
		return "", fmt.Errorf("sbatch %s returned no job id", scriptPath)
	}
	fmt.Printf("Submitted %s as job %s\n", scriptPath, jobID)
	return jobID, nil
}

// SacctStatus queries sacct for the job (covering array elements) and falls
// back to squeue for jobs accounting has not seen yet.
func SacctStatus(ctx context.Context, jobID string) (JobState, error) {
	if err := ctx.Err(); err != nil {
		return StateUnknown, err
	}
	out, err := utils.RunBashCmdCapture(fmt.Sprintf("sacct -j %s --format=State --noheader --parsable2", jobID))
	if err == nil && strings.TrimSpace(out) != "" {
		state := StateCompleted
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			state = worse(state, ParseState(line))
		}
		return state, nil
	}

	out, err = utils.RunBashCmdCapture(fmt.Sprintf("squeue -j %s -h -o %%T", jobID))
	if err != nil {
		return StateUnknown, fmt.Errorf("querying job %s: %v", jobID, err)
	}
	if strings.TrimSpace(out) == "" {
		// Gone from the queue and absent from accounting: assume done and
		// let completion markers decide downstream.
		return StateCompleted, nil
	}
	state := StateCompleted
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		state = worse(state, ParseState(line))
	}
	return state, nil
}

// WaitFor polls every job until all states are terminal, backing off from
// PollInterval to MaxInterval. The returned map always has one entry per
// job id; a poll error marks the job StateUnknown and stops the wait.
func (s *Scheduler) WaitFor(ctx context.Context, jobIDs []string) (map[string]JobState, error) {
	states := make(map[string]JobState, len(jobIDs))
	for _, id := range jobIDs {
		states[id] = StatePending
	}

	interval := s.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	for {
		pending := 0
		for _, id := range jobIDs {
			if states[id].Terminal() {
				continue
			}
			state, err := s.Status(ctx, id)
			if err != nil {
				states[id] = StateUnknown
				return states, fmt.Errorf("polling job %s: %v", id, err)
			}
			states[id] = state
			if !state.Terminal() {
				pending++
			}
		}
		if pending == 0 {
			return states, nil
		}

		fmt.Printf("%d jobs still running/pending, next check in %s ...\n", pending, interval)
		select {
		case <-ctx.Done():
			return states, ctx.Err()
		case <-time.After(interval):
		}
		interval *= 2
		if s.MaxInterval > 0 && interval > s.MaxInterval {
			interval = s.MaxInterval
		}
	}
}
