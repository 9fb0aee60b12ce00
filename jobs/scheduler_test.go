package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestParseState(t *testing.T) {
	cases := []struct {
		raw  string
		want JobState
	}{
		{"COMPLETED", StateCompleted},
		{"CANCELLED by 12345", StateCancelled},
		{"RUNNING+", StateRunning},
		{"OUT_OF_MEMORY", StateOutOfMemory},
		{"DEADLINE", StateTimeout},
		{"BOOT_FAIL", StateNodeFail},
		{"", StateUnknown},
		{"  ", StateUnknown},
		{"SOMETHING_NEW", StateUnknown},
	}
	for _, c := range cases {
		if got := ParseState(c.raw); got != c.want {
			t.Errorf("ParseState(%q) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestWorse(t *testing.T) {
	if worse(StateCompleted, StateFailed) != StateFailed {
		t.Error("FAILED must dominate COMPLETED")
	}
	if worse(StateOutOfMemory, StateRunning) != StateOutOfMemory {
		t.Error("OUT_OF_MEMORY must dominate RUNNING")
	}
	if worse(StateCompleted, StateCompleted) != StateCompleted {
		t.Error("COMPLETED vs COMPLETED must stay COMPLETED")
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []JobState{StateCompleted, StateFailed, StateCancelled, StateTimeout, StateOutOfMemory, StateNodeFail} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []JobState{StatePending, StateRunning, StateUnknown} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestWaitFor(t *testing.T) {
	// job 100 completes on the second poll, job 200 fails on the third
	polls := map[string]int{}
	s := &Scheduler{
		PollInterval: time.Millisecond,
		MaxInterval:  4 * time.Millisecond,
		Status: func(ctx context.Context, jobID string) (JobState, error) {
			polls[jobID]++
			switch jobID {
			case "100":
				if polls[jobID] >= 2 {
					return StateCompleted, nil
				}
				return StateRunning, nil
			case "200":
				if polls[jobID] >= 3 {
					return StateFailed, nil
				}
				return StatePending, nil
			}
			return StateUnknown, fmt.Errorf("unexpected job %s", jobID)
		},
	}

	states, err := s.WaitFor(context.Background(), []string{"100", "200"})
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if states["100"] != StateCompleted {
		t.Errorf("job 100 should be COMPLETED, got %s", states["100"])
	}
	if states["200"] != StateFailed {
		t.Errorf("job 200 should be FAILED, got %s", states["200"])
	}
	// terminal jobs are not polled again
	if polls["100"] != 2 {
		t.Errorf("job 100 polled %d times, want 2", polls["100"])
	}
}

func TestWaitForPollError(t *testing.T) {
	s := &Scheduler{
		PollInterval: time.Millisecond,
		Status: func(ctx context.Context, jobID string) (JobState, error) {
			return StateUnknown, fmt.Errorf("sacct unavailable")
		},
	}
	states, err := s.WaitFor(context.Background(), []string{"300"})
	if err == nil {
		t.Fatal("expected an error when polling fails")
	}
	if states["300"] != StateUnknown {
		t.Errorf("failed poll should leave the job UNKNOWN, got %s", states["300"])
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		PollInterval: 50 * time.Millisecond,
		Status: func(ctx context.Context, jobID string) (JobState, error) {
			return StateRunning, nil
		},
	}
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	if _, err := s.WaitFor(ctx, []string{"400"}); err == nil {
		t.Error("cancelled context must abort the wait")
	}
}
