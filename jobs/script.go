package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Resources are the fixed scheduler limits for one job type. Wall-clock
// limits are enforced by the scheduler, never computed dynamically.
type Resources struct {
	Cpus     int
	Memory   string
	Walltime string
}

// Stage resource presets, matching the experiment's job classes.
var (
	MegahitIndividual = Resources{Cpus: 8, Memory: "32G", Walltime: "12:00:00"}
	MegahitGrouped    = Resources{Cpus: 16, Memory: "64G", Walltime: "24:00:00"}
	MegahitGlobal     = Resources{Cpus: 20, Memory: "128G", Walltime: "36:00:00"}
	Concatenate       = Resources{Cpus: 2, Memory: "8G", Walltime: "2:00:00"}
	FlyeMeta          = Resources{Cpus: 16, Memory: "64G", Walltime: "24:00:00"}
	CopyOnly          = Resources{Cpus: 1, Memory: "4G", Walltime: "1:00:00"}
)

// Task is one array element of a batch script: the command, its output
// directory and the marker file touched on success.
type Task struct {
	Command    string
	OutputDir  string
	Info       string
	DoneMarker string
}

// Script is a SLURM array batch script covering one pipeline stage (or one
// resource class within a stage). There is no retry logic: failures surface
// through the scheduler's own exit-status accounting.
type Script struct {
	Name      string
	JobName   string
	Stage     string
	Condition string
	Resources Resources
	Tasks     []Task
	Tool      string

	Account   string
	Partition string
	MailUser  string
}

var scriptTemplate = template.Must(template.New("sbatch").Parse(`#!/bin/bash
#SBATCH --job-name={{.JobName}}
#SBATCH --time={{.Resources.Walltime}}
#SBATCH --mem={{.Resources.Memory}}
#SBATCH --cpus-per-task={{.Resources.Cpus}}
#SBATCH --array=1-{{len .Tasks}}
#SBATCH --output=logs/{{.JobName}}_%A_%a.out
#SBATCH --error=logs/{{.JobName}}_%A_%a.err
{{- if .Account}}
#SBATCH --account={{.Account}}
{{- end}}
{{- if .Partition}}
#SBATCH --partition={{.Partition}}
{{- end}}
{{- if .MailUser}}
#SBATCH --mail-type=END,FAIL
#SBATCH --mail-user={{.MailUser}}
{{- end}}

echo "Starting {{.JobName}} task: $(date)"
echo "Job ID: $SLURM_JOB_ID"
echo "Array task ID: $SLURM_ARRAY_TASK_ID"
{{if .Tool}}
if ! command -v {{.Tool}} &> /dev/null; then
    echo "ERROR: {{.Tool}} not found in PATH"
    exit 1
fi
echo "{{.Tool}} version: $({{.Tool}} --version 2>&1 | head -1)"
{{end}}
declare -a COMMANDS=(
{{- range .Tasks}}
    "{{.Command}}"
{{- end}}
)

declare -a OUTPUT_DIRS=(
{{- range .Tasks}}
    "{{.OutputDir}}"
{{- end}}
)

declare -a DONE_MARKERS=(
{{- range .Tasks}}
    "{{.DoneMarker}}"
{{- end}}
)

declare -a TASK_INFO=(
{{- range .Tasks}}
    "{{.Info}}"
{{- end}}
)

TASK_ID=$((SLURM_ARRAY_TASK_ID - 1))
COMMAND="${COMMANDS[$TASK_ID]}"
OUTPUT_DIR="${OUTPUT_DIRS[$TASK_ID]}"
DONE_MARKER="${DONE_MARKERS[$TASK_ID]}"

echo "Processing: ${TASK_INFO[$TASK_ID]}"
echo "Output directory: $OUTPUT_DIR"

mkdir -p "$(dirname "$OUTPUT_DIR")"

echo "Starting execution: $(date)"
eval $COMMAND
STATUS=$?

if [ $STATUS -ne 0 ]; then
    echo "ERROR: command failed with exit code $STATUS"
    exit $STATUS
fi

touch "$DONE_MARKER"
echo "{{.JobName}} task completed: $(date)"
`))

// Write renders the batch script under scriptsDir and marks it executable.
func (s *Script) Write(scriptsDir string) (string, error) {
	if len(s.Tasks) == 0 {
		return "", fmt.Errorf("script %s has no tasks", s.Name)
	}
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(scriptsDir, "logs"), 0755); err != nil {
		return "", err
	}

	path := filepath.Join(scriptsDir, s.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := scriptTemplate.Execute(f, s); err != nil {
		f.Close()
		return "", fmt.Errorf("rendering %s: %v", s.Name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(path, 0755); err != nil {
		return "", err
	}
	fmt.Printf("Wrote %s (%d tasks, %d cpus, %s, %s)\n", path, len(s.Tasks), s.Resources.Cpus, s.Resources.Memory, s.Resources.Walltime)
	return path, nil
}
