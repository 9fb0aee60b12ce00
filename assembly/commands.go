package assembly

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/jobs"
)

// Params are the fixed MEGAHIT invocation parameters shared by every
// condition, so assemblies differ only by their input grouping.
type Params struct {
	KMin         int
	KMax         int
	KStep        int
	MinCount     int
	MinContigLen int
}

func DefaultParams() Params {
	return Params{KMin: 45, KMax: 225, KStep: 26, MinCount: 2, MinContigLen: 500}
}

// Condition is one experimental arm: a named grouping of the sample set.
type Condition struct {
	Name     string
	Grouping *grouping.Grouping
}

// units flattens a grouping into assembly units: its groups plus one
// singleton unit per individual sample.
func units(cond Condition) []grouping.Group {
	out := make([]grouping.Group, 0, len(cond.Grouping.Groups)+len(cond.Grouping.Individual))
	out = append(out, cond.Grouping.Groups...)
	for _, id := range cond.Grouping.Individual {
		out = append(out, grouping.Group{ID: id, Samples: []string{id}, Size: 1, Strategy: "individual"})
	}
	return out
}

func readFiles(sampleIDs []string, samplesDir, readSuffix string) (r1s, r2s, valid []string) {
	for _, id := range sampleIDs {
		r1 := filepath.Join(samplesDir, id+readSuffix+"_R1.fastq")
		r2 := filepath.Join(samplesDir, id+readSuffix+"_R2.fastq")
		if _, err := os.Stat(r1); err != nil {
			r1 += ".gz"
			r2 += ".gz"
		}
		// both mates must exist before the sample joins the command
		_, r1Err := os.Stat(r1)
		_, r2Err := os.Stat(r2)
		if r1Err != nil || r2Err != nil {
			fmt.Printf("  Warning: read files not found for %s\n", id)
			continue
		}
		r1s = append(r1s, r1)
		r2s = append(r2s, r2)
		valid = append(valid, id)
	}
	return r1s, r2s, valid
}

// MegahitTask builds the per-group co-assembly task: member read files are
// passed as comma-joined R1/R2 lists so MEGAHIT pools them into one
// assembly. Missing member files are skipped with a warning.
func MegahitTask(group grouping.Group, condition, samplesDir, outDir, readSuffix string, threads int, params Params) (jobs.Task, error) {
	r1s, r2s, valid := readFiles(group.Samples, samplesDir, readSuffix)
	if len(r1s) == 0 {
		return jobs.Task{}, fmt.Errorf("no valid read files for group %s", group.ID)
	}

	groupOut := filepath.Join(outDir, "megahit_"+condition, group.ID)
	cmd := fmt.Sprintf("megahit -1 %s -2 %s -o %s --out-prefix %s --min-contig-len %d --k-min %d --k-max %d --k-step %d --min-count %d -t %d",
		strings.Join(r1s, ","), strings.Join(r2s, ","), groupOut, group.ID,
		params.MinContigLen, params.KMin, params.KMax, params.KStep, params.MinCount, threads)

	return jobs.Task{
		Command:    cmd,
		OutputDir:  groupOut,
		Info:       fmt.Sprintf("%s (%d samples)", group.ID, len(valid)),
		DoneMarker: filepath.Join(groupOut, ".megahit.done"),
	}, nil
}

// ContigsFile is the MEGAHIT output contig path for one assembly unit.
func ContigsFile(outDir, condition, groupID string) string {
	return filepath.Join(outDir, "megahit_"+condition, groupID, groupID+".contigs.fa")
}

// ConcatFile is the per-condition concatenation of all group contigs.
func ConcatFile(outDir, condition string) string {
	return filepath.Join(outDir, "concatenated", condition+"_all_contigs.fasta")
}

// FinalAssembly is the one finished FASTA per condition read by the
// comparison stage. The global condition skips meta-assembly.
func FinalAssembly(outDir, condition string) string {
	if condition == "global" {
		return filepath.Join(outDir, "final_assemblies", "global_assembly.fasta")
	}
	return filepath.Join(outDir, "final_assemblies", condition+"_meta_assembly.fasta")
}

// ConcatTask concatenates a condition's group contigs for meta-assembly.
func ConcatTask(cond Condition, outDir string) jobs.Task {
	var inputs []string
	for _, unit := range units(cond) {
		inputs = append(inputs, ContigsFile(outDir, cond.Name, unit.ID))
	}
	out := ConcatFile(outDir, cond.Name)
	return jobs.Task{
		Command:    fmt.Sprintf("cat %s > %s", strings.Join(inputs, " "), out),
		OutputDir:  out,
		Info:       fmt.Sprintf("%s (%d assemblies)", cond.Name, len(inputs)),
		DoneMarker: out + ".done",
	}
}

// FlyeTask runs the second-pass meta-assembly over a condition's
// concatenated contigs and copies the result into final_assemblies.
func FlyeTask(cond Condition, outDir string, threads int) jobs.Task {
	flyeOut := filepath.Join(outDir, "flye_meta", cond.Name)
	final := FinalAssembly(outDir, cond.Name)
	cmd := fmt.Sprintf("flye --subassemblies %s -t %d --plasmids -o %s -g 1g && cp %s %s",
		ConcatFile(outDir, cond.Name), threads, flyeOut, filepath.Join(flyeOut, "assembly.fasta"), final)
	return jobs.Task{
		Command:    cmd,
		OutputDir:  flyeOut,
		Info:       cond.Name,
		DoneMarker: final + ".done",
	}
}

// copyGlobalTask promotes the single global MEGAHIT assembly directly: a
// second-pass assembly over one input would be a no-op.
func copyGlobalTask(cond Condition, outDir string) jobs.Task {
	src := ContigsFile(outDir, cond.Name, "global_all_samples")
	final := FinalAssembly(outDir, cond.Name)
	return jobs.Task{
		Command:    fmt.Sprintf("cp %s %s", src, final),
		OutputDir:  final,
		Info:       cond.Name,
		DoneMarker: final + ".done",
	}
}

// Plan is the full three-stage pipeline over every condition. Stage order
// (megahit -> concatenate -> flye) is enforced by the driver waiting on
// scheduler completion between stages; there is no internal retry.
type Plan struct {
	MegahitScripts []*jobs.Script
	ConcatScript   *jobs.Script
	FlyeScript     *jobs.Script
	CopyScript     *jobs.Script
}

// Scripts lists the plan's scripts in submission stage order. The global
// copy runs alongside Flye in the final stage.
func (p *Plan) Scripts() [][]*jobs.Script {
	stages := [][]*jobs.Script{p.MegahitScripts}
	if p.ConcatScript != nil {
		stages = append(stages, []*jobs.Script{p.ConcatScript})
	}
	var final []*jobs.Script
	if p.FlyeScript != nil {
		final = append(final, p.FlyeScript)
	}
	if p.CopyScript != nil {
		final = append(final, p.CopyScript)
	}
	if len(final) > 0 {
		stages = append(stages, final)
	}
	return stages
}

// BuildPlan generates the staged scripts for all conditions. MEGAHIT tasks
// are split by resource class (individual / grouped / global) the way the
// scheduler expects them.
func BuildPlan(conditions []Condition, samplesDir, outDir, readSuffix string, params Params, account, partition, mailUser string) (*Plan, error) {
	for _, sub := range []string{"concatenated", "flye_meta", "final_assemblies"} {
		if err := os.MkdirAll(filepath.Join(outDir, sub), 0755); err != nil {
			return nil, err
		}
	}

	var individualTasks, groupedTasks, globalTasks []jobs.Task
	var concatTasks, flyeTasks, copyTasks []jobs.Task

	for _, cond := range conditions {
		threads := 16
		if cond.Name == "global" {
			threads = 20
		} else if cond.Name == "individual" {
			threads = 8
		}

		n := 0
		for _, unit := range units(cond) {
			task, err := MegahitTask(unit, cond.Name, samplesDir, outDir, readSuffix, threads, params)
			if err != nil {
				fmt.Printf("  Warning: skipping %s/%s: %v\n", cond.Name, unit.ID, err)
				continue
			}
			n++
			switch {
			case cond.Name == "global":
				globalTasks = append(globalTasks, task)
			case len(unit.Samples) == 1:
				individualTasks = append(individualTasks, task)
			default:
				groupedTasks = append(groupedTasks, task)
			}
		}
		fmt.Printf("Generated %d MEGAHIT tasks for condition %s\n", n, cond.Name)

		if cond.Name == "global" {
			copyTasks = append(copyTasks, copyGlobalTask(cond, outDir))
		} else {
			concatTasks = append(concatTasks, ConcatTask(cond, outDir))
			flyeTasks = append(flyeTasks, FlyeTask(cond, outDir, 16))
		}
	}

	plan := &Plan{}
	addMegahit := func(name string, res jobs.Resources, tasks []jobs.Task) {
		if len(tasks) == 0 {
			return
		}
		plan.MegahitScripts = append(plan.MegahitScripts, &jobs.Script{
			Name: "run_megahit_" + name + ".sh", JobName: "megahit_" + name, Stage: "megahit",
			Resources: res, Tasks: tasks, Tool: "megahit",
			Account: account, Partition: partition, MailUser: mailUser,
		})
	}
	addMegahit("individual", jobs.MegahitIndividual, individualTasks)
	addMegahit("grouped", jobs.MegahitGrouped, groupedTasks)
	addMegahit("global", jobs.MegahitGlobal, globalTasks)

	if len(concatTasks) > 0 {
		plan.ConcatScript = &jobs.Script{
			Name: "run_concatenate.sh", JobName: "concatenate", Stage: "concatenate",
			Resources: jobs.Concatenate, Tasks: concatTasks,
			Account: account, Partition: partition, MailUser: mailUser,
		}
	}
	if len(flyeTasks) > 0 {
		plan.FlyeScript = &jobs.Script{
			Name: "run_flye_meta.sh", JobName: "flye_meta", Stage: "flye_meta",
			Resources: jobs.FlyeMeta, Tasks: flyeTasks, Tool: "flye",
			Account: account, Partition: partition, MailUser: mailUser,
		}
	}
	if len(copyTasks) > 0 {
		plan.CopyScript = &jobs.Script{
			Name: "run_copy_global.sh", JobName: "copy_global", Stage: "flye_meta",
			Resources: jobs.CopyOnly, Tasks: copyTasks,
			Account: account, Partition: partition, MailUser: mailUser,
		}
	}
	if len(plan.MegahitScripts) == 0 {
		return nil, fmt.Errorf("no assembly tasks generated - check sample files and groupings")
	}
	return plan, nil
}
