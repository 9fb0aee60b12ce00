/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/assembly"
	"github.com/megjohnson1999/assembly-clustering-validation/assess"
	"github.com/megjohnson1999/assembly-clustering-validation/grouping"
	"github.com/megjohnson1999/assembly-clustering-validation/jobs"
	"github.com/megjohnson1999/assembly-clustering-validation/samples"
	"github.com/megjohnson1999/assembly-clustering-validation/utils"
)

var runPipelineCmd = &cobra.Command{
	Use:   "runPipeline",
	Short: "Run the full validation experiment end to end",
	Long: `Runs every stage of the validation experiment in order: sample selection,
k-mer and random groupings, SLURM script generation, staged job submission
with completion polling, and the final quality assessment. Progress is
journalled to pipeline.log; a rerun skips stages that already completed.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Checking dependencies ...\n\n")
		if err := utils.CheckDeps("megahit", "flye", "sourmash", "sbatch"); err != nil {
			log.Fatalf("Dependency check failed: %v", err)
		}
		fmt.Printf("Dependencies OK\n\n----------------------------------------------------------\n\n")

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}
		if cfg.SamplesDir == "" || cfg.OutputDir == "" {
			fmt.Println("Please provide SamplesDir and OutputDir in the config file")
			return
		}
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			log.Fatalf("Creating output directory: %v", err)
		}

		logFilePath := pipelineLog(cfg)
		logFile, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()

		jsonHandler := slog.NewJSONHandler(logFile, nil)
		jlog := slog.New(jsonHandler)
		logged := utils.ParseLogFile(logFilePath)

		jlog.Info("PIPELINE", "PROGRAM", "INITIALISE", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")
		slog.Info("PIPELINE", "PROGRAM", "INITIALISE", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")

		// ===================================== Sample selection ===================================== //
		if utils.StageHasCompleted(logged, "SELECT", "ALL", "ALL") {
			fmt.Println("Sample selection already completed, skipping ...")
		} else {
			jlog.Info("PIPELINE", "PROGRAM", "SELECT", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")
			if _, sErr := samples.Select(cfg.SamplesDir, selectedSamplesDir(cfg), cfg.ReadSuffix, cfg.SampleCount, uint64(cfg.Seed)); sErr != nil {
				jlog.Error("PIPELINE", "PROGRAM", "SELECT", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", fmt.Sprintf("FAILED: %v", sErr), "CMD", "ALL")
				log.Fatalf("Sample selection failed: %v", sErr)
			}
			jlog.Info("PIPELINE", "PROGRAM", "SELECT", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "COMPLETED", "CMD", "ALL")
		}

		manifest := filepath.Join(selectedSamplesDir(cfg), "selected_samples.txt")
		ids, err := samples.ReadManifest(manifest)
		if err != nil {
			log.Fatalf("Reading sample manifest: %v", err)
		}

		// ===================================== K-mer grouping ===================================== //
		var kmerRef *grouping.Grouping
		if utils.StageHasCompleted(logged, "KMER_GROUPING", "ALL", "ALL") {
			fmt.Println("K-mer grouping already completed, skipping ...")
			kmerRef, err = grouping.Load(filepath.Join(groupingDir(cfg, "kmer"), "assembly_recommendations.json"))
			if err != nil {
				log.Fatalf("Loading existing k-mer grouping: %v", err)
			}
		} else {
			jlog.Info("PIPELINE", "PROGRAM", "KMER_GROUPING", "CONDITION", "kmer", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")
			pairs, _, pErr := samples.FindPairs(selectedSamplesDir(cfg), cfg.ReadSuffix)
			if pErr != nil {
				log.Fatalf("Finding selected samples: %v", pErr)
			}
			kmerRef, err = grouping.KmerGrouping(pairs, groupingDir(cfg, "kmer"),
				grouping.SketchParams{Ksize: cfg.KmerSize, Scaled: cfg.Scaled, Jobs: cfg.Threads},
				cfg.SimilarityThreshold, cfg.MinGroupSize, cfg.MaxGroupSize)
			if err != nil {
				jlog.Error("PIPELINE", "PROGRAM", "KMER_GROUPING", "CONDITION", "kmer", "GROUP", "ALL", "STATUS", fmt.Sprintf("FAILED: %v", err), "CMD", "ALL")
				log.Fatalf("K-mer grouping failed: %v", err)
			}
			if _, wErr := kmerRef.Write(groupingDir(cfg, "kmer")); wErr != nil {
				log.Fatalf("Writing k-mer grouping: %v", wErr)
			}
			if sErr := kmerRef.WriteSummary(groupingDir(cfg, "kmer")); sErr != nil {
				log.Fatalf("Writing k-mer grouping summary: %v", sErr)
			}
			jlog.Info("PIPELINE", "PROGRAM", "KMER_GROUPING", "CONDITION", "kmer", "GROUP", "ALL", "STATUS", "COMPLETED", "CMD", "ALL")
		}

		// ===================================== Random groupings and baselines ===================================== //
		if utils.StageHasCompleted(logged, "RANDOM_GROUPING", "ALL", "ALL") {
			fmt.Println("Random groupings already completed, skipping ...")
		} else {
			jlog.Info("PIPELINE", "PROGRAM", "RANDOM_GROUPING", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")
			writeGrouping := func(condition string, g *grouping.Grouping) {
				if vErr := g.Validate(ids); vErr != nil {
					log.Fatalf("Invalid grouping for %s: %v", condition, vErr)
				}
				dir := groupingDir(cfg, condition)
				if _, wErr := g.Write(dir); wErr != nil {
					log.Fatalf("Writing grouping for %s: %v", condition, wErr)
				}
				if sErr := g.WriteSummary(dir); sErr != nil {
					log.Fatalf("Writing summary for %s: %v", condition, sErr)
				}
			}
			writeGrouping("individual", grouping.Individuals(ids))
			for _, seed := range cfg.RandomSeeds {
				writeGrouping(fmt.Sprintf("random_%d", seed), grouping.RandomMatched(kmerRef, seed))
			}
			writeGrouping("global", grouping.Global(ids))
			jlog.Info("PIPELINE", "PROGRAM", "RANDOM_GROUPING", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "COMPLETED", "CMD", "ALL")
		}

		// ===================================== Script generation ===================================== //
		conditions, err := loadConditions(cfg)
		if err != nil {
			log.Fatalf("Loading groupings: %v", err)
		}
		plan, err := assembly.BuildPlan(conditions, selectedSamplesDir(cfg), assembliesDir(cfg),
			cfg.ReadSuffix, megahitParams(cfg), cfg.Account, cfg.Partition, cfg.MailUser)
		if err != nil {
			log.Fatalf("Building assembly plan: %v", err)
		}

		// ===================================== Staged submission ===================================== //
		scheduler := jobs.NewSlurmScheduler()
		ctx := context.Background()

		for _, stage := range plan.Scripts() {
			if len(stage) == 0 {
				continue
			}
			stageName := stage[0].Stage
			if utils.StageHasCompleted(logged, "SUBMIT_"+stageName, "ALL", "ALL") {
				fmt.Printf("Stage %s already completed, skipping ...\n", stageName)
				continue
			}
			jlog.Info("PIPELINE", "PROGRAM", "SUBMIT_"+stageName, "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")

			var jobIDs []string
			jobScripts := make(map[string]string)
			for _, script := range stage {
				path, wErr := script.Write(scriptsDir(cfg))
				if wErr != nil {
					log.Fatalf("Writing script %s: %v", script.Name, wErr)
				}
				jobID, subErr := scheduler.Submit(path)
				if subErr != nil {
					jlog.Error("PIPELINE", "PROGRAM", "SUBMIT_"+stageName, "CONDITION", "ALL", "GROUP", script.Name, "STATUS", fmt.Sprintf("FAILED: %v", subErr), "CMD", "ALL")
					log.Fatalf("Submitting %s: %v", path, subErr)
				}
				jobIDs = append(jobIDs, jobID)
				jobScripts[jobID] = path
			}

			states, wErr := scheduler.WaitFor(ctx, jobIDs)
			if wErr != nil {
				log.Fatalf("Waiting for stage %s: %v", stageName, wErr)
			}
			failed := false
			for jobID, state := range states {
				if state != jobs.StateCompleted {
					failed = true
					fmt.Printf("Job %s finished %s\n", jobID, state)
					d := jobs.Diagnose(state, "", "")
					d.JobID = jobID
					d.Resubmit = fmt.Sprintf("sbatch %s", jobScripts[jobID])
					d.Report()
				}
			}
			if failed {
				jlog.Error("PIPELINE", "PROGRAM", "SUBMIT_"+stageName, "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "FAILED", "CMD", "ALL")
				log.Fatalf("Stage %s had failed jobs; inspect with the diagnose command, fix resources and rerun", stageName)
			}
			jlog.Info("PIPELINE", "PROGRAM", "SUBMIT_"+stageName, "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "COMPLETED", "CMD", "ALL")
		}

		// ===================================== Assessment ===================================== //
		jlog.Info("PIPELINE", "PROGRAM", "ASSESS", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "STARTED", "CMD", "ALL")
		verdict, err := runAssessment(cfg, assess.DefaultVerdictRules())
		if err != nil {
			jlog.Error("PIPELINE", "PROGRAM", "ASSESS", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", fmt.Sprintf("FAILED: %v", err), "CMD", "ALL")
			log.Fatalf("Assessment failed: %v", err)
		}
		jlog.Info("PIPELINE", "PROGRAM", "ASSESS", "CONDITION", "ALL", "GROUP", "ALL", "STATUS", "COMPLETED", "CMD", "ALL")

		fmt.Printf("\n==========================================================\n")
		fmt.Printf("Overall assessment: %s\n", verdict)
		fmt.Printf("==========================================================\n")
	},
}

func init() {
	rootCmd.AddCommand(runPipelineCmd)
}
