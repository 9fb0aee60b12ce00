/*
Copyright © 2025 Megan Johnson <megan.j@wustl.edu>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/megjohnson1999/assembly-clustering-validation/jobs"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a failed SLURM job",
	Long: `Queries scheduler accounting for a job's state and exit code, optionally
scans its captured log for known failure signatures (memory, timeout,
disk, permission, missing tool), and prints the likely cause plus a
resubmission command. Nothing is resubmitted automatically.`,
	Run: func(cmd *cobra.Command, args []string) {
		jobID, jErr := cmd.Flags().GetString("job")
		if jErr != nil {
			log.Fatalf("Error getting job flag: %v", jErr)
		}
		logPath, lErr := cmd.Flags().GetString("log")
		if lErr != nil {
			log.Fatalf("Error getting log flag: %v", lErr)
		}
		scriptPath, sErr := cmd.Flags().GetString("script")
		if sErr != nil {
			log.Fatalf("Error getting script flag: %v", sErr)
		}

		if jobID == "" {
			fmt.Println("Please provide a job id with -j")
			return
		}

		d, err := jobs.DiagnoseJob(jobID, logPath, scriptPath)
		if err != nil {
			log.Fatalf("Diagnosing job %s: %v", jobID, err)
		}
		d.Report()
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().StringP("job", "j", "", "SLURM job id to diagnose ")
	diagnoseCmd.Flags().StringP("log", "l", "", "path to the job's captured log ")
	diagnoseCmd.Flags().StringP("script", "s", "", "path to the batch script, for the resubmit hint ")
}
