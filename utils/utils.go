package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type Config struct {
	SamplesDir string
	OutputDir  string
	WorkDir    string

	SampleCount int
	Seed        int
	RandomSeeds []int

	ReadSuffix string

	GroupSize           int
	SimilarityThreshold float64
	MinGroupSize        int
	MaxGroupSize        int
	KmerSize            int
	Scaled              int

	MinContigLen int
	Threads      int

	Account   string
	Partition string
	MailUser  string
}

func DefaultConfig() Config {
	return Config{
		SampleCount:         50,
		Seed:                42,
		RandomSeeds:         []int{42, 43, 44, 45, 46},
		ReadSuffix:          "_rrna_removed",
		GroupSize:           5,
		SimilarityThreshold: 0.3,
		MinGroupSize:        2,
		MaxGroupSize:        5,
		KmerSize:            21,
		Scaled:              1000,
		MinContigLen:        500,
		Threads:             8,
	}
}

func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	cfg := DefaultConfig()

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "SamplesDir":
			cfg.SamplesDir = value
		case "OutputDir":
			cfg.OutputDir = value
		case "WorkDir":
			cfg.WorkDir = value
		case "SampleCount":
			cfg.SampleCount, err = strconv.Atoi(value)
		case "Seed":
			cfg.Seed, err = strconv.Atoi(value)
		case "RandomSeeds":
			cfg.RandomSeeds = cfg.RandomSeeds[:0]
			for _, f := range strings.Fields(value) {
				s, sErr := strconv.Atoi(f)
				if sErr != nil {
					return cfg, fmt.Errorf("bad RandomSeeds entry %q: %v", f, sErr)
				}
				cfg.RandomSeeds = append(cfg.RandomSeeds, s)
			}
		case "ReadSuffix":
			cfg.ReadSuffix = value
		case "GroupSize":
			cfg.GroupSize, err = strconv.Atoi(value)
		case "SimilarityThreshold":
			cfg.SimilarityThreshold, err = strconv.ParseFloat(value, 64)
		case "MinGroupSize":
			cfg.MinGroupSize, err = strconv.Atoi(value)
		case "MaxGroupSize":
			cfg.MaxGroupSize, err = strconv.Atoi(value)
		case "KmerSize":
			cfg.KmerSize, err = strconv.Atoi(value)
		case "Scaled":
			cfg.Scaled, err = strconv.Atoi(value)
		case "MinContigLen":
			cfg.MinContigLen, err = strconv.Atoi(value)
		case "threads", "Threads":
			cfg.Threads, err = strconv.Atoi(value)
		case "Account":
			cfg.Account = value
		case "Partition":
			cfg.Partition = value
		case "MailUser":
			cfg.MailUser = value
		}
		if err != nil {
			return cfg, fmt.Errorf("bad value for %s: %v", key, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil

}

func RunBashCmdVerbose(cmdStr string) error {
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return err
	}
	return nil
}

func RunBashCmdCapture(cmdStr string) (string, error) {
	cmd := exec.Command("bash", "-c", cmdStr)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("%v\nStderr: %s", err, stderr.String())
	}
	return out.String(), nil
}

// versionCmds maps each external tool to the command that prints its version.
// Tools are verified before any stage that shells out to them.
var versionCmds = map[string]string{
	"megahit":  "megahit --version",
	"flye":     "flye --version",
	"seqkit":   "seqkit version",
	"sourmash": "sourmash --version",
	"checkv":   "checkv -h",
	"sbatch":   "sbatch --version",
}

func CheckDeps(tools ...string) error {
	if len(tools) == 0 {
		tools = []string{"megahit", "flye", "seqkit", "sourmash"}
	}
	var missing []string
	for _, tool := range tools {
		verCmd, ok := versionCmds[tool]
		if !ok {
			verCmd = tool + " --version"
		}
		out, err := RunBashCmdCapture(verCmd)
		if err != nil {
			missing = append(missing, tool)
			continue
		}
		fmt.Printf("%s: %s\n", tool, strings.TrimSpace(strings.SplitN(out, "\n", 2)[0]))
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tools: %s", strings.Join(missing, ", "))
	}
	return nil
}
