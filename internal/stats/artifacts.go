// Package stats writes evaluation runs to plain files for use outside the
// store.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"swypesim/internal/model"
	"swypesim/internal/storage"
)

const (
	runFile     = "run.json"
	resultFile  = "result.json"
	summaryFile = "runs.csv"
)

var summaryHeader = []string{
	"run_id", "created_at_utc", "model", "method", "seed", "workers", "words",
	"iterations", "fitness", "error",
}

// WriteRunArtifacts writes run.json and result.json under baseDir/<run id>
// and returns that directory.
func WriteRunArtifacts(baseDir string, run model.RunRecord) (string, error) {
	if run.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, run.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	data, err := storage.EncodeRun(run)
	if err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, runFile), data); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, resultFile), run.Result); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunArtifacts loads a run written by WriteRunArtifacts. The boolean is
// false when the run directory has no run.json.
func ReadRunArtifacts(baseDir, runID string) (model.RunRecord, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runID, runFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}
	run, err := storage.DecodeRun(data)
	if err != nil {
		return model.RunRecord{}, false, err
	}
	return run, true, nil
}

// WriteRunSummary writes one CSV row per run to baseDir/runs.csv.
func WriteRunSummary(baseDir string, runs []model.RunRecord) (string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(baseDir, summaryFile)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(summaryHeader); err != nil {
		return "", err
	}
	for _, run := range runs {
		if err := writer.Write([]string{
			run.RunID,
			run.CreatedAtUTC,
			run.Model,
			run.Method,
			strconv.FormatInt(run.Seed, 10),
			strconv.Itoa(run.Workers),
			strconv.Itoa(run.Words),
			strconv.Itoa(run.Result.Iterations),
			strconv.FormatFloat(run.Result.Fitness, 'f', -1, 64),
			strconv.FormatFloat(run.Result.Error, 'f', -1, 64),
		}); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// ReadRunSummary returns the fitness results listed in baseDir/runs.csv, in
// file order.
func ReadRunSummary(baseDir string) ([]model.FitnessResult, error) {
	file, err := os.Open(filepath.Join(baseDir, summaryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(summaryHeader)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []model.FitnessResult{}, nil
		}
		return nil, err
	}

	var results []model.FitnessResult
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		iterations, err := strconv.Atoi(record[7])
		if err != nil {
			return nil, err
		}
		fitness, err := strconv.ParseFloat(record[8], 64)
		if err != nil {
			return nil, err
		}
		stderr, err := strconv.ParseFloat(record[9], 64)
		if err != nil {
			return nil, err
		}
		results = append(results, model.NewFitnessResult(iterations, fitness, stderr))
	}
	return results, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return os.WriteFile(path, data, 0o644)
}
