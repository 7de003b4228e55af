package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"swypesim/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is the version stamp written on every new record.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeGenome(g model.Genome) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGenome(data []byte) (model.Genome, error) {
	var genome model.Genome
	if err := json.Unmarshal(data, &genome); err != nil {
		return model.Genome{}, err
	}
	if err := checkVersion(genome.VersionedRecord); err != nil {
		return model.Genome{}, err
	}
	return genome, nil
}

func EncodeTrajectory(rec model.TrajectoryRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func DecodeTrajectory(data []byte) (model.TrajectoryRecord, error) {
	var rec model.TrajectoryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.TrajectoryRecord{}, err
	}
	if err := checkVersion(rec.VersionedRecord); err != nil {
		return model.TrajectoryRecord{}, err
	}
	if len(rec.X) != len(rec.Y) || len(rec.X) != len(rec.T) {
		return model.TrajectoryRecord{}, fmt.Errorf("%w: trajectory %s has %d/%d/%d samples",
			model.ErrInvalidInput, rec.ID, len(rec.X), len(rec.Y), len(rec.T))
	}
	return rec, nil
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeFitnessResult(result model.FitnessResult) ([]byte, error) {
	return json.Marshal(result)
}

func DecodeFitnessResult(data []byte) (model.FitnessResult, error) {
	var result model.FitnessResult
	if err := json.Unmarshal(data, &result); err != nil {
		return model.FitnessResult{}, err
	}
	if result.Iterations < 0 {
		return model.FitnessResult{}, fmt.Errorf("%w: negative iteration count %d", model.ErrInvalidInput, result.Iterations)
	}
	return result, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// sortRuns orders runs oldest first, breaking ties by id.
func sortRuns(runs []model.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC != runs[j].CreatedAtUTC {
			return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC
		}
		return runs[i].RunID < runs[j].RunID
	})
}
