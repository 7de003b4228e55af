package storage

import (
	"context"

	"swypesim/internal/model"
)

// Store defines the persistence operations for network artifacts, evaluation
// runs and synthesized trajectories.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, id string) (model.Genome, bool, error)
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveFitnessResult(ctx context.Context, runID string, result model.FitnessResult) error
	GetFitnessResult(ctx context.Context, runID string) (model.FitnessResult, bool, error)
	SaveTrajectory(ctx context.Context, record model.TrajectoryRecord) error
	GetTrajectory(ctx context.Context, id string) (model.TrajectoryRecord, bool, error)
}
