package storage

import (
	"context"
	"sync"

	"swypesim/internal/model"
)

type MemoryStore struct {
	mu           sync.RWMutex
	initialized  bool
	genomes      map[string]model.Genome
	runs         map[string]model.RunRecord
	results      map[string]model.FitnessResult
	trajectories map[string]model.TrajectoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.Genome)
	s.runs = make(map[string]model.RunRecord)
	s.results = make(map[string]model.FitnessResult)
	s.trajectories = make(map[string]model.TrajectoryRecord)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.genomes[genome.ID] = copyGenome(genome)
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[id]
	if !ok {
		return model.Genome{}, false, nil
	}
	return copyGenome(genome), true, nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.RunID] = run
	s.results[run.RunID] = run.Result
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveFitnessResult(_ context.Context, runID string, result model.FitnessResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[runID] = result
	return nil
}

func (s *MemoryStore) GetFitnessResult(_ context.Context, runID string) (model.FitnessResult, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[runID]
	return result, ok, nil
}

func (s *MemoryStore) SaveTrajectory(_ context.Context, record model.TrajectoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trajectories[record.ID] = copyTrajectory(record)
	return nil
}

func (s *MemoryStore) GetTrajectory(_ context.Context, id string) (model.TrajectoryRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.trajectories[id]
	if !ok {
		return model.TrajectoryRecord{}, false, nil
	}
	return copyTrajectory(record), true, nil
}

func copyGenome(g model.Genome) model.Genome {
	g.Neurons = append([]model.Neuron(nil), g.Neurons...)
	g.Synapses = append([]model.Synapse(nil), g.Synapses...)
	g.InputIDs = append([]string(nil), g.InputIDs...)
	g.OutputIDs = append([]string(nil), g.OutputIDs...)
	return g
}

func copyTrajectory(rec model.TrajectoryRecord) model.TrajectoryRecord {
	rec.X = append([]float64(nil), rec.X...)
	rec.Y = append([]float64(nil), rec.Y...)
	rec.T = append([]float64(nil), rec.T...)
	return rec
}
