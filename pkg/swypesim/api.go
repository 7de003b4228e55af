// Package swypesim is the public entry point for synthesizing swipe traces and
// scoring keyboards by Monte Carlo recognition fitness.
package swypesim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"swypesim/internal/config"
	"swypesim/internal/fitness"
	"swypesim/internal/inputmodel"
	"swypesim/internal/interp"
	"swypesim/internal/keyboard"
	"swypesim/internal/model"
	"swypesim/internal/nn"
	"swypesim/internal/stats"
	"swypesim/internal/storage"
	"swypesim/internal/trajectory"
	"swypesim/internal/vocab"
)

const (
	defaultDBPath = "swypesim.db"

	// Fixed-width UTC timestamps sort lexically in time order.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger

	mu          sync.Mutex
	initialized bool
}

type EvaluateRequest struct {
	RunID      string
	Model      string
	Network    string
	NetworkID  string
	Layout     string
	Vocabulary string
	Words      []string
	Iterations int
	Workers    int
	Seed       int64
	Params     inputmodel.Params
}

// RequestFromConfig maps loaded evaluation settings onto a request.
func RequestFromConfig(cfg *config.Eval) EvaluateRequest {
	return EvaluateRequest{
		Model:      cfg.Model,
		Network:    cfg.Network,
		NetworkID:  cfg.NetworkID,
		Layout:     cfg.Layout,
		Vocabulary: cfg.Vocabulary,
		Words:      append([]string(nil), cfg.Words...),
		Iterations: cfg.Iterations,
		Workers:    cfg.Workers,
		Seed:       cfg.Seed,
		Params:     cfg.Params,
	}
}

type EvaluateSummary struct {
	RunID   string
	Words   int
	Workers int
	Result  model.FitnessResult
	Elapsed time.Duration
}

type SynthesizeRequest struct {
	Word    string
	Layout  string
	Samples int
	Save    bool
	Params  inputmodel.Params
}

type Trace struct {
	ID         string             `json:"id"`
	Word       string             `json:"word"`
	Points     []trajectory.Point `json:"points"`
	StringForm string             `json:"string_form"`
}

type InterpolateRequest struct {
	Method string
	Points []trajectory.Point
	Steps  int
}

type RunsRequest struct {
	Limit int
}

type MergeRequest struct {
	RunIDs []string
	Latest int
}

type ExportRequest struct {
	RunIDs []string
	Latest int
	OutDir string
}

type ExportSummary struct {
	RunDirs     []string
	SummaryPath string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	c.initialized = true
	return nil
}

// Methods lists the interpolation method names accepted in requests.
func Methods() []string {
	return interp.Methods()
}

// Activations lists the activation names a network artifact may use.
func Activations() []string {
	return nn.ListActivations()
}

// Evaluate runs a Monte Carlo fitness evaluation and records it as a run.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	if err := c.Init(ctx); err != nil {
		return EvaluateSummary{}, err
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if req.Model == "" {
		req.Model = string(inputmodel.KindInterpolation)
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	params := req.Params.WithDefaults()
	params.Seed = req.Seed

	kb, err := loadKeyboard(req.Layout)
	if err != nil {
		return EvaluateSummary{}, err
	}
	words, err := loadWords(req.Vocabulary, req.Words)
	if err != nil {
		return EvaluateSummary{}, err
	}
	base, err := c.buildModel(ctx, req.Model, req.Network, req.NetworkID, params)
	if err != nil {
		return EvaluateSummary{}, err
	}

	evaluator, err := fitness.NewEvaluator(fitness.Config{
		Keyboard:   kb,
		Words:      words,
		NewModel:   fitness.Reseeding(base),
		Iterations: req.Iterations,
		Workers:    req.Workers,
		Seed:       req.Seed,
		Logger:     c.logger.With("run_id", req.RunID),
	})
	if err != nil {
		return EvaluateSummary{}, err
	}

	start := time.Now()
	result, err := evaluator.Run(ctx)
	if err != nil {
		return EvaluateSummary{}, fmt.Errorf("evaluate run %s: %w", req.RunID, err)
	}
	elapsed := time.Since(start)

	workers := req.Workers
	if workers > req.Iterations {
		workers = req.Iterations
	}
	run := model.RunRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           req.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(timestampLayout),
		Model:           req.Model,
		Method:          params.Method,
		Seed:            req.Seed,
		Workers:         workers,
		Words:           words.Words(),
		Result:          result,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return EvaluateSummary{}, fmt.Errorf("save run %s: %w", req.RunID, err)
	}

	return EvaluateSummary{
		RunID:   req.RunID,
		Words:   words.Words(),
		Workers: workers,
		Result:  result,
		Elapsed: elapsed,
	}, nil
}

// ImportNetwork decodes a network artifact and stores it under its id.
func (c *Client) ImportNetwork(ctx context.Context, path string) (string, error) {
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read network: %w", err)
	}
	genome, err := storage.DecodeGenome(data)
	if err != nil {
		return "", fmt.Errorf("%w: decode network %s: %v", model.ErrInvalidInput, path, err)
	}
	if genome.ID == "" {
		return "", fmt.Errorf("%w: network %s has no id", model.ErrInvalidInput, path)
	}
	if _, err := nn.Compile(genome); err != nil {
		return "", err
	}
	if err := c.store.SaveGenome(ctx, genome); err != nil {
		return "", err
	}
	return genome.ID, nil
}

// Synthesize draws noisy traces for a word.
func (c *Client) Synthesize(ctx context.Context, req SynthesizeRequest) ([]Trace, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Samples <= 0 {
		req.Samples = 1
	}
	kb, err := loadKeyboard(req.Layout)
	if err != nil {
		return nil, err
	}
	m, err := inputmodel.NewInterpolationModel(req.Params)
	if err != nil {
		return nil, err
	}

	traces := make([]Trace, 0, req.Samples)
	for i := 0; i < req.Samples; i++ {
		tr, err := m.RandomVector(req.Word, kb)
		if err != nil {
			return nil, err
		}
		trace := Trace{
			ID:         uuid.NewString(),
			Word:       req.Word,
			Points:     tr.Points(),
			StringForm: tr.StringForm(kb),
		}
		if req.Save {
			rec := tr.Record(trace.ID, req.Word)
			rec.VersionedRecord = storage.CurrentVersion()
			if err := c.store.SaveTrajectory(ctx, rec); err != nil {
				return nil, fmt.Errorf("save trace %s: %w", trace.ID, err)
			}
		}
		traces = append(traces, trace)
	}
	return traces, nil
}

// LoadTrace returns a trace saved by Synthesize.
func (c *Client) LoadTrace(ctx context.Context, id, layout string) (Trace, error) {
	if err := c.Init(ctx); err != nil {
		return Trace{}, err
	}
	rec, ok, err := c.store.GetTrajectory(ctx, id)
	if err != nil {
		return Trace{}, err
	}
	if !ok {
		return Trace{}, fmt.Errorf("trace not found: %s", id)
	}
	tr, err := trajectory.FromRecord(rec)
	if err != nil {
		return Trace{}, err
	}
	kb, err := loadKeyboard(layout)
	if err != nil {
		return Trace{}, err
	}
	return Trace{ID: rec.ID, Word: rec.Word, Points: tr.Points(), StringForm: tr.StringForm(kb)}, nil
}

func (c *Client) Interpolate(_ context.Context, req InterpolateRequest) ([]trajectory.Point, error) {
	return Interpolate(req)
}

// Interpolate densifies a waypoint path with the named method.
func Interpolate(req InterpolateRequest) ([]trajectory.Point, error) {
	if req.Method == "" {
		req.Method = inputmodel.DefaultMethod
	}
	fn, err := interp.ByName(req.Method)
	if err != nil {
		return nil, err
	}
	in := trajectory.WithCapacity(len(req.Points))
	for _, p := range req.Points {
		in.AddPoint(p.X, p.Y, p.T)
	}
	out, err := fn(in, req.Steps)
	if err != nil {
		return nil, err
	}
	return out.Points(), nil
}

// Runs lists recorded runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	if len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}
	return runs, nil
}

func (c *Client) Run(ctx context.Context, runID string) (model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return model.RunRecord{}, err
	}
	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return model.RunRecord{}, err
	}
	if !ok {
		return model.RunRecord{}, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

// Merge combines the results of several runs, either named or the latest n.
func (c *Client) Merge(ctx context.Context, req MergeRequest) (model.FitnessResult, error) {
	if err := c.Init(ctx); err != nil {
		return model.FitnessResult{}, err
	}
	if len(req.RunIDs) > 0 && req.Latest > 0 {
		return model.FitnessResult{}, errors.New("use either run ids or latest")
	}

	ids := req.RunIDs
	if req.Latest > 0 {
		runs, err := c.Runs(ctx, RunsRequest{Limit: req.Latest})
		if err != nil {
			return model.FitnessResult{}, err
		}
		for _, run := range runs {
			ids = append(ids, run.RunID)
		}
	}
	if len(ids) == 0 {
		return model.FitnessResult{}, errors.New("merge requires run ids or latest")
	}

	results := make([]model.FitnessResult, 0, len(ids))
	for _, id := range ids {
		result, ok, err := c.store.GetFitnessResult(ctx, id)
		if err != nil {
			return model.FitnessResult{}, err
		}
		if !ok {
			return model.FitnessResult{}, fmt.Errorf("run not found: %s", id)
		}
		results = append(results, result)
	}
	return model.CombineAll(results...), nil
}

// Export writes the selected runs, or the latest n, as files under OutDir
// along with a CSV summary of all of them.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if err := c.Init(ctx); err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = "exports"
	}

	var runs []model.RunRecord
	if len(req.RunIDs) > 0 {
		for _, id := range req.RunIDs {
			run, err := c.Run(ctx, id)
			if err != nil {
				return ExportSummary{}, err
			}
			runs = append(runs, run)
		}
	} else {
		latest, err := c.Runs(ctx, RunsRequest{Limit: req.Latest})
		if err != nil {
			return ExportSummary{}, err
		}
		runs = latest
	}
	if len(runs) == 0 {
		return ExportSummary{}, errors.New("no runs to export")
	}

	var summary ExportSummary
	for _, run := range runs {
		dir, err := stats.WriteRunArtifacts(req.OutDir, run)
		if err != nil {
			return ExportSummary{}, fmt.Errorf("export run %s: %w", run.RunID, err)
		}
		summary.RunDirs = append(summary.RunDirs, dir)
	}
	path, err := stats.WriteRunSummary(req.OutDir, runs)
	if err != nil {
		return ExportSummary{}, err
	}
	summary.SummaryPath = path
	c.logger.Info("runs exported", "runs", len(runs), "dir", req.OutDir)
	return summary, nil
}

func (c *Client) buildModel(ctx context.Context, kind, network, networkID string, params inputmodel.Params) (inputmodel.InputModel, error) {
	if inputmodel.Kind(kind) != inputmodel.KindNeural || networkID == "" {
		return inputmodel.New(kind, params, network)
	}
	genome, ok, err := c.store.GetGenome(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: network not found: %s", model.ErrInvalidInput, networkID)
	}
	return inputmodel.NewNeuralNetworkModelFromGenome(genome, params)
}

func loadKeyboard(path string) (keyboard.Keyboard, error) {
	if path == "" {
		return keyboard.QWERTY(), nil
	}
	layout, err := keyboard.LoadLayout(path)
	if err != nil {
		return nil, err
	}
	return layout, nil
}

func loadWords(path string, inline []string) (*vocab.List, error) {
	if path != "" {
		return vocab.LoadFile(path)
	}
	return vocab.NewList(inline), nil
}
