package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"swypesim/internal/config"
	"swypesim/internal/inputmodel"
	"swypesim/internal/trajectory"
	api "swypesim/pkg/swypesim"
)

func newEvalCmd(g *globalFlags) *cobra.Command {
	var (
		configPath string
		jsonOut    bool
		cfg        = config.Default()
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Estimate recognition fitness by Monte Carlo simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eval := cfg
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				applyEvalFlags(cmd, loaded, cfg)
				eval = loaded
			}
			eval.Params = eval.Params.WithDefaults()
			if err := eval.Validate(); err != nil {
				return err
			}

			client, err := openClient(cmd, g, eval.Store, eval.DBPath, eval.LogLevel)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Evaluate(cmd.Context(), api.RequestFromConfig(eval))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"run_id":     summary.RunID,
					"iterations": summary.Result.Iterations,
					"fitness":    summary.Result.Fitness,
					"error":      summary.Result.Error,
					"words":      summary.Words,
					"workers":    summary.Workers,
					"elapsed_ms": summary.Elapsed.Milliseconds(),
				})
			}
			fmt.Fprintf(out, "run_id=%s iterations=%s words=%s workers=%d fitness=%.4f error=%.4f elapsed=%s\n",
				summary.RunID,
				humanize.Comma(int64(summary.Result.Iterations)),
				humanize.Comma(int64(summary.Words)),
				summary.Workers,
				summary.Result.Fitness,
				summary.Result.Error,
				summary.Elapsed.Round(time.Millisecond),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "evaluation config file (.json, .yaml, .toml)")
	f.BoolVar(&jsonOut, "json", false, "emit the summary as JSON")
	f.StringVar(&cfg.Model, "model", cfg.Model, "input model: interpolation|neural")
	f.StringVar(&cfg.Network, "network", "", "network artifact for the neural model")
	f.StringVar(&cfg.NetworkID, "network-id", "", "stored network id for the neural model")
	f.StringVar(&cfg.Layout, "layout", "", "keyboard layout file (default QWERTY)")
	f.StringVar(&cfg.Vocabulary, "vocab", "", "vocabulary file, one word per line")
	f.StringSliceVar(&cfg.Words, "words", nil, "inline vocabulary")
	f.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "Monte Carlo trials")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel workers")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "run seed")
	bindParamFlags(cmd, &cfg.Params)
	return cmd
}

// applyEvalFlags copies explicitly set flag values over a loaded config.
func applyEvalFlags(cmd *cobra.Command, dst, src *config.Eval) {
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("model", func() { dst.Model = src.Model })
	set("network", func() { dst.Network = src.Network })
	set("network-id", func() { dst.NetworkID = src.NetworkID })
	set("layout", func() { dst.Layout = src.Layout })
	set("vocab", func() { dst.Vocabulary = src.Vocabulary })
	set("words", func() { dst.Words = src.Words })
	set("iterations", func() { dst.Iterations = src.Iterations })
	set("workers", func() { dst.Workers = src.Workers })
	set("seed", func() { dst.Seed = src.Seed })
	set("method", func() { dst.Params.Method = src.Params.Method })
	set("vector-length", func() { dst.Params.VectorLength = src.Params.VectorLength })
	set("x-scale", func() { dst.Params.XScale = src.Params.XScale })
	set("y-scale", func() { dst.Params.YScale = src.Params.YScale })
	set("correlation", func() { dst.Params.Correlation = src.Params.Correlation })
	set("max-distance", func() { dst.Params.MaxDistance = src.Params.MaxDistance })
	set("max-sigmas", func() { dst.Params.MaxSigmas = src.Params.MaxSigmas })
	set("loop", func() { dst.Params.Loop = src.Params.Loop })
	set("loop-radius", func() { dst.Params.LoopRadius = src.Params.LoopRadius })
}

func bindParamFlags(cmd *cobra.Command, p *inputmodel.Params) {
	f := cmd.Flags()
	f.StringVar(&p.Method, "method", p.Method, "interpolation method")
	f.IntVar(&p.VectorLength, "vector-length", p.VectorLength, "samples per trace")
	f.Float64Var(&p.XScale, "x-scale", p.XScale, "noise scale along x, in key widths")
	f.Float64Var(&p.YScale, "y-scale", p.YScale, "noise scale along y, in key heights")
	f.Float64Var(&p.Correlation, "correlation", p.Correlation, "x/y noise correlation")
	f.Float64Var(&p.MaxDistance, "max-distance", p.MaxDistance, "cap on per-sample displacement (0 disables)")
	f.Float64Var(&p.MaxSigmas, "max-sigmas", p.MaxSigmas, "cap on noise draws in standard deviations (0 disables)")
	f.BoolVar(&p.Loop, "loop", p.Loop, "draw a loop on repeated letters")
	f.Float64Var(&p.LoopRadius, "loop-radius", p.LoopRadius, "repeated-letter loop radius")
}

func newSynthCmd(g *globalFlags) *cobra.Command {
	var (
		req     api.SynthesizeRequest
		jsonOut bool
	)
	req.Params = inputmodel.DefaultParams()
	cmd := &cobra.Command{
		Use:   "synth <word>",
		Short: "Draw noisy swipe traces for a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Word = strings.ToLower(args[0])
			client, err := openClient(cmd, g, "", "", "")
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			traces, err := client.Synthesize(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, traces)
			}
			for _, tr := range traces {
				fmt.Fprintf(out, "id=%s word=%s samples=%d keys=%s\n", tr.ID, tr.Word, len(tr.Points), tr.StringForm)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&req.Samples, "samples", 1, "number of traces")
	f.StringVar(&req.Layout, "layout", "", "keyboard layout file (default QWERTY)")
	f.BoolVar(&req.Save, "save", false, "persist the traces")
	f.Int64Var(&req.Params.Seed, "seed", req.Params.Seed, "noise seed")
	f.BoolVar(&jsonOut, "json", false, "emit traces as JSON")
	bindParamFlags(cmd, &req.Params)
	return cmd
}

func newInterpCmd() *cobra.Command {
	var req api.InterpolateRequest
	cmd := &cobra.Command{
		Use:   "interp <x,y,t>...",
		Short: "Interpolate a waypoint path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(args)
			if err != nil {
				return err
			}
			req.Points = pts
			out, err := api.Interpolate(req)
			if err != nil {
				return err
			}
			for _, p := range out {
				fmt.Fprintf(cmd.OutOrStdout(), "%g %g %g\n", p.X, p.Y, p.T)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Method, "method", inputmodel.DefaultMethod, "interpolation method")
	cmd.Flags().IntVar(&req.Steps, "steps", 10, "output samples")
	return cmd
}

func parsePoints(args []string) ([]trajectory.Point, error) {
	pts := make([]trajectory.Point, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("point %q: want x,y,t", arg)
		}
		var v [3]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("point %q: %w", arg, err)
			}
			v[i] = f
		}
		pts = append(pts, trajectory.Point{X: v[0], Y: v[1], T: v[2]})
	}
	return pts, nil
}

func newRunsCmd(g *globalFlags) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded evaluation runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, err := openClient(cmd, g, "", "", "")
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			runs, err := client.Runs(cmd.Context(), api.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, runs)
			}
			for _, run := range runs {
				created := run.CreatedAtUTC
				if ts, err := time.Parse(time.RFC3339Nano, run.CreatedAtUTC); err == nil {
					created = humanize.Time(ts)
				}
				fmt.Fprintf(out, "run_id=%s created=%q model=%s method=%s iterations=%s fitness=%.4f error=%.4f\n",
					run.RunID, created, run.Model, run.Method,
					humanize.Comma(int64(run.Result.Iterations)),
					run.Result.Fitness, run.Result.Error,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit runs as JSON")
	return cmd
}

func newMergeCmd(g *globalFlags) *cobra.Command {
	var latest int
	cmd := &cobra.Command{
		Use:   "merge [run-id...]",
		Short: "Combine the results of several runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd, g, "", "", "")
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			result, err := client.Merge(cmd.Context(), api.MergeRequest{RunIDs: args, Latest: latest})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "iterations=%s fitness=%.4f error=%.4f\n",
				humanize.Comma(int64(result.Iterations)), result.Fitness, result.Error)
			return nil
		},
	}
	cmd.Flags().IntVar(&latest, "latest", 0, "merge the n most recent runs")
	return cmd
}

func newExportCmd(g *globalFlags) *cobra.Command {
	var req api.ExportRequest
	cmd := &cobra.Command{
		Use:   "export [run-id...]",
		Short: "Write runs and a CSV summary to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.RunIDs = args
			client, err := openClient(cmd, g, "", "", "")
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, dir := range summary.RunDirs {
				fmt.Fprintf(out, "exported %s\n", dir)
			}
			fmt.Fprintf(out, "summary %s\n", summary.SummaryPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.OutDir, "out", "exports", "output directory")
	cmd.Flags().IntVar(&req.Latest, "latest", 20, "export the n most recent runs when no ids are given")
	return cmd
}

func newNetworkCmd(g *globalFlags) *cobra.Command {
	network := &cobra.Command{
		Use:   "network",
		Short: "Manage stored distance networks",
	}
	network.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Store a network artifact for use with --network-id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd, g, "", "", "")
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			id, err := client.ImportNetwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported network=%s\n", id)
			return nil
		},
	})
	network.AddCommand(&cobra.Command{
		Use:   "activations",
		Short: "List activation functions a network may use",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range api.Activations() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	})
	return network
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List interpolation methods",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, m := range api.Methods() {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
