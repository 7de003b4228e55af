//go:build sqlite

package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestEvalRunsMergeSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "swypesim.db")
	common := []string{"--store", "sqlite", "--db-path", dbPath, "--log-level", "error"}

	var ids []string
	for _, seed := range []string{"1", "2"} {
		args := append([]string{"eval", "--words", "hi,the", "--iterations", "10", "--seed", seed, "--json"}, common...)
		out, err := runCLI(t, args...)
		if err != nil {
			t.Fatalf("eval seed %s: %v", seed, err)
		}
		ids = append(ids, decodeEval(t, out).RunID)
	}

	out, err := runCLI(t, append([]string{"runs", "--json"}, common...)...)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	out, err = runCLI(t, append([]string{"merge", ids[0], ids[1]}, common...)...)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(out, "iterations=20") {
		t.Fatalf("unexpected merge output: %q", out)
	}

	out, err = runCLI(t, append([]string{"merge", "--latest", "2"}, common...)...)
	if err != nil {
		t.Fatalf("merge latest: %v", err)
	}
	if !strings.Contains(out, "iterations=20") {
		t.Fatalf("unexpected merge output: %q", out)
	}

	outDir := filepath.Join(t.TempDir(), "exports")
	out, err = runCLI(t, append([]string{"export", "--out", outDir}, common...)...)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.Count(out, "exported ") != 2 || !strings.Contains(out, filepath.Join(outDir, "runs.csv")) {
		t.Fatalf("unexpected export output: %q", out)
	}
}

func TestNetworkImportSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "swypesim.db")
	common := []string{"--store", "sqlite", "--db-path", dbPath, "--log-level", "error"}
	network := filepath.Join("..", "..", "testdata", "fixtures", "distance_genome_v1.json")

	out, err := runCLI(t, append([]string{"network", "import", network}, common...)...)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "network=distance-2") {
		t.Fatalf("unexpected import output: %q", out)
	}

	out, err = runCLI(t, append([]string{"eval", "--model", "neural", "--network-id", "distance-2", "--vector-length", "2", "--words", "hi,we", "--iterations", "4", "--json"}, common...)...)
	if err != nil {
		t.Fatalf("eval with stored network: %v", err)
	}
	if got := decodeEval(t, out); got.Iterations != 4 {
		t.Fatalf("unexpected eval output: %+v", got)
	}
}
