package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"swypesim/internal/logging"
	"swypesim/internal/storage"
	api "swypesim/pkg/swypesim"
)

const defaultDBPath = "swypesim.db"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

type globalFlags struct {
	store    string
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "swypectl",
		Short:         "Synthesize swipe traces and score keyboards by recognition fitness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.store, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	root.PersistentFlags().StringVar(&g.dbPath, "db-path", defaultDBPath, "sqlite database path")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug|info|warn|error")

	root.AddCommand(
		newEvalCmd(g),
		newSynthCmd(g),
		newInterpCmd(),
		newRunsCmd(g),
		newMergeCmd(g),
		newNetworkCmd(g),
		newExportCmd(g),
		newMethodsCmd(),
	)
	return root
}

// openClient builds a client from the global flags. Values from a config file
// apply where the flag was left unset.
func openClient(cmd *cobra.Command, g *globalFlags, storeKind, dbPath, logLevel string) (*api.Client, error) {
	flags := cmd.Flags()
	if flags.Changed("store") || storeKind == "" {
		storeKind = g.store
	}
	if flags.Changed("db-path") || dbPath == "" {
		dbPath = g.dbPath
	}
	if flags.Changed("log-level") || logLevel == "" {
		logLevel = g.logLevel
	}

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return api.New(api.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		Logger:    logging.New(cmd.ErrOrStderr(), level),
	})
}
