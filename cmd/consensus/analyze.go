package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/QCWLTF/consensus-Ai/discuss"
	"github.com/QCWLTF/consensus-Ai/discuss/emit"
	"github.com/QCWLTF/consensus-Ai/discuss/store"
)

type analyzeOptions struct {
	mode         string
	file         string
	question     string
	callTimeout  time.Duration
	roundTimeout time.Duration
	threshold    float64
	jsonOut      bool
	verbose      bool
	logJSON      bool
	dbPath       string
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a paper with all available backends",
		Long: "Reads the paper text from the given file (or stdin when omitted or \"-\"),\n" +
			"runs the discussion protocol across the available backends, and prints the\n" +
			"consensus result.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.file = args[0]
			}
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", "simple", "discussion mode: simple (one round) or deep (analysis, critique, revision)")
	cmd.Flags().StringVar(&opts.question, "question", "", "analysis question (defaults to a summary of contributions, methodology, and limitations)")
	cmd.Flags().DurationVar(&opts.callTimeout, "call-timeout", discuss.DefaultPerCallTimeout, "per-provider call timeout")
	cmd.Flags().DurationVar(&opts.roundTimeout, "round-timeout", discuss.DefaultRoundDeadline, "deadline for a whole round")
	cmd.Flags().Float64Var(&opts.threshold, "similarity", 0, "claim clustering similarity threshold in (0,1]; 0 keeps the default")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log discussion events to stderr")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "emit event logs as JSON lines (implies --verbose)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite file to archive results in (MYSQL_DSN env overrides with MySQL)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts analyzeOptions) error {
	text, err := readPaper(opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	mode, err := discuss.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	registry, err := buildRegistry(ctx)
	if err != nil {
		return err
	}

	orchOpts := []discuss.Option{
		discuss.WithTimeouts(opts.callTimeout, opts.roundTimeout),
	}
	if opts.verbose || opts.logJSON {
		orchOpts = append(orchOpts, discuss.WithEmitter(emit.NewLogEmitter(cmd.ErrOrStderr(), opts.logJSON)))
	}
	if opts.threshold > 0 {
		orchOpts = append(orchOpts, discuss.WithSimilarityThreshold(opts.threshold))
	}

	archive, err := openStore(opts.dbPath)
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
		orchOpts = append(orchOpts, discuss.WithStore(archive))
	}

	orch := discuss.NewOrchestrator(registry, orchOpts...)
	result, err := orch.Run(ctx, discuss.Request{
		Text:     text,
		Question: opts.question,
		Mode:     mode,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out, result.FinalSynthesis)
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
	fmt.Fprintf(out, "\nSession: %s\n", result.SessionID)
	return nil
}

// readPaper loads the paper text from a file, or stdin for "" / "-".
func readPaper(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// openStore picks the result archive: MySQL when MYSQL_DSN is set, SQLite
// when a path was given, otherwise none.
func openStore(dbPath string) (store.Store, error) {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return store.NewMySQLStore(dsn)
	}
	if dbPath != "" {
		return store.NewSQLiteStore(dbPath)
	}
	return nil, nil
}
